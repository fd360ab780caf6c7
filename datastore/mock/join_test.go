/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/suparena/docstore/datastore/mock"
	"github.com/suparena/docstore/datastore/testmodels"
	"github.com/suparena/docstore/entity"
	"github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/storagemodels"
)

type joinFixture struct {
	users     *users
	roles     *mock.Repository[testmodels.Role, testmodels.Role]
	countries *mock.Repository[testmodels.Country, testmodels.Country]
	admin     *testmodels.Role
	chile     *testmodels.Country
}

func newJoinFixture(t *testing.T) joinFixture {
	t.Helper()
	ctx := context.Background()

	f := joinFixture{
		roles:     mock.New[testmodels.Role, testmodels.Role]("roles"),
		countries: mock.New[testmodels.Country, testmodels.Country]("countries"),
	}
	f.users = newUsers().
		WithSource(testmodels.RoleModel, f.roles).
		WithSource(testmodels.CountryModel, f.countries)

	var err error
	f.admin, err = f.roles.Create(ctx, testmodels.Role{Name: "admin"}, nil)
	require.NoError(t, err)
	f.chile, err = f.countries.Create(ctx, testmodels.Country{Name: "Chile", Alpha2Code: "CL"}, nil)
	require.NoError(t, err)
	return f
}

var withJoin = &storagemodels.FindOneOptions{Join: storagemodels.JoinDefault()}

func TestJoinJustOne(t *testing.T) {
	ctx := context.Background()
	f := newJoinFixture(t)

	t.Run("one match populates the field", func(t *testing.T) {
		u := mustCreate(t, f.users, testmodels.User{
			Name:         "Ana",
			Email:        "a@example.com",
			RoleID:       f.admin.ID,
			CountryID:    f.chile.ID,
			MobileNumber: &testmodels.MobileNumber{Number: "912345678", CountryID: f.chile.ID},
		})

		got, err := f.users.FindOneById(ctx, u.ID, withJoin)
		require.NoError(t, err)
		require.NotNil(t, got.Role)
		assert.Equal(t, "admin", got.Role.Name)
		require.NotNil(t, got.Country)
		assert.Equal(t, "CL", got.Country.Alpha2Code)
		require.NotNil(t, got.MobileNumber.Country)
		assert.Equal(t, f.chile.ID, got.MobileNumber.Country.ID)
		assert.Equal(t, "912345678", got.MobileNumber.Number)
	})

	t.Run("zero matches leave the field unset", func(t *testing.T) {
		u := mustCreate(t, f.users, testmodels.User{Name: "Bea", Email: "b@example.com", RoleID: "missing"})

		got, err := f.users.FindOneById(ctx, u.ID, withJoin)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Nil(t, got.Role)
		assert.Nil(t, got.Country)
		assert.Nil(t, got.MobileNumber)
	})

	t.Run("no join unless requested", func(t *testing.T) {
		got, err := f.users.FindAll(ctx, bson.M{"roleId": f.admin.ID}, nil)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Nil(t, got[0].Role)
	})

	t.Run("soft-deleted targets are not joined", func(t *testing.T) {
		guest, err := f.roles.Create(ctx, testmodels.Role{Name: "guest"}, nil)
		require.NoError(t, err)
		_, err = f.roles.SoftDelete(ctx, *guest, nil)
		require.NoError(t, err)
		u := mustCreate(t, f.users, testmodels.User{Name: "Cid", Email: "c@example.com", RoleID: guest.ID})

		got, err := f.users.FindOneById(ctx, u.ID, withJoin)
		require.NoError(t, err)
		assert.Nil(t, got.Role)

		desc := testmodels.UserJoins()[0]
		desc.WithDeleted = true
		got, err = f.users.FindOneById(ctx, u.ID, &storagemodels.FindOneOptions{Join: storagemodels.JoinWith(desc)})
		require.NoError(t, err)
		require.NotNil(t, got.Role)
		assert.Equal(t, "guest", got.Role.Name)
	})

	t.Run("condition filters targets", func(t *testing.T) {
		desc := testmodels.UserJoins()[0]
		desc.Condition = bson.M{"name": "nobody"}
		got, err := f.users.FindOne(ctx, bson.M{"roleId": f.admin.ID}, &storagemodels.FindOneOptions{Join: storagemodels.JoinWith(desc)})
		require.NoError(t, err)
		assert.Nil(t, got.Role)
	})
}

func TestJoinOperation(t *testing.T) {
	ctx := context.Background()
	f := newJoinFixture(t)

	view := testmodels.UserView{User: testmodels.User{Name: "Ana", Email: "a@example.com", RoleID: f.admin.ID}}

	got, err := f.users.Join(ctx, view)
	require.NoError(t, err)
	require.NotNil(t, got.Role)
	assert.Equal(t, f.admin.ID, got.Role.ID)
	assert.Equal(t, "Ana", got.Name)

	_, err = f.users.Join(ctx, view, storagemodels.JoinDescriptor{Field: "team", LocalKey: "teamId", ForeignKey: entity.IDField, Model: "Team"})
	assert.True(t, errors.IsUnknownModel(err))

	_, err = f.users.Join(ctx, view, storagemodels.JoinDescriptor{Field: "team"})
	assert.True(t, errors.IsValidationError(err))
}

// Regional is a role scoped to several countries.
type Regional struct {
	testmodels.Role `bson:",inline"`
	CountryIDs      []string             `bson:"countryIds"`
	Countries       []testmodels.Country `bson:"countries,omitempty"`
}

func TestJoinMany(t *testing.T) {
	ctx := context.Background()

	countries := mock.New[testmodels.Country, testmodels.Country]("countries")
	roles := mock.New[testmodels.Role, Regional]("roles").WithSource(testmodels.CountryModel, countries)

	cl, err := countries.Create(ctx, testmodels.Country{Name: "Chile", Alpha2Code: "CL"}, nil)
	require.NoError(t, err)
	pe, err := countries.Create(ctx, testmodels.Country{Name: "Peru", Alpha2Code: "PE"}, nil)
	require.NoError(t, err)
	_, err = countries.Create(ctx, testmodels.Country{Name: "Bolivia", Alpha2Code: "BO"}, nil)
	require.NoError(t, err)

	roles.SetData(bson.M{"_id": "r1", "name": "regional", "countryIds": bson.A{cl.ID, pe.ID}})

	desc := storagemodels.JoinDescriptor{Field: "countries", LocalKey: "countryIds", ForeignKey: entity.IDField, Model: testmodels.CountryModel}
	docs, err := roles.FindAll(ctx, nil, &storagemodels.FindAllOptions{FindOneOptions: storagemodels.FindOneOptions{Join: storagemodels.JoinWith(desc)}})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Len(t, docs[0].Countries, 2)
	assert.ElementsMatch(t, []string{"CL", "PE"}, []string{docs[0].Countries[0].Alpha2Code, docs[0].Countries[1].Alpha2Code})

	raw, ok := roles.GetData("r1")
	require.True(t, ok)
	assert.NotContains(t, raw, "countries", "joins never write back")

	hooked := mock.New[testmodels.Role, testmodels.Role]("roles").
		WithJoinFunc(func(_ context.Context, doc bson.M, _ []storagemodels.JoinDescriptor) (bson.M, error) {
			doc["name"] = "joined"
			return doc, nil
		})
	got, err := hooked.Join(ctx, testmodels.Role{Name: "x"}, desc)
	require.NoError(t, err)
	assert.Equal(t, "joined", got.Name)
}

func TestSaveJoinedView(t *testing.T) {
	ctx := context.Background()
	f := newJoinFixture(t)

	u := mustCreate(t, f.users, testmodels.User{
		Name:         "Ana",
		Email:        "a@example.com",
		RoleID:       f.admin.ID,
		CountryID:    f.chile.ID,
		MobileNumber: &testmodels.MobileNumber{Number: "912345678", CountryID: f.chile.ID},
	})

	view, err := f.users.FindOneById(ctx, u.ID, withJoin)
	require.NoError(t, err)
	require.NotNil(t, view.Role)

	view.Name = "Ana Maria"
	_, err = f.users.Save(ctx, *view, nil)
	require.NoError(t, err)

	stored, ok := f.users.GetData(u.ID)
	require.True(t, ok)
	assert.NotContains(t, stored, "role")
	assert.NotContains(t, stored, "country")
	assert.NotContains(t, stored["mobileNumber"], "country")

	_, err = f.roles.SoftDelete(ctx, *f.admin, nil)
	require.NoError(t, err)

	plain, err := f.users.FindOneById(ctx, u.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", plain.Name)
	assert.Nil(t, plain.Role)
	assert.Nil(t, plain.Country)
	require.NotNil(t, plain.MobileNumber)
	assert.Nil(t, plain.MobileNumber.Country)
	assert.Equal(t, "912345678", plain.MobileNumber.Number)

	joined, err := f.users.FindOneById(ctx, u.ID, withJoin)
	require.NoError(t, err)
	assert.Nil(t, joined.Role)
	assert.NotNil(t, joined.Country)
}
