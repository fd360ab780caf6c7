/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/suparena/docstore/entity"
	"github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/storagemodels"
)

func duplicateKey() error {
	return mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}}}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns identity and timestamps", func(t *testing.T) {
		fake := newFake()
		r := newRepo(t, fake)

		got, err := r.Create(ctx, Country{Name: "Chile", Alpha2Code: "CL"}, nil)
		require.NoError(t, err)
		require.NotNil(t, got)

		assert.True(t, strfmt.IsUUID4(got.ID))
		assert.False(t, got.CreatedAt.IsZero())
		assert.Equal(t, got.CreatedAt, got.UpdatedAt)
		assert.Nil(t, got.DeletedAt)
		assert.Equal(t, "Chile", got.Name)

		c := fake.last()
		require.Equal(t, "insertOne", c.Op)
		doc := c.Docs[0].(bson.M)
		assert.Equal(t, got.ID, doc["_id"])
		assert.NotContains(t, doc, "deletedAt")
	})

	t.Run("explicit identity", func(t *testing.T) {
		fake := newFake()
		r := newRepo(t, fake)
		id := "7c9e6679-7425-40de-944b-e07fc1f90ae7"

		got, err := r.Create(ctx, Country{Name: "Chile", Alpha2Code: "CL"}, &storagemodels.CreateOptions{ID: id})
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
	})

	t.Run("payload identity", func(t *testing.T) {
		r := newRepo(t, newFake(), WithIDGenerator(ObjectIDGenerator{}))
		id := "507f1f77bcf86cd799439011"

		got, err := r.Create(ctx, Country{Base: entity.Base{ID: id}, Name: "Chile", Alpha2Code: "CL"}, nil)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
	})

	t.Run("invalid explicit identity", func(t *testing.T) {
		fake := newFake()
		r := newRepo(t, fake)

		_, err := r.Create(ctx, Country{Name: "Chile", Alpha2Code: "CL"}, &storagemodels.CreateOptions{ID: "not-a-uuid"})
		require.Error(t, err)
		assert.True(t, errors.IsValidationError(err))
		assert.Empty(t, fake.ops())
	})

	t.Run("validation", func(t *testing.T) {
		fake := newFake()
		r := newRepo(t, fake)

		_, err := r.Create(ctx, Country{Name: "Chile", Alpha2Code: "CHL"}, nil)
		require.Error(t, err)
		var verr *errors.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "alpha2Code", verr.Field)
		assert.Empty(t, fake.ops())
	})

	t.Run("duplicate key", func(t *testing.T) {
		fake := newFake()
		fake.err = duplicateKey()
		r := newRepo(t, fake)

		_, err := r.Create(ctx, Country{Name: "Chile", Alpha2Code: "CL"}, nil)
		require.Error(t, err)
		assert.True(t, errors.IsAlreadyExists(err))
		assert.True(t, mongo.IsDuplicateKeyError(err))
	})

	t.Run("other store errors unchanged", func(t *testing.T) {
		fake := newFake()
		fake.err = mongo.ErrClientDisconnected
		r := newRepo(t, fake)

		_, err := r.Create(ctx, Country{Name: "Chile", Alpha2Code: "CL"}, nil)
		assert.Equal(t, mongo.ErrClientDisconnected, err)
	})
}

func TestSave(t *testing.T) {
	ctx := context.Background()
	prev := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	doc := Country{Base: entity.Base{ID: "a", CreatedAt: prev, UpdatedAt: prev}, Name: "Chile", Alpha2Code: "CL"}

	t.Run("guarded replace", func(t *testing.T) {
		fake := newFake()
		fake.single = bson.M{"_id": "a", "name": "Chile", "alpha2Code": "CL", "updatedAt": time.Now()}
		r := newRepo(t, fake)

		got, err := r.Save(ctx, doc, nil)
		require.NoError(t, err)
		require.NotNil(t, got)

		c := fake.last()
		assert.Equal(t, "findOneAndReplace", c.Op)
		assert.Equal(t, bson.M{"_id": "a", "updatedAt": prev}, c.Filter)
		repl := c.Update.(bson.M)
		assert.NotEqual(t, prev, repl["updatedAt"])
		assert.Equal(t, options.After, *c.Opts.(*options.FindOneAndReplaceOptions).ReturnDocument)
	})

	t.Run("joined fields are not stored", func(t *testing.T) {
		fake := newFake()
		fake.single = bson.M{"_id": "a", "name": "Chile", "alpha2Code": "CL", "ownerId": "o", "updatedAt": time.Now()}
		r, err := New[Country, CountryView](fake, WithCollectionResolver(testCollections), WithDefaultJoin(ownerJoin))
		require.NoError(t, err)

		view := CountryView{Country: doc, Owner: &Owner{ID: "o", Name: "Owner"}}
		view.OwnerID = "o"
		got, err := r.Save(ctx, view, nil)
		require.NoError(t, err)
		assert.Nil(t, got.Owner)

		repl := fake.last().Update.(bson.M)
		assert.NotContains(t, repl, "owner")
		assert.Equal(t, "o", repl["ownerId"])
	})

	t.Run("stale document", func(t *testing.T) {
		r := newRepo(t, newFake())

		_, err := r.Save(ctx, doc, nil)
		assert.True(t, errors.IsConcurrencyError(err))
	})

	t.Run("validation", func(t *testing.T) {
		fake := newFake()
		r := newRepo(t, fake)

		bad := doc
		bad.Name = ""
		_, err := r.Save(ctx, bad, nil)
		assert.True(t, errors.IsValidationError(err))
		assert.Empty(t, fake.ops())
	})
}

func TestUpdateOneById(t *testing.T) {
	ctx := context.Background()
	fake := newFake()
	fake.single = bson.M{"_id": "a", "name": "Chilé"}
	r := newRepo(t, fake)

	got, err := r.UpdateOneById(ctx, "a", bson.M{"name": "Chilé"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Chilé", got.Name)

	c := fake.last()
	assert.Equal(t, bson.M{"_id": "a", "deletedAt": bson.M{"$exists": false}}, c.Filter)
	set := c.Update.(bson.M)["$set"].(bson.M)
	assert.Equal(t, "Chilé", set["name"])
	assert.Contains(t, set, "updatedAt")

	_, err = r.UpdateOneById(ctx, "a", bson.M{"_id": "b"}, nil)
	assert.True(t, errors.IsValidationError(err))
}

func TestInstanceDeletes(t *testing.T) {
	ctx := context.Background()
	doc := Country{Base: entity.Base{ID: "a"}, Name: "Chile", Alpha2Code: "CL"}

	t.Run("hard delete", func(t *testing.T) {
		fake := newFake()
		fake.single = bson.M{"_id": "a", "name": "Chile"}
		r := newRepo(t, fake)

		got, err := r.Delete(ctx, doc, nil)
		require.NoError(t, err)
		assert.Equal(t, "a", got.ID)
		assert.Equal(t, bson.M{"_id": "a"}, fake.last().Filter)

		got, err = r.Delete(ctx, doc, nil)
		require.NoError(t, err)
		assert.Nil(t, got, "already gone")
	})

	t.Run("soft delete", func(t *testing.T) {
		fake := newFake()
		fake.single = bson.M{"_id": "a", "deletedAt": time.Now()}
		r := newRepo(t, fake)

		got, err := r.SoftDelete(ctx, doc, nil)
		require.NoError(t, err)
		assert.True(t, got.IsDeleted())

		c := fake.last()
		assert.Equal(t, bson.M{"_id": "a", "deletedAt": bson.M{"$exists": false}}, c.Filter)
		set := c.Update.(bson.M)["$set"].(bson.M)
		assert.Equal(t, set["deletedAt"], set["updatedAt"])
	})

	t.Run("soft delete is idempotent", func(t *testing.T) {
		fake := newFake()
		deletedAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		// first answer: no active document; second: the stored deleted one
		fake.singleSeq = []any{nil, bson.M{"_id": "a", "deletedAt": deletedAt}}
		r := newRepo(t, fake)

		got, err := r.SoftDelete(ctx, doc, nil)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, deletedAt, *got.DeletedAt, "original deletion time kept")
		assert.Equal(t, []string{"findOneAndUpdate", "findOne"}, fake.ops())
	})

	t.Run("restore", func(t *testing.T) {
		fake := newFake()
		fake.single = bson.M{"_id": "a"}
		r := newRepo(t, fake)

		got, err := r.Restore(ctx, doc, nil)
		require.NoError(t, err)
		assert.False(t, got.IsDeleted())

		c := fake.last()
		assert.Equal(t, bson.M{"_id": "a", "deletedAt": bson.M{"$exists": true}}, c.Filter)
		update := c.Update.(bson.M)
		assert.Equal(t, bson.M{"deletedAt": ""}, update["$unset"])
	})

	t.Run("restore of a missing document", func(t *testing.T) {
		r := newRepo(t, newFake())
		got, err := r.Restore(ctx, doc, nil)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestBulk(t *testing.T) {
	ctx := context.Background()

	t.Run("create many", func(t *testing.T) {
		fake := newFake()
		r := newRepo(t, fake)
		ordered := false

		err := r.CreateMany(ctx, []Country{
			{Name: "Chile", Alpha2Code: "CL"},
			{Name: "Peru", Alpha2Code: "PE"},
		}, &storagemodels.CreateManyOptions{Ordered: &ordered})
		require.NoError(t, err)

		c := fake.last()
		require.Equal(t, "insertMany", c.Op)
		require.Len(t, c.Docs, 2)
		assert.NotEqual(t, c.Docs[0].(bson.M)["_id"], c.Docs[1].(bson.M)["_id"])
		assert.False(t, *c.Opts.(*options.InsertManyOptions).Ordered)
	})

	t.Run("create many propagates driver error", func(t *testing.T) {
		fake := newFake()
		fake.err = duplicateKey()
		r := newRepo(t, fake)

		err := r.CreateMany(ctx, []Country{{Name: "Chile", Alpha2Code: "CL"}}, nil)
		assert.Equal(t, duplicateKey(), err)
	})

	t.Run("create many validates all first", func(t *testing.T) {
		fake := newFake()
		r := newRepo(t, fake)

		err := r.CreateMany(ctx, []Country{{Name: "Chile", Alpha2Code: "CL"}, {}}, nil)
		assert.True(t, errors.IsValidationError(err))
		assert.Empty(t, fake.ops())
	})

	t.Run("empty inputs are no-ops", func(t *testing.T) {
		fake := newFake()
		r := newRepo(t, fake)

		require.NoError(t, r.CreateMany(ctx, nil, nil))
		require.NoError(t, r.DeleteManyByIds(ctx, nil, nil))
		require.NoError(t, r.SoftDeleteManyByIds(ctx, []string{}, nil))
		require.NoError(t, r.RestoreManyByIds(ctx, nil, nil))
		assert.Empty(t, fake.ops())
	})

	ids := []string{"a", "b"}
	tests := []struct {
		name       string
		run        func(r *Repository[Country, Country]) error
		op         string
		wantFilter bson.M
		check      func(t *testing.T, update any)
	}{
		{
			name:       "delete many by ids",
			run:        func(r *Repository[Country, Country]) error { return r.DeleteManyByIds(ctx, ids, nil) },
			op:         "deleteMany",
			wantFilter: bson.M{"_id": bson.M{"$in": ids}},
		},
		{
			name:       "soft delete many",
			run:        func(r *Repository[Country, Country]) error { return r.SoftDeleteMany(ctx, bson.M{"name": "x"}, nil) },
			op:         "updateMany",
			wantFilter: bson.M{"name": "x", "deletedAt": bson.M{"$exists": false}},
			check: func(t *testing.T, update any) {
				assert.Contains(t, update.(bson.M)["$set"], "deletedAt")
			},
		},
		{
			name:       "restore many by ids",
			run:        func(r *Repository[Country, Country]) error { return r.RestoreManyByIds(ctx, ids, nil) },
			op:         "updateMany",
			wantFilter: bson.M{"_id": bson.M{"$in": ids}, "deletedAt": bson.M{"$exists": true}},
			check: func(t *testing.T, update any) {
				assert.Equal(t, bson.M{"deletedAt": ""}, update.(bson.M)["$unset"])
			},
		},
		{
			name:       "update many",
			run:        func(r *Repository[Country, Country]) error { return r.UpdateMany(ctx, bson.M{"name": "x"}, bson.M{"name": "y"}, nil) },
			op:         "updateMany",
			wantFilter: bson.M{"name": "x", "deletedAt": bson.M{"$exists": false}},
			check: func(t *testing.T, update any) {
				set := update.(bson.M)["$set"].(bson.M)
				assert.Equal(t, "y", set["name"])
				assert.Contains(t, set, "updatedAt")
			},
		},
		{
			name: "update many raw",
			run: func(r *Repository[Country, Country]) error {
				return r.UpdateManyRaw(ctx, bson.M{"name": "x"}, bson.M{"$inc": bson.M{"visits": 1}}, nil)
			},
			op:         "updateMany",
			wantFilter: bson.M{"name": "x", "deletedAt": bson.M{"$exists": false}},
			check: func(t *testing.T, update any) {
				assert.Equal(t, bson.M{"$inc": bson.M{"visits": 1}}, update, "raw update passed through")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFake()
			r := newRepo(t, fake)

			require.NoError(t, tt.run(r))
			c := fake.last()
			assert.Equal(t, tt.op, c.Op)
			assert.Equal(t, tt.wantFilter, c.Filter)
			if tt.check != nil {
				tt.check(t, c.Update)
			}
		})
	}

	t.Run("bulk errors propagate", func(t *testing.T) {
		fake := newFake()
		fake.err = mongo.ErrClientDisconnected
		r := newRepo(t, fake)

		assert.Equal(t, mongo.ErrClientDisconnected, r.DeleteMany(ctx, bson.M{}, nil))
		assert.Equal(t, mongo.ErrClientDisconnected, r.SoftDeleteMany(ctx, bson.M{}, nil))
		assert.Equal(t, mongo.ErrClientDisconnected, r.RestoreMany(ctx, bson.M{}, nil))
	})
}

func TestJoin(t *testing.T) {
	ctx := context.Background()

	t.Run("attaches and keeps instance fields", func(t *testing.T) {
		fake := newFake()
		fake.docs = []any{bson.M{"_id": "a", "ownerId": "o", "owner": bson.M{"_id": "o", "name": "Owner"}}}
		r := newRepo(t, fake, WithDefaultJoin(ownerJoin))

		doc := Country{Base: entity.Base{ID: "a"}, Name: "unsaved name", Alpha2Code: "CL", OwnerID: "o"}
		got, err := JoinAs[CountryView](ctx, r, doc)
		require.NoError(t, err)
		require.NotNil(t, got.Owner)
		assert.Equal(t, "Owner", got.Owner.Name)
		assert.Equal(t, "unsaved name", got.Name)

		p := fake.last().Pipeline.(bson.A)
		assert.Equal(t, bson.D{{Key: "$match", Value: bson.M{"_id": "a"}}}, p[0])
		assert.Equal(t, bson.D{{Key: "$set", Value: bson.M{"ownerId": bson.M{"$literal": "o"}}}}, p[2])
	})

	t.Run("zero matches leaves the field unset", func(t *testing.T) {
		fake := newFake()
		fake.docs = []any{bson.M{"_id": "a", "ownerId": "o"}}
		r := newRepo(t, fake)

		got, err := JoinAs[CountryView](ctx, r, Country{Base: entity.Base{ID: "a"}, OwnerID: "o"}, ownerJoin)
		require.NoError(t, err)
		assert.Nil(t, got.Owner)
	})

	t.Run("no descriptors returns the document", func(t *testing.T) {
		fake := newFake()
		r := newRepo(t, fake)

		doc := Country{Base: entity.Base{ID: "a"}, Name: "Chile"}
		got, err := r.Join(ctx, doc)
		require.NoError(t, err)
		assert.Equal(t, "Chile", got.Name)
		assert.Empty(t, fake.ops())
	})
}
