/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package database

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/suparena/docstore/registry"
)

type fakeIndexView struct {
	collection string
	calls      *[]string
	models     map[string][]mongo.IndexModel
	err        error
}

func (f fakeIndexView) CreateMany(_ context.Context, models []mongo.IndexModel, _ ...*options.CreateIndexesOptions) ([]string, error) {
	*f.calls = append(*f.calls, f.collection)
	if f.err != nil {
		return nil, f.err
	}
	f.models[f.collection] = models
	names := make([]string, 0, len(models))
	for _, m := range models {
		names = append(names, *m.Options.Name)
	}
	return names, nil
}

func TestEnsureIndexes(t *testing.T) {
	ctx := context.Background()
	idx := map[string][]registry.IndexSpec{
		"users":     {{Name: "email_unique", Keys: []registry.IndexKey{{Field: "email", Order: 1}}, Unique: true}},
		"countries": {{Name: "alpha2Code_unique", Keys: []registry.IndexKey{{Field: "alpha2Code"}}, Unique: true}},
		"empty":     nil,
	}

	t.Run("creates in collection order", func(t *testing.T) {
		var calls []string
		models := map[string][]mongo.IndexModel{}
		created, err := EnsureIndexes(ctx, func(c string) IndexView {
			return fakeIndexView{collection: c, calls: &calls, models: models}
		}, idx)
		require.NoError(t, err)
		assert.Equal(t, []string{"countries", "users"}, calls)
		assert.Equal(t, []string{"email_unique"}, created["users"])
		require.Len(t, models["users"], 1)
		assert.True(t, *models["users"][0].Options.Unique)
	})

	t.Run("invalid specs stop before any call", func(t *testing.T) {
		var calls []string
		bad := map[string][]registry.IndexSpec{"users": {{Name: "nokeys"}}}
		_, err := EnsureIndexes(ctx, func(c string) IndexView {
			return fakeIndexView{collection: c, calls: &calls, models: map[string][]mongo.IndexModel{}}
		}, bad)
		assert.Error(t, err)
		assert.Empty(t, calls)
	})

	t.Run("driver error", func(t *testing.T) {
		var calls []string
		boom := stderrors.New("boom")
		created, err := EnsureIndexes(ctx, func(c string) IndexView {
			return fakeIndexView{collection: c, calls: &calls, models: map[string][]mongo.IndexModel{}, err: boom}
		}, idx)
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, created)
		assert.Equal(t, []string{"countries"}, calls)
	})
}
