/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/suparena/docstore/registry"
)

// IndexView is the part of mongo.IndexView used to create indexes.
type IndexView interface {
	CreateMany(ctx context.Context, models []mongo.IndexModel, opts ...*options.CreateIndexesOptions) ([]string, error)
}

var _ IndexView = mongo.IndexView{}

// EnsureIndexes validates every spec, then creates the indexes collection by
// collection in name order. Creating an index that already exists with the
// same definition is a no-op on the server. It returns the index names per
// collection created before any failure.
func EnsureIndexes(ctx context.Context, view func(collection string) IndexView, idx map[string][]registry.IndexSpec) (map[string][]string, error) {
	for coll, specs := range idx {
		for _, s := range specs {
			if err := s.Validate(); err != nil {
				return nil, fmt.Errorf("collection %s: %w", coll, err)
			}
		}
	}

	created := make(map[string][]string)
	for _, coll := range registry.Collections(idx) {
		specs := idx[coll]
		if len(specs) == 0 {
			continue
		}
		models := make([]mongo.IndexModel, 0, len(specs))
		for _, s := range specs {
			models = append(models, s.Model())
		}
		names, err := view(coll).CreateMany(ctx, models)
		if err != nil {
			return created, fmt.Errorf("failed to create indexes on %s: %w", coll, err)
		}
		created[coll] = names
	}
	return created, nil
}
