/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/suparena/docstore/entity"
	"github.com/suparena/docstore/internal/bsonpath"
	"github.com/suparena/docstore/join"
	"github.com/suparena/docstore/storagemodels"
)

// Join resolves descriptors, or the repository defaults when none are given,
// against doc and returns a copy with the related documents attached. Fields
// of doc other than the join destinations are kept as given.
func (r *Repository[E, D]) Join(ctx context.Context, doc D, descriptors ...storagemodels.JoinDescriptor) (*D, error) {
	return joinInto[D](ctx, r, doc, descriptors)
}

func joinInto[T any, E any, D entity.Document](ctx context.Context, r *Repository[E, D], doc D, descriptors []storagemodels.JoinDescriptor) (*T, error) {
	if len(descriptors) == 0 {
		descriptors = r.defaultJoin
	}

	m, err := toDocument(doc)
	if err != nil {
		return nil, err
	}
	if len(descriptors) == 0 {
		return decodeInto[T](m)
	}
	joined, err := r.attach(ctx, m, descriptors)
	if err != nil {
		return nil, err
	}
	return decodeInto[T](joined)
}

// attach runs the lookups for doc in a single aggregation anchored on its
// stored record, using doc's own local key values, and copies the
// destination fields onto doc. A destination left unset by the lookup is
// removed from doc.
func (r *Repository[E, D]) attach(ctx context.Context, doc bson.M, descs []storagemodels.JoinDescriptor) (bson.M, error) {
	lookups, err := r.joins.Stages(descs...)
	if err != nil {
		return nil, err
	}

	pipeline := bson.A{
		bson.D{{Key: "$match", Value: bson.M{entity.IDField: doc[entity.IDField]}}},
		bson.D{{Key: "$project", Value: bson.M{entity.IDField: 1}}},
	}
	if keys := localValues(doc, descs); len(keys) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$set", Value: keys}})
	}
	for _, s := range lookups {
		pipeline = append(pipeline, s)
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	found, err := decodeAll[bson.M](ctx, cur)
	if err != nil {
		return nil, err
	}

	out := make(bson.M, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	var src bson.M
	if len(found) > 0 {
		src = found[0]
	}
	for _, field := range join.Fields(descs) {
		if v, ok := bsonpath.Get(src, field); ok {
			bsonpath.Set(out, field, v)
		} else {
			bsonpath.Unset(out, field)
		}
	}
	return out, nil
}

// localValues returns doc's local key values as literals.
func localValues(doc bson.M, descs []storagemodels.JoinDescriptor) bson.M {
	keys := bson.M{}
	for _, k := range join.LocalKeys(descs) {
		if v, ok := bsonpath.Get(doc, k); ok {
			keys[k] = bson.M{"$literal": v}
		}
	}
	return keys
}
