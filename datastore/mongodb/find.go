/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/suparena/docstore/entity"
	"github.com/suparena/docstore/join"
	"github.com/suparena/docstore/storagemodels"
)

// FindAll returns every visible document matching filter.
func (r *Repository[E, D]) FindAll(ctx context.Context, filter bson.M, opts *storagemodels.FindAllOptions) ([]D, error) {
	return findAll[D](ctx, r, filter, opts)
}

func findAll[T any, E any, D entity.Document](ctx context.Context, r *Repository[E, D], filter bson.M, opts *storagemodels.FindAllOptions) ([]T, error) {
	if opts == nil {
		opts = &storagemodels.FindAllOptions{}
	}
	ctx = withSession(ctx, opts.Session)
	match := visible(filter, opts.WithDeleted)

	if descs := opts.Join.Resolve(r.defaultJoin); len(descs) > 0 {
		pipeline, err := r.findPipeline(match, opts.Select, opts.Order, opts.Paging, descs)
		if err != nil {
			return nil, err
		}
		cur, err := r.coll.Aggregate(ctx, pipeline)
		if err != nil {
			return nil, err
		}
		return decodeAll[T](ctx, cur)
	}

	cur, err := r.coll.Find(ctx, match, findOptions(opts))
	if err != nil {
		return nil, err
	}
	return decodeAll[T](ctx, cur)
}

// FindAllDistinct returns the distinct values of field across visible
// matches. Paging, ordering, projection and joins do not apply.
func (r *Repository[E, D]) FindAllDistinct(ctx context.Context, field string, filter bson.M, opts *storagemodels.FindAllOptions) ([]any, error) {
	if opts == nil {
		opts = &storagemodels.FindAllOptions{}
	}
	ctx = withSession(ctx, opts.Session)

	values, err := r.coll.Distinct(ctx, field, visible(filter, opts.WithDeleted))
	if err != nil {
		return nil, err
	}
	if values == nil {
		values = []any{}
	}
	return values, nil
}

// FindOne returns the first visible match or nil.
func (r *Repository[E, D]) FindOne(ctx context.Context, filter bson.M, opts *storagemodels.FindOneOptions) (*D, error) {
	return findOne[D](ctx, r, filter, opts)
}

func findOne[T any, E any, D entity.Document](ctx context.Context, r *Repository[E, D], filter bson.M, opts *storagemodels.FindOneOptions) (*T, error) {
	if opts == nil {
		opts = &storagemodels.FindOneOptions{}
	}
	ctx = withSession(ctx, opts.Session)
	match := visible(filter, opts.WithDeleted)

	if descs := opts.Join.Resolve(r.defaultJoin); len(descs) > 0 {
		pipeline, err := r.findPipeline(match, opts.Select, nil, &storagemodels.Paging{Limit: 1}, descs)
		if err != nil {
			return nil, err
		}
		cur, err := r.coll.Aggregate(ctx, pipeline)
		if err != nil {
			return nil, err
		}
		docs, err := decodeAll[T](ctx, cur)
		if err != nil || len(docs) == 0 {
			return nil, err
		}
		return &docs[0], nil
	}

	fo := options.FindOne()
	if p := opts.Select.Document(); p != nil {
		fo.SetProjection(p)
	}
	return decodeSingle[T](r.coll.FindOne(ctx, match, fo))
}

// FindOneById returns the visible document with the given identity or nil.
func (r *Repository[E, D]) FindOneById(ctx context.Context, id string, opts *storagemodels.FindOneOptions) (*D, error) {
	return r.FindOne(ctx, byID(id), opts)
}

// FindOneAndLock touches updatedAt on the first visible match in a single
// atomic update and returns the touched document. Two concurrent callers
// are serialized by the store: the second one observes the first touch.
func (r *Repository[E, D]) FindOneAndLock(ctx context.Context, filter bson.M, opts *storagemodels.FindOneLockOptions) (*D, error) {
	if opts == nil {
		opts = &storagemodels.FindOneLockOptions{}
	}
	ctx = withSession(ctx, opts.Session)

	fo := options.FindOneAndUpdate().SetReturnDocument(options.After)
	descs := opts.Join.Resolve(r.defaultJoin)
	if p := opts.Select; len(p) > 0 {
		if len(descs) > 0 && p.Inclusive() {
			p = p.With(join.LocalKeys(descs)...)
		}
		fo.SetProjection(p.Document())
	}

	res := r.coll.FindOneAndUpdate(ctx, visible(filter, opts.WithDeleted), touch(), fo)
	if len(descs) == 0 {
		return decodeSingle[D](res)
	}

	doc, err := decodeSingle[bson.M](res)
	if err != nil || doc == nil {
		return nil, err
	}
	joined, err := r.attach(ctx, *doc, descs)
	if err != nil {
		return nil, err
	}
	return decodeInto[D](joined)
}

// FindOneByIdAndLock is FindOneAndLock on a single identity.
func (r *Repository[E, D]) FindOneByIdAndLock(ctx context.Context, id string, opts *storagemodels.FindOneLockOptions) (*D, error) {
	return r.FindOneAndLock(ctx, byID(id), opts)
}

// GetTotal counts visible matches.
func (r *Repository[E, D]) GetTotal(ctx context.Context, filter bson.M, opts *storagemodels.GetTotalOptions) (int64, error) {
	if opts == nil {
		opts = &storagemodels.GetTotalOptions{}
	}
	ctx = withSession(ctx, opts.Session)
	return r.coll.CountDocuments(ctx, visible(filter, opts.WithDeleted))
}

// Exists reports whether any visible document other than ExcludeID matches.
func (r *Repository[E, D]) Exists(ctx context.Context, filter bson.M, opts *storagemodels.ExistsOptions) (bool, error) {
	if opts == nil {
		opts = &storagemodels.ExistsOptions{}
	}
	ctx = withSession(ctx, opts.Session)

	var parts []bson.M
	if len(opts.ExcludeID) > 0 {
		parts = append(parts, bson.M{entity.IDField: bson.M{"$nin": opts.ExcludeID}})
	}

	n, err := r.coll.CountDocuments(ctx, visible(filter, opts.WithDeleted, parts...), options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// findPipeline builds the aggregation used by joined reads:
// $match, $sort, $skip, $limit, $project, then the lookups.
func (r *Repository[E, D]) findPipeline(
	match bson.M,
	sel storagemodels.Projection,
	order storagemodels.Order,
	paging *storagemodels.Paging,
	descs []storagemodels.JoinDescriptor,
) (bson.A, error) {
	lookups, err := r.joins.Stages(descs...)
	if err != nil {
		return nil, err
	}

	pipeline := bson.A{bson.D{{Key: "$match", Value: match}}}
	if s := order.Sort(); s != nil {
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: s}})
	}
	pipeline = appendPaging(pipeline, paging)
	if len(sel) > 0 {
		if sel.Inclusive() {
			sel = sel.With(join.LocalKeys(descs)...)
		}
		pipeline = append(pipeline, bson.D{{Key: "$project", Value: sel.Document()}})
	}
	for _, s := range lookups {
		pipeline = append(pipeline, s)
	}
	return pipeline, nil
}

func appendPaging(pipeline bson.A, paging *storagemodels.Paging) bson.A {
	if paging == nil {
		return pipeline
	}
	if paging.Offset > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: paging.Offset}})
	}
	if paging.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: paging.Limit}})
	}
	return pipeline
}

func findOptions(opts *storagemodels.FindAllOptions) *options.FindOptions {
	fo := options.Find()
	if p := opts.Select.Document(); p != nil {
		fo.SetProjection(p)
	}
	if s := opts.Order.Sort(); s != nil {
		fo.SetSort(s)
	}
	if opts.Paging != nil {
		if opts.Paging.Offset > 0 {
			fo.SetSkip(opts.Paging.Offset)
		}
		if opts.Paging.Limit > 0 {
			fo.SetLimit(opts.Paging.Limit)
		}
	}
	return fo
}

// touch is the update used by FindOneAndLock.
func touch() bson.M {
	return bson.M{"$currentDate": bson.M{entity.UpdatedAtField: true}}
}
