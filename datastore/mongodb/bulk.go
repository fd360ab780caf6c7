/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/suparena/docstore/entity"
	"github.com/suparena/docstore/storagemodels"
)

// CreateMany inserts payloads in one bulk write. The batch is not atomic:
// documents inserted before a failure stay in place and the driver error is
// returned as is.
func (r *Repository[E, D]) CreateMany(ctx context.Context, payloads []E, opts *storagemodels.CreateManyOptions) error {
	if opts == nil {
		opts = &storagemodels.CreateManyOptions{}
	}
	if len(payloads) == 0 {
		return nil
	}

	now := entity.Now()
	docs := make([]interface{}, 0, len(payloads))
	for _, p := range payloads {
		doc, err := r.prepare(p, "", now)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}

	io := options.InsertMany()
	if opts.Ordered != nil {
		io.SetOrdered(*opts.Ordered)
	}
	_, err := r.coll.InsertMany(withSession(ctx, opts.Session), docs, io)
	return err
}

// DeleteManyByIds hard deletes the documents with the given identities,
// deleted or not.
func (r *Repository[E, D]) DeleteManyByIds(ctx context.Context, ids []string, opts *storagemodels.ManyOptions) error {
	if len(ids) == 0 {
		return nil
	}
	return r.DeleteMany(ctx, byIDs(ids), opts)
}

// DeleteMany hard deletes every document matching filter, deleted or not.
func (r *Repository[E, D]) DeleteMany(ctx context.Context, filter bson.M, opts *storagemodels.ManyOptions) error {
	if opts == nil {
		opts = &storagemodels.ManyOptions{}
	}
	_, err := r.coll.DeleteMany(withSession(ctx, opts.Session), compose(filter))
	return err
}

// SoftDeleteManyByIds soft deletes the active documents with the given identities.
func (r *Repository[E, D]) SoftDeleteManyByIds(ctx context.Context, ids []string, opts *storagemodels.SoftDeleteManyOptions) error {
	if len(ids) == 0 {
		return nil
	}
	return r.SoftDeleteMany(ctx, byIDs(ids), opts)
}

// SoftDeleteMany soft deletes every active document matching filter.
func (r *Repository[E, D]) SoftDeleteMany(ctx context.Context, filter bson.M, opts *storagemodels.SoftDeleteManyOptions) error {
	if opts == nil {
		opts = &storagemodels.SoftDeleteManyOptions{}
	}
	now := entity.Now()
	update := bson.M{"$set": bson.M{entity.DeletedAtField: now, entity.UpdatedAtField: now}}
	_, err := r.coll.UpdateMany(withSession(ctx, opts.Session), visible(filter, false), update)
	return err
}

// RestoreManyByIds restores the soft-deleted documents with the given identities.
func (r *Repository[E, D]) RestoreManyByIds(ctx context.Context, ids []string, opts *storagemodels.RestoreManyOptions) error {
	if len(ids) == 0 {
		return nil
	}
	return r.RestoreMany(ctx, byIDs(ids), opts)
}

// RestoreMany restores every soft-deleted document matching filter.
func (r *Repository[E, D]) RestoreMany(ctx context.Context, filter bson.M, opts *storagemodels.RestoreManyOptions) error {
	if opts == nil {
		opts = &storagemodels.RestoreManyOptions{}
	}
	_, err := r.coll.UpdateMany(withSession(ctx, opts.Session), compose(filter, entity.Deleted()), restoreUpdate())
	return err
}

// UpdateMany sets patch on every active document matching filter.
func (r *Repository[E, D]) UpdateMany(ctx context.Context, filter bson.M, patch bson.M, opts *storagemodels.ManyOptions) error {
	if opts == nil {
		opts = &storagemodels.ManyOptions{}
	}
	_, err := r.coll.UpdateMany(withSession(ctx, opts.Session), visible(filter, false), setPatch(patch))
	return err
}

// UpdateManyRaw applies a store native update document or update pipeline
// to every active document matching filter.
func (r *Repository[E, D]) UpdateManyRaw(ctx context.Context, filter bson.M, update any, opts *storagemodels.ManyOptions) error {
	if opts == nil {
		opts = &storagemodels.ManyOptions{}
	}
	_, err := r.coll.UpdateMany(withSession(ctx, opts.Session), visible(filter, false), update)
	return err
}
