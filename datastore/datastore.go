/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/suparena/docstore/entity"
	"github.com/suparena/docstore/storagemodels"
)

// Repository is the data access contract shared by every collection.
//
// E is the payload accepted by Create, D the document read back. Absence is
// reported as a nil document with a nil error. List reads return a non-nil,
// possibly empty, slice. Soft-deleted documents are invisible to every read,
// count and bulk operation unless WithDeleted is set.
type Repository[E any, D entity.Document] interface {
	FindAll(ctx context.Context, filter bson.M, opts *storagemodels.FindAllOptions) ([]D, error)
	FindAllDistinct(ctx context.Context, field string, filter bson.M, opts *storagemodels.FindAllOptions) ([]any, error)
	FindOne(ctx context.Context, filter bson.M, opts *storagemodels.FindOneOptions) (*D, error)
	FindOneById(ctx context.Context, id string, opts *storagemodels.FindOneOptions) (*D, error)

	// FindOneAndLock atomically touches updatedAt on the first match and
	// returns the document after the touch. It does not hold a lock.
	FindOneAndLock(ctx context.Context, filter bson.M, opts *storagemodels.FindOneLockOptions) (*D, error)
	FindOneByIdAndLock(ctx context.Context, id string, opts *storagemodels.FindOneLockOptions) (*D, error)

	GetTotal(ctx context.Context, filter bson.M, opts *storagemodels.GetTotalOptions) (int64, error)
	Exists(ctx context.Context, filter bson.M, opts *storagemodels.ExistsOptions) (bool, error)

	Create(ctx context.Context, payload E, opts *storagemodels.CreateOptions) (*D, error)
	// Save replaces the stored document with doc as long as the stored
	// updatedAt still equals doc's.
	Save(ctx context.Context, doc D, opts *storagemodels.SaveOptions) (*D, error)
	UpdateOneById(ctx context.Context, id string, patch bson.M, opts *storagemodels.SaveOptions) (*D, error)
	Delete(ctx context.Context, doc D, opts *storagemodels.SaveOptions) (*D, error)
	SoftDelete(ctx context.Context, doc D, opts *storagemodels.SaveOptions) (*D, error)
	Restore(ctx context.Context, doc D, opts *storagemodels.SaveOptions) (*D, error)

	// CreateMany is not atomic: inserts that succeeded before a failure stay.
	CreateMany(ctx context.Context, payloads []E, opts *storagemodels.CreateManyOptions) error
	DeleteManyByIds(ctx context.Context, ids []string, opts *storagemodels.ManyOptions) error
	DeleteMany(ctx context.Context, filter bson.M, opts *storagemodels.ManyOptions) error
	SoftDeleteManyByIds(ctx context.Context, ids []string, opts *storagemodels.SoftDeleteManyOptions) error
	SoftDeleteMany(ctx context.Context, filter bson.M, opts *storagemodels.SoftDeleteManyOptions) error
	RestoreManyByIds(ctx context.Context, ids []string, opts *storagemodels.RestoreManyOptions) error
	RestoreMany(ctx context.Context, filter bson.M, opts *storagemodels.RestoreManyOptions) error
	UpdateMany(ctx context.Context, filter bson.M, patch bson.M, opts *storagemodels.ManyOptions) error
	UpdateManyRaw(ctx context.Context, filter bson.M, update any, opts *storagemodels.ManyOptions) error

	// Join resolves relations onto doc and returns the result. With no
	// descriptors the repository defaults are used.
	Join(ctx context.Context, doc D, descriptors ...storagemodels.JoinDescriptor) (*D, error)

	Raw(ctx context.Context, pipeline any, opts *storagemodels.RawOptions) ([]bson.M, error)
	RawFindAll(ctx context.Context, pipeline any, opts *storagemodels.RawFindAllOptions) ([]bson.M, error)
	RawGetTotal(ctx context.Context, pipeline any, opts *storagemodels.RawGetTotalOptions) (int64, error)

	Stream(ctx context.Context, filter bson.M, opts *storagemodels.FindAllOptions, streamOpts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[D]
}
