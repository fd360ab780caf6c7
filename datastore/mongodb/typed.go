/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/suparena/docstore/entity"
	"github.com/suparena/docstore/storagemodels"
)

// FindAllAs runs FindAll and decodes the results straight into T, typically
// a struct holding the joined documents that D keeps as references.
func FindAllAs[T any, E any, D entity.Document](ctx context.Context, r *Repository[E, D], filter bson.M, opts *storagemodels.FindAllOptions) ([]T, error) {
	return findAll[T](ctx, r, filter, opts)
}

// FindOneAs runs FindOne and decodes the result into T.
func FindOneAs[T any, E any, D entity.Document](ctx context.Context, r *Repository[E, D], filter bson.M, opts *storagemodels.FindOneOptions) (*T, error) {
	return findOne[T](ctx, r, filter, opts)
}

// JoinAs resolves descriptors on doc and decodes the result into T.
func JoinAs[T any, E any, D entity.Document](ctx context.Context, r *Repository[E, D], doc D, descriptors ...storagemodels.JoinDescriptor) (*T, error) {
	return joinInto[T](ctx, r, doc, descriptors)
}

// RawAs runs Raw and decodes every result into T.
func RawAs[T any, E any, D entity.Document](ctx context.Context, r *Repository[E, D], pipeline any, opts *storagemodels.RawOptions) ([]T, error) {
	res, err := r.Raw(ctx, pipeline, opts)
	if err != nil {
		return nil, err
	}
	return convertAll[T](res)
}

// RawFindAllAs runs RawFindAll and decodes every result into T.
func RawFindAllAs[T any, E any, D entity.Document](ctx context.Context, r *Repository[E, D], pipeline any, opts *storagemodels.RawFindAllOptions) ([]T, error) {
	res, err := r.RawFindAll(ctx, pipeline, opts)
	if err != nil {
		return nil, err
	}
	return convertAll[T](res)
}

func convertAll[T any](in []bson.M) ([]T, error) {
	out := make([]T, 0, len(in))
	for _, m := range in {
		t, err := decodeInto[T](m)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, nil
}
