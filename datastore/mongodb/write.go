/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mongodb

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/suparena/docstore/entity"
	"github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/join"
	"github.com/suparena/docstore/storagemodels"
)

// Create validates payload, assigns its identity and timestamps, inserts it
// and returns the stored document.
//
// The identity is taken from opts.ID, then from the payload, and is
// generated when both are empty. Caller supplied identities must be valid
// for the repository's IDGenerator.
func (r *Repository[E, D]) Create(ctx context.Context, payload E, opts *storagemodels.CreateOptions) (*D, error) {
	if opts == nil {
		opts = &storagemodels.CreateOptions{}
	}

	doc, err := r.prepare(payload, opts.ID, entity.Now())
	if err != nil {
		return nil, err
	}

	if _, err := r.coll.InsertOne(withSession(ctx, opts.Session), doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, errors.NewDuplicateKeyError(r.coll.Name(), doc[entity.IDField].(string), err)
		}
		return nil, err
	}
	return decodeInto[D](doc)
}

// prepare turns a payload into the document to insert.
func (r *Repository[E, D]) prepare(payload E, id string, now time.Time) (bson.M, error) {
	if err := r.validator.Validate(payload); err != nil {
		return nil, err
	}

	doc, err := toDocument(payload)
	if err != nil {
		return nil, err
	}

	if id == "" {
		id, _ = doc[entity.IDField].(string)
	}
	if id == "" {
		id = r.ids.NewID()
	} else if !r.ids.Valid(id) {
		return nil, errors.NewValidationError(entity.IDField, fmt.Sprintf("%q is not a valid identity", id))
	}

	doc[entity.IDField] = id
	doc[entity.CreatedAtField] = now
	doc[entity.UpdatedAtField] = now
	delete(doc, entity.DeletedAtField)
	return doc, nil
}

// Save replaces the stored document with doc and returns the new value.
// The write only applies while the stored updatedAt equals doc's, otherwise
// a ConcurrencyError is returned. The identity and createdAt are kept.
func (r *Repository[E, D]) Save(ctx context.Context, doc D, opts *storagemodels.SaveOptions) (*D, error) {
	if opts == nil {
		opts = &storagemodels.SaveOptions{}
	}
	if err := r.validator.Validate(doc); err != nil {
		return nil, err
	}

	replacement, err := toDocument(doc)
	if err != nil {
		return nil, err
	}
	join.Strip(replacement, r.defaultJoin)
	replacement[entity.UpdatedAtField] = entity.Now()

	guard := bson.M{
		entity.IDField:        doc.GetID(),
		entity.UpdatedAtField: doc.GetUpdatedAt(),
	}
	res := r.coll.FindOneAndReplace(withSession(ctx, opts.Session), guard, replacement,
		options.FindOneAndReplace().SetReturnDocument(options.After))

	saved, err := decodeSingle[D](res)
	switch {
	case err != nil && mongo.IsDuplicateKeyError(err):
		return nil, errors.NewDuplicateKeyError(r.coll.Name(), "", err)
	case err != nil:
		return nil, err
	case saved == nil:
		return nil, errors.NewConcurrencyError("save", doc.GetID())
	}
	return saved, nil
}

// UpdateOneById sets patch on the visible document with the given identity
// and returns its new state, or nil when there is none.
func (r *Repository[E, D]) UpdateOneById(ctx context.Context, id string, patch bson.M, opts *storagemodels.SaveOptions) (*D, error) {
	if opts == nil {
		opts = &storagemodels.SaveOptions{}
	}
	if _, ok := patch[entity.IDField]; ok {
		return nil, errors.NewValidationError(entity.IDField, "identity cannot be changed")
	}

	res := r.coll.FindOneAndUpdate(withSession(ctx, opts.Session), visible(byID(id), false), setPatch(patch),
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	return decodeSingle[D](res)
}

// Delete removes doc and returns the removed document, or nil when it was
// already gone.
func (r *Repository[E, D]) Delete(ctx context.Context, doc D, opts *storagemodels.SaveOptions) (*D, error) {
	if opts == nil {
		opts = &storagemodels.SaveOptions{}
	}
	return decodeSingle[D](r.coll.FindOneAndDelete(withSession(ctx, opts.Session), byID(doc.GetID())))
}

// SoftDelete sets deletedAt on doc. Soft deleting a deleted document returns
// it unchanged.
func (r *Repository[E, D]) SoftDelete(ctx context.Context, doc D, opts *storagemodels.SaveOptions) (*D, error) {
	if opts == nil {
		opts = &storagemodels.SaveOptions{}
	}
	now := entity.Now()
	update := bson.M{"$set": bson.M{entity.DeletedAtField: now, entity.UpdatedAtField: now}}
	return r.transition(withSession(ctx, opts.Session), doc.GetID(), entity.NotDeleted(), update)
}

// Restore clears deletedAt on doc. Restoring an active document returns it
// unchanged.
func (r *Repository[E, D]) Restore(ctx context.Context, doc D, opts *storagemodels.SaveOptions) (*D, error) {
	if opts == nil {
		opts = &storagemodels.SaveOptions{}
	}
	return r.transition(withSession(ctx, opts.Session), doc.GetID(), entity.Deleted(), restoreUpdate())
}

// transition applies update when the document is in the from state and
// otherwise returns the stored document as is.
func (r *Repository[E, D]) transition(ctx context.Context, id string, from, update bson.M) (*D, error) {
	res := r.coll.FindOneAndUpdate(ctx, compose(byID(id), from), update,
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	out, err := decodeSingle[D](res)
	if err != nil || out != nil {
		return out, err
	}

	var current D
	if err := r.coll.FindOne(ctx, byID(id)).Decode(&current); err != nil {
		if stderrors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &current, nil
}

// setPatch wraps patch in $set and stamps updatedAt.
func setPatch(patch bson.M) bson.M {
	set := make(bson.M, len(patch)+1)
	for k, v := range patch {
		set[k] = v
	}
	set[entity.UpdatedAtField] = entity.Now()
	return bson.M{"$set": set}
}

func restoreUpdate() bson.M {
	return bson.M{
		"$unset": bson.M{entity.DeletedAtField: ""},
		"$set":   bson.M{entity.UpdatedAtField: entity.Now()},
	}
}
