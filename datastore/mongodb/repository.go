/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mongodb

import (
	"context"
	stderrors "errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/suparena/docstore/datastore"
	"github.com/suparena/docstore/entity"
	"github.com/suparena/docstore/join"
	"github.com/suparena/docstore/registry"
	"github.com/suparena/docstore/storagemodels"
)

// Repository implements datastore.Repository over a MongoDB collection.
type Repository[E any, D entity.Document] struct {
	coll        Collection
	defaultJoin []storagemodels.JoinDescriptor
	joins       *join.Resolver
	ids         IDGenerator
	validator   Validator
}

var _ datastore.Repository[struct{}, entity.Base] = (*Repository[struct{}, entity.Base])(nil)

// Option configures a Repository.
type Option func(*config)

type config struct {
	defaultJoin []storagemodels.JoinDescriptor
	resolver    registry.CollectionResolver
	ids         IDGenerator
	validator   Validator
}

// WithDefaultJoin sets the descriptors used when a read asks for the default join.
func WithDefaultJoin(descriptors ...storagemodels.JoinDescriptor) Option {
	return func(c *config) {
		c.defaultJoin = descriptors
	}
}

// WithCollectionResolver sets how join targets map to collections.
func WithCollectionResolver(r registry.CollectionResolver) Option {
	return func(c *config) {
		c.resolver = r
	}
}

// WithIDGenerator sets the identity generator. Defaults to UUIDGenerator.
func WithIDGenerator(g IDGenerator) Option {
	return func(c *config) {
		c.ids = g
	}
}

// WithValidator sets the payload validator. Defaults to DefaultValidator.
func WithValidator(v Validator) Option {
	return func(c *config) {
		c.validator = v
	}
}

// New creates a Repository over coll.
func New[E any, D entity.Document](coll Collection, opts ...Option) (*Repository[E, D], error) {
	if coll == nil {
		return nil, fmt.Errorf("collection is required")
	}

	cfg := config{ids: UUIDGenerator{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.validator == nil {
		cfg.validator = DefaultValidator()
	}
	for _, d := range cfg.defaultJoin {
		if err := join.Validate(d); err != nil {
			return nil, fmt.Errorf("invalid default join: %w", err)
		}
	}

	return &Repository[E, D]{
		coll:        coll,
		defaultJoin: cfg.defaultJoin,
		joins:       join.NewResolver(cfg.resolver),
		ids:         cfg.ids,
		validator:   cfg.validator,
	}, nil
}

// Collection returns the underlying collection handle.
func (r *Repository[E, D]) Collection() Collection {
	return r.coll
}

// DefaultJoin returns the repository's default descriptors.
func (r *Repository[E, D]) DefaultJoin() []storagemodels.JoinDescriptor {
	return r.defaultJoin
}

// withSession binds sess to ctx for the driver.
func withSession(ctx context.Context, sess mongo.Session) context.Context {
	if sess == nil {
		return ctx
	}
	return mongo.NewSessionContext(ctx, sess)
}

// compose merges parts into filter. Parts whose keys collide with terms
// already present are combined with $and so no caller term is replaced.
func compose(filter bson.M, parts ...bson.M) bson.M {
	out := make(bson.M, len(filter)+len(parts))
	for k, v := range filter {
		out[k] = v
	}

	var rest bson.A
	for _, p := range parts {
		if collides(out, p) {
			rest = append(rest, p)
			continue
		}
		for k, v := range p {
			out[k] = v
		}
	}
	if len(rest) == 0 {
		return out
	}
	return bson.M{"$and": append(bson.A{out}, rest...)}
}

func collides(a, b bson.M) bool {
	for k := range b {
		if _, ok := a[k]; ok {
			return true
		}
	}
	return false
}

// visible adds the soft-delete predicate unless withDeleted is set.
func visible(filter bson.M, withDeleted bool, parts ...bson.M) bson.M {
	if !withDeleted {
		parts = append([]bson.M{entity.NotDeleted()}, parts...)
	}
	return compose(filter, parts...)
}

func byID(id string) bson.M {
	return bson.M{entity.IDField: id}
}

func byIDs(ids []string) bson.M {
	return bson.M{entity.IDField: bson.M{"$in": ids}}
}

// toDocument converts v into a bson.M through its bson encoding.
func toDocument(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return m, nil
}

// decodeInto converts a bson.M into T through its bson encoding.
func decodeInto[T any](m bson.M) (*T, error) {
	raw, err := bson.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	var out T
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return &out, nil
}

// decodeSingle decodes res, mapping no documents to nil.
func decodeSingle[T any](res *mongo.SingleResult) (*T, error) {
	var out T
	if err := res.Decode(&out); err != nil {
		if stderrors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

// decodeAll drains cur into a non-nil slice.
func decodeAll[T any](ctx context.Context, cur *mongo.Cursor) ([]T, error) {
	out := make([]T, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}
