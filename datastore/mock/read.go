/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/suparena/docstore/entity"
	"github.com/suparena/docstore/internal/bsonpath"
	"github.com/suparena/docstore/join"
	"github.com/suparena/docstore/storagemodels"
)

func (m *Repository[E, D]) FindAll(ctx context.Context, filter bson.M, opts *storagemodels.FindAllOptions) ([]D, error) {
	if opts == nil {
		opts = &storagemodels.FindAllOptions{}
	}
	if err := m.readable(ctx); err != nil {
		return nil, err
	}

	m.mu.RLock()
	docs := cloneAll(m.matching(filter, opts.WithDeleted))
	m.mu.RUnlock()

	sortDocs(docs, opts.Order)
	docs = window(docs, opts.Paging)
	return m.finish(ctx, docs, opts.FindOneOptions)
}

func (m *Repository[E, D]) FindAllDistinct(ctx context.Context, field string, filter bson.M, opts *storagemodels.FindAllOptions) ([]any, error) {
	if opts == nil {
		opts = &storagemodels.FindAllOptions{}
	}
	if err := m.readable(ctx); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]any, 0)
	add := func(v any) {
		for _, seen := range out {
			if equal(seen, v) {
				return
			}
		}
		out = append(out, v)
	}
	for _, doc := range m.matching(filter, opts.WithDeleted) {
		v, ok := bsonpath.Get(doc, field)
		if !ok {
			continue
		}
		if isList(v) {
			for _, e := range list(v) {
				add(copyValue(e))
			}
			continue
		}
		add(copyValue(v))
	}
	return out, nil
}

func (m *Repository[E, D]) FindOne(ctx context.Context, filter bson.M, opts *storagemodels.FindOneOptions) (*D, error) {
	if opts == nil {
		opts = &storagemodels.FindOneOptions{}
	}
	all, err := m.FindAll(ctx, filter, &storagemodels.FindAllOptions{
		FindOneOptions:    *opts,
		PaginationOptions: storagemodels.PaginationOptions{Paging: &storagemodels.Paging{Limit: 1}},
	})
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return &all[0], nil
}

func (m *Repository[E, D]) FindOneById(ctx context.Context, id string, opts *storagemodels.FindOneOptions) (*D, error) {
	return m.FindOne(ctx, bson.M{entity.IDField: id}, opts)
}

// FindOneAndLock touches the first match under the write lock, so two
// callers racing on one filter observe each other's updatedAt.
func (m *Repository[E, D]) FindOneAndLock(ctx context.Context, filter bson.M, opts *storagemodels.FindOneLockOptions) (*D, error) {
	if opts == nil {
		opts = &storagemodels.FindOneLockOptions{}
	}
	if err := m.readable(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	var hit bson.M
	if docs := m.matching(filter, opts.WithDeleted); len(docs) > 0 {
		m.stamp(docs[0])
		hit = clone(docs[0])
	}
	m.mu.Unlock()

	if hit == nil {
		return nil, nil
	}
	out, err := m.finish(ctx, []bson.M{hit}, *opts)
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (m *Repository[E, D]) FindOneByIdAndLock(ctx context.Context, id string, opts *storagemodels.FindOneLockOptions) (*D, error) {
	return m.FindOneAndLock(ctx, bson.M{entity.IDField: id}, opts)
}

func (m *Repository[E, D]) GetTotal(ctx context.Context, filter bson.M, opts *storagemodels.GetTotalOptions) (int64, error) {
	if opts == nil {
		opts = &storagemodels.GetTotalOptions{}
	}
	if err := m.readable(ctx); err != nil {
		return 0, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.matching(filter, opts.WithDeleted))), nil
}

func (m *Repository[E, D]) Exists(ctx context.Context, filter bson.M, opts *storagemodels.ExistsOptions) (bool, error) {
	if opts == nil {
		opts = &storagemodels.ExistsOptions{}
	}
	if err := m.readable(ctx); err != nil {
		return false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, doc := range m.matching(filter, opts.WithDeleted) {
		excluded := false
		for _, id := range opts.ExcludeID {
			if doc[entity.IDField] == id {
				excluded = true
				break
			}
		}
		if !excluded {
			return true, nil
		}
	}
	return false, nil
}

func (m *Repository[E, D]) readable(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.findError
}

// finish projects, joins and decodes docs.
func (m *Repository[E, D]) finish(ctx context.Context, docs []bson.M, opts storagemodels.FindOneOptions) ([]D, error) {
	descriptors := opts.Join.Resolve(m.defaultJoin)
	out := make([]D, 0, len(docs))
	for _, doc := range docs {
		doc = project(doc, opts.Select, join.LocalKeys(descriptors))
		if len(descriptors) > 0 {
			var err error
			if doc, err = m.resolve(ctx, doc, descriptors); err != nil {
				return nil, err
			}
		}
		d, err := decode[D](doc)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, nil
}

// project applies sel. Inclusive projections always keep _id, unless
// excluded, and the join local keys.
func project(doc bson.M, sel storagemodels.Projection, keep []string) bson.M {
	if len(sel) == 0 {
		return doc
	}
	if !sel.Inclusive() {
		for f, include := range sel {
			if !include {
				bsonpath.Unset(doc, f)
			}
		}
		return doc
	}

	out := bson.M{}
	if include, ok := sel[entity.IDField]; !ok || include {
		out[entity.IDField] = doc[entity.IDField]
	}
	for f, include := range sel {
		if include {
			if v, ok := bsonpath.Get(doc, f); ok {
				bsonpath.Set(out, f, v)
			}
		}
	}
	for _, f := range keep {
		if v, ok := bsonpath.Get(doc, f); ok {
			bsonpath.Set(out, f, v)
		}
	}
	return out
}

// sortDocs orders docs by order, missing values first as the store does.
func sortDocs(docs []bson.M, order storagemodels.Order) {
	keys := order.Sort()
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, k := range keys {
			c := sortCompare(docs[i], docs[j], k.Key)
			if k.Value == -1 {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		return false
	})
}

func sortCompare(a, b bson.M, field string) int {
	av, aok := bsonpath.Get(a, field)
	bv, bok := bsonpath.Get(b, field)
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return -1
	case !bok:
		return 1
	}
	c, _ := compare(av, bv)
	return c
}

func window(docs []bson.M, p *storagemodels.Paging) []bson.M {
	if p == nil {
		return docs
	}
	if p.Offset > 0 {
		if p.Offset >= int64(len(docs)) {
			return []bson.M{}
		}
		docs = docs[p.Offset:]
	}
	if p.Limit > 0 && p.Limit < int64(len(docs)) {
		docs = docs[:p.Limit]
	}
	return docs
}

func cloneAll(docs []bson.M) []bson.M {
	out := make([]bson.M, len(docs))
	for i, doc := range docs {
		out[i] = clone(doc)
	}
	return out
}
