/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/suparena/docstore/entity"
	"github.com/suparena/docstore/internal/bsonpath"
	"github.com/suparena/docstore/storagemodels"
)

// CreateMany validates every payload before inserting any. Inserts are not
// atomic: an ordered batch stops at the first duplicate and keeps what was
// inserted before it, an unordered batch inserts everything it can. Failures
// are reported as a mongo.BulkWriteException.
func (m *Repository[E, D]) CreateMany(ctx context.Context, payloads []E, opts *storagemodels.CreateManyOptions) error {
	if len(payloads) == 0 {
		return nil
	}
	if opts == nil {
		opts = &storagemodels.CreateManyOptions{}
	}
	if m.createError != nil {
		return m.createError
	}

	docs := make([]bson.M, 0, len(payloads))
	for _, p := range payloads {
		doc, err := m.prepare(p, "")
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}
	ordered := opts.Ordered == nil || *opts.Ordered

	m.mu.Lock()
	defer m.mu.Unlock()

	var failed []mongo.BulkWriteError
	for i, doc := range docs {
		if err := m.checkUnique(doc, false); err != nil {
			failed = append(failed, mongo.BulkWriteError{WriteError: mongo.WriteError{
				Index:   i,
				Code:    11000,
				Message: err.Error(),
			}})
			if ordered {
				break
			}
			continue
		}
		m.put(doc[entity.IDField].(string), doc)
	}
	if len(failed) > 0 {
		return mongo.BulkWriteException{WriteErrors: failed}
	}
	return nil
}

// DeleteManyByIds removes the documents with ids, soft-deleted included.
func (m *Repository[E, D]) DeleteManyByIds(ctx context.Context, ids []string, opts *storagemodels.ManyOptions) error {
	if len(ids) == 0 {
		return nil
	}
	return m.DeleteMany(ctx, byIDs(ids), opts)
}

// DeleteMany removes every match, soft-deleted included.
func (m *Repository[E, D]) DeleteMany(ctx context.Context, filter bson.M, opts *storagemodels.ManyOptions) error {
	if m.deleteError != nil {
		return m.deleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, doc := range m.matching(filter, true) {
		m.remove(doc[entity.IDField].(string))
	}
	return nil
}

func (m *Repository[E, D]) SoftDeleteManyByIds(ctx context.Context, ids []string, opts *storagemodels.SoftDeleteManyOptions) error {
	if len(ids) == 0 {
		return nil
	}
	return m.SoftDeleteMany(ctx, byIDs(ids), opts)
}

func (m *Repository[E, D]) SoftDeleteMany(ctx context.Context, filter bson.M, opts *storagemodels.SoftDeleteManyOptions) error {
	if m.deleteError != nil {
		return m.deleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for _, doc := range m.matching(filter, false) {
		doc[entity.DeletedAtField] = now
		m.stamp(doc)
	}
	return nil
}

func (m *Repository[E, D]) RestoreManyByIds(ctx context.Context, ids []string, opts *storagemodels.RestoreManyOptions) error {
	if len(ids) == 0 {
		return nil
	}
	return m.RestoreMany(ctx, byIDs(ids), opts)
}

func (m *Repository[E, D]) RestoreMany(ctx context.Context, filter bson.M, opts *storagemodels.RestoreManyOptions) error {
	if m.updateError != nil {
		return m.updateError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, doc := range m.matching(filter, true) {
		if deleted(doc) {
			delete(doc, entity.DeletedAtField)
			m.stamp(doc)
		}
	}
	return nil
}

// UpdateMany sets patch on every visible match and moves updatedAt.
func (m *Repository[E, D]) UpdateMany(ctx context.Context, filter bson.M, patch bson.M, opts *storagemodels.ManyOptions) error {
	return m.updateMany(filter, bson.M{"$set": patch}, true)
}

// UpdateManyRaw applies update to every visible match. Supported operators
// are $set, $unset, $inc and $currentDate.
func (m *Repository[E, D]) UpdateManyRaw(ctx context.Context, filter bson.M, update any, opts *storagemodels.ManyOptions) error {
	ops, ok := asDoc(update)
	if !ok {
		return fmt.Errorf("mock: unsupported update %T", update)
	}
	return m.updateMany(filter, ops, false)
}

func (m *Repository[E, D]) updateMany(filter bson.M, ops bson.M, touch bool) error {
	if m.updateError != nil {
		return m.updateError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	targets := m.matching(filter, false)
	next := make([]bson.M, len(targets))
	for i, doc := range targets {
		n := clone(doc)
		if err := applyUpdate(n, ops, m.now()); err != nil {
			return err
		}
		if touch {
			n[entity.UpdatedAtField] = doc[entity.UpdatedAtField]
			m.stamp(n)
		}
		next[i] = n
	}
	for _, n := range next {
		m.put(n[entity.IDField].(string), n)
	}
	return nil
}

func applyUpdate(doc bson.M, ops bson.M, now any) error {
	for op, arg := range ops {
		fields, ok := asDoc(arg)
		if !ok {
			return fmt.Errorf("mock: %s expects a document", op)
		}
		for f, v := range fields {
			switch op {
			case "$set":
				bsonpath.Set(doc, f, copyValue(v))
			case "$unset":
				bsonpath.Unset(doc, f)
			case "$inc":
				cur, _ := bsonpath.Get(doc, f)
				sum, ok := add(cur, v)
				if !ok {
					return fmt.Errorf("mock: $inc on %q expects numbers", f)
				}
				bsonpath.Set(doc, f, sum)
			case "$currentDate":
				bsonpath.Set(doc, f, now)
			default:
				return fmt.Errorf("mock: unsupported update operator %s", op)
			}
		}
	}
	return nil
}

// add keeps integer sums integral.
func add(cur, delta any) (any, bool) {
	if cur == nil {
		cur = int64(0)
	}
	a, aok := asInt(cur)
	b, bok := asInt(delta)
	if aok && bok {
		return a + b, true
	}
	x, xok := normalize(cur).(float64)
	y, yok := normalize(delta).(float64)
	return x + y, xok && yok
}

func asInt(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	}
	return 0, false
}

func byIDs(ids []string) bson.M {
	return bson.M{entity.IDField: bson.M{"$in": ids}}
}
