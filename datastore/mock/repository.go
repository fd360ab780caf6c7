/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/suparena/docstore/datastore"
	"github.com/suparena/docstore/datastore/mongodb"
	"github.com/suparena/docstore/entity"
	"github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/internal/bsonpath"
	"github.com/suparena/docstore/storagemodels"
)

// Source provides the documents a join reads from.
type Source interface {
	Documents() []bson.M
}

// Repository is an in-memory datastore.Repository for tests. Documents are
// kept as bson.M in insertion order and every call observes a consistent
// snapshot.
type Repository[E any, D entity.Document] struct {
	mu    sync.RWMutex
	name  string
	data  map[string]bson.M
	order []string

	defaultJoin []storagemodels.JoinDescriptor
	sources     map[string]Source
	unique      [][]string
	ids         mongodb.IDGenerator
	validator   mongodb.Validator
	now         func() time.Time

	// Custom behaviors
	rawFunc  func(ctx context.Context, pipeline []bson.D) ([]bson.M, error)
	joinFunc func(ctx context.Context, doc bson.M, descriptors []storagemodels.JoinDescriptor) (bson.M, error)

	// Simulated errors
	findError   error
	createError error
	saveError   error
	updateError error
	deleteError error
}

var _ datastore.Repository[struct{}, entity.Base] = (*Repository[struct{}, entity.Base])(nil)

// New creates an empty repository. name is reported as the collection in
// duplicate key errors.
func New[E any, D entity.Document](name string) *Repository[E, D] {
	return &Repository[E, D]{
		name:      name,
		data:      make(map[string]bson.M),
		sources:   make(map[string]Source),
		ids:       mongodb.UUIDGenerator{},
		validator: mongodb.DefaultValidator(),
		now:       entity.Now,
	}
}

// WithDefaultJoin sets the descriptors used by Join and JoinDefault.
func (m *Repository[E, D]) WithDefaultJoin(descriptors ...storagemodels.JoinDescriptor) *Repository[E, D] {
	m.defaultJoin = descriptors
	return m
}

// WithSource registers the documents joins against model read from.
func (m *Repository[E, D]) WithSource(model string, src Source) *Repository[E, D] {
	m.sources[model] = src
	return m
}

// WithUniqueIndex rejects writes that repeat the values of fields. Documents
// missing all of the fields are not indexed.
func (m *Repository[E, D]) WithUniqueIndex(fields ...string) *Repository[E, D] {
	m.unique = append(m.unique, fields)
	return m
}

// WithIDGenerator replaces the UUID generator.
func (m *Repository[E, D]) WithIDGenerator(g mongodb.IDGenerator) *Repository[E, D] {
	m.ids = g
	return m
}

// WithValidator replaces the struct tag validator.
func (m *Repository[E, D]) WithValidator(v mongodb.Validator) *Repository[E, D] {
	m.validator = v
	return m
}

// WithClock replaces the timestamp source.
func (m *Repository[E, D]) WithClock(now func() time.Time) *Repository[E, D] {
	m.now = now
	return m
}

// WithRawFunc replaces the built-in pipeline evaluator. The function receives
// the pipeline including the soft-delete stage.
func (m *Repository[E, D]) WithRawFunc(fn func(ctx context.Context, pipeline []bson.D) ([]bson.M, error)) *Repository[E, D] {
	m.rawFunc = fn
	return m
}

// WithJoinFunc replaces source based join resolution.
func (m *Repository[E, D]) WithJoinFunc(fn func(ctx context.Context, doc bson.M, descriptors []storagemodels.JoinDescriptor) (bson.M, error)) *Repository[E, D] {
	m.joinFunc = fn
	return m
}

// WithFindError makes every read fail with err.
func (m *Repository[E, D]) WithFindError(err error) *Repository[E, D] {
	m.findError = err
	return m
}

// WithCreateError makes Create and CreateMany fail with err.
func (m *Repository[E, D]) WithCreateError(err error) *Repository[E, D] {
	m.createError = err
	return m
}

// WithSaveError makes Save fail with err.
func (m *Repository[E, D]) WithSaveError(err error) *Repository[E, D] {
	m.saveError = err
	return m
}

// WithUpdateError makes UpdateOneById, Restore and the update and restore
// bulk operations fail with err.
func (m *Repository[E, D]) WithUpdateError(err error) *Repository[E, D] {
	m.updateError = err
	return m
}

// WithDeleteError makes the delete and soft delete operations fail with err.
func (m *Repository[E, D]) WithDeleteError(err error) *Repository[E, D] {
	m.deleteError = err
	return m
}

// SetData stores docs as they are, replacing documents with the same _id.
// Documents without an _id get one from the generator.
func (m *Repository[E, D]) SetData(docs ...bson.M) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, doc := range docs {
		doc = clone(doc)
		id, _ := doc[entity.IDField].(string)
		if id == "" {
			id = m.ids.NewID()
			doc[entity.IDField] = id
		}
		m.put(id, doc)
	}
}

// GetData returns a copy of the stored document.
func (m *Repository[E, D]) GetData(id string) (bson.M, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.data[id]
	if !ok {
		return nil, false
	}
	return clone(doc), true
}

// Documents returns copies of all stored documents, soft-deleted included,
// in insertion order.
func (m *Repository[E, D]) Documents() []bson.M {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]bson.M, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, clone(m.data[id]))
	}
	return out
}

// Count returns the number of stored documents, soft-deleted included.
func (m *Repository[E, D]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Clear removes all documents.
func (m *Repository[E, D]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]bson.M)
	m.order = nil
}

// DefaultJoin returns the repository's default descriptors.
func (m *Repository[E, D]) DefaultJoin() []storagemodels.JoinDescriptor {
	return m.defaultJoin
}

func (m *Repository[E, D]) put(id string, doc bson.M) {
	if _, ok := m.data[id]; !ok {
		m.order = append(m.order, id)
	}
	m.data[id] = doc
}

func (m *Repository[E, D]) remove(id string) {
	if _, ok := m.data[id]; !ok {
		return
	}
	delete(m.data, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// matching returns the stored documents, not copies, that match filter.
func (m *Repository[E, D]) matching(filter bson.M, withDeleted bool) []bson.M {
	out := make([]bson.M, 0)
	for _, id := range m.order {
		doc := m.data[id]
		if !withDeleted && deleted(doc) {
			continue
		}
		if Matches(doc, filter) {
			out = append(out, doc)
		}
	}
	return out
}

// stamp moves doc's updatedAt forward. Successive writes to one document
// always get distinct timestamps.
func (m *Repository[E, D]) stamp(doc bson.M) {
	next := m.now()
	if prev, ok := timeOf(doc[entity.UpdatedAtField]); ok && !next.After(prev) {
		next = prev.Add(time.Millisecond)
	}
	doc[entity.UpdatedAtField] = next
}

// checkUnique reports a duplicate key when doc collides with a stored
// document other than itself.
func (m *Repository[E, D]) checkUnique(doc bson.M, replacing bool) error {
	id, _ := doc[entity.IDField].(string)
	if _, ok := m.data[id]; ok && !replacing {
		return m.duplicate(id, entity.IDField)
	}
	for _, fields := range m.unique {
		key, ok := indexKey(doc, fields)
		if !ok {
			continue
		}
		for otherID, other := range m.data {
			if otherID == id {
				continue
			}
			if k, ok := indexKey(other, fields); ok && sameKey(k, key) {
				return m.duplicate(id, fmt.Sprint(fields))
			}
		}
	}
	return nil
}

func (m *Repository[E, D]) duplicate(id, index string) error {
	return errors.NewDuplicateKeyError(m.name, id, duplicateKeyException(index))
}

func duplicateKeyException(index string) mongo.WriteException {
	return mongo.WriteException{WriteErrors: mongo.WriteErrors{{
		Code:    11000,
		Message: fmt.Sprintf("E11000 duplicate key error index: %s", index),
	}}}
}

func indexKey(doc bson.M, fields []string) ([]any, bool) {
	key := make([]any, len(fields))
	found := false
	for i, f := range fields {
		if v, ok := bsonpath.Get(doc, f); ok {
			key[i] = v
			found = true
		}
	}
	return key, found
}

func sameKey(a, b []any) bool {
	for i := range a {
		if !equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func timeOf(v any) (time.Time, bool) {
	t, ok := normalize(v).(time.Time)
	return t, ok
}

func clone(doc bson.M) bson.M {
	if doc == nil {
		return nil
	}
	return copyValue(doc).(bson.M)
}

func copyValue(v any) any {
	switch t := v.(type) {
	case bson.M:
		out := make(bson.M, len(t))
		for k, x := range t {
			out[k] = copyValue(x)
		}
		return out
	case map[string]any:
		out := make(bson.M, len(t))
		for k, x := range t {
			out[k] = copyValue(x)
		}
		return out
	case bson.D:
		out := make(bson.D, len(t))
		for i, e := range t {
			out[i] = bson.E{Key: e.Key, Value: copyValue(e.Value)}
		}
		return out
	case bson.A:
		out := make(bson.A, len(t))
		for i, x := range t {
			out[i] = copyValue(x)
		}
		return out
	case []any:
		out := make(bson.A, len(t))
		for i, x := range t {
			out[i] = copyValue(x)
		}
		return out
	}
	return v
}

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

func decode[T any](m bson.M) (*T, error) {
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
