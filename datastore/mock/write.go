/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/suparena/docstore/entity"
	"github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/internal/bsonpath"
	"github.com/suparena/docstore/join"
	"github.com/suparena/docstore/storagemodels"
)

func (m *Repository[E, D]) Create(ctx context.Context, payload E, opts *storagemodels.CreateOptions) (*D, error) {
	if opts == nil {
		opts = &storagemodels.CreateOptions{}
	}
	if m.createError != nil {
		return nil, m.createError
	}

	doc, err := m.prepare(payload, opts.ID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkUnique(doc, false); err != nil {
		return nil, err
	}
	m.put(doc[entity.IDField].(string), doc)
	return decode[D](clone(doc))
}

func (m *Repository[E, D]) prepare(payload E, id string) (bson.M, error) {
	if err := m.validator.Validate(payload); err != nil {
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
		id = m.ids.NewID()
	} else if !m.ids.Valid(id) {
		return nil, errors.NewValidationError(entity.IDField, fmt.Sprintf("%q is not a valid identity", id))
	}

	now := m.now()
	doc[entity.IDField] = id
	doc[entity.CreatedAtField] = now
	doc[entity.UpdatedAtField] = now
	delete(doc, entity.DeletedAtField)
	return doc, nil
}

func (m *Repository[E, D]) Save(ctx context.Context, doc D, opts *storagemodels.SaveOptions) (*D, error) {
	if m.saveError != nil {
		return nil, m.saveError
	}
	if err := m.validator.Validate(doc); err != nil {
		return nil, err
	}
	next, err := toDocument(doc)
	if err != nil {
		return nil, err
	}
	join.Strip(next, m.defaultJoin)
	id := doc.GetID()

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.data[id]
	if !ok || !equal(stored[entity.UpdatedAtField], doc.GetUpdatedAt()) {
		return nil, errors.NewConcurrencyError("save", id)
	}
	next[entity.IDField] = id
	next[entity.UpdatedAtField] = stored[entity.UpdatedAtField]
	m.stamp(next)
	if err := m.checkUnique(next, true); err != nil {
		return nil, err
	}
	m.put(id, next)
	return decode[D](clone(next))
}

func (m *Repository[E, D]) UpdateOneById(ctx context.Context, id string, patch bson.M, opts *storagemodels.SaveOptions) (*D, error) {
	if _, ok := patch[entity.IDField]; ok {
		return nil, errors.NewValidationError(entity.IDField, "the identity cannot be updated")
	}
	if m.updateError != nil {
		return nil, m.updateError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.data[id]
	if !ok || deleted(doc) {
		return nil, nil
	}
	next := clone(doc)
	for k, v := range patch {
		bsonpath.Set(next, k, copyValue(v))
	}
	m.stamp(next)
	if err := m.checkUnique(next, true); err != nil {
		return nil, err
	}
	m.put(id, next)
	return decode[D](clone(next))
}

func (m *Repository[E, D]) Delete(ctx context.Context, doc D, opts *storagemodels.SaveOptions) (*D, error) {
	if m.deleteError != nil {
		return nil, m.deleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.data[doc.GetID()]
	if !ok {
		return nil, nil
	}
	m.remove(doc.GetID())
	return decode[D](stored)
}

func (m *Repository[E, D]) SoftDelete(ctx context.Context, doc D, opts *storagemodels.SaveOptions) (*D, error) {
	if m.deleteError != nil {
		return nil, m.deleteError
	}
	return m.transition(doc.GetID(), false, func(stored bson.M) {
		stored[entity.DeletedAtField] = m.now()
	})
}

func (m *Repository[E, D]) Restore(ctx context.Context, doc D, opts *storagemodels.SaveOptions) (*D, error) {
	if m.updateError != nil {
		return nil, m.updateError
	}
	return m.transition(doc.GetID(), true, func(stored bson.M) {
		delete(stored, entity.DeletedAtField)
	})
}

// transition applies fn when the stored document is in the from state and
// returns the current document either way.
func (m *Repository[E, D]) transition(id string, fromDeleted bool, fn func(bson.M)) (*D, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.data[id]
	if !ok {
		return nil, nil
	}
	if deleted(stored) == fromDeleted {
		fn(stored)
		m.stamp(stored)
	}
	return decode[D](clone(stored))
}
