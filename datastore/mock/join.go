/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/internal/bsonpath"
	"github.com/suparena/docstore/join"
	"github.com/suparena/docstore/storagemodels"
)

// Join resolves descriptors, or the defaults when none are given, onto doc.
func (m *Repository[E, D]) Join(ctx context.Context, doc D, descriptors ...storagemodels.JoinDescriptor) (*D, error) {
	if len(descriptors) == 0 {
		descriptors = m.defaultJoin
	}
	raw, err := toDocument(doc)
	if err != nil {
		return nil, err
	}
	if len(descriptors) > 0 {
		if raw, err = m.resolve(ctx, raw, descriptors); err != nil {
			return nil, err
		}
	}
	return decode[D](raw)
}

// resolve populates each descriptor's field from its registered source.
// Zero matches leave a JustOne field unset and a list field empty, or
// absent when the list destination is dotted.
func (m *Repository[E, D]) resolve(ctx context.Context, doc bson.M, descriptors []storagemodels.JoinDescriptor) (bson.M, error) {
	if m.joinFunc != nil {
		return m.joinFunc(ctx, doc, descriptors)
	}

	for _, d := range descriptors {
		if err := join.Validate(d); err != nil {
			return nil, err
		}
		src, ok := m.sources[d.Model]
		if !ok {
			return nil, fmt.Errorf("join %q: %w", d.Field, errors.NewUnknownModelError(d.Model))
		}

		related := make(bson.A, 0)
		if local, ok := bsonpath.Get(doc, d.LocalKey); ok {
			for _, target := range src.Documents() {
				if !d.WithDeleted && deleted(target) {
					continue
				}
				foreign, ok := bsonpath.Get(target, d.ForeignKey)
				if !ok || !overlaps(local, foreign) || !Matches(target, d.Condition) {
					continue
				}
				if len(d.Nested) > 0 {
					var err error
					if target, err = m.resolve(ctx, target, d.Nested); err != nil {
						return nil, err
					}
				}
				related = append(related, target)
				if d.JustOne {
					break
				}
			}
		}

		switch {
		case !d.JustOne && len(related) == 0 && strings.Contains(d.Field, "."):
			// a dotted destination never creates its parents for nothing
		case !d.JustOne:
			bsonpath.Set(doc, d.Field, related)
		case len(related) == 0:
			bsonpath.Unset(doc, d.Field)
		default:
			bsonpath.Set(doc, d.Field, related[0])
		}
	}
	return doc, nil
}

// overlaps matches a local value against a foreign one the way $lookup
// does, element-wise when either side is an array.
func overlaps(local, foreign any) bool {
	if isList(local) {
		for _, v := range list(local) {
			if equalOrContains(foreign, v) {
				return true
			}
		}
		return false
	}
	return equalOrContains(foreign, local)
}
