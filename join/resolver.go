/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package join

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/suparena/docstore/entity"
	"github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/internal/bsonpath"
	"github.com/suparena/docstore/registry"
	"github.com/suparena/docstore/storagemodels"
)

// Resolver turns join descriptors into $lookup stages.
type Resolver struct {
	collections registry.CollectionResolver
}

// NewResolver creates a Resolver. A nil CollectionResolver resolves through
// the process model registry.
func NewResolver(collections registry.CollectionResolver) *Resolver {
	if collections == nil {
		collections = registry.Resolver{}
	}
	return &Resolver{collections: collections}
}

// Stages returns the lookup stages for descriptors, in order.
func (r *Resolver) Stages(descriptors ...storagemodels.JoinDescriptor) ([]bson.D, error) {
	stages := make([]bson.D, 0, len(descriptors)*2)
	for _, d := range descriptors {
		s, err := r.Lookup(d)
		if err != nil {
			return nil, err
		}
		stages = append(stages, s...)
	}
	return stages, nil
}

// Lookup returns the stages for a single descriptor: the $lookup, followed by
// an $unwind when JustOne is set. A dotted destination is looked up into a
// temporary field and then moved into place.
//
// The lookup sub-pipeline applies, in order, the descriptor condition, the
// soft-delete predicate, the nested joins and the single result cap.
func (r *Resolver) Lookup(d storagemodels.JoinDescriptor) ([]bson.D, error) {
	if err := Validate(d); err != nil {
		return nil, err
	}

	from, err := r.collections.ResolveCollection(d.Model)
	if err != nil {
		return nil, fmt.Errorf("join %q: %w", d.Field, err)
	}

	pipeline := bson.A{}
	if len(d.Condition) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: d.Condition}})
	}
	if !d.WithDeleted {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: entity.NotDeleted()}})
	}
	if len(d.Nested) > 0 {
		nested, err := r.Stages(d.Nested...)
		if err != nil {
			return nil, fmt.Errorf("join %q: %w", d.Field, err)
		}
		for _, s := range nested {
			pipeline = append(pipeline, s)
		}
	}
	if d.JustOne {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: 1}})
	}

	as := d.Field
	dotted := strings.Contains(d.Field, ".")
	if dotted {
		as = tempField(d.Field)
	}

	stages := []bson.D{{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: from},
		{Key: "localField", Value: d.LocalKey},
		{Key: "foreignField", Value: d.ForeignKey},
		{Key: "pipeline", Value: pipeline},
		{Key: "as", Value: as},
	}}}}

	if d.JustOne {
		stages = append(stages, bson.D{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$" + as},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}})
	}
	if dotted {
		stages = append(stages, placeStages(d.Field, as, d.JustOne)...)
	}
	return stages, nil
}

// tempField is the top level field a dotted destination is looked up into.
// A $lookup into a dotted path creates the missing parents, so the result
// is moved into place only when something was found.
func tempField(field string) string {
	return "__join_" + strings.ReplaceAll(field, ".", "_")
}

// placeStages moves the lookup result from tmp to the dotted field and drops
// tmp. An empty result leaves the document untouched.
func placeStages(field, tmp string, justOne bool) []bson.D {
	found := bson.M{"$ne": bson.A{bson.M{"$type": "$" + tmp}, "missing"}}
	if !justOne {
		found = bson.M{"$gt": bson.A{bson.M{"$size": bson.M{"$ifNull": bson.A{"$" + tmp, bson.A{}}}}, 0}}
	}

	parts := strings.Split(field, ".")
	head := parts[0]
	return []bson.D{
		{{Key: "$set", Value: bson.D{{Key: head, Value: bson.M{
			"$cond": bson.A{found, merge("$"+head, parts[1:], "$"+tmp), "$" + head},
		}}}}},
		{{Key: "$unset", Value: tmp}},
	}
}

// merge builds value nested under the remaining path segments of the
// document at prefix, keeping its other fields.
func merge(prefix string, rest []string, value any) any {
	if len(rest) == 0 {
		return value
	}
	next := prefix + "." + rest[0]
	return bson.M{"$mergeObjects": bson.A{
		bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{bson.M{"$type": prefix}, "object"}}, prefix, bson.M{}}},
		bson.M{rest[0]: merge(next, rest[1:], value)},
	}}
}

// Validate checks that every required descriptor field is set, recursively.
func Validate(d storagemodels.JoinDescriptor) error {
	switch {
	case d.Field == "":
		return errors.NewValidationError("field", "join descriptor requires a destination field")
	case d.LocalKey == "":
		return errors.NewValidationError("localKey", fmt.Sprintf("join %q requires a local key", d.Field))
	case d.ForeignKey == "":
		return errors.NewValidationError("foreignKey", fmt.Sprintf("join %q requires a foreign key", d.Field))
	case d.Model == "":
		return errors.NewValidationError("model", fmt.Sprintf("join %q requires a target model", d.Field))
	}
	for _, n := range d.Nested {
		if err := Validate(n); err != nil {
			return err
		}
	}
	return nil
}

// LocalKeys returns the top level local keys the descriptors read from.
func LocalKeys(descriptors []storagemodels.JoinDescriptor) []string {
	keys := make([]string, 0, len(descriptors))
	for _, d := range descriptors {
		keys = append(keys, d.LocalKey)
	}
	return keys
}

// Fields returns the destination fields, in order.
func Fields(descriptors []storagemodels.JoinDescriptor) []string {
	fields := make([]string, 0, len(descriptors))
	for _, d := range descriptors {
		fields = append(fields, d.Field)
	}
	return fields
}

// Strip removes the destination fields of descriptors from doc. Related
// documents are resolved on read and never stored with the local record.
func Strip(doc bson.M, descriptors []storagemodels.JoinDescriptor) {
	for _, field := range Fields(descriptors) {
		bsonpath.Unset(doc, field)
	}
}
