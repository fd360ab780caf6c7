/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mongodb

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/suparena/docstore/entity"
	"github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/storagemodels"
)

// leadingStages must stay first in a pipeline.
var leadingStages = map[string]bool{
	"$geoNear":      true,
	"$search":       true,
	"$searchMeta":   true,
	"$vectorSearch": true,
	"$collStats":    true,
	"$indexStats":   true,
	"$changeStream": true,
}

// NormalizePipeline validates a caller pipeline and returns its stages as
// bson.D. Accepted shapes are mongo.Pipeline, []bson.D, []bson.M, bson.A and
// []any whose elements are documents holding exactly one $ operator.
func NormalizePipeline(pipeline any) ([]bson.D, error) {
	var items []any
	switch p := pipeline.(type) {
	case mongo.Pipeline:
		for _, s := range p {
			items = append(items, s)
		}
	case []bson.D:
		for _, s := range p {
			items = append(items, s)
		}
	case []bson.M:
		for _, s := range p {
			items = append(items, s)
		}
	case []map[string]any:
		for _, s := range p {
			items = append(items, s)
		}
	case bson.A:
		items = p
	case []any:
		items = p
	default:
		return nil, errors.NewInvalidPipelineError(-1, fmt.Sprintf("expected a sequence of stages, got %T", pipeline))
	}

	stages := make([]bson.D, 0, len(items))
	for i, item := range items {
		s, err := stage(item)
		if err != nil {
			return nil, errors.NewInvalidPipelineError(i, err.Error())
		}
		stages = append(stages, s)
	}
	return stages, nil
}

func stage(item any) (bson.D, error) {
	var d bson.D
	switch s := item.(type) {
	case bson.D:
		d = s
	case bson.M:
		d = mapStage(s)
	case map[string]any:
		d = mapStage(s)
	case bson.Raw:
		if err := bson.Unmarshal(s, &d); err != nil {
			return nil, fmt.Errorf("undecodable stage: %w", err)
		}
	default:
		return nil, fmt.Errorf("stage must be a document, got %T", item)
	}

	if len(d) != 1 {
		return nil, fmt.Errorf("stage must have exactly one operator, got %d", len(d))
	}
	if !strings.HasPrefix(d[0].Key, "$") {
		return nil, fmt.Errorf("stage operator %q must start with $", d[0].Key)
	}
	return d, nil
}

func mapStage(m map[string]any) bson.D {
	d := make(bson.D, 0, len(m))
	for k, v := range m {
		d = append(d, bson.E{Key: k, Value: v})
	}
	return d
}

// ScopePipeline places the soft-delete $match ahead of the caller stages,
// or right after a stage that must lead. With withDeleted the stages are
// returned unchanged.
func ScopePipeline(stages []bson.D, withDeleted bool) []bson.D {
	if withDeleted {
		return stages
	}

	out := make([]bson.D, 0, len(stages)+1)
	match := bson.D{{Key: "$match", Value: entity.NotDeleted()}}
	i := 0
	if len(stages) > 0 && len(stages[0]) > 0 && leadingStages[stages[0][0].Key] {
		out = append(out, stages[0])
		i = 1
	}
	out = append(out, match)
	return append(out, stages[i:]...)
}

func rawPipeline(stages []bson.D, withDeleted bool) bson.A {
	scoped := ScopePipeline(stages, withDeleted)
	out := make(bson.A, 0, len(scoped)+3)
	for _, s := range scoped {
		out = append(out, s)
	}
	return out
}

// Raw runs pipeline on the collection with the soft-delete stage injected.
func (r *Repository[E, D]) Raw(ctx context.Context, pipeline any, opts *storagemodels.RawOptions) ([]bson.M, error) {
	if opts == nil {
		opts = &storagemodels.RawOptions{}
	}
	stages, err := NormalizePipeline(pipeline)
	if err != nil {
		return nil, err
	}
	return r.aggregate(withSession(ctx, opts.Session), rawPipeline(stages, opts.WithDeleted))
}

// RawFindAll is Raw followed by the ordering and paging stages.
func (r *Repository[E, D]) RawFindAll(ctx context.Context, pipeline any, opts *storagemodels.RawFindAllOptions) ([]bson.M, error) {
	if opts == nil {
		opts = &storagemodels.RawFindAllOptions{}
	}
	stages, err := NormalizePipeline(pipeline)
	if err != nil {
		return nil, err
	}

	p := rawPipeline(stages, opts.WithDeleted)
	if s := opts.Order.Sort(); s != nil {
		p = append(p, bson.D{{Key: "$sort", Value: s}})
	}
	p = appendPaging(p, opts.Paging)
	return r.aggregate(withSession(ctx, opts.Session), p)
}

// RawGetTotal counts the documents pipeline yields. A pipeline yielding
// nothing counts 0.
func (r *Repository[E, D]) RawGetTotal(ctx context.Context, pipeline any, opts *storagemodels.RawGetTotalOptions) (int64, error) {
	if opts == nil {
		opts = &storagemodels.RawGetTotalOptions{}
	}
	stages, err := NormalizePipeline(pipeline)
	if err != nil {
		return 0, err
	}

	p := append(rawPipeline(stages, opts.WithDeleted), bson.D{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: nil},
		{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
	}}})
	res, err := r.aggregate(withSession(ctx, opts.Session), p)
	if err != nil || len(res) == 0 {
		return 0, err
	}
	return toInt64(res[0]["count"]), nil
}

func (r *Repository[E, D]) aggregate(ctx context.Context, pipeline bson.A) ([]bson.M, error) {
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	return decodeAll[bson.M](ctx, cur)
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int32:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}
