/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock

import (
	"context"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/suparena/docstore/datastore/mongodb"
	"github.com/suparena/docstore/internal/bsonpath"
	"github.com/suparena/docstore/storagemodels"
)

// Raw evaluates pipeline over the stored documents. The built-in evaluator
// understands $match, $sort, $skip, $limit, $project, $unset, $count and a
// $group on a null _id with $sum accumulators. Use WithRawFunc for anything
// else.
func (m *Repository[E, D]) Raw(ctx context.Context, pipeline any, opts *storagemodels.RawOptions) ([]bson.M, error) {
	if opts == nil {
		opts = &storagemodels.RawOptions{}
	}
	stages, err := mongodb.NormalizePipeline(pipeline)
	if err != nil {
		return nil, err
	}
	return m.aggregate(ctx, mongodb.ScopePipeline(stages, opts.WithDeleted))
}

func (m *Repository[E, D]) RawFindAll(ctx context.Context, pipeline any, opts *storagemodels.RawFindAllOptions) ([]bson.M, error) {
	if opts == nil {
		opts = &storagemodels.RawFindAllOptions{}
	}
	stages, err := mongodb.NormalizePipeline(pipeline)
	if err != nil {
		return nil, err
	}

	p := mongodb.ScopePipeline(stages, opts.WithDeleted)
	if s := opts.Order.Sort(); s != nil {
		p = append(p, bson.D{{Key: "$sort", Value: s}})
	}
	if pg := opts.Paging; pg != nil {
		if pg.Offset > 0 {
			p = append(p, bson.D{{Key: "$skip", Value: pg.Offset}})
		}
		if pg.Limit > 0 {
			p = append(p, bson.D{{Key: "$limit", Value: pg.Limit}})
		}
	}
	return m.aggregate(ctx, p)
}

func (m *Repository[E, D]) RawGetTotal(ctx context.Context, pipeline any, opts *storagemodels.RawGetTotalOptions) (int64, error) {
	if opts == nil {
		opts = &storagemodels.RawGetTotalOptions{}
	}
	stages, err := mongodb.NormalizePipeline(pipeline)
	if err != nil {
		return 0, err
	}

	p := append(mongodb.ScopePipeline(stages, opts.WithDeleted), bson.D{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: nil},
		{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
	}}})
	res, err := m.aggregate(ctx, p)
	if err != nil || len(res) == 0 {
		return 0, err
	}
	n, _ := asInt(res[0]["count"])
	return n, nil
}

func (m *Repository[E, D]) aggregate(ctx context.Context, pipeline []bson.D) ([]bson.M, error) {
	if err := m.readable(ctx); err != nil {
		return nil, err
	}
	if m.rawFunc != nil {
		return m.rawFunc(ctx, pipeline)
	}

	m.mu.RLock()
	docs := cloneAll(m.matching(nil, true))
	m.mu.RUnlock()

	for _, stage := range pipeline {
		var err error
		if docs, err = evalStage(docs, stage[0].Key, stage[0].Value); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

func evalStage(docs []bson.M, op string, arg any) ([]bson.M, error) {
	switch op {
	case "$match":
		filter, ok := asDoc(arg)
		if !ok {
			return nil, fmt.Errorf("mock: $match expects a document")
		}
		out := make([]bson.M, 0, len(docs))
		for _, doc := range docs {
			if Matches(doc, filter) {
				out = append(out, doc)
			}
		}
		return out, nil

	case "$sort":
		order, err := sortOrder(arg)
		if err != nil {
			return nil, err
		}
		sortDocs(docs, order)
		return docs, nil

	case "$skip", "$limit":
		n, ok := asInt(arg)
		if !ok || n < 0 {
			return nil, fmt.Errorf("mock: %s expects a non-negative integer", op)
		}
		if op == "$skip" {
			return window(docs, &storagemodels.Paging{Offset: n}), nil
		}
		return window(docs, &storagemodels.Paging{Limit: n}), nil

	case "$project":
		spec, ok := asDoc(arg)
		if !ok {
			return nil, fmt.Errorf("mock: $project expects a document")
		}
		sel := make(storagemodels.Projection, len(spec))
		for f, v := range spec {
			switch t := normalize(v).(type) {
			case bool:
				sel[f] = t
			case float64:
				sel[f] = t != 0
			default:
				return nil, fmt.Errorf("mock: $project expression on %q is not supported", f)
			}
		}
		for i, doc := range docs {
			docs[i] = project(doc, sel, nil)
		}
		return docs, nil

	case "$unset":
		fields := list(arg)
		if s, ok := arg.(string); ok {
			fields = []any{s}
		}
		for _, doc := range docs {
			for _, f := range fields {
				if s, ok := f.(string); ok {
					bsonpath.Unset(doc, s)
				}
			}
		}
		return docs, nil

	case "$count":
		name, ok := arg.(string)
		if !ok || name == "" {
			return nil, fmt.Errorf("mock: $count expects a field name")
		}
		if len(docs) == 0 {
			return []bson.M{}, nil
		}
		return []bson.M{{name: int32(len(docs))}}, nil

	case "$group":
		return group(docs, arg)
	}
	return nil, fmt.Errorf("mock: unsupported pipeline stage %s", op)
}

// group supports {_id: null, <field>: {$sum: <number>}}.
func group(docs []bson.M, arg any) ([]bson.M, error) {
	spec, ok := asDoc(arg)
	if !ok {
		return nil, fmt.Errorf("mock: $group expects a document")
	}
	if id, ok := spec["_id"]; !ok || id != nil {
		return nil, fmt.Errorf("mock: $group only supports a null _id")
	}
	if len(docs) == 0 {
		return []bson.M{}, nil
	}

	out := bson.M{"_id": nil}
	for f, acc := range spec {
		if f == "_id" {
			continue
		}
		a, ok := asDoc(acc)
		if !ok || len(a) != 1 || a["$sum"] == nil {
			return nil, fmt.Errorf("mock: $group accumulator on %q is not supported", f)
		}
		step, ok := asInt(a["$sum"])
		if !ok {
			return nil, fmt.Errorf("mock: $sum on %q only supports constants", f)
		}
		out[f] = int32(step * int64(len(docs)))
	}
	return []bson.M{out}, nil
}

func sortOrder(arg any) (storagemodels.Order, error) {
	var keys bson.D
	switch t := arg.(type) {
	case bson.D:
		keys = t
	default:
		m, ok := asDoc(arg)
		if !ok {
			return nil, fmt.Errorf("mock: $sort expects a document")
		}
		names := make([]string, 0, len(m))
		for k := range m {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			keys = append(keys, bson.E{Key: k, Value: m[k]})
		}
	}

	order := make(storagemodels.Order, 0, len(keys))
	for _, k := range keys {
		dir := storagemodels.Asc
		if n, _ := normalize(k.Value).(float64); n < 0 {
			dir = storagemodels.Desc
		}
		order = append(order, storagemodels.OrderBy{Field: k.Key, Direction: dir})
	}
	return order, nil
}
