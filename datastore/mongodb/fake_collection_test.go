/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mongodb

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// call records one collection invocation.
type call struct {
	Op       string
	Filter   any
	Update   any
	Pipeline any
	Docs     []any
	Opts     any
	Session  bool
}

// fakeCollection records calls and answers from canned documents.
type fakeCollection struct {
	mu    sync.Mutex
	name  string
	calls []call

	docs       []any // returned by Find and Aggregate
	single     any   // returned by FindOne* (nil means no documents)
	singleSeq  []any // consumed in order before single
	count      int64
	distinct   []any
	err        error                              // returned by every write and cursor call
	findErr    error                              // returned by Find only
	aggregates func(pipeline any) ([]any, error) // overrides docs for Aggregate
}

func newFake() *fakeCollection {
	return &fakeCollection{name: "things"}
}

func (f *fakeCollection) record(ctx context.Context, c call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.Session = mongo.SessionFromContext(ctx) != nil
	f.calls = append(f.calls, c)
}

func (f *fakeCollection) last() call {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return call{}
	}
	return f.calls[len(f.calls)-1]
}

func (f *fakeCollection) ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Op)
	}
	return out
}

func (f *fakeCollection) cursor(docs []any) (*mongo.Cursor, error) {
	if docs == nil {
		docs = []any{}
	}
	return mongo.NewCursorFromDocuments(docs, nil, nil)
}

func (f *fakeCollection) singleResult() *mongo.SingleResult {
	if f.err != nil {
		return mongo.NewSingleResultFromDocument(bson.D{}, f.err, nil)
	}
	f.mu.Lock()
	var doc any
	if len(f.singleSeq) > 0 {
		doc, f.singleSeq = f.singleSeq[0], f.singleSeq[1:]
	} else {
		doc = f.single
	}
	f.mu.Unlock()
	if doc == nil {
		return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
	}
	return mongo.NewSingleResultFromDocument(doc, nil, nil)
}

func (f *fakeCollection) Name() string { return f.name }

func (f *fakeCollection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	f.record(ctx, call{Op: "find", Filter: filter, Opts: first(opts)})
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.cursor(f.docs)
}

func (f *fakeCollection) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult {
	f.record(ctx, call{Op: "findOne", Filter: filter, Opts: first(opts)})
	return f.singleResult()
}

func (f *fakeCollection) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts ...*options.FindOneAndUpdateOptions) *mongo.SingleResult {
	f.record(ctx, call{Op: "findOneAndUpdate", Filter: filter, Update: update, Opts: first(opts)})
	return f.singleResult()
}

func (f *fakeCollection) FindOneAndReplace(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.FindOneAndReplaceOptions) *mongo.SingleResult {
	f.record(ctx, call{Op: "findOneAndReplace", Filter: filter, Update: replacement, Opts: first(opts)})
	return f.singleResult()
}

func (f *fakeCollection) FindOneAndDelete(ctx context.Context, filter interface{}, opts ...*options.FindOneAndDeleteOptions) *mongo.SingleResult {
	f.record(ctx, call{Op: "findOneAndDelete", Filter: filter, Opts: first(opts)})
	return f.singleResult()
}

func (f *fakeCollection) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	f.record(ctx, call{Op: "count", Filter: filter, Opts: first(opts)})
	return f.count, f.err
}

func (f *fakeCollection) Distinct(ctx context.Context, fieldName string, filter interface{}, opts ...*options.DistinctOptions) ([]interface{}, error) {
	f.record(ctx, call{Op: "distinct:" + fieldName, Filter: filter})
	return f.distinct, f.err
}

func (f *fakeCollection) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	f.record(ctx, call{Op: "insertOne", Docs: []any{document}})
	if f.err != nil {
		return nil, f.err
	}
	return &mongo.InsertOneResult{}, nil
}

func (f *fakeCollection) InsertMany(ctx context.Context, documents []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error) {
	f.record(ctx, call{Op: "insertMany", Docs: documents, Opts: first(opts)})
	if f.err != nil {
		return nil, f.err
	}
	return &mongo.InsertManyResult{}, nil
}

func (f *fakeCollection) UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	f.record(ctx, call{Op: "updateMany", Filter: filter, Update: update})
	if f.err != nil {
		return nil, f.err
	}
	return &mongo.UpdateResult{}, nil
}

func (f *fakeCollection) DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	f.record(ctx, call{Op: "deleteMany", Filter: filter})
	if f.err != nil {
		return nil, f.err
	}
	return &mongo.DeleteResult{}, nil
}

func (f *fakeCollection) Aggregate(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) (*mongo.Cursor, error) {
	f.record(ctx, call{Op: "aggregate", Pipeline: pipeline})
	if f.err != nil {
		return nil, f.err
	}
	if f.aggregates != nil {
		docs, err := f.aggregates(pipeline)
		if err != nil {
			return nil, err
		}
		return f.cursor(docs)
	}
	return f.cursor(f.docs)
}

func first[T any](opts []*T) *T {
	if len(opts) == 0 {
		return nil
	}
	return opts[0]
}
