/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/suparena/docstore/storagemodels"
)

// Stream sends a snapshot of the FindAll result. Joins are not resolved.
func (m *Repository[E, D]) Stream(ctx context.Context, filter bson.M, opts *storagemodels.FindAllOptions, streamOpts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[D] {
	if opts == nil {
		opts = &storagemodels.FindAllOptions{}
	}
	options := storagemodels.DefaultStreamOptions()
	for _, opt := range streamOpts {
		opt(&options)
	}

	query := *opts
	query.Join = nil
	resultCh := make(chan storagemodels.StreamResult[D], options.BufferSize)

	go func() {
		defer close(resultCh)

		items, err := m.FindAll(ctx, filter, &query)
		if err != nil {
			select {
			case resultCh <- storagemodels.StreamResult[D]{Error: err, Meta: storagemodels.StreamMeta{Timestamp: time.Now()}}:
			case <-ctx.Done():
			}
			return
		}

		start := time.Now()
		progress := func(n int64, lastID any) {
			if options.ProgressHandler == nil {
				return
			}
			p := storagemodels.StreamProgress{ItemsProcessed: n, LastID: lastID, StartTime: start}
			if elapsed := time.Since(start).Seconds(); elapsed > 0 {
				p.CurrentRate = float64(n) / elapsed
			}
			options.ProgressHandler(p)
		}

		var lastID any
		for i, item := range items {
			index := int64(i)
			batch := 1
			if options.BatchSize > 0 {
				batch = int(index/int64(options.BatchSize)) + 1
			}
			raw, _ := bson.Marshal(item)
			res := storagemodels.StreamResult[D]{
				Item: item,
				Raw:  raw,
				Meta: storagemodels.StreamMeta{Index: index, Batch: batch, Timestamp: time.Now()},
			}
			select {
			case resultCh <- res:
			case <-ctx.Done():
				return
			}

			lastID = item.GetID()
			if options.ProgressInterval > 0 && (index+1)%options.ProgressInterval == 0 {
				progress(index+1, lastID)
			}
		}
		progress(int64(len(items)), lastID)
	}()
	return resultCh
}

