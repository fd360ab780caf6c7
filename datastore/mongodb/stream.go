/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/suparena/docstore/storagemodels"
)

// Stream iterates the visible matches of filter on a cursor and delivers
// them on the returned channel. Joins are not resolved. The channel is
// closed when the cursor is exhausted, on a fatal error (sent as the final
// item) or when ctx is done.
func (r *Repository[E, D]) Stream(ctx context.Context, filter bson.M, opts *storagemodels.FindAllOptions, streamOpts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[D] {
	if opts == nil {
		opts = &storagemodels.FindAllOptions{}
	}

	options := storagemodels.DefaultStreamOptions()
	for _, opt := range streamOpts {
		opt(&options)
	}

	resultCh := make(chan storagemodels.StreamResult[D], options.BufferSize)
	go r.streamWorker(withSession(ctx, opts.Session), visible(filter, opts.WithDeleted), opts, options, resultCh)
	return resultCh
}

func (r *Repository[E, D]) streamWorker(
	ctx context.Context,
	filter bson.M,
	opts *storagemodels.FindAllOptions,
	streamOpts storagemodels.StreamOptions,
	resultCh chan<- storagemodels.StreamResult[D],
) {
	defer close(resultCh)

	var index int64
	var errs []error
	var lastID any
	startTime := time.Now()
	batchSize := streamOpts.BatchSize

	reportProgress := func() {
		if streamOpts.ProgressHandler == nil {
			return
		}
		progress := storagemodels.StreamProgress{
			ItemsProcessed: index,
			LastID:         lastID,
			Errors:         errs,
			StartTime:      startTime,
		}
		if elapsed := time.Since(startTime).Seconds(); elapsed > 0 {
			progress.CurrentRate = float64(index) / elapsed
		}
		streamOpts.ProgressHandler(progress)
	}

	send := func(res storagemodels.StreamResult[D]) bool {
		select {
		case <-ctx.Done():
			return false
		case resultCh <- res:
			return true
		}
	}

	fo := findOptions(opts)
	if batchSize > 0 {
		fo.SetBatchSize(batchSize)
	}
	cur, err := r.coll.Find(ctx, filter, fo)
	if err != nil {
		send(storagemodels.StreamResult[D]{
			Error: fmt.Errorf("stream query failed: %w", err),
			Meta:  storagemodels.StreamMeta{Timestamp: time.Now()},
		})
		return
	}
	defer cur.Close(context.WithoutCancel(ctx))

	for cur.Next(ctx) {
		batch := 1
		if batchSize > 0 {
			batch = int(index/int64(batchSize)) + 1
		}
		meta := storagemodels.StreamMeta{Index: index, Batch: batch, Timestamp: time.Now()}

		var item D
		if err := cur.Decode(&item); err != nil {
			if streamOpts.ErrorHandler != nil && streamOpts.ErrorHandler(err) {
				errs = append(errs, err)
				continue
			}
			send(storagemodels.StreamResult[D]{Raw: cloneRaw(cur.Current), Error: fmt.Errorf("decode failed: %w", err), Meta: meta})
			return
		}

		lastID = cur.Current.Lookup("_id")
		if !send(storagemodels.StreamResult[D]{Item: item, Raw: cloneRaw(cur.Current), Meta: meta}) {
			return
		}
		index++

		if streamOpts.ProgressInterval > 0 && index%streamOpts.ProgressInterval == 0 {
			reportProgress()
		}
	}

	if err := cur.Err(); err != nil && ctx.Err() == nil {
		send(storagemodels.StreamResult[D]{
			Error: fmt.Errorf("stream cursor failed: %w", err),
			Meta:  storagemodels.StreamMeta{Index: index, Timestamp: time.Now()},
		})
		return
	}

	reportProgress()
}

// cloneRaw copies the cursor's current document, which is reused between
// iterations.
func cloneRaw(raw bson.Raw) bson.Raw {
	if raw == nil {
		return nil
	}
	out := make(bson.Raw, len(raw))
	copy(out, raw)
	return out
}
