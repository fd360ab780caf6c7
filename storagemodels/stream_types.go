/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// StreamResult represents a single item in a stream with metadata
type StreamResult[T any] struct {
	Item  T          // The decoded document
	Raw   bson.Raw   // Raw document as returned by the cursor
	Error error      // Item-specific error, if any
	Meta  StreamMeta // Metadata about this item
}

// StreamMeta contains metadata about a streamed item
type StreamMeta struct {
	Index     int64     // Item index in stream (0-based)
	Batch     int       // Cursor batch number (1-based)
	Timestamp time.Time // When item was retrieved
}

// StreamOptions configures streaming behavior
type StreamOptions struct {
	BufferSize       int                  // Channel buffer size (default: 100)
	BatchSize        int32                // Documents per cursor batch (default: 100)
	ProgressInterval int64                // Report progress every N items (default: 100)
	ProgressHandler  func(StreamProgress) // Optional progress callback
	ErrorHandler     func(error) bool     // Return true to skip a bad document, false to stop
}

// StreamProgress tracks streaming progress
type StreamProgress struct {
	ItemsProcessed int64     // Total items processed
	LastID         any       // _id of the last document sent
	Errors         []error   // Accumulated non-fatal errors
	StartTime      time.Time // When streaming started
	CurrentRate    float64   // Items per second
}

// StreamOption is a functional option for configuring streaming
type StreamOption func(*StreamOptions)

// DefaultStreamOptions returns default streaming options
func DefaultStreamOptions() StreamOptions {
	return StreamOptions{
		BufferSize:       100,
		BatchSize:        100,
		ProgressInterval: 100,
	}
}

// WithBufferSize sets the channel buffer size
func WithBufferSize(size int) StreamOption {
	return func(opts *StreamOptions) {
		opts.BufferSize = size
	}
}

// WithBatchSize sets the cursor batch size
func WithBatchSize(size int32) StreamOption {
	return func(opts *StreamOptions) {
		opts.BatchSize = size
	}
}

// WithProgressInterval sets how often the progress handler fires
func WithProgressInterval(n int64) StreamOption {
	return func(opts *StreamOptions) {
		opts.ProgressInterval = n
	}
}

// WithProgressHandler sets a progress callback
func WithProgressHandler(handler func(StreamProgress)) StreamOption {
	return func(opts *StreamOptions) {
		opts.ProgressHandler = handler
	}
}

// WithErrorHandler sets an error handler that can decide whether to continue
func WithErrorHandler(handler func(error) bool) StreamOption {
	return func(opts *StreamOptions) {
		opts.ErrorHandler = handler
	}
}
