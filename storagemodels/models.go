/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"go.mongodb.org/mongo-driver/mongo"
)

// SessionOptions carries a caller-owned session. The repositories forward it
// to the driver and never start, commit or end it.
type SessionOptions struct {
	Session mongo.Session
}

// GetSession returns the session or nil.
func (o *SessionOptions) GetSession() mongo.Session {
	if o == nil {
		return nil
	}
	return o.Session
}

// FindOneOptions configures single document reads.
type FindOneOptions struct {
	SessionOptions
	// WithDeleted includes soft-deleted documents.
	WithDeleted bool
	// Select limits the returned fields.
	Select Projection
	// Join resolves related documents after the match.
	Join *Join
}

// FindOneLockOptions configures FindOneAndLock.
type FindOneLockOptions = FindOneOptions

// PaginationOptions holds paging and ordering for list reads.
type PaginationOptions struct {
	Paging *Paging
	Order  Order
}

// FindAllOptions configures list reads.
type FindAllOptions struct {
	FindOneOptions
	PaginationOptions
}

// GetTotalOptions configures counts. Join is accepted for symmetry with
// FindAllOptions and does not change the count.
type GetTotalOptions struct {
	SessionOptions
	WithDeleted bool
	Join        *Join
}

// ExistsOptions configures existence checks.
type ExistsOptions struct {
	GetTotalOptions
	// ExcludeID drops these identities from the match whatever the filter says.
	ExcludeID []string
}

// CreateOptions configures single inserts.
type CreateOptions struct {
	SessionOptions
	// ID is an explicit identity for the new document.
	ID string
}

// CreateManyOptions configures bulk inserts.
type CreateManyOptions struct {
	SessionOptions
	// Ordered stops at the first failed insert when true (driver default).
	Ordered *bool
}

// SaveOptions configures instance mutations: Save, Delete, SoftDelete, Restore.
type SaveOptions struct {
	SessionOptions
}

// ManyOptions configures bulk mutations. Join is ignored by every bulk
// operation.
type ManyOptions struct {
	SessionOptions
	Join *Join
}

type (
	SoftDeleteManyOptions = ManyOptions
	RestoreManyOptions    = ManyOptions
)

// RawOptions configures raw aggregation pipelines.
type RawOptions struct {
	SessionOptions
	WithDeleted bool
}

// RawFindAllOptions adds ordering and paging stages to a raw pipeline.
type RawFindAllOptions struct {
	RawOptions
	PaginationOptions
}

// RawGetTotalOptions configures RawGetTotal.
type RawGetTotalOptions = RawOptions
