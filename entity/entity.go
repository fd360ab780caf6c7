/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// Stored field names shared by every collection.
const (
	IDField        = "_id"
	CreatedAtField = "createdAt"
	UpdatedAtField = "updatedAt"
	DeletedAtField = "deletedAt"
)

// Document is the read-side constraint of a repository.
type Document interface {
	GetID() string
	GetUpdatedAt() time.Time
	IsDeleted() bool
}

// Base is embedded inline by every entity.
type Base struct {
	ID        string     `bson:"_id" json:"id"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updatedAt" json:"updatedAt"`
	DeletedAt *time.Time `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
}

func (b Base) GetID() string { return b.ID }

func (b Base) GetUpdatedAt() time.Time { return b.UpdatedAt }

// IsDeleted reports whether the soft-delete marker is set.
func (b Base) IsDeleted() bool { return b.DeletedAt != nil }

// Now returns the current time at the precision the store keeps.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// NotDeleted matches active documents.
func NotDeleted() bson.M {
	return bson.M{DeletedAtField: bson.M{"$exists": false}}
}

// Deleted matches soft-deleted documents.
func Deleted() bson.M {
	return bson.M{DeletedAtField: bson.M{"$exists": true}}
}
