/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mongodb

import (
	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IDGenerator assigns and checks document identities.
type IDGenerator interface {
	NewID() string
	Valid(id string) bool
}

// UUIDGenerator issues random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }

func (UUIDGenerator) Valid(id string) bool { return strfmt.IsUUID4(id) }

// ObjectIDGenerator issues hex encoded ObjectIDs.
type ObjectIDGenerator struct{}

func (ObjectIDGenerator) NewID() string { return primitive.NewObjectID().Hex() }

func (ObjectIDGenerator) Valid(id string) bool { return strfmt.IsBSONObjectID(id) }
