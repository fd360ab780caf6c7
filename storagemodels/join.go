/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"go.mongodb.org/mongo-driver/bson"
)

// JoinDescriptor describes one relationship: documents of the local
// collection reference documents of Model where LocalKey equals ForeignKey.
type JoinDescriptor struct {
	// Field is the destination path in the result.
	Field string `yaml:"field"`
	// LocalKey is the referencing field in the local document.
	LocalKey string `yaml:"localKey"`
	// ForeignKey is the referenced field in the target document.
	ForeignKey string `yaml:"foreignKey"`
	// Model is a registered model name or, when the resolver allows it, a
	// collection name.
	Model string `yaml:"model"`
	// Condition further restricts the target documents.
	Condition bson.M `yaml:"condition,omitempty"`
	// JustOne keeps the first match and stores it as a single value.
	JustOne bool `yaml:"justOne,omitempty"`
	// Nested joins are resolved on the target documents.
	Nested []JoinDescriptor `yaml:"nested,omitempty"`
	// WithDeleted includes soft-deleted target documents.
	WithDeleted bool `yaml:"withDeleted,omitempty"`
}

// Join selects the relations to resolve for a read. A zero Join with Default
// set uses the repository's default descriptors.
type Join struct {
	Default     bool
	Descriptors []JoinDescriptor
}

// JoinDefault requests the repository's default descriptors.
func JoinDefault() *Join {
	return &Join{Default: true}
}

// JoinWith requests the given descriptors, in order.
func JoinWith(descriptors ...JoinDescriptor) *Join {
	return &Join{Descriptors: descriptors}
}

// Resolve returns the descriptors to use given the repository defaults.
func (j *Join) Resolve(defaults []JoinDescriptor) []JoinDescriptor {
	if j == nil {
		return nil
	}
	if len(j.Descriptors) > 0 {
		return j.Descriptors
	}
	if j.Default {
		return defaults
	}
	return nil
}
