/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when a document is not found
	ErrNotFound = errors.New("document not found")

	// ErrAlreadyExists is returned when a write collides with a unique key
	ErrAlreadyExists = errors.New("document already exists")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConditionFailed is returned when a guarded write loses a race
	ErrConditionFailed = errors.New("condition check failed")

	// ErrInvalidPipeline is returned when a raw pipeline is not a stage sequence
	ErrInvalidPipeline = errors.New("invalid pipeline")

	// ErrUnknownModel is returned when a join target cannot be resolved
	ErrUnknownModel = errors.New("unknown model")
)

// NotFoundError represents an error when a document is not found
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// DuplicateKeyError wraps a store duplicate key failure.
type DuplicateKeyError struct {
	Collection string
	Key        string
	Err        error
}

func (e *DuplicateKeyError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s with key %q already exists", e.Collection, e.Key)
	}
	return fmt.Sprintf("duplicate key in %s: %v", e.Collection, e.Err)
}

func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// Unwrap returns the store error unchanged.
func (e *DuplicateKeyError) Unwrap() error {
	return e.Err
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ConcurrencyError is returned when the stored document changed underneath a save
type ConcurrencyError struct {
	Operation string
	ID        string
}

func (e *ConcurrencyError) Error() string {
	return fmt.Sprintf("concurrent modification detected during %s of %q", e.Operation, e.ID)
}

func (e *ConcurrencyError) Is(target error) bool {
	return target == ErrConditionFailed
}

// InvalidPipelineError describes why a raw pipeline was rejected.
// Stage is -1 when the pipeline as a whole has the wrong shape.
type InvalidPipelineError struct {
	Stage  int
	Reason string
}

func (e *InvalidPipelineError) Error() string {
	if e.Stage < 0 {
		return fmt.Sprintf("invalid pipeline: %s", e.Reason)
	}
	return fmt.Sprintf("invalid pipeline stage %d: %s", e.Stage, e.Reason)
}

func (e *InvalidPipelineError) Is(target error) bool {
	return target == ErrInvalidPipeline
}

// UnknownModelError is returned when a model name has no registered collection
type UnknownModelError struct {
	Model string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("model %q is not registered", e.Model)
}

func (e *UnknownModelError) Is(target error) bool {
	return target == ErrUnknownModel
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(docType, key string) error {
	return &NotFoundError{Type: docType, Key: key}
}

// NewDuplicateKeyError creates a new DuplicateKeyError
func NewDuplicateKeyError(collection, key string, err error) error {
	return &DuplicateKeyError{Collection: collection, Key: key, Err: err}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewConcurrencyError creates a new ConcurrencyError
func NewConcurrencyError(operation, id string) error {
	return &ConcurrencyError{Operation: operation, ID: id}
}

// NewInvalidPipelineError creates a new InvalidPipelineError
func NewInvalidPipelineError(stage int, reason string) error {
	return &InvalidPipelineError{Stage: stage, Reason: reason}
}

// NewUnknownModelError creates a new UnknownModelError
func NewUnknownModelError(model string) error {
	return &UnknownModelError{Model: model}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is a duplicate key error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConcurrencyError checks if an error is a concurrency error
func IsConcurrencyError(err error) bool {
	return errors.Is(err, ErrConditionFailed)
}

// IsInvalidPipeline checks if an error is an invalid pipeline error
func IsInvalidPipeline(err error) bool {
	return errors.Is(err, ErrInvalidPipeline)
}

// IsUnknownModel checks if an error is an unknown model error
func IsUnknownModel(err error) bool {
	return errors.Is(err, ErrUnknownModel)
}
