/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mongodb

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/suparena/docstore/errors"
)

// Validator checks a payload before it is written.
type Validator interface {
	Validate(v any) error
}

// StructValidator validates struct tags and reports fields by their bson name.
type StructValidator struct {
	v *validator.Validate
}

var (
	defaultValidator     *StructValidator
	defaultValidatorOnce sync.Once
)

// DefaultValidator returns the shared StructValidator.
func DefaultValidator() *StructValidator {
	defaultValidatorOnce.Do(func() {
		defaultValidator = NewStructValidator()
	})
	return defaultValidator
}

// NewStructValidator creates a StructValidator.
func NewStructValidator() *StructValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("bson"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	return &StructValidator{v: v}
}

// Validate returns a ValidationError for the first failing field. Values that
// are not structs pass unchecked.
func (s *StructValidator) Validate(v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return errors.NewValidationError("", "payload is nil")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	err := s.v.Struct(rv.Interface())
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		msg := fmt.Sprintf("failed on the %q rule", fe.Tag())
		if fe.Param() != "" {
			msg = fmt.Sprintf("failed on the %q rule (%s)", fe.Tag(), fe.Param())
		}
		return errors.NewValidationError(fe.Field(), msg)
	}
	return errors.NewValidationError("", err.Error())
}
