// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/macrocore/internal/models"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is one rejected input field.
type FieldError struct {
	// Field is the json path of the field, e.g. "weight_kg" or "protein.min".
	Field string `json:"field"`

	// Tag is the failed rule ("gte", "oneof", "required", ...).
	Tag string `json:"tag"`

	// Param is the rule's bound, e.g. "13" for gte=13.
	Param string `json:"param,omitempty"`

	Message string `json:"message"`
}

func (e *FieldError) Error() string { return e.Message }

// Is reports whether target is models.ErrValidation.
func (e *FieldError) Is(target error) bool { return target == models.ErrValidation }

// Error is the rejection of a profile, filter, product or query parameter.
// It always matches models.ErrValidation and carries at least one FieldError.
type Error struct {
	fields []FieldError
}

// Errors returns the rejected fields in validation order.
func (e *Error) Errors() []FieldError { return e.fields }

func (e *Error) Error() string {
	if len(e.fields) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(e.fields))
	for i := range e.fields {
		messages[i] = e.fields[i].Message
	}
	return strings.Join(messages, "; ")
}

// Is reports whether target is models.ErrValidation.
func (e *Error) Is(target error) bool { return target == models.ErrValidation }

// HasField reports whether field was rejected.
func (e *Error) HasField(field string) bool {
	for i := range e.fields {
		if e.fields[i].Field == field {
			return true
		}
	}
	return false
}

// Details returns the fields for the "details" member of an API error body.
func (e *Error) Details() []FieldError {
	return append([]FieldError(nil), e.fields...)
}

func single(field, tag, param string, text bool) *Error {
	return &Error{fields: []FieldError{{
		Field:   field,
		Tag:     tag,
		Param:   param,
		Message: message(field, tag, param, text),
	}}}
}

// Required rejects a missing path or query value such as a product or user id.
func Required(field string) *Error { return single(field, "required", "", true) }

// NotANumber rejects a query value that does not parse as a finite number.
func NotANumber(field string) *Error { return single(field, "numeric", "", true) }

// AlreadyInUse rejects a product id or barcode owned by another product.
func AlreadyInUse(field string) *Error { return single(field, "unique", "", true) }

// TooShort rejects text shorter than n characters after normalization.
func TooShort(field string, n int) *Error { return single(field, "min", strconv.Itoa(n), true) }

// GetValidator returns the shared validator. Field names come from json tags
// and models.Range carries an ordering rule.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonFieldName)
		validate.RegisterStructValidation(rangeOrdered, models.Range{})
	})
	return validate
}

//nolint:gocritic // reflect.StructField is passed by value per RegisterTagNameFunc
func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	}
	return name
}

// rangeOrdered rejects a macro or price range whose max is below its min.
func rangeOrdered(sl validator.StructLevel) {
	r, ok := sl.Current().Interface().(models.Range)
	if !ok || r.Min == nil || r.Max == nil {
		return
	}
	if *r.Max < *r.Min {
		sl.ReportError(*r.Max, "max", "Max", "gtefield", "min")
	}
}

// ValidateStruct checks a profile, nutrition input, product, filter or
// recommendation options against its validate tags.
//
// The result is a concrete pointer; compare it with nil before returning it
// as error.
func ValidateStruct(s interface{}) *Error {
	return convert(GetValidator().Struct(s), "")
}

// ValidateVar checks a single value, reporting failures under field.
//
//	if verr := validation.ValidateVar("goal", goal, "oneof=weight_loss muscle_gain maintain endurance"); verr != nil {
//	    return nil, verr
//	}
func ValidateVar(field string, value interface{}, tag string) *Error {
	return convert(GetValidator().Var(value, tag), field)
}

func convert(err error, field string) *Error {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		// InvalidValidationError: a nil or non-struct argument.
		return &Error{fields: []FieldError{{Field: "unknown", Tag: "unknown", Message: err.Error()}}}
	}

	out := make([]FieldError, len(fieldErrs))
	for i, fe := range fieldErrs {
		name := field
		if name == "" {
			name = fieldPath(fe)
		}
		out[i] = FieldError{
			Field:   name,
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: message(name, fe.Tag(), fe.Param(), fe.Kind() == reflect.String),
		}
	}
	return &Error{fields: out}
}

// fieldPath drops the top-level struct name so nested fields read as "protein.min".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

var plainMessages = map[string]string{
	"required":   "%s is required",
	"alphanum":   "%s must contain only letters and digits",
	"printascii": "%s must contain only printable ASCII characters",
	"unique":     "%s is already in use",
	"numeric":    "%s must be a number",
}

var boundMessages = map[string]string{
	"oneof":       "%s must be one of: %s",
	"gte":         "%s must be greater than or equal to %s",
	"lte":         "%s must be less than or equal to %s",
	"gt":          "%s must be greater than %s",
	"lt":          "%s must be less than %s",
	"gtefield":    "%s must be greater than or equal to %s",
	"excludesall": "%s must not contain any of: %s",
}

// message renders a rule failure. Length rules on text fields count characters.
func message(field, tag, param string, text bool) string {
	if tmpl, ok := plainMessages[tag]; ok {
		return fmt.Sprintf(tmpl, field)
	}
	if tmpl, ok := boundMessages[tag]; ok {
		return fmt.Sprintf(tmpl, field, param)
	}

	unit := ""
	if text {
		unit = " characters"
	}
	switch tag {
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", field, param, unit)
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", field, param, unit)
	}
	return fmt.Sprintf("%s failed %s validation", field, tag)
}
