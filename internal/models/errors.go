// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package models

import (
	"errors"
	"fmt"
)

// Sentinel errors. Typed errors in this package and in internal/validation
// match these through errors.Is.
var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrExternalService = errors.New("external service failure")
	ErrCache           = errors.New("cache unavailable")
)

// NotFoundError reports a missing profile or product.
type NotFoundError struct {
	Resource string
	ID       string
	Message  string
}

// NewNotFoundError creates a NotFoundError with the given message.
func NewNotFoundError(resource, id, message string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id, Message: message}
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ExternalServiceError reports a failed call to the recommendation service:
// network error, timeout, non-2xx status, open breaker or local rate limit.
type ExternalServiceError struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *ExternalServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s returned status %d: %v", e.Service, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// Is reports whether target is ErrExternalService.
func (e *ExternalServiceError) Is(target error) bool {
	return target == ErrExternalService
}

// CacheError reports a cache backend failure. It is never fatal: callers
// treat it as a miss and fall through to the source of truth.
type CacheError struct {
	Op  string
	Key string
	Err error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *CacheError) Unwrap() error { return e.Err }

// Is reports whether target is ErrCache.
func (e *CacheError) Is(target error) bool {
	return target == ErrCache
}
