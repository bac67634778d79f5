// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

package models

import "time"

// API error codes.
const (
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeNotFound         = "NOT_FOUND"
	CodeInternalError    = "INTERNAL_ERROR"
	CodeBadRequest       = "BAD_REQUEST"
	CodeRateLimited      = "RATE_LIMIT_EXCEEDED"
	CodeExternalService  = "EXTERNAL_SERVICE_ERROR"
	CodeCacheUnavailable = "CACHE_UNAVAILABLE"
)

// APIResponse is the standard envelope for every JSON API response.
//
// Success:
//
//	{
//	  "status": "success",
//	  "data": {...},
//	  "metadata": {"timestamp": "2026-01-10T12:00:00Z"}
//	}
//
// Error:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "VALIDATION_FAILED",
//	    "message": "age must be greater than or equal to 13",
//	    "details": {"fields": [{"field": "age", "tag": "gte", "param": "13", ...}]}
//	  },
//	  "metadata": {"timestamp": "2026-01-10T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
	Fallback  bool      `json:"fallback,omitempty"`
}

// APIError represents an error response with structured error details.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       float64           `json:"uptime_seconds"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}
