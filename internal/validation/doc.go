// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

// Package validation is the shared input gate for the computation core.
//
// It wraps a singleton go-playground/validator v10 instance and translates
// field errors into messages that name the json field and the violated bound,
// for example "age must be greater than or equal to 13".
//
// # Overview
//
// The package provides:
//   - Thread-safe singleton validator (initialized once, cached struct info)
//   - Field names reported by their json tag ("weight_kg", not "WeightKg")
//   - Nested fields reported as paths ("protein.min")
//   - Errors that match models.ErrValidation through errors.Is
//   - ValidateVar for single query parameters
//   - Max-below-min rejection for every models.Range in a filter
//   - Required, NotANumber, AlreadyInUse and TooShort for checks made outside
//     struct tags (path ids, query numbers, duplicate barcodes, search text)
//
// # Quick Start
//
//	if verr := validation.ValidateStruct(&profile); verr != nil {
//	    return verr
//	}
//
//	if verr := validation.ValidateVar("grams", grams, "gt=0,lte=5000"); verr != nil {
//	    return verr
//	}
//
// # Nil Interfaces
//
// ValidateStruct and ValidateVar return a concrete *Error.
// Check it against nil before converting it to error, otherwise a typed nil
// leaks into the error interface:
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    return verr // safe: non-nil pointer
//	}
//	return nil
//
// # Thread Safety
//
// All functions are safe for concurrent use.
package validation
