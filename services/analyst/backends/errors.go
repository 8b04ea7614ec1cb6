// Copyright (C) 2025 Web8080
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package backends

import (
	"errors"
	"fmt"
)

// =========================================================================
// Typed Tier Errors
// =========================================================================

// ErrorCode is the closed set of reasons a model tier can fail. The
// orchestrator treats them all the same way (fall through to the next
// tier) but metrics and logs distinguish them.
type ErrorCode string

const (
	// CodeUnavailable covers transport failures, non-200 statuses and
	// unconfigured backends.
	CodeUnavailable ErrorCode = "unavailable"

	// CodeTimeout covers context deadline and cancellation.
	CodeTimeout ErrorCode = "timeout"

	// CodeEmpty marks a call that succeeded but returned no usable text.
	CodeEmpty ErrorCode = "empty"
)

// BackendError is the typed failure of one model-tier attempt.
type BackendError struct {
	Provider string
	Code     ErrorCode
	Err      error
}

func (e *BackendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Code)
}

func (e *BackendError) Unwrap() error { return e.Err }

// NewBackendError wraps err with a provider and code.
func NewBackendError(provider string, code ErrorCode, err error) *BackendError {
	return &BackendError{Provider: provider, Code: code, Err: err}
}

// CodeOf extracts the ErrorCode from err, defaulting to unavailable for
// untyped errors.
func CodeOf(err error) ErrorCode {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Code
	}
	return CodeUnavailable
}
