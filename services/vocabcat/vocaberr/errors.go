// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package vocaberr defines the tagged error taxonomy shared by every layer of
// the vocabulary diagnostic engine. Handlers never leak underlying error
// strings to clients; they switch on Kind.
package vocaberr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is a machine-readable error category. This is the only error
// vocabulary used across the engine — no other sentinel values are
// introduced elsewhere.
type Kind string

const (
	BadRequest             Kind = "bad_request"
	NotFound               Kind = "not_found"
	Conflict               Kind = "conflict"
	Gone                   Kind = "gone"
	PoolExhausted          Kind = "pool_exhausted"
	InvariantViolation     Kind = "invariant_violation"
	PersistenceUnavailable Kind = "persistence_unavailable"
	Internal               Kind = "internal"
)

// HTTPStatus maps a Kind to the HTTP status code the wire layer returns.
func (k Kind) HTTPStatus() int {
	switch k {
	case BadRequest:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case Gone:
		return http.StatusGone
	case PoolExhausted:
		// Pool exhaustion terminates the session cleanly; it is reported to
		// the client as a normal (if disappointing) outcome, not a failure.
		return http.StatusOK
	case InvariantViolation:
		return http.StatusInternalServerError
	case PersistenceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a tagged error: a Kind plus a human-readable message plus an
// optional wrapped cause. The wrapped cause is never serialized to the wire;
// it exists for logs only.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a tagged error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds a tagged error around an existing cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the Kind from err, defaulting to Internal when err is not
// (or does not wrap) a *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err is (or wraps) a tagged error of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
