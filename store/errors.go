// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"errors"
	"net/http"
)

// Errors returned by the Store.  Most are returned wrapped with details, so use
// errors.Is to check for them.
var (
	ErrReadOnly       = errors.New("store opened in read-only mode")
	ErrNoRefresh      = errors.New("no refresh function configured")
	ErrClosed         = errors.New("store is closed")
	ErrNilOpener      = errors.New("opener cannot be nil")
	ErrUnknownMode    = errors.New("unknown store mode")
	ErrUnknownBackend = errors.New("unknown store backend")
)

// ReadOnlyErr marks ErrReadOnly as a client error for HTTP transports.
type ReadOnlyErr struct {
	Key string
}

func (e ReadOnlyErr) Error() string {
	return ErrReadOnly.Error() + ": " + e.Key
}

func (e ReadOnlyErr) Unwrap() error {
	return ErrReadOnly
}

func (e ReadOnlyErr) StatusCode() int {
	return http.StatusForbidden
}
