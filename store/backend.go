// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package store

// Handle is an open view of the physical key/value namespace.  A Handle is only
// ever used by one goroutine at a time; the Store serializes access to it.
type Handle interface {
	// Get returns the raw bytes stored under key.  The returned slice must remain
	// valid after the Handle is closed.
	Get(key string) ([]byte, bool, error)

	// Put stores value under key, replacing any prior value.
	Put(key string, value []byte) error

	// Delete removes key.  Deleting an absent key is not an error.
	Delete(key string) error

	Close() error
}

// Opener opens Handles on a backend.
type Opener interface {
	// Open returns a new Handle.  Read-only handles never modify the backend and
	// fail if the backend does not exist yet.
	Open(readOnly bool) (Handle, error)
}

// OpenerFunc adapts a function to an Opener.
type OpenerFunc func(readOnly bool) (Handle, error)

func (f OpenerFunc) Open(readOnly bool) (Handle, error) {
	return f(readOnly)
}
