// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"fmt"
	"strings"
)

// Mode controls how long a Store keeps a backend Handle open.
type Mode int

const (
	// Transactional opens and closes a Handle around every operation, so each
	// operation observes the latest state written by other processes.
	Transactional Mode = iota

	// Exclusive opens one Handle and keeps it until the Store is closed.
	Exclusive

	// Rotating behaves like Exclusive but reopens the Handle once it has been
	// open for longer than the rotate interval.
	Rotating
)

var modeNames = map[Mode]string{
	Transactional: "transactional",
	Exclusive:     "exclusive",
	Rotating:      "rotate",
}

func (m Mode) String() string {
	if n, ok := modeNames[m]; ok {
		return n
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses a configured mode name.  The empty string is Transactional.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) == 0 {
		return Transactional, nil
	}
	for m, n := range modeNames {
		if n == s {
			return m, nil
		}
	}
	return Transactional, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}
