// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package model

import "strings"

// PathSeparator joins the segments of a Path.
const PathSeparator = "."

// Path names a remote collection, i.e. dcim.devices.  A Path is an immutable value
// and is safe to copy and share.
type Path struct {
	name string
}

// NewPath builds a Path out of its segments.  Empty segments are dropped.
func NewPath(segments ...string) Path {
	kept := make([]string, 0, len(segments))
	for _, s := range segments {
		if s = strings.TrimSpace(s); len(s) > 0 {
			kept = append(kept, s)
		}
	}
	return Path{name: strings.Join(kept, PathSeparator)}
}

// ParsePath splits a dotted string into a Path.
func ParsePath(dotted string) Path {
	return NewPath(strings.Split(dotted, PathSeparator)...)
}

// Child returns a new Path with the given segments appended.
func (p Path) Child(segments ...string) Path {
	return NewPath(append(p.Segments(), segments...)...)
}

// Segments returns a copy of the path's segments.
func (p Path) Segments() []string {
	if p.IsZero() {
		return nil
	}
	return strings.Split(p.name, PathSeparator)
}

// IsZero reports whether the path has no segments.
func (p Path) IsZero() bool {
	return len(p.name) == 0
}

// HasPrefix reports whether the dotted form of the path starts with prefix.
func (p Path) HasPrefix(prefix string) bool {
	return strings.HasPrefix(p.name, prefix)
}

// MatchesObjectType reports whether a change log object type (i.e. dcim.device)
// names this collection, either exactly or in its plural form.
func (p Path) MatchesObjectType(objectType string) bool {
	return len(objectType) > 0 && (p.name == objectType || p.name == objectType+"s")
}

func (p Path) String() string {
	return p.name
}
