// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"strconv"
	"strings"
)

// Key namespaces of the persistent store.
const (
	KeySeparator     = ":"
	IndexItemPrefix  = "by-"
	ChangesNamespace = "changes"
	HeadItem         = "last"

	// HeadKey holds the highest change id known to this mirror.
	HeadKey = ChangesNamespace + KeySeparator + HeadItem
)

// ObjectKey is the store key of one object record, i.e. dcim.devices:42.
func ObjectKey(p Path, id int64) string {
	return p.String() + KeySeparator + strconv.FormatInt(id, 10)
}

// StateKey is the store key of a collection's change state record, i.e. dcim.devices:
func StateKey(p Path) string {
	return p.String() + KeySeparator
}

// IndexKey is the store key of a secondary index, i.e. dcim.devices:by-role.slug
func IndexKey(p Path, attribute string) string {
	return p.String() + KeySeparator + IndexItemPrefix + attribute
}

// ChangeKey is the store key of a cached change event, i.e. changes:1234
func ChangeKey(id int64) string {
	return ChangesNamespace + KeySeparator + strconv.FormatInt(id, 10)
}

// Key is a parsed store key.
type Key struct {
	// Path is the collection (or the changes namespace) the key belongs to.
	Path Path

	// Item is whatever follows the separator.  It is empty for state keys.
	Item string

	// Qualified is false for bare collection names without a separator.
	Qualified bool
}

// ParseKey splits a store key into its collection and item parts.
func ParseKey(key string) Key {
	path, item, found := strings.Cut(key, KeySeparator)
	return Key{
		Path:      ParsePath(path),
		Item:      item,
		Qualified: found,
	}
}

// IsHead reports whether the key is the change log head pointer.
func (k Key) IsHead() bool {
	return k.IsChange() && k.Item == HeadItem
}

// IsChange reports whether the key lives in the change event namespace.
func (k Key) IsChange() bool {
	return k.Qualified && k.Path.String() == ChangesNamespace
}

// IsIndex reports whether the key names a secondary index.
func (k Key) IsIndex() bool {
	return k.Qualified && strings.HasPrefix(k.Item, IndexItemPrefix)
}

// IndexAttribute returns the dotted attribute path of an index key.
func (k Key) IndexAttribute() string {
	return strings.TrimPrefix(k.Item, IndexItemPrefix)
}

// ID parses the item part as an object or change id.
func (k Key) ID() (int64, error) {
	return strconv.ParseInt(k.Item, 10, 64)
}
