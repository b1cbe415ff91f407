// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"encoding/json"

	"github.com/spf13/cast"
)

// Index buckets.
const (
	BucketNone        = "NONE"
	BucketAny         = "ANY"
	BucketValuePrefix = "VAL:"
)

type queryKind int

const (
	exactQuery queryKind = iota
	missingQuery
	anyQuery
)

// QueryKey selects one bucket of a secondary index.
type QueryKey struct {
	kind  queryKind
	value string
}

var (
	// Missing selects objects where the attribute is absent or null.
	Missing = QueryKey{kind: missingQuery}

	// Any selects every object carrying a non-null attribute.
	Any = QueryKey{kind: anyQuery}
)

// Exact selects objects whose attribute equals v.  A nil v is the same as Missing.
func Exact(v interface{}) QueryKey {
	if v == nil {
		return Missing
	}
	return QueryKey{kind: exactQuery, value: FormatValue(v)}
}

// Bucket returns the index bucket the query reads.
func (q QueryKey) Bucket() string {
	switch q.kind {
	case missingQuery:
		return BucketNone
	case anyQuery:
		return BucketAny
	default:
		return BucketValuePrefix + q.value
	}
}

func (q QueryKey) String() string {
	return q.Bucket()
}

// ValueBucket returns the bucket an attribute value is filed under.
func ValueBucket(v interface{}) string {
	return BucketValuePrefix + FormatValue(v)
}

// FormatValue renders scalars the same way whether they come from a decoded
// object or from a caller's query; composite values are rendered as JSON.
func FormatValue(v interface{}) string {
	switch v.(type) {
	case map[string]interface{}, []interface{}, Object:
		data, _ := json.Marshal(v)
		return string(data)
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		data, _ := json.Marshal(v)
		return string(data)
	}
	return s
}
