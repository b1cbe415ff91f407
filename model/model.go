// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cast"
)

var (
	ErrMissingID     = errors.New("object has no id")
	ErrInvalidObject = errors.New("object is not a JSON object")
)

// ChangeState is the per collection synchronization record.
type ChangeState struct {
	// CSID is the id of the last change event applied to AllIDs.
	CSID int64 `json:"csid"`

	// AllIDs is the membership of the collection as of CSID.
	AllIDs []int64 `json:"allids"`
}

// Index maps encoded attribute values to the ids of the objects carrying them.
type Index struct {
	// CSet is the change id the index was built against.
	CSet int64 `json:"cset"`

	// Items maps a bucket (see QueryKey.Bucket) to the ordered ids in it.
	Items map[string][]int64 `json:"items"`
}

// NewIndex returns an empty index built at the given change id.
func NewIndex(cset int64) Index {
	return Index{
		CSet:  cset,
		Items: map[string][]int64{},
	}
}

// Add files id under bucket.
func (i *Index) Add(bucket string, id int64) {
	if i.Items == nil {
		i.Items = map[string][]int64{}
	}
	i.Items[bucket] = append(i.Items[bucket], id)
}

// Lookup returns the ids filed under the query's bucket.
func (i Index) Lookup(q QueryKey) []int64 {
	return i.Items[q.Bucket()]
}

// Object is a decoded remote object.  Numbers are kept as json.Number so that
// ids and attribute values survive without float rounding.
type Object map[string]interface{}

// DecodeObject decodes a raw object record.
func DecodeObject(raw json.RawMessage) (Object, error) {
	d := json.NewDecoder(bytes.NewReader(raw))
	d.UseNumber()

	var o Object
	if err := d.Decode(&o); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidObject, err)
	}
	if o == nil {
		return nil, ErrInvalidObject
	}
	return o, nil
}

// ID returns the object's integer id.
func (o Object) ID() (int64, error) {
	v, ok := o["id"]
	if !ok || v == nil {
		return 0, ErrMissingID
	}
	id, err := cast.ToInt64E(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMissingID, err)
	}
	return id, nil
}

// Walk follows a sequence of attribute names through nested objects.  It returns
// false as soon as a segment is absent, null, or the current value is not an object.
func (o Object) Walk(attributes []string) (interface{}, bool) {
	var current interface{} = map[string]interface{}(o)
	for _, a := range attributes {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[a]
		if !ok || current == nil {
			return nil, false
		}
	}
	return current, true
}
