// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"encoding/json"
	"time"
)

// entry is the physical record wrapping every logical value.
type entry struct {
	// TS is the write time in fractional unix seconds.
	TS   float64         `json:"ts"`
	Data json.RawMessage `json:"data"`
}

func timestamp(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// encodeEntry returns the physical record and the encoded value inside it.
func encodeEntry(now time.Time, v interface{}) ([]byte, json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, nil, err
	}
	raw, err := json.Marshal(entry{
		TS:   timestamp(now),
		Data: data,
	})
	return raw, data, err
}

// decodeEntry returns false for absent or empty entries and an error for
// entries that cannot be decoded.
func decodeEntry(raw []byte) (entry, bool, error) {
	var e entry
	if len(raw) == 0 {
		return e, false, nil
	}
	if err := json.Unmarshal(raw, &e); err != nil {
		return e, false, err
	}
	return e, len(e.Data) > 0, nil
}

// fresh reports whether the entry is younger than ttl at now.
func (e entry) fresh(now time.Time, ttl time.Duration) bool {
	return timestamp(now)-ttl.Seconds() < e.TS
}
