// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyBuilders(t *testing.T) {
	assert := assert.New(t)
	p := NewPath("dcim", "devices")
	assert.Equal("dcim.devices:42", ObjectKey(p, 42))
	assert.Equal("dcim.devices:", StateKey(p))
	assert.Equal("dcim.devices:by-role.slug", IndexKey(p, "role.slug"))
	assert.Equal("changes:7", ChangeKey(7))
	assert.Equal("changes:last", HeadKey)
}

func TestParseKey(t *testing.T) {
	tcs := []struct {
		Description string
		Key         string
		Path        string
		Item        string
		Qualified   bool
		Head        bool
		Change      bool
		Index       bool
	}{
		{
			Description: "Bare path",
			Key:         "dcim.devices",
			Path:        "dcim.devices",
		},
		{
			Description: "State",
			Key:         "dcim.devices:",
			Path:        "dcim.devices",
			Qualified:   true,
		},
		{
			Description: "Object",
			Key:         "dcim.devices:12",
			Path:        "dcim.devices",
			Item:        "12",
			Qualified:   true,
		},
		{
			Description: "Index",
			Key:         "dcim.devices:by-role.slug",
			Path:        "dcim.devices",
			Item:        "by-role.slug",
			Qualified:   true,
			Index:       true,
		},
		{
			Description: "Head",
			Key:         "changes:last",
			Path:        "changes",
			Item:        "last",
			Qualified:   true,
			Head:        true,
			Change:      true,
		},
		{
			Description: "Change",
			Key:         "changes:99",
			Path:        "changes",
			Item:        "99",
			Qualified:   true,
			Change:      true,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.Description, func(t *testing.T) {
			assert := assert.New(t)
			k := ParseKey(tc.Key)
			assert.Equal(tc.Path, k.Path.String())
			assert.Equal(tc.Item, k.Item)
			assert.Equal(tc.Qualified, k.Qualified)
			assert.Equal(tc.Head, k.IsHead())
			assert.Equal(tc.Change, k.IsChange())
			assert.Equal(tc.Index, k.IsIndex())
		})
	}
}

func TestKeyID(t *testing.T) {
	k := ParseKey("dcim.devices:12")
	id, err := k.ID()
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	_, err = ParseKey("dcim.devices:by-name").ID()
	assert.Error(t, err)
	assert.Equal(t, "name", ParseKey("dcim.devices:by-name").IndexAttribute())
}
