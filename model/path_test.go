// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPath(t *testing.T) {
	tcs := []struct {
		Description      string
		Path             Path
		ExpectedString   string
		ExpectedSegments []string
	}{
		{
			Description:      "Segments",
			Path:             NewPath("dcim", "devices"),
			ExpectedString:   "dcim.devices",
			ExpectedSegments: []string{"dcim", "devices"},
		},
		{
			Description:      "Parsed",
			Path:             ParsePath("ipam.ip_addresses"),
			ExpectedString:   "ipam.ip_addresses",
			ExpectedSegments: []string{"ipam", "ip_addresses"},
		},
		{
			Description:      "Empty segments dropped",
			Path:             NewPath("", " dcim ", "", "racks"),
			ExpectedString:   "dcim.racks",
			ExpectedSegments: []string{"dcim", "racks"},
		},
		{
			Description:      "Child",
			Path:             NewPath("dcim").Child("interfaces"),
			ExpectedString:   "dcim.interfaces",
			ExpectedSegments: []string{"dcim", "interfaces"},
		},
		{
			Description: "Zero",
			Path:        ParsePath(""),
		},
	}

	for _, tc := range tcs {
		t.Run(tc.Description, func(t *testing.T) {
			assert := assert.New(t)
			assert.Equal(tc.ExpectedString, tc.Path.String())
			assert.Equal(tc.ExpectedSegments, tc.Path.Segments())
			assert.Equal(len(tc.ExpectedString) == 0, tc.Path.IsZero())
		})
	}
}

func TestChildDoesNotAlias(t *testing.T) {
	assert := assert.New(t)
	parent := NewPath("dcim")
	a := parent.Child("devices")
	b := parent.Child("racks")
	assert.Equal("dcim", parent.String())
	assert.Equal("dcim.devices", a.String())
	assert.Equal("dcim.racks", b.String())
}

func TestMatchesObjectType(t *testing.T) {
	assert := assert.New(t)
	p := NewPath("dcim", "devices")
	assert.True(p.MatchesObjectType("dcim.device"))
	assert.True(p.MatchesObjectType("dcim.devices"))
	assert.False(p.MatchesObjectType("dcim.devicetype"))
	assert.False(p.MatchesObjectType(""))
	assert.True(p.HasPrefix("dcim.device"))
	assert.False(p.HasPrefix("circuits"))
}
