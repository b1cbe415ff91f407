// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"encoding/json"
	"fmt"
)

// Action is what a change event did to its object.
type Action string

// Change event actions.
const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// UnmarshalJSON accepts both a bare string and the {"value": ..., "label": ...}
// form the remote API uses for choice fields.
func (a *Action) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = Action(s)
		return nil
	}

	var choice struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &choice); err != nil {
		return fmt.Errorf("invalid change action %s: %w", data, err)
	}
	*a = Action(choice.Value)
	return nil
}

// ChangeEvent is one entry of the remote change log.  Events are append only.
type ChangeEvent struct {
	ID                int64           `json:"id"`
	Action            Action          `json:"action"`
	ChangedObjectType string          `json:"changed_object_type"`
	ChangedObjectID   int64           `json:"changed_object_id"`
	PrechangeData     json.RawMessage `json:"prechange_data,omitempty"`
	PostchangeData    json.RawMessage `json:"postchange_data,omitempty"`
	Display           string          `json:"display,omitempty"`
}

// Termination is the part of a cable termination payload that names its endpoint.
type Termination struct {
	TerminationType int64 `json:"termination_type"`
	TerminationID   int64 `json:"termination_id"`
}

// ObjectType is the metadata the remote API keeps per content type id.
type ObjectType struct {
	AppLabel string `json:"app_label"`
	Model    string `json:"model"`
}

// Name returns the dotted app.model form, i.e. dcim.interface
func (t ObjectType) Name() string {
	if len(t.AppLabel) == 0 || len(t.Model) == 0 {
		return ""
	}
	return t.AppLabel + PathSeparator + t.Model
}
