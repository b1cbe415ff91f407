// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package mirror

import (
	"context"
	"encoding/json"

	"github.com/xmidt-org/nbmirror/model"
)

// Accessor addresses one collection of a Mirror.  Accessors are immutable values;
// Child returns a new one.
type Accessor struct {
	mirror *Mirror
	path   model.Path
}

func (a Accessor) Path() model.Path {
	return a.path
}

// Child returns the Accessor of a nested path, i.e. m.Path("dcim").Child("devices")
func (a Accessor) Child(segments ...string) Accessor {
	return Accessor{mirror: a.mirror, path: a.path.Child(segments...)}
}

func (a Accessor) Get(ctx context.Context, id int64) (model.Object, bool, error) {
	c, err := a.mirror.Collection(a.path)
	if err != nil {
		return nil, false, err
	}
	return c.Get(ctx, id)
}

func (a Accessor) All(ctx context.Context) ([]model.Object, error) {
	c, err := a.mirror.Collection(a.path)
	if err != nil {
		return nil, err
	}
	return c.All(ctx)
}

func (a Accessor) GetIndex(ctx context.Context, attribute string, q model.QueryKey) ([]model.Object, error) {
	c, err := a.mirror.Collection(a.path)
	if err != nil {
		return nil, err
	}
	return c.GetIndex(ctx, attribute, q)
}

// Refresh forces a refresh of item through the store, so the new value is
// persisted.  item is "" for the whole collection.
func (a Accessor) Refresh(ctx context.Context, item string) (json.RawMessage, error) {
	if a.path.IsZero() {
		return nil, ErrEmptyPath
	}
	return a.mirror.store.Refresh(ctx, a.path.String()+model.KeySeparator+item)
}
