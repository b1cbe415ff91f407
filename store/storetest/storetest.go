// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package storetest holds the behavior every store backend must share.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/nbmirror/model"
	"github.com/xmidt-org/nbmirror/store"
)

var GenericKey = model.ObjectKey(model.NewPath("dcim", "devices"), 1967)

var GenericValue = []byte(`{"ts": 1, "data": {"id": 1967, "words": ["What", "a", "Wonderful", "World"]}}`)

// OpenerTest checks raw Handle behavior.  The opener must start empty.
func OpenerTest(t *testing.T, o store.Opener) {
	assert := assert.New(t)
	require := require.New(t)

	h, err := o.Open(false)
	require.NoError(err)

	t.Log("Basic Test")
	_, found, err := h.Get(GenericKey)
	assert.NoError(err)
	assert.False(found)

	value := append([]byte(nil), GenericValue...)
	require.NoError(h.Put(GenericKey, value))
	value[0] = 'X'

	got, found, err := h.Get(GenericKey)
	assert.NoError(err)
	assert.True(found)
	assert.Equal(GenericValue, got)

	require.NoError(h.Put(GenericKey, []byte(`{}`)))
	got, _, err = h.Get(GenericKey)
	assert.NoError(err)
	assert.Equal([]byte(`{}`), got)

	require.NoError(h.Put(GenericKey, GenericValue))
	require.NoError(h.Close())

	t.Log("Persisted across handles")
	ro, err := o.Open(true)
	require.NoError(err)
	got, found, err = ro.Get(GenericKey)
	assert.NoError(err)
	assert.True(found)
	assert.Equal(GenericValue, got)

	t.Log("Read-only handle rejects writes")
	assert.Error(ro.Put("other", GenericValue))
	assert.Error(ro.Delete(GenericKey))
	require.NoError(ro.Close())

	h, err = o.Open(false)
	require.NoError(err)
	_, found, err = h.Get("other")
	assert.NoError(err)
	assert.False(found)

	t.Log("Delete")
	assert.NoError(h.Delete(GenericKey))
	_, found, err = h.Get(GenericKey)
	assert.NoError(err)
	assert.False(found)
	assert.NoError(h.Delete(GenericKey), "deleting an absent key is not an error")
	assert.NoError(h.Close())
}

// StoreTest runs a Store over the opener in every mode.  newOpener must return
// a fresh, empty backend on each call.
func StoreTest(t *testing.T, newOpener func(t *testing.T) store.Opener) {
	for _, mode := range []store.Mode{store.Transactional, store.Exclusive, store.Rotating} {
		t.Run(mode.String(), func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			o := newOpener(t)
			s, err := store.New(o, store.Options{Mode: mode})
			require.NoError(err)

			state := model.ChangeState{CSID: 12, AllIDs: []int64{1, 2, 3}}
			key := model.StateKey(model.NewPath("dcim", "devices"))
			require.NoError(s.Write(key, state))

			var got model.ChangeState
			found, err := s.Read(key, &got)
			require.NoError(err)
			assert.True(found)
			assert.Equal(state, got)

			refreshed := 0
			s.SetRefresh(func(_ context.Context, k string) (interface{}, error) {
				refreshed++
				return map[string]interface{}{"id": 1}, nil
			})
			var obj map[string]interface{}
			found, err = s.ReadWithExpiry(context.Background(), GenericKey, s.Lifetime(), &obj)
			require.NoError(err)
			assert.True(found)
			assert.Equal(1, refreshed)
			found, err = s.ReadWithExpiry(context.Background(), GenericKey, s.Lifetime(), &obj)
			require.NoError(err)
			assert.True(found)
			assert.Equal(1, refreshed)

			require.NoError(s.Delete(key))
			require.NoError(s.Delete(key))
			found, err = s.Read(key, &got)
			require.NoError(err)
			assert.False(found)
			require.NoError(s.Close())

			ro, err := store.New(o, store.Options{Mode: mode, ReadOnly: true})
			require.NoError(err)
			defer ro.Close()
			err = ro.Write(key, state)
			assert.True(errors.Is(err, store.ErrReadOnly))
			err = ro.Delete(GenericKey)
			assert.True(errors.Is(err, store.ErrReadOnly))
			found, err = ro.Read(GenericKey, &obj)
			require.NoError(err)
			assert.True(found, "read-only store sees the writer's data")
		})
	}
}
