// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package sqlite

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/nbmirror/store"
	"github.com/xmidt-org/nbmirror/store/storetest"
)

func newOpener(t *testing.T) store.Opener {
	o, err := NewOpener(Config{Path: filepath.Join(t.TempDir(), "cache.sqlite")})
	require.NoError(t, err)
	return o
}

func TestOpener(t *testing.T) {
	storetest.OpenerTest(t, newOpener(t))
}

func TestStore(t *testing.T) {
	storetest.StoreTest(t, newOpener)
}

func TestDSN(t *testing.T) {
	assert := assert.New(t)
	o, err := NewOpener(Config{Path: "/var/cache/nb.sqlite"})
	require.NoError(t, err)

	rw := o.dsn(false)
	assert.True(strings.HasPrefix(rw, "file:/var/cache/nb.sqlite?"))
	assert.Contains(rw, "journal_mode%28wal%29")
	assert.NotContains(rw, "mode=ro")

	ro := o.dsn(true)
	assert.Contains(ro, "mode=ro")
	assert.Contains(ro, "busy_timeout%285000%29")
}

func TestReadOnlyMissingFile(t *testing.T) {
	o, err := NewOpener(Config{Path: filepath.Join(t.TempDir(), "absent.sqlite")})
	require.NoError(t, err)
	_, err = o.Open(true)
	assert.Error(t, err)

	_, err = NewOpener(Config{})
	assert.ErrorIs(t, err, ErrNoPath)
}
