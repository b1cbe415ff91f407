// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/arrange/arrangehttp"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

// shutdowner records application shutdown requests.
type shutdowner chan struct{}

func (s shutdowner) Shutdown(...fx.ShutdownOption) error {
	select {
	case s <- struct{}{}:
	default:
	}
	return nil
}

func TestBindServer(t *testing.T) {
	t.Run("No Address", func(t *testing.T) {
		lc := fxtest.NewLifecycle(t)
		sh := make(shutdowner, 1)
		require.NoError(t, bindServer(lc, sh, zap.NewNop(), arrangehttp.ServerConfig{}, http.NotFoundHandler()))

		lc.RequireStart()
		lc.RequireStop()
		assert.Empty(t, sh)
	})

	t.Run("Exit Shuts Down", func(t *testing.T) {
		lc := fxtest.NewLifecycle(t)
		sh := make(shutdowner, 1)
		require.NoError(t, bindServer(lc, sh, zap.NewNop(), arrangehttp.ServerConfig{Address: "127.0.0.1:0"}, http.NotFoundHandler()))

		lc.RequireStart()
		lc.RequireStop()
		select {
		case <-sh:
		case <-time.After(5 * time.Second):
			assert.Fail(t, "the application was not shut down when the server exited")
		}
	})

	t.Run("Listen Failure", func(t *testing.T) {
		lc := fxtest.NewLifecycle(t)
		sh := make(shutdowner, 1)
		require.NoError(t, bindServer(lc, sh, zap.NewNop(), arrangehttp.ServerConfig{Address: "127.0.0.1:-1"}, http.NotFoundHandler()))

		assert.Error(t, lc.Start(context.Background()))
		assert.Empty(t, sh)
	})
}
