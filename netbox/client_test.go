// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package netbox

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/nbmirror/model"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const testToken = "0123456789abcdef"

func newTestClient(t *testing.T, h http.Handler) (*Client, *Measures) {
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	m := NewUnregisteredMeasures()
	c, err := NewClient(ClientConfig{
		Address:  server.URL,
		Token:    testToken,
		PageSize: 2,
		Logger:   zap.NewNop(),
	}, m, func(context.Context) *zap.Logger { return nil })
	require.NoError(t, err)
	return c, m
}

func TestValidateConfig(t *testing.T) {
	myAmazingClient := &http.Client{Timeout: time.Hour}
	tcs := []struct {
		Description    string
		Input          ClientConfig
		ExpectedErr    error
		ExpectedConfig ClientConfig
	}{
		{
			Description: "No address",
			ExpectedErr: ErrAddressEmpty,
		},
		{
			Description: "All defined",
			Input: ClientConfig{
				Address:    "https://netbox.example.com",
				PageSize:   50,
				Timeout:    time.Minute,
				HTTPClient: myAmazingClient,
				Logger:     zap.NewNop(),
			},
			ExpectedConfig: ClientConfig{
				Address:    "https://netbox.example.com",
				PageSize:   50,
				Timeout:    time.Minute,
				HTTPClient: myAmazingClient,
				Logger:     zap.NewNop(),
			},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.Description, func(t *testing.T) {
			assert := assert.New(t)
			err := validateConfig(&tc.Input)
			assert.Equal(tc.ExpectedErr, err)
			if tc.ExpectedErr == nil {
				assert.Equal(tc.ExpectedConfig.PageSize, tc.Input.PageSize)
				assert.Equal(tc.ExpectedConfig.Timeout, tc.Input.Timeout)
				assert.Same(tc.ExpectedConfig.HTTPClient, tc.Input.HTTPClient)
			}
		})
	}

	t.Run("Defaults", func(t *testing.T) {
		c := ClientConfig{Address: "https://netbox.example.com"}
		require.NoError(t, validateConfig(&c))
		assert.Equal(t, defaultPageSize, c.PageSize)
		assert.Equal(t, defaultTimeout, c.HTTPClient.Timeout)
		assert.NotNil(t, c.Logger)
	})

	t.Run("Nil Measures", func(t *testing.T) {
		_, err := NewClient(ClientConfig{Address: "https://netbox.example.com"}, nil, nil)
		assert.ErrorIs(t, err, ErrNilMeasures)
	})
}

func TestURL(t *testing.T) {
	c, err := NewClient(ClientConfig{Address: "https://netbox.example.com/"}, NewUnregisteredMeasures(), nil)
	require.NoError(t, err)
	assert.Equal(t, "https://netbox.example.com/api/dcim/device-types/", c.URL(model.NewPath("dcim", "device_types")))
	assert.Equal(t, "https://netbox.example.com/api/core/object-changes/", c.URL(ChangesPath))
}

func TestFetchAll(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
		pages   int
	)

	c, m := newTestClient(t, http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		assert.Equal("Token "+testToken, r.Header.Get("Authorization"))
		assert.Equal("/api/dcim/devices/", r.URL.Path)
		assert.Equal("2", r.URL.Query().Get("limit"))
		pages++

		switch r.URL.Query().Get("offset") {
		case "":
			fmt.Fprintf(rw, `{"count": 3, "next": "http://%s/api/dcim/devices/?limit=2&offset=2", "results": [{"id": 1, "name": "a"}, {"id": 2, "name": "b"}]}`, r.Host)
		case "2":
			fmt.Fprint(rw, `{"count": 3, "next": null, "results": [{"id": 3, "name": "c"}]}`)
		default:
			rw.WriteHeader(http.StatusBadRequest)
		}
	}))

	objects, err := c.FetchAll(context.Background(), model.NewPath("dcim", "devices"))
	require.NoError(err)
	require.Len(objects, 3)
	assert.Equal(2, pages)
	for i, o := range objects {
		id, err := o.ID()
		assert.NoError(err)
		assert.Equal(int64(i+1), id)
	}
	assert.Equal(2.0, testutil.ToFloat64(m.Requests.WithLabelValues(ListType, SuccessOutcome)))
}

func TestFetchByID(t *testing.T) {
	tcs := []struct {
		Description string
		Code        int
		Body        string
		ExpectedErr error
		ExpectedID  int64
		Outcome     string
	}{
		{
			Description: "Success",
			Code:        http.StatusOK,
			Body:        `{"id": 42, "name": "edge1"}`,
			ExpectedID:  42,
			Outcome:     SuccessOutcome,
		},
		{
			Description: "Not Found",
			Code:        http.StatusNotFound,
			Body:        `{"detail": "Not found."}`,
			ExpectedErr: ErrNotFound,
			Outcome:     NotFoundOutcome,
		},
		{
			Description: "Forbidden",
			Code:        http.StatusForbidden,
			Body:        `{"detail": "Invalid token"}`,
			ExpectedErr: ErrFailedAuthentication,
			Outcome:     FailureOutcome,
		},
		{
			Description: "Server Error",
			Code:        http.StatusInternalServerError,
			ExpectedErr: errNonSuccessResponse,
			Outcome:     FailureOutcome,
		},
		{
			Description: "Bad JSON",
			Code:        http.StatusOK,
			Body:        `[1, 2`,
			ExpectedErr: errJSONUnmarshal,
			Outcome:     FailureOutcome,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.Description, func(t *testing.T) {
			assert := assert.New(t)
			c, m := newTestClient(t, http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
				assert.Equal("/api/dcim/devices/42/", r.URL.Path)
				rw.WriteHeader(tc.Code)
				fmt.Fprint(rw, tc.Body)
			}))

			o, err := c.FetchByID(context.Background(), model.NewPath("dcim", "devices"), 42)
			assert.Equal(1.0, testutil.ToFloat64(m.Requests.WithLabelValues(GetType, tc.Outcome)))
			if tc.ExpectedErr != nil {
				assert.ErrorIs(err, tc.ExpectedErr)
				return
			}
			assert.NoError(err)
			id, err := o.ID()
			assert.NoError(err)
			assert.Equal(tc.ExpectedID, id)
		})
	}
}

func TestFetchChangeEvents(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
		since   = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	)

	c, _ := newTestClient(t, http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/core/object-changes/":
			assert.Equal(since.Format(time.RFC3339), r.URL.Query().Get("time_after"))
			fmt.Fprint(rw, `{"count": 2, "next": null, "results": [
				{"id": 9, "action": {"value": "update", "label": "Updated"}, "changed_object_type": "dcim.device", "changed_object_id": 1},
				{"id": 7, "action": {"value": "create", "label": "Created"}, "changed_object_type": "dcim.device", "changed_object_id": 2}
			]}`)
		case "/api/core/object-changes/9/":
			fmt.Fprint(rw, `{"id": 9, "action": {"value": "update"}, "changed_object_type": "dcim.device", "changed_object_id": 1}`)
		default:
			rw.WriteHeader(http.StatusNotFound)
		}
	}))

	events, err := c.FetchChangeEventsSince(context.Background(), since)
	require.NoError(err)
	assert.Len(events, 2)

	event, err := c.FetchChangeEvent(context.Background(), 9)
	require.NoError(err)
	id, err := event.ID()
	require.NoError(err)
	assert.Equal(int64(9), id)

	_, err = c.FetchChangeEvent(context.Background(), 10)
	assert.ErrorIs(err, ErrNotFound)
}

func TestFetchAllFailure(t *testing.T) {
	c, m := newTestClient(t, http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := c.FetchAll(context.Background(), model.NewPath("ipam", "prefixes"))
	assert.ErrorIs(t, err, ErrFailedAuthentication)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues(ListType, FailureOutcome)))
}

func TestLogger(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	core, logs := observer.New(zap.DebugLevel)
	c, err := NewClient(ClientConfig{
		Address: server.URL,
		Logger:  zap.New(core),
	}, NewUnregisteredMeasures(), nil)
	require.NoError(t, err)

	_, err = c.FetchAll(context.Background(), model.NewPath("dcim", "sites"))
	require.Error(t, err)
	assert.Equal(t, 1, logs.FilterMessage("failed to list NetBox collection").Len())

	requestCore, requestLogs := observer.New(zap.DebugLevel)
	ctx := sallust.With(context.Background(), zap.New(requestCore))
	_, err = c.FetchAll(ctx, model.NewPath("dcim", "sites"))
	require.Error(t, err)
	assert.Equal(t, 1, requestLogs.FilterMessage("failed to list NetBox collection").Len())
	assert.Equal(t, 1, logs.FilterMessage("failed to list NetBox collection").Len(), "the request logger takes precedence")
}
