// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package api serves the mirrored collections over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-kit/kit/endpoint"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/xmidt-org/httpaux/recovery"
	"github.com/xmidt-org/nbmirror/mirror"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

// DefaultBase is the default prefix of every route.
const DefaultBase = "api/v1"

// PanicStatusCode is written when a handler panics.
const PanicStatusCode = 555

// Config is the api section of the configuration.
type Config struct {
	// Base is the route prefix.
	// (Optional). Defaults to DefaultBase.
	Base string

	// AdminToken guards refreshes.  Requests must carry it in the
	// X-Nbmirror-Admin-Token header.
	// (Optional). If not provided, anyone may request refreshes.
	AdminToken string
}

// NewHandler builds the router for the mirror's read and refresh API.
func NewHandler(m *mirror.Mirror, config Config, logger *zap.Logger) http.Handler {
	if len(config.Base) == 0 {
		config.Base = DefaultBase
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	router := mux.NewRouter()
	router.Use(recovery.Middleware(recovery.WithStatusCode(PanicStatusCode)))

	server := func(e endpoint.Endpoint, dec kithttp.DecodeRequestFunc, enc kithttp.EncodeResponseFunc) http.Handler {
		return kithttp.NewServer(
			e,
			dec,
			enc,
			kithttp.ServerBefore(setLogger(logger)),
			kithttp.ServerErrorEncoder(encodeError),
		)
	}

	collectionPath := fmt.Sprintf("/%s/collections/{%s}", config.Base, pathVarKey)
	router.Handle(collectionPath,
		server(newGetAllEndpoint(m), decodeCollectionRequest, encodeObjectsResponse)).Methods(http.MethodGet)
	router.Handle(collectionPath+"/refresh",
		server(newRefreshEndpoint(m), refreshRequestDecoder(config), encodeRefreshResponse)).Methods(http.MethodPost)
	router.Handle(fmt.Sprintf("%s/by/{%s}", collectionPath, attributeVarKey),
		server(newGetIndexEndpoint(m), decodeGetIndexRequest, encodeObjectsResponse)).Methods(http.MethodGet)
	router.Handle(fmt.Sprintf("%s/{%s}", collectionPath, idVarKey),
		server(newGetObjectEndpoint(m), decodeGetObjectRequest, encodeJSONResponse)).Methods(http.MethodGet)
	router.Handle(fmt.Sprintf("/%s/changes/head", config.Base),
		server(newHeadEndpoint(m), decodeHeadRequest, encodeJSONResponse)).Methods(http.MethodGet)

	return router
}

// setLogger puts a request scoped logger into the context, where sallust.Get finds it.
func setLogger(logger *zap.Logger) kithttp.RequestFunc {
	return func(ctx context.Context, r *http.Request) context.Context {
		l := logger.With(
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Any("vars", mux.Vars(r)),
		)
		l.Debug("request")
		return sallust.With(ctx, l)
	}
}
