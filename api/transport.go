// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/spf13/cast"
	"github.com/xmidt-org/httpaux/erraux"
	"github.com/xmidt-org/nbmirror/mirror"
	"github.com/xmidt-org/nbmirror/model"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

// request URL path keys
const (
	pathVarKey      = "path"
	idVarKey        = "id"
	attributeVarKey = "attribute"
)

// query parameters
const (
	valueParam = "value"
	anyParam   = "any"
	noneParam  = "none"
	itemParam  = "item"
)

// Request and Response Headers
const (
	AdminTokenHeaderKey = "X-Nbmirror-Admin-Token"
	ErrorHeaderKey      = "X-Nbmirror-Error"
)

var (
	// ErrCasting indicates there was a middleware wiring mistake with the go-kit style
	// encoders.
	ErrCasting = errors.New("casting error due to middleware wiring mistake")

	errPathVarMissing = &erraux.Error{
		Err:  errors.New("{path} URL path parameter missing or invalid"),
		Code: http.StatusBadRequest,
	}
	errIDVarInvalid = &erraux.Error{
		Err:  errors.New("{id} URL path parameter must be an integer"),
		Code: http.StatusBadRequest,
	}
	errAttributeVarMissing = &erraux.Error{
		Err:  errors.New("{attribute} URL path parameter missing"),
		Code: http.StatusBadRequest,
	}
	errQueryInvalid = &erraux.Error{
		Err:  errors.New("exactly one of value, any=true or none=true is required"),
		Code: http.StatusBadRequest,
	}
	errAdminTokenInvalid = &erraux.Error{
		Err:  errors.New("refreshes require a valid admin token"),
		Code: http.StatusUnauthorized,
	}
	errObjectNotFound = &erraux.Error{
		Err:  errors.New("object not found"),
		Code: http.StatusNotFound,
	}
)

type collectionRequest struct {
	path model.Path
}

type getObjectRequest struct {
	path model.Path
	id   int64
}

type getIndexRequest struct {
	path      model.Path
	attribute string
	query     model.QueryKey
}

type refreshRequest struct {
	path model.Path
	item string
}

type headResponse struct {
	Head int64 `json:"head"`
}

func pathVar(r *http.Request) (model.Path, error) {
	p, ok := mux.Vars(r)[pathVarKey]
	if !ok || len(p) == 0 || strings.Contains(p, model.KeySeparator) {
		return model.Path{}, errPathVarMissing
	}
	return model.ParsePath(p), nil
}

func decodeCollectionRequest(_ context.Context, r *http.Request) (interface{}, error) {
	path, err := pathVar(r)
	if err != nil {
		return nil, err
	}
	return &collectionRequest{path: path}, nil
}

func decodeGetObjectRequest(_ context.Context, r *http.Request) (interface{}, error) {
	path, err := pathVar(r)
	if err != nil {
		return nil, err
	}
	id, err := strconv.ParseInt(mux.Vars(r)[idVarKey], 10, 64)
	if err != nil {
		return nil, errIDVarInvalid
	}
	return &getObjectRequest{path: path, id: id}, nil
}

func decodeGetIndexRequest(_ context.Context, r *http.Request) (interface{}, error) {
	path, err := pathVar(r)
	if err != nil {
		return nil, err
	}
	attribute := mux.Vars(r)[attributeVarKey]
	if len(attribute) == 0 {
		return nil, errAttributeVarMissing
	}

	query := r.URL.Query()
	var (
		keys  []model.QueryKey
		value = query.Get(valueParam)
	)
	if query.Has(valueParam) {
		keys = append(keys, model.Exact(value))
	}
	if cast.ToBool(query.Get(anyParam)) {
		keys = append(keys, model.Any)
	}
	if cast.ToBool(query.Get(noneParam)) {
		keys = append(keys, model.Missing)
	}
	if len(keys) != 1 {
		return nil, errQueryInvalid
	}

	return &getIndexRequest{path: path, attribute: attribute, query: keys[0]}, nil
}

func refreshRequestDecoder(config Config) kithttp.DecodeRequestFunc {
	return func(_ context.Context, r *http.Request) (interface{}, error) {
		if len(config.AdminToken) > 0 &&
			subtle.ConstantTimeCompare([]byte(config.AdminToken), []byte(r.Header.Get(AdminTokenHeaderKey))) != 1 {
			return nil, errAdminTokenInvalid
		}
		path, err := pathVar(r)
		if err != nil {
			return nil, err
		}
		return &refreshRequest{path: path, item: r.URL.Query().Get(itemParam)}, nil
	}
}

func decodeHeadRequest(context.Context, *http.Request) (interface{}, error) {
	return nil, nil
}

func encodeJSONResponse(ctx context.Context, rw http.ResponseWriter, response interface{}) error {
	data, err := json.Marshal(response)
	if err != nil {
		return err
	}
	rw.Header().Set("Content-Type", "application/json")
	_, err = rw.Write(data)
	return err
}

func encodeObjectsResponse(ctx context.Context, rw http.ResponseWriter, response interface{}) error {
	objects, ok := response.([]model.Object)
	if !ok {
		return ErrCasting
	}
	if objects == nil {
		objects = []model.Object{}
	}
	return encodeJSONResponse(ctx, rw, objects)
}

func encodeRefreshResponse(ctx context.Context, rw http.ResponseWriter, response interface{}) error {
	raw, ok := response.(json.RawMessage)
	if !ok {
		return ErrCasting
	}
	rw.Header().Set("Content-Type", "application/json")
	_, err := rw.Write(raw)
	return err
}

func encodeError(ctx context.Context, err error, w http.ResponseWriter) {
	w.Header().Set(ErrorHeaderKey, err.Error())

	var headerer kithttp.Headerer
	if errors.As(err, &headerer) {
		for k, values := range headerer.Headers() {
			for _, v := range values {
				w.Header().Add(k, v)
			}
		}
	}

	code := http.StatusInternalServerError
	var sc kithttp.StatusCoder
	switch {
	case errors.As(err, &sc):
		code = sc.StatusCode()
	case errors.Is(err, mirror.ErrBadItem), errors.Is(err, mirror.ErrEmptyPath):
		code = http.StatusBadRequest
	}

	logger := sallust.Get(ctx)
	if code >= http.StatusInternalServerError {
		logger.Error("request failed", zap.Int("code", code), zap.Error(err))
	} else {
		logger.Debug("request rejected", zap.Int("code", code), zap.Error(err))
	}
	w.WriteHeader(code)
}
