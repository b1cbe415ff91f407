// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"

	"github.com/go-kit/kit/endpoint"
	"github.com/xmidt-org/nbmirror/mirror"
)

func newGetAllEndpoint(m *mirror.Mirror) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		r := request.(*collectionRequest)
		return m.Path(r.path.Segments()...).All(ctx)
	}
}

func newGetObjectEndpoint(m *mirror.Mirror) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		r := request.(*getObjectRequest)
		o, found, err := m.Path(r.path.Segments()...).Get(ctx, r.id)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, errObjectNotFound
		}
		return o, nil
	}
}

func newGetIndexEndpoint(m *mirror.Mirror) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		r := request.(*getIndexRequest)
		return m.Path(r.path.Segments()...).GetIndex(ctx, r.attribute, r.query)
	}
}

func newRefreshEndpoint(m *mirror.Mirror) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		r := request.(*refreshRequest)
		return m.Path(r.path.Segments()...).Refresh(ctx, r.item)
	}
}

func newHeadEndpoint(m *mirror.Mirror) endpoint.Endpoint {
	return func(ctx context.Context, _ interface{}) (interface{}, error) {
		head, err := m.Tracker().HeadID(ctx)
		if err != nil {
			return nil, err
		}
		return headResponse{Head: head}, nil
	}
}
