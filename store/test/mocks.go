// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package test

import (
	"github.com/stretchr/testify/mock"
	"github.com/xmidt-org/nbmirror/store"
)

type MockOpener struct {
	mock.Mock
}

func (o *MockOpener) Open(readOnly bool) (store.Handle, error) {
	args := o.Called(readOnly)
	h, _ := args.Get(0).(store.Handle)
	return h, args.Error(1)
}

type MockHandle struct {
	mock.Mock
}

func (h *MockHandle) Get(key string) ([]byte, bool, error) {
	args := h.Called(key)
	value, _ := args.Get(0).([]byte)
	return value, args.Bool(1), args.Error(2)
}

func (h *MockHandle) Put(key string, value []byte) error {
	args := h.Called(key, value)
	return args.Error(0)
}

func (h *MockHandle) Delete(key string) error {
	args := h.Called(key)
	return args.Error(0)
}

func (h *MockHandle) Close() error {
	args := h.Called()
	return args.Error(0)
}
