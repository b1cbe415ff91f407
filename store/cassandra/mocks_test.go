// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package cassandra

import (
	"sync"

	"github.com/stretchr/testify/mock"
)

type mockDB struct {
	mock.Mock
}

func (s *mockDB) Get(bucket, id string) ([]byte, bool, error) {
	args := s.Called(bucket, id)
	value, _ := args.Get(0).([]byte)
	return value, args.Bool(1), args.Error(2)
}

func (s *mockDB) Put(bucket, id string, value []byte) error {
	args := s.Called(bucket, id, value)
	return args.Error(0)
}

func (s *mockDB) Delete(bucket, id string) error {
	args := s.Called(bucket, id)
	return args.Error(0)
}

func (s *mockDB) Close() {
	s.Called()
}

func (s *mockDB) Ping() error {
	args := s.Called()
	return args.Error(0)
}

// tableDB keeps rows in memory, keyed the way the real table is.
type tableDB struct {
	lock sync.Mutex
	rows map[[2]string][]byte
}

func newTableDB() *tableDB {
	return &tableDB{rows: map[[2]string][]byte{}}
}

func (t *tableDB) Get(bucket, id string) ([]byte, bool, error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	v, ok := t.rows[[2]string{bucket, id}]
	return append([]byte(nil), v...), ok, nil
}

func (t *tableDB) Put(bucket, id string, value []byte) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.rows[[2]string{bucket, id}] = append([]byte(nil), value...)
	return nil
}

func (t *tableDB) Delete(bucket, id string) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	delete(t.rows, [2]string{bucket, id})
	return nil
}

func (t *tableDB) Close() {}

func (t *tableDB) Ping() error {
	return nil
}
