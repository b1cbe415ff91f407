// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package inmem

import (
	"sync"

	"github.com/xmidt-org/nbmirror/store"
)

// InMem is a store.Opener whose handles all share one map.
type InMem struct {
	data map[string][]byte
	lock sync.RWMutex
}

func NewInMem() *InMem {
	return &InMem{
		data: map[string][]byte{},
	}
}

// Open never fails; a read-only handle rejects writes.
func (i *InMem) Open(readOnly bool) (store.Handle, error) {
	return &handle{mem: i, readOnly: readOnly}, nil
}

// Len returns the number of keys held.
func (i *InMem) Len() int {
	i.lock.RLock()
	defer i.lock.RUnlock()
	return len(i.data)
}

// Keys returns a snapshot of the keys held.
func (i *InMem) Keys() []string {
	i.lock.RLock()
	defer i.lock.RUnlock()
	keys := make([]string, 0, len(i.data))
	for k := range i.data {
		keys = append(keys, k)
	}
	return keys
}

type handle struct {
	mem      *InMem
	readOnly bool
	closed   bool
}

func (h *handle) Get(key string) ([]byte, bool, error) {
	if h.closed {
		return nil, false, store.ErrClosed
	}
	h.mem.lock.RLock()
	defer h.mem.lock.RUnlock()
	v, ok := h.mem.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (h *handle) Put(key string, value []byte) error {
	if err := h.writable(key); err != nil {
		return err
	}
	h.mem.lock.Lock()
	defer h.mem.lock.Unlock()
	h.mem.data[key] = append([]byte(nil), value...)
	return nil
}

func (h *handle) Delete(key string) error {
	if err := h.writable(key); err != nil {
		return err
	}
	h.mem.lock.Lock()
	defer h.mem.lock.Unlock()
	delete(h.mem.data, key)
	return nil
}

func (h *handle) Close() error {
	h.closed = true
	return nil
}

func (h *handle) writable(key string) error {
	if h.closed {
		return store.ErrClosed
	}
	if h.readOnly {
		return store.ReadOnlyErr{Key: key}
	}
	return nil
}
