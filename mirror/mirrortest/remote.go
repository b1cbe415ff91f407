// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package mirrortest provides an in-memory remote inventory and a ready to use
// Mirror for tests of packages built on top of the mirror.
package mirrortest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/nbmirror/changelog"
	"github.com/xmidt-org/nbmirror/mirror"
	"github.com/xmidt-org/nbmirror/model"
	"github.com/xmidt-org/nbmirror/netbox"
	"github.com/xmidt-org/nbmirror/store"
	"github.com/xmidt-org/nbmirror/store/inmem"
	"go.uber.org/zap"
)

// Remote serves collections and change events from memory.  It satisfies both
// mirror.Source and changelog.Source.
type Remote struct {
	lock    sync.Mutex
	objects map[string]map[int64]model.Object
	events  map[int64]model.Object
	fetches map[string]int
	err     error
}

func NewRemote() *Remote {
	return &Remote{
		objects: make(map[string]map[int64]model.Object),
		events:  make(map[int64]model.Object),
		fetches: make(map[string]int),
	}
}

// Object decodes a formatted JSON object and panics on failure.
func Object(format string, args ...interface{}) model.Object {
	o, err := model.DecodeObject([]byte(fmt.Sprintf(format, args...)))
	if err != nil {
		panic(err)
	}
	return o
}

// Put adds or replaces objects of a collection.
func (r *Remote) Put(path model.Path, objects ...model.Object) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, o := range objects {
		id, err := o.ID()
		if err != nil {
			panic(err)
		}
		if r.objects[path.String()] == nil {
			r.objects[path.String()] = make(map[int64]model.Object)
		}
		r.objects[path.String()][id] = o
	}
}

// Fail makes every fetch return err until it is called again with nil.
func (r *Remote) Fail(err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.err = err
}

// Fetches returns how many times the collection was fetched as a whole.
func (r *Remote) Fetches(path model.Path) int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.fetches[path.String()]
}

func (r *Remote) FetchAll(_ context.Context, path model.Path) ([]model.Object, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.fetches[path.String()]++
	result := make([]model.Object, 0, len(r.objects[path.String()]))
	for _, o := range r.objects[path.String()] {
		result = append(result, o)
	}
	return result, nil
}

func (r *Remote) FetchByID(_ context.Context, path model.Path, id int64) (model.Object, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if o, ok := r.objects[path.String()][id]; ok {
		return o, nil
	}
	return nil, netbox.ErrNotFound
}

func (r *Remote) FetchChangeEvent(_ context.Context, id int64) (model.Object, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if e, ok := r.events[id]; ok {
		return e, nil
	}
	return nil, netbox.ErrNotFound
}

func (r *Remote) FetchChangeEventsSince(context.Context, time.Time) ([]model.Object, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	result := make([]model.Object, 0, len(r.events))
	for _, e := range r.events {
		result = append(result, e)
	}
	return result, nil
}

// Fixture is a Mirror over an in-memory backend with a frozen clock.
type Fixture struct {
	T       *testing.T
	Backend *inmem.InMem
	Store   *store.Store
	Remote  *Remote
	Mirror  *mirror.Mirror
	Now     time.Time
}

// NewFixture builds a writable Mirror whose change log head is already known.
func NewFixture(t *testing.T, head int64) *Fixture {
	f := &Fixture{
		T:       t,
		Backend: inmem.NewInMem(),
		Remote:  NewRemote(),
		Now:     time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
	}
	f.Store, f.Mirror = f.Open(false)
	f.SetHead(head)
	return f
}

// Open builds another store and mirror over the fixture's backend.
func (f *Fixture) Open(readOnly bool) (*store.Store, *mirror.Mirror) {
	s, err := store.New(f.Backend, store.Options{
		ReadOnly: readOnly,
		Now:      func() time.Time { return f.Now },
	})
	require.NoError(f.T, err)

	tracker, err := changelog.NewTracker(s, f.Remote, changelog.Config{}, nil, zap.NewNop())
	require.NoError(f.T, err)

	m, err := mirror.New(s, tracker, f.Remote, mirror.Config{}, nil, zap.NewNop())
	require.NoError(f.T, err)
	return s, m
}

// SetHead records head as the current change log head, fresh as of now.
func (f *Fixture) SetHead(head int64) {
	require.NoError(f.T, f.Store.Write(model.HeadKey, head))
}
