// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package changelog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/nbmirror/model"
	"github.com/xmidt-org/nbmirror/store"
	"github.com/xmidt-org/nbmirror/store/inmem"
	"go.uber.org/zap"
)

var errNotFound = errors.New("not found")

// fakeLog is an in-memory change log keyed by id.
type fakeLog struct {
	lock    sync.Mutex
	events  map[int64]model.Object
	fetches []int64
	since   []time.Time
}

func newFakeLog(ids ...int64) *fakeLog {
	f := &fakeLog{events: make(map[int64]model.Object)}
	for _, id := range ids {
		f.add(id, model.ActionUpdate, "dcim.device", id*10)
	}
	return f
}

func (f *fakeLog) add(id int64, action model.Action, objectType string, objectID int64) {
	f.lock.Lock()
	defer f.lock.Unlock()
	raw := fmt.Sprintf(`{"id": %d, "action": {"value": %q, "label": "x"}, "changed_object_type": %q, "changed_object_id": %d}`,
		id, action, objectType, objectID)
	o, err := model.DecodeObject([]byte(raw))
	if err != nil {
		panic(err)
	}
	f.events[id] = o
}

func (f *fakeLog) FetchChangeEvent(_ context.Context, id int64) (model.Object, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.fetches = append(f.fetches, id)
	if e, ok := f.events[id]; ok {
		return e, nil
	}
	return nil, errNotFound
}

func (f *fakeLog) FetchChangeEventsSince(_ context.Context, t time.Time) ([]model.Object, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.since = append(f.since, t)
	var result []model.Object
	for _, e := range f.events {
		result = append(result, e)
	}
	return result, nil
}

type fixture struct {
	store   *store.Store
	log     *fakeLog
	tracker *Tracker
	now     time.Time
}

func newFixture(t *testing.T, log *fakeLog) *fixture {
	f := &fixture{
		log: log,
		now: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
	}

	s, err := store.New(inmem.NewInMem(), store.Options{Now: func() time.Time { return f.now }})
	require.NoError(t, err)
	f.store = s

	f.tracker, err = NewTracker(s, log, Config{}, nil, zap.NewNop())
	require.NoError(t, err)
	f.tracker.now = func() time.Time { return f.now }

	s.SetRefresh(func(ctx context.Context, key string) (interface{}, error) {
		require.Equal(t, model.HeadKey, key)
		prior, err := f.tracker.StoredHead()
		if err != nil {
			return nil, err
		}
		return f.tracker.RefreshHead(ctx, prior)
	})
	return f
}

func TestNewTracker(t *testing.T) {
	s, err := store.New(inmem.NewInMem(), store.Options{})
	require.NoError(t, err)

	_, err = NewTracker(nil, newFakeLog(), Config{}, nil, nil)
	assert.ErrorIs(t, err, ErrNilStore)
	_, err = NewTracker(s, nil, Config{}, nil, nil)
	assert.ErrorIs(t, err, ErrNilSource)

	tr, err := NewTracker(s, newFakeLog(), Config{}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, Config{
		HeadTTL:         DefaultHeadTTL,
		ProbeMisses:     DefaultProbeMisses,
		BootstrapWindow: DefaultBootstrapWindow,
	}, tr.config)
}

func TestBootstrap(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
		f       = newFixture(t, newFakeLog(7, 3, 5))
		ctx     = context.Background()
	)

	head, err := f.tracker.HeadID(ctx)
	require.NoError(err)
	assert.Equal(int64(7), head)
	require.Len(f.log.since, 1)
	assert.Equal(f.now.Add(-DefaultBootstrapWindow), f.log.since[0])
	assert.Equal(7.0, testutil.ToFloat64(f.tracker.measures.Head))

	for _, id := range []int64{3, 5, 7} {
		found, err := f.store.Read(model.ChangeKey(id), nil)
		require.NoError(err)
		assert.True(found, "event %d should be cached", id)
	}

	f.now = f.now.Add(DefaultHeadTTL - time.Millisecond)
	_, err = f.tracker.HeadID(ctx)
	require.NoError(err)
	assert.Empty(f.log.fetches, "a fresh head is not probed")
}

func TestBootstrapEmpty(t *testing.T) {
	f := newFixture(t, newFakeLog())

	head, err := f.tracker.HeadID(context.Background())
	require.NoError(t, err)
	assert.Zero(t, head)
}

func TestProbe(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
		log     = newFakeLog(1, 2)
		f       = newFixture(t, log)
		ctx     = context.Background()
	)

	head, err := f.tracker.HeadID(ctx)
	require.NoError(err)
	require.Equal(int64(2), head)

	// 3 and 4 are gaps, 8 lies beyond four consecutive misses after 7.
	log.add(5, model.ActionCreate, "dcim.site", 1)
	log.add(6, model.ActionDelete, "dcim.site", 1)
	log.add(7, model.ActionCreate, "dcim.site", 2)
	log.add(12, model.ActionCreate, "dcim.site", 3)

	f.now = f.now.Add(DefaultHeadTTL)
	head, err = f.tracker.HeadID(ctx)
	require.NoError(err)
	assert.Equal(int64(7), head)
	assert.Equal([]int64{3, 4, 5, 6, 7, 8, 9, 10, 11}, log.fetches)
	assert.Equal(3.0, testutil.ToFloat64(f.tracker.measures.Probes.WithLabelValues(FoundResult)))
	assert.Equal(6.0, testutil.ToFloat64(f.tracker.measures.Probes.WithLabelValues(MissResult)))

	var events []int64
	for e, err := range f.tracker.EventsSince(ctx, 1) {
		require.NoError(err)
		events = append(events, e.ID)
	}
	assert.Equal([]int64{2, 5, 6, 7}, events)
}

func TestProbeNothingNew(t *testing.T) {
	var (
		log = newFakeLog(1)
		f   = newFixture(t, log)
		ctx = context.Background()
	)

	_, err := f.tracker.HeadID(ctx)
	require.NoError(t, err)

	head, err := f.tracker.RefreshHead(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), head)
	assert.Equal(t, []int64{2, 3, 4, 5}, log.fetches)
}

func TestProbeCanceled(t *testing.T) {
	f := newFixture(t, newFakeLog(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.tracker.RefreshHead(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEventsSince(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
		f       = newFixture(t, newFakeLog(2, 3, 5, 6))
		ctx     = context.Background()
	)

	events := f.tracker.EventsSince(ctx, 2)

	collect := func() []int64 {
		var ids []int64
		for e, err := range events {
			require.NoError(err)
			assert.Equal(model.ActionUpdate, e.Action)
			assert.Equal(e.ID*10, e.ChangedObjectID)
			ids = append(ids, e.ID)
		}
		return ids
	}

	assert.Equal([]int64{3, 5, 6}, collect())
	assert.Equal([]int64{3, 5, 6}, collect(), "the sequence is restartable")

	var none []int64
	for e, err := range f.tracker.EventsSince(ctx, 6) {
		require.NoError(err)
		none = append(none, e.ID)
	}
	assert.Empty(none)
}

func TestClearHead(t *testing.T) {
	var (
		log = newFakeLog(4)
		f   = newFixture(t, log)
		ctx = context.Background()
	)

	head, err := f.tracker.HeadID(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(4), head)

	require.NoError(t, f.tracker.ClearHead())
	stored, err := f.tracker.StoredHead()
	require.NoError(t, err)
	assert.Zero(t, stored)

	head, err = f.tracker.HeadID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), head)
	assert.Len(t, log.since, 2, "a cleared head bootstraps again")
}

func TestFetchEvent(t *testing.T) {
	f := newFixture(t, newFakeLog(9))

	e, err := f.tracker.FetchEvent(context.Background(), 9)
	require.NoError(t, err)
	id, err := e.ID()
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)

	_, err = f.tracker.FetchEvent(context.Background(), 10)
	assert.ErrorIs(t, err, errNotFound)
}
