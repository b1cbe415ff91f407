// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package changelog follows the head of the remote change log and caches the
// change events the mirror replays onto its collections.
package changelog

import (
	"cmp"
	"context"
	"errors"
	"iter"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/nbmirror/model"
	"github.com/xmidt-org/nbmirror/store"
	"go.uber.org/zap"
)

const (
	DefaultHeadTTL         = 15 * time.Second
	DefaultProbeMisses     = 4
	DefaultBootstrapWindow = 30 * time.Minute
)

var (
	ErrNilStore  = errors.New("store cannot be nil")
	ErrNilSource = errors.New("change log source cannot be nil")
)

// Source is the remote change log.
type Source interface {
	FetchChangeEvent(ctx context.Context, id int64) (model.Object, error)
	FetchChangeEventsSince(ctx context.Context, t time.Time) ([]model.Object, error)
}

// Config is the changelog section of the configuration.
type Config struct {
	// HeadTTL bounds how long a known head is trusted before the log is probed again.
	// (Optional). Defaults to 15 seconds.
	HeadTTL time.Duration

	// ProbeMisses is the number of consecutive absent ids that ends a forward probe.
	// (Optional). Defaults to 4.
	ProbeMisses int

	// BootstrapWindow is how far back a mirror without a head starts reading the log.
	// (Optional). Defaults to 30 minutes.
	BootstrapWindow time.Duration
}

// Tracker maintains the change log head and the cached change events.
type Tracker struct {
	store    *store.Store
	source   Source
	config   Config
	logger   *zap.Logger
	measures *Measures
	now      func() time.Time
}

func NewTracker(s *store.Store, src Source, config Config, measures *Measures, logger *zap.Logger) (*Tracker, error) {
	if s == nil {
		return nil, ErrNilStore
	}
	if src == nil {
		return nil, ErrNilSource
	}
	if measures == nil {
		measures = NewUnregisteredMeasures()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	validateConfig(&config)

	return &Tracker{
		store:    s,
		source:   src,
		config:   config,
		logger:   logger,
		measures: measures,
		now:      time.Now,
	}, nil
}

// HeadID returns the highest known change id, probing the remote log when the
// cached head is older than the head TTL.  It is 0 when nothing is known.
func (t *Tracker) HeadID(ctx context.Context) (int64, error) {
	var head int64
	if _, err := t.store.ReadWithExpiry(ctx, model.HeadKey, t.config.HeadTTL, &head); err != nil {
		return 0, err
	}
	return head, nil
}

// StoredHead returns the persisted head regardless of its age.
func (t *Tracker) StoredHead() (int64, error) {
	var head int64
	if _, err := t.store.Read(model.HeadKey, &head); err != nil {
		return 0, err
	}
	return head, nil
}

// RefreshHead finds the new head starting after prior.  Each event found on the
// way is cached.  The probe ends after ProbeMisses consecutive ids could not be
// fetched.  Without a prior head, the events of the bootstrap window are cached
// instead.  The result is prior when nothing new was found, and 0 when the log
// is empty.
func (t *Tracker) RefreshHead(ctx context.Context, prior int64) (int64, error) {
	var (
		head int64
		err  error
	)
	if prior == 0 {
		head, err = t.bootstrap(ctx)
	} else {
		head, err = t.probe(ctx, prior)
	}
	if err != nil {
		return 0, err
	}

	t.measures.Head.Set(float64(head))
	return head, nil
}

func (t *Tracker) probe(ctx context.Context, prior int64) (int64, error) {
	head := prior
	cursor := prior
	for misses := 0; misses < t.config.ProbeMisses; {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		cursor++
		id, err := t.fetch(ctx, cursor)
		if err != nil {
			t.logger.Debug("change log probe missed", zap.Int64("id", cursor), zap.Error(err))
			t.measures.Probes.With(prometheus.Labels{ResultLabel: MissResult}).Inc()
			misses++
			continue
		}

		t.measures.Probes.With(prometheus.Labels{ResultLabel: FoundResult}).Inc()
		head = id
		misses = 0
	}

	t.logger.Debug("change log head updated", zap.Int64("prior", prior), zap.Int64("head", head))
	return head, nil
}

// fetch caches one change event.  Any failure counts as a gap.
func (t *Tracker) fetch(ctx context.Context, id int64) (int64, error) {
	event, err := t.source.FetchChangeEvent(ctx, id)
	if err != nil {
		return 0, err
	}
	if event == nil {
		return 0, model.ErrInvalidObject
	}
	return t.cache(event)
}

func (t *Tracker) cache(event model.Object) (int64, error) {
	id, err := event.ID()
	if err != nil {
		return 0, err
	}
	return id, t.store.Write(model.ChangeKey(id), event)
}

func (t *Tracker) bootstrap(ctx context.Context) (int64, error) {
	since := t.now().Add(-t.config.BootstrapWindow)
	events, err := t.source.FetchChangeEventsSince(ctx, since)
	if err != nil {
		return 0, err
	}

	type indexed struct {
		id    int64
		event model.Object
	}
	sorted := make([]indexed, 0, len(events))
	for _, e := range events {
		id, err := e.ID()
		if err != nil {
			t.logger.Warn("skipping change event without an id", zap.Error(err))
			continue
		}
		sorted = append(sorted, indexed{id: id, event: e})
	}
	slices.SortFunc(sorted, func(a, b indexed) int {
		return cmp.Compare(a.id, b.id)
	})

	var head int64
	for _, e := range sorted {
		if _, err := t.cache(e.event); err != nil {
			return 0, err
		}
		head = e.id
	}

	t.logger.Info("change log initialized", zap.Time("since", since), zap.Int("events", len(sorted)), zap.Int64("head", head))
	return head, nil
}

// EventsSince yields the cached events after lastID up to and including the
// current head, in id order.  Ids without a cached event are skipped.  Each
// call of the returned sequence starts over.
func (t *Tracker) EventsSince(ctx context.Context, lastID int64) iter.Seq2[model.ChangeEvent, error] {
	return func(yield func(model.ChangeEvent, error) bool) {
		head, err := t.HeadID(ctx)
		if err != nil {
			yield(model.ChangeEvent{}, err)
			return
		}

		for id := lastID + 1; id <= head; id++ {
			var event model.ChangeEvent
			found, err := t.store.Read(model.ChangeKey(id), &event)
			if err != nil {
				yield(model.ChangeEvent{}, err)
				return
			}
			if !found || event.ID == 0 {
				continue
			}
			if !yield(event, nil) {
				return
			}
		}
	}
}

// ClearHead drops the cached head so that the next HeadID probes the remote log.
func (t *Tracker) ClearHead() error {
	return t.store.Delete(model.HeadKey)
}

// FetchEvent fetches one change event from the remote log.
func (t *Tracker) FetchEvent(ctx context.Context, id int64) (model.Object, error) {
	return t.source.FetchChangeEvent(ctx, id)
}

func validateConfig(config *Config) {
	if config.HeadTTL <= 0 {
		config.HeadTTL = DefaultHeadTTL
	}
	if config.ProbeMisses <= 0 {
		config.ProbeMisses = DefaultProbeMisses
	}
	if config.BootstrapWindow <= 0 {
		config.BootstrapWindow = DefaultBootstrapWindow
	}
}
