// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package mirror keeps local copies of remote collections in sync with the
// remote change log and answers queries from them.
package mirror

import (
	"context"
	"errors"
	"sync"

	"github.com/xmidt-org/nbmirror/changelog"
	"github.com/xmidt-org/nbmirror/model"
	"github.com/xmidt-org/nbmirror/store"
	"go.uber.org/zap"
)

// JoinObjectType is the change log type of cable terminations.  Their events
// are applied to the collection of the terminated endpoint.
const JoinObjectType = "dcim.cabletermination"

var (
	// ObjectTypesPath holds the object type metadata used to resolve terminations.
	ObjectTypesPath = model.NewPath("extras", "object_types")

	// DefaultBulk is fetched from dcim.interfaces as a whole.
	DefaultBulk = []BulkCollection{
		{Path: "raw.interfaces", Source: "dcim.interfaces"},
	}

	// DefaultJoinScopes are the collection prefixes termination events may touch.
	DefaultJoinScopes = []string{"dcim.", "circuits"}
)

var (
	ErrNilStore   = errors.New("store cannot be nil")
	ErrNilTracker = errors.New("tracker cannot be nil")
	ErrNilSource  = errors.New("source cannot be nil")
	ErrEmptyPath  = errors.New("path cannot be empty")
	ErrBadItem    = errors.New("invalid refresh item")
)

// Source is the remote inventory.
type Source interface {
	FetchAll(ctx context.Context, path model.Path) ([]model.Object, error)
	FetchByID(ctx context.Context, path model.Path, id int64) (model.Object, error)
}

// BulkCollection is a collection whose records are fetched whole from Source
// rather than synchronized object by object.
type BulkCollection struct {
	Path   string
	Source string
}

// Config is the mirror section of the configuration.
type Config struct {
	// Bulk lists the pre-shaped collections.
	// (Optional). Defaults to DefaultBulk.
	Bulk []BulkCollection

	// JoinScopes are the prefixes of the collections that termination events apply to.
	// (Optional). Defaults to DefaultJoinScopes.
	JoinScopes []string
}

// Mirror owns the per-path Collections and serves as the store's refresh function.
type Mirror struct {
	store    *store.Store
	tracker  *changelog.Tracker
	source   Source
	config   Config
	logger   *zap.Logger
	measures *Measures

	bulk map[string]model.Path

	lock        sync.Mutex
	collections map[string]*Collection
}

// New builds a Mirror and installs it as the store's refresh function.
func New(s *store.Store, tracker *changelog.Tracker, src Source, config Config, measures *Measures, logger *zap.Logger) (*Mirror, error) {
	switch {
	case s == nil:
		return nil, ErrNilStore
	case tracker == nil:
		return nil, ErrNilTracker
	case src == nil:
		return nil, ErrNilSource
	}
	if measures == nil {
		measures = NewUnregisteredMeasures()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Bulk == nil {
		config.Bulk = DefaultBulk
	}
	if config.JoinScopes == nil {
		config.JoinScopes = DefaultJoinScopes
	}

	m := &Mirror{
		store:       s,
		tracker:     tracker,
		source:      src,
		config:      config,
		logger:      logger,
		measures:    measures,
		bulk:        make(map[string]model.Path, len(config.Bulk)),
		collections: make(map[string]*Collection),
	}
	for _, b := range config.Bulk {
		m.bulk[model.ParsePath(b.Path).String()] = model.ParsePath(b.Source)
	}

	s.SetRefresh(m.Refresh)
	return m, nil
}

// ReadOnly reports whether the underlying store rejects writes.
func (m *Mirror) ReadOnly() bool {
	return m.store.ReadOnly()
}

// Tracker returns the change log tracker the mirror follows.
func (m *Mirror) Tracker() *changelog.Tracker {
	return m.tracker
}

// Path returns an Accessor for the collection named by segments.
func (m *Mirror) Path(segments ...string) Accessor {
	return Accessor{mirror: m, path: model.NewPath(segments...)}
}

// Collection returns the registered Collection for path, creating it on first use.
func (m *Mirror) Collection(path model.Path) (*Collection, error) {
	if path.IsZero() {
		return nil, ErrEmptyPath
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	name := path.String()
	if c, ok := m.collections[name]; ok {
		return c, nil
	}

	c := newCollection(m, path)
	if src, ok := m.bulk[name]; ok {
		c.source = src
		c.bulk = true
	}
	m.collections[name] = c
	return c, nil
}

// Collections returns the paths of every registered Collection.
func (m *Mirror) Collections() []model.Path {
	m.lock.Lock()
	defer m.lock.Unlock()

	paths := make([]model.Path, 0, len(m.collections))
	for _, c := range m.collections {
		paths = append(paths, c.path)
	}
	return paths
}

// Close forgets every registered Collection.
func (m *Mirror) Close() {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.collections = make(map[string]*Collection)
}

// Refresh produces a fresh value for a store key:
//
//	changes:last        the change log head
//	changes:<id>        one change event
//	<path>              a forced full sync of the collection
//	<path>:             a forced full sync, returning the new change state
//	<path>:by-<attr>    a rebuilt index
//	<path>:<id>         one object
func (m *Mirror) Refresh(ctx context.Context, key string) (interface{}, error) {
	k := model.ParseKey(key)
	switch {
	case k.IsHead():
		prior, err := m.tracker.StoredHead()
		if err != nil {
			return nil, err
		}
		return m.tracker.RefreshHead(ctx, prior)

	case k.IsChange():
		id, err := k.ID()
		if err != nil {
			return nil, errors.Join(ErrBadItem, err)
		}
		return m.tracker.FetchEvent(ctx, id)

	case !k.Qualified:
		return m.RefreshAll(ctx, key)
	}

	c, err := m.Collection(k.Path)
	if err != nil {
		return nil, err
	}
	return c.Refresh(ctx, k.Item)
}

// RefreshAll forces a full sync of the collection named by the dotted path.
func (m *Mirror) RefreshAll(ctx context.Context, path string) (interface{}, error) {
	m.logger.Debug("forcing full sync", zap.String("path", path))
	c, err := m.Collection(model.ParsePath(path))
	if err != nil {
		return nil, err
	}
	return c.Refresh(ctx, "")
}
