// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/nbmirror/model"
	"github.com/xmidt-org/nbmirror/netbox"
	"github.com/xmidt-org/nbmirror/store"
	"go.uber.org/zap"
)

// Collection is the synchronization state of one remote collection.  The
// in-memory snapshot is guarded by a mutex that is never held during I/O; two
// concurrent syncs compute the same result.
type Collection struct {
	mirror *Mirror
	path   model.Path

	// source is where the records come from.  It differs from path only for
	// bulk collections.
	source model.Path
	bulk   bool

	lock   sync.Mutex
	synced bool
	csid   int64
	ids    map[int64]struct{}
}

func newCollection(m *Mirror, path model.Path) *Collection {
	return &Collection{
		mirror: m,
		path:   path,
		source: path,
	}
}

func (c *Collection) Path() model.Path {
	return c.path
}

// CSID returns the last change id applied to the in-memory snapshot.
func (c *Collection) CSID() int64 {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.csid
}

// IDs brings the collection up to date and returns its members in ascending order.
func (c *Collection) IDs(ctx context.Context) ([]int64, error) {
	if err := c.update(ctx, false); err != nil {
		return nil, err
	}
	return c.snapshot(), nil
}

func (c *Collection) snapshot() []int64 {
	c.lock.Lock()
	defer c.lock.Unlock()
	return sortedIDs(c.ids)
}

func (c *Collection) set(csid int64, ids map[int64]struct{}) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.synced = true
	c.csid = csid
	c.ids = ids
}

func (c *Collection) current(head int64) bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.synced && c.csid == head
}

// Get brings the collection up to date and returns the object with the given id.
// The object record is fetched when it is not cached.
func (c *Collection) Get(ctx context.Context, id int64) (model.Object, bool, error) {
	if err := c.update(ctx, false); err != nil {
		return nil, false, err
	}

	var raw json.RawMessage
	found, err := c.mirror.store.ReadWithExpiry(ctx, model.ObjectKey(c.path, id), c.mirror.store.Lifetime(), &raw)
	if err != nil || !found || isNull(raw) {
		return nil, false, err
	}

	o, err := model.DecodeObject(raw)
	if err != nil {
		return nil, false, err
	}
	return o, true, nil
}

// All brings the collection up to date and returns every member, ordered by id.
func (c *Collection) All(ctx context.Context) ([]model.Object, error) {
	ids, err := c.IDs(ctx)
	if err != nil {
		return nil, err
	}
	return c.batch(ctx, ids)
}

func (c *Collection) batch(ctx context.Context, ids []int64) ([]model.Object, error) {
	records, err := c.mirror.store.GetBatch(ctx, c.path, ids)
	if err != nil {
		return nil, err
	}

	objects := make([]model.Object, 0, len(records))
	for _, raw := range records {
		o, err := model.DecodeObject(raw)
		if err != nil {
			c.mirror.logger.Warn("skipping undecodable object record", zap.Stringer("path", c.path), zap.Error(err))
			continue
		}
		objects = append(objects, o)
	}
	return objects, nil
}

// Refresh produces a fresh value for an item of the collection: "" forces a
// full sync, by-<attr> builds an index and anything else fetches one object.
func (c *Collection) Refresh(ctx context.Context, item string) (interface{}, error) {
	if c.mirror.ReadOnly() {
		return nil, store.ReadOnlyErr{Key: c.path.String() + model.KeySeparator + item}
	}

	switch {
	case item == "":
		if err := c.update(ctx, true); err != nil {
			return nil, err
		}
		return model.ChangeState{CSID: c.CSID(), AllIDs: c.snapshot()}, nil

	case strings.HasPrefix(item, model.IndexItemPrefix):
		attribute := strings.TrimPrefix(item, model.IndexItemPrefix)
		if len(attribute) == 0 {
			return nil, ErrBadItem
		}
		return c.buildIndex(ctx, attribute)
	}

	id, err := strconv.ParseInt(item, 10, 64)
	if err != nil {
		return nil, errors.Join(ErrBadItem, err)
	}

	o, err := c.mirror.source.FetchByID(ctx, c.source, id)
	if errors.Is(err, netbox.ErrNotFound) {
		return nil, nil
	}
	return o, err
}

// update runs the synchronization protocol.  It does nothing while the snapshot
// was built against the current head, unless forced.
func (c *Collection) update(ctx context.Context, force bool) error {
	m := c.mirror
	head, err := m.tracker.HeadID(ctx)
	if err != nil {
		return err
	}
	if !force && c.current(head) {
		m.count(SkipSync)
		return nil
	}

	var state model.ChangeState
	found, err := m.store.Read(model.StateKey(c.path), &state)
	if err != nil {
		return err
	}

	if m.store.ReadOnly() {
		if !found {
			m.logger.Warn("no change state for collection in read-only mirror", zap.Stringer("path", c.path))
		}
		c.set(state.CSID, toSet(state.AllIDs))
		m.count(ReadOnlySync)
		return nil
	}

	var (
		csid int64
		ids  map[int64]struct{}
	)
	if !found || force {
		csid, ids, err = c.fetchAll(ctx, head)
		m.count(FullSync)
	} else {
		csid, ids, err = c.applyEvents(ctx, state)
		m.count(DeltaSync)
	}
	if err != nil {
		return err
	}

	next := model.ChangeState{CSID: csid, AllIDs: sortedIDs(ids)}
	if err := m.store.Write(model.StateKey(c.path), next); err != nil {
		return err
	}
	c.set(csid, ids)
	return nil
}

// fetchAll replaces the collection with the remote one.  The result is tagged
// with the head observed before the fetch.
func (c *Collection) fetchAll(ctx context.Context, head int64) (int64, map[int64]struct{}, error) {
	m := c.mirror
	m.logger.Debug("fetching whole collection", zap.Stringer("path", c.path), zap.Stringer("source", c.source))

	objects, err := m.source.FetchAll(ctx, c.source)
	if err != nil {
		return 0, nil, err
	}

	ids := make(map[int64]struct{}, len(objects))
	for _, o := range objects {
		id, err := o.ID()
		if err != nil {
			m.logger.Warn("skipping remote object without an id", zap.Stringer("path", c.path), zap.Error(err))
			continue
		}
		if err := m.store.Write(model.ObjectKey(c.path, id), o); err != nil {
			return 0, nil, err
		}
		ids[id] = struct{}{}
	}
	return head, ids, nil
}

// applyEvents replays the change log since state.CSID onto state.AllIDs.
// Changed objects are evicted and fetched again on their next read.
func (c *Collection) applyEvents(ctx context.Context, state model.ChangeState) (int64, map[int64]struct{}, error) {
	m := c.mirror
	csid := state.CSID
	ids := toSet(state.AllIDs)

	for event, err := range m.tracker.EventsSince(ctx, state.CSID) {
		if err != nil {
			return 0, nil, err
		}
		csid = event.ID

		id, action, ok := c.match(ctx, event)
		if !ok {
			continue
		}

		// bulk collections only grow between full syncs
		if action == model.ActionDelete && c.bulk {
			continue
		}

		m.logger.Debug("change applied", zap.Int64("cset", event.ID), zap.Stringer("path", c.path),
			zap.String("action", string(action)), zap.Int64("id", id))
		if action == model.ActionDelete {
			delete(ids, id)
			continue
		}

		ids[id] = struct{}{}
		if err := m.store.Delete(model.ObjectKey(c.path, id)); err != nil {
			return 0, nil, err
		}
	}

	if csid != state.CSID {
		m.logger.Debug("collection advanced", zap.Stringer("path", c.path), zap.Int64("from", state.CSID), zap.Int64("to", csid))
	}
	return csid, ids, nil
}

// match decides whether event applies to this collection, and if so to which
// object and with which action.
func (c *Collection) match(ctx context.Context, event model.ChangeEvent) (int64, model.Action, bool) {
	if event.ChangedObjectType == JoinObjectType && c.joinScoped() {
		return c.matchTermination(ctx, event)
	}
	if !c.source.MatchesObjectType(event.ChangedObjectType) {
		return 0, "", false
	}
	return event.ChangedObjectID, event.Action, true
}

func (c *Collection) joinScoped() bool {
	for _, scope := range c.mirror.config.JoinScopes {
		if c.path.HasPrefix(scope) {
			return true
		}
	}
	return false
}

// matchTermination applies a cable termination event to its endpoint.  Removing
// a termination only changes the endpoint, so deletes become updates.
func (c *Collection) matchTermination(ctx context.Context, event model.ChangeEvent) (int64, model.Action, bool) {
	m := c.mirror
	action, data := event.Action, event.PostchangeData
	if action == model.ActionDelete {
		action, data = model.ActionUpdate, event.PrechangeData
	}

	var t model.Termination
	if err := json.Unmarshal(data, &t); err != nil || t.TerminationType == 0 {
		m.logger.Warn("termination event without termination data",
			zap.Int64("cset", event.ID), zap.Stringer("path", c.path), zap.Error(err))
		m.measures.JoinFailures.Inc()
		return 0, "", false
	}

	var ot model.ObjectType
	found, err := m.store.ReadWithExpiry(ctx, model.ObjectKey(ObjectTypesPath, t.TerminationType), m.store.Lifetime(), &ot)
	if err != nil || !found || len(ot.Name()) == 0 {
		m.logger.Warn("termination references an unknown object type",
			zap.Int64("cset", event.ID), zap.Int64("termination_type", t.TerminationType), zap.Error(err))
		m.measures.JoinFailures.Inc()
		return 0, "", false
	}

	if !c.path.HasPrefix(ot.Name()) {
		return 0, "", false
	}

	m.logger.Debug("termination endpoint updating", zap.String("type", ot.Name()),
		zap.Int64("id", t.TerminationID), zap.String("display", event.Display))
	return t.TerminationID, action, true
}

func (m *Mirror) count(sync string) {
	m.measures.Syncs.With(prometheus.Labels{TypeLabel: sync}).Inc()
}

func toSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func sortedIDs(set map[int64]struct{}) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
