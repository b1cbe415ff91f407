// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package mirror

import (
	"context"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/nbmirror/model"
	"go.uber.org/zap"
)

// GetIndex returns the members whose dotted attribute matches q, ordered by id.
// An index built against an older head is rebuilt, or in a read-only mirror
// used as is after logging a warning.
func (c *Collection) GetIndex(ctx context.Context, attribute string, q model.QueryKey) ([]model.Object, error) {
	if len(attribute) == 0 {
		return nil, ErrBadItem
	}
	if err := c.update(ctx, false); err != nil {
		return nil, err
	}

	m := c.mirror
	head, err := m.tracker.HeadID(ctx)
	if err != nil {
		return nil, err
	}

	var (
		key = model.IndexKey(c.path, attribute)
		idx model.Index
	)
	if _, err := m.store.ReadWithExpiry(ctx, key, m.store.Lifetime(), &idx); err != nil {
		return nil, err
	}

	if idx.CSet != head {
		if m.store.ReadOnly() {
			m.logger.Warn("outdated index",
				zap.Stringer("path", c.path), zap.String("attribute", attribute),
				zap.Int64("cset", idx.CSet), zap.Int64("head", head))
			m.measures.Indexes.With(prometheus.Labels{OutcomeLabel: StaleOutcome}).Inc()
		} else {
			if err := m.store.Delete(key); err != nil {
				return nil, err
			}
			idx = model.Index{}
			if _, err := m.store.ReadWithExpiry(ctx, key, m.store.Lifetime(), &idx); err != nil {
				return nil, err
			}
		}
	}

	ids := slices.Clone(idx.Lookup(q))
	slices.Sort(ids)
	results, err := c.batch(ctx, ids)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("index lookup", zap.Stringer("path", c.path), zap.String("attribute", attribute),
		zap.Stringer("value", q), zap.Int("results", len(results)))
	return results, nil
}

// buildIndex files every member under the bucket of its attribute value.
func (c *Collection) buildIndex(ctx context.Context, attribute string) (model.Index, error) {
	m := c.mirror
	head, err := m.tracker.HeadID(ctx)
	if err != nil {
		return model.Index{}, err
	}

	objects, err := c.All(ctx)
	if err != nil {
		return model.Index{}, err
	}

	var (
		segments = strings.Split(attribute, model.PathSeparator)
		idx      = model.NewIndex(head)
	)
	for _, o := range objects {
		id, err := o.ID()
		if err != nil {
			continue
		}

		v, ok := o.Walk(segments)
		if !ok {
			idx.Add(model.BucketNone, id)
			continue
		}
		idx.Add(model.ValueBucket(v), id)
		idx.Add(model.BucketAny, id)
	}

	m.measures.Indexes.With(prometheus.Labels{OutcomeLabel: BuiltOutcome}).Inc()
	m.logger.Debug("index built", zap.Stringer("path", c.path), zap.String("attribute", attribute),
		zap.Int64("cset", head), zap.Int("objects", len(objects)))
	return idx, nil
}
