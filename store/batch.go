// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"encoding/json"

	"emperror.dev/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/nbmirror/model"
	"go.uber.org/zap"
)

// GetBatch resolves ids of the collection at path to their object records, in
// the order given.  Cached records are used as is.  Fewer misses than the
// missing threshold are refreshed one by one; reaching the threshold refreshes
// the whole collection once instead.  Absent records, including everything
// uncached in a read-only store, are left out.
func (s *Store) GetBatch(ctx context.Context, path model.Path, ids []int64) ([]json.RawMessage, error) {
	var (
		found   = make([]json.RawMessage, len(ids))
		missing []int
		bulk    bool
	)

	for i, id := range ids {
		l, err := s.ReadIfCached(model.ObjectKey(path, id), s.opts.Lifetime)
		if err != nil {
			return nil, err
		}
		if l.Found {
			found[i] = l.Data
			continue
		}

		missing = append(missing, i)
		if !s.opts.ReadOnly && len(missing) >= s.opts.MissingThreshold {
			bulk = true
			break
		}
	}

	switch {
	case bulk:
		s.logger.Debug("missing too many items, using bulk fetch",
			zap.Stringer("path", path), zap.Int("missing", len(missing)))
		s.measures.Batches.With(prometheus.Labels{StrategyLabel: BulkStrategy}).Inc()
		if _, err := s.runRefresh(ctx, path.String()); err != nil {
			return nil, err
		}
		for i, id := range ids {
			var data json.RawMessage
			if _, err := s.ReadWithExpiry(ctx, model.ObjectKey(path, id), s.opts.Lifetime, &data); err != nil {
				return nil, err
			}
			found[i] = data
		}

	case len(missing) > 0 && !s.opts.ReadOnly:
		s.logger.Debug("missing items, fetching individually",
			zap.Stringer("path", path), zap.Int("missing", len(missing)))
		s.measures.Batches.With(prometheus.Labels{StrategyLabel: IndividualStrategy}).Inc()
		for _, i := range missing {
			var data json.RawMessage
			if _, err := s.ReadWithExpiry(ctx, model.ObjectKey(path, ids[i]), s.opts.Lifetime, &data); err != nil {
				return nil, errors.WithDetails(err, "path", path.String())
			}
			found[i] = data
		}

	default:
		s.measures.Batches.With(prometheus.Labels{StrategyLabel: CachedStrategy}).Inc()
	}

	results := make([]json.RawMessage, 0, len(found))
	for _, data := range found {
		if len(data) > 0 && string(data) != "null" {
			results = append(results, data)
		}
	}
	return results, nil
}
