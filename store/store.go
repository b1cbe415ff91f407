// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"emperror.dev/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	// NoExpiry makes ReadWithExpiry behave as an unconditional read.
	NoExpiry time.Duration = 0

	DefaultLifetime         = 2 * time.Hour
	DefaultRotateInterval   = time.Minute
	DefaultMissingThreshold = 50
)

// RefreshFunc produces a fresh value for key when a read finds it absent or stale.
type RefreshFunc func(ctx context.Context, key string) (interface{}, error)

// Lookup is the result of a cache-only read.
type Lookup struct {
	Data  json.RawMessage
	Found bool
}

// Options configures a Store.
type Options struct {
	Mode           Mode
	RotateInterval time.Duration
	ReadOnly       bool

	// Lifetime is the TTL applied to object records.
	Lifetime time.Duration

	// MissingThreshold is the number of cache misses at which GetBatch gives up
	// on per-id refreshes and refreshes the whole collection instead.
	MissingThreshold int

	Logger   *zap.Logger
	Measures *Measures

	// Now is the clock.  It defaults to time.Now.
	Now func() time.Time
}

// Store is a JSON key/value cache over a backend with per-entry write timestamps
// and read-through refresh.  All backend access is serialized by one mutex.
type Store struct {
	opener Opener
	opts   Options
	now    func() time.Time
	logger *zap.Logger

	measures *Measures
	refresh  atomic.Pointer[RefreshFunc]

	lock     sync.Mutex
	handle   Handle
	openedAt time.Time
	closed   bool
}

// New builds a Store.  The backend is opened once to make sure it is usable; a
// read-only Store fails here when there is nothing to read.
func New(o Opener, opts Options) (*Store, error) {
	if o == nil {
		return nil, ErrNilOpener
	}
	if opts.Lifetime <= 0 {
		opts.Lifetime = DefaultLifetime
	}
	if opts.RotateInterval <= 0 {
		opts.RotateInterval = DefaultRotateInterval
	}
	if opts.MissingThreshold <= 0 {
		opts.MissingThreshold = DefaultMissingThreshold
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Measures == nil {
		opts.Measures = NewUnregisteredMeasures()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Store{
		opener:   o,
		opts:     opts,
		now:      opts.Now,
		logger:   opts.Logger,
		measures: opts.Measures,
	}

	h, err := s.open()
	if err != nil {
		return nil, errors.WrapWithDetails(err, "failed to open store", "mode", opts.Mode.String(), "readOnly", opts.ReadOnly)
	}
	if opts.Mode == Transactional {
		err = h.Close()
	} else {
		s.handle = h
		s.openedAt = s.now()
	}
	return s, err
}

// SetRefresh installs the function used by read-through reads.
func (s *Store) SetRefresh(f RefreshFunc) {
	s.refresh.Store(&f)
}

func (s *Store) Lifetime() time.Duration {
	return s.opts.Lifetime
}

func (s *Store) ReadOnly() bool {
	return s.opts.ReadOnly
}

func (s *Store) Mode() Mode {
	return s.opts.Mode
}

// Close releases a held Handle.  Further operations fail with ErrClosed.
func (s *Store) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.handle == nil {
		return nil
	}
	err := s.handle.Close()
	s.handle = nil
	return err
}

func (s *Store) open() (Handle, error) {
	h, err := s.opener.Open(s.opts.ReadOnly)
	if err != nil {
		return nil, err
	}
	s.measures.HandleOpens.Inc()
	return h, nil
}

// withHandle runs f against a Handle appropriate for the mode, holding the lock.
func (s *Store) withHandle(f func(Handle) error) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return ErrClosed
	}

	if s.opts.Mode == Transactional {
		h, err := s.open()
		if err != nil {
			return err
		}
		err = f(h)
		if closeErr := h.Close(); err == nil {
			err = closeErr
		}
		return err
	}

	if s.handle != nil && s.opts.Mode == Rotating && s.now().Sub(s.openedAt) >= s.opts.RotateInterval {
		if err := s.handle.Close(); err != nil {
			s.logger.Warn("failed to close rotated store handle", zap.Error(err))
		}
		s.handle = nil
	}

	if s.handle == nil {
		h, err := s.open()
		if err != nil {
			return err
		}
		s.handle = h
		s.openedAt = s.now()
	}

	return f(s.handle)
}

// load fetches and decodes the entry under key.  Corrupt entries are reported
// as absent and removed when the store is writable.
func (s *Store) load(key string) (entry, bool, error) {
	var (
		e     entry
		found bool
	)

	err := s.withHandle(func(h Handle) error {
		raw, ok, err := h.Get(key)
		if err != nil || !ok {
			return err
		}

		var decodeErr error
		e, found, decodeErr = decodeEntry(raw)
		if decodeErr == nil {
			return nil
		}

		s.measures.Reads.With(prometheus.Labels{ResultLabel: CorruptResult}).Inc()
		s.logger.Error("discarding corrupt store entry", zap.String("key", key), zap.Error(decodeErr))
		if s.opts.ReadOnly {
			return nil
		}
		return h.Delete(key)
	})
	if err != nil {
		return entry{}, false, errors.WrapWithDetails(err, "failed to read store entry", "key", key)
	}
	return e, found, nil
}

// Read decodes the entry under key into v, ignoring its age.
func (s *Store) Read(key string, v interface{}) (bool, error) {
	e, found, err := s.load(key)
	if err != nil {
		return false, err
	}
	s.countRead(found)
	if !found {
		return false, nil
	}
	return true, decodeData(key, e.Data, v)
}

// ReadWithExpiry decodes the entry under key into v.  Entries older than ttl, and
// absent entries, are replaced by the refresh function's result first.  A ttl of
// NoExpiry, or a read-only store, reads whatever is cached.
func (s *Store) ReadWithExpiry(ctx context.Context, key string, ttl time.Duration, v interface{}) (bool, error) {
	if ttl == NoExpiry || s.opts.ReadOnly {
		return s.Read(key, v)
	}

	e, found, err := s.load(key)
	if err != nil {
		return false, err
	}

	if found && e.fresh(s.now(), ttl) {
		s.countRead(true)
		return true, decodeData(key, e.Data, v)
	}

	if found {
		s.measures.Reads.With(prometheus.Labels{ResultLabel: StaleResult}).Inc()
	} else {
		s.countRead(false)
	}

	data, err := s.refreshKey(ctx, key)
	if err != nil {
		return false, err
	}
	return true, decodeData(key, data, v)
}

// ReadIfCached returns the entry under key only when it is younger than ttl.
// It never refreshes.
func (s *Store) ReadIfCached(key string, ttl time.Duration) (Lookup, error) {
	e, found, err := s.load(key)
	if err != nil {
		return Lookup{}, err
	}
	if !found || (ttl != NoExpiry && !s.opts.ReadOnly && !e.fresh(s.now(), ttl)) {
		s.countRead(false)
		return Lookup{}, nil
	}
	s.countRead(true)
	return Lookup{Data: e.Data, Found: true}, nil
}

// Write stores v under key with the current time.
func (s *Store) Write(key string, v interface{}) error {
	_, err := s.write(key, v)
	return err
}

func (s *Store) write(key string, v interface{}) (json.RawMessage, error) {
	if s.opts.ReadOnly {
		return nil, ReadOnlyErr{Key: key}
	}

	raw, data, err := encodeEntry(s.now(), v)
	if err != nil {
		s.countWrite(WriteType, err)
		return nil, errors.WrapWithDetails(err, "failed to encode store entry", "key", key)
	}

	err = s.withHandle(func(h Handle) error {
		return h.Put(key, raw)
	})
	s.countWrite(WriteType, err)
	if err != nil {
		return nil, errors.WrapWithDetails(err, "failed to write store entry", "key", key)
	}
	return data, nil
}

// Delete removes key.  Removing an absent key succeeds.
func (s *Store) Delete(key string) error {
	if s.opts.ReadOnly {
		return ReadOnlyErr{Key: key}
	}

	err := s.withHandle(func(h Handle) error {
		return h.Delete(key)
	})
	s.countWrite(DeleteType, err)
	if err != nil {
		return errors.WrapWithDetails(err, "failed to delete store entry", "key", key)
	}
	return nil
}

// Refresh runs the refresh function for key and stores its result.  The lock is
// not held while the refresh function runs, so it may use the Store.
func (s *Store) Refresh(ctx context.Context, key string) (json.RawMessage, error) {
	return s.refreshKey(ctx, key)
}

func (s *Store) refreshKey(ctx context.Context, key string) (json.RawMessage, error) {
	v, err := s.runRefresh(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.write(key, v)
}

// runRefresh calls the refresh function for key without storing what it returns.
func (s *Store) runRefresh(ctx context.Context, key string) (interface{}, error) {
	if s.opts.ReadOnly {
		return nil, ReadOnlyErr{Key: key}
	}
	f := s.refresh.Load()
	if f == nil || *f == nil {
		return nil, errors.WithDetails(ErrNoRefresh, "key", key)
	}

	s.logger.Debug("refreshing store entry", zap.String("key", key))
	v, err := (*f)(ctx, key)
	if err != nil {
		s.measures.Refreshes.With(prometheus.Labels{OutcomeLabel: FailureOutcome}).Inc()
		return nil, errors.WrapWithDetails(err, "failed to refresh store entry", "key", key)
	}
	s.measures.Refreshes.With(prometheus.Labels{OutcomeLabel: SuccessOutcome}).Inc()
	return v, nil
}

func (s *Store) countRead(hit bool) {
	result := MissResult
	if hit {
		result = HitResult
	}
	s.measures.Reads.With(prometheus.Labels{ResultLabel: result}).Inc()
}

func (s *Store) countWrite(t string, err error) {
	outcome := SuccessOutcome
	if err != nil {
		outcome = FailureOutcome
	}
	s.measures.Writes.With(prometheus.Labels{TypeLabel: t, OutcomeLabel: outcome}).Inc()
}

func decodeData(key string, data json.RawMessage, v interface{}) error {
	if v == nil {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.WrapWithDetails(err, "failed to decode store entry data", "key", key)
	}
	return nil
}
