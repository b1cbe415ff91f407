// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package updater periodically walks the configured collections and indexes so
// that their persisted state stays fresh for read-only consumers sharing the store.
package updater

import (
	"context"
	"sync/atomic"
	"time"

	"emperror.dev/emperror"
	"emperror.dev/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/nbmirror/mirror"
	"github.com/xmidt-org/nbmirror/model"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

var (
	ErrUpdaterNotStopped = errors.New("updater is either running or starting")
	ErrUpdaterNotRunning = errors.New("updater is either stopped or stopping")
	ErrNilMirror         = errors.New("mirror cannot be nil")
)

// updater states
const (
	stopped int32 = iota
	running
	transitioning
)

const (
	defaultPullInterval = time.Minute
)

// Index names one secondary index to keep warm.
type Index struct {
	Path      string
	Attribute string
}

// Config is the updater section of the configuration.
type Config struct {
	// PullInterval is how often the updater warms everything.
	// (Optional). Defaults to 60 seconds.
	PullInterval time.Duration

	// Collections are the dotted paths of the collections to keep synchronized.
	Collections []string

	// Indexes are the secondary indexes to keep built.
	Indexes []Index

	// ErrorHandler receives the errors of failed polls.
	// (Optional). By default errors are logged.
	ErrorHandler emperror.ErrorHandler `json:"-"`
}

// Warmer is anything else that wants to be run on every poll, i.e. a query set.
type Warmer interface {
	Warm(context.Context) error
}

// WarmerFunc is a function type that implements Warmer.
type WarmerFunc func(context.Context) error

func (f WarmerFunc) Warm(ctx context.Context) error {
	return f(ctx)
}

type Updater struct {
	mirror   *mirror.Mirror
	config   Config
	warmers  []Warmer
	measures *Measures
	logger   *zap.Logger

	ticker   *time.Ticker
	shutdown chan struct{}
	state    int32
}

func NewUpdater(config Config, m *mirror.Mirror, measures *Measures, logger *zap.Logger, warmers ...Warmer) (*Updater, error) {
	if m == nil {
		return nil, ErrNilMirror
	}
	if measures == nil {
		measures = NewUnregisteredMeasures()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.PullInterval <= 0 {
		config.PullInterval = defaultPullInterval
	}
	if config.ErrorHandler == nil {
		config.ErrorHandler = emperror.ErrorHandlerFunc(func(err error) {
			logger.Error("failed to warm the mirror", zap.Error(err))
		})
	}

	return &Updater{
		mirror:   m,
		config:   config,
		warmers:  warmers,
		measures: measures,
		logger:   logger,
		ticker:   time.NewTicker(config.PullInterval),
		shutdown: make(chan struct{}),
	}, nil
}

// Warm synchronizes every configured collection, builds every configured index
// and runs the warmers.  Failures do not stop the remaining work; they are
// returned combined.
func (u *Updater) Warm(ctx context.Context) error {
	var errs []error
	for _, c := range u.config.Collections {
		if _, err := u.mirror.Path(model.ParsePath(c).Segments()...).All(ctx); err != nil {
			errs = append(errs, errors.WrapWithDetails(err, "failed to warm collection", "path", c))
		}
	}

	for _, i := range u.config.Indexes {
		a := u.mirror.Path(model.ParsePath(i.Path).Segments()...)
		if _, err := a.GetIndex(ctx, i.Attribute, model.Any); err != nil {
			errs = append(errs, errors.WrapWithDetails(err, "failed to warm index", "path", i.Path, "attribute", i.Attribute))
		}
	}

	for _, w := range u.warmers {
		if err := w.Warm(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Combine(errs...)
}

func (u *Updater) poll() {
	ctx, cancel := context.WithTimeout(sallust.With(context.Background(), u.logger), u.config.PullInterval)
	defer cancel()

	outcome := SuccessOutcome
	start := time.Now()
	if err := u.Warm(ctx); err != nil {
		outcome = FailureOutcome
		u.config.ErrorHandler.Handle(err)
	} else {
		u.logger.Debug("warmed the mirror", zap.Duration("elapsed", time.Since(start)))
	}
	u.measures.Polls.With(prometheus.Labels{OutcomeLabel: outcome}).Inc()
}

// Start warms the mirror right away and then on every PullInterval.  A read-only
// mirror cannot be warmed, so Start does nothing for one.  If the updater is
// already running, Start returns ErrUpdaterNotStopped.
func (u *Updater) Start(_ context.Context) error {
	if u.mirror.ReadOnly() {
		u.logger.Warn("The mirror is read-only, the updater will not run.")
		return nil
	}

	if !atomic.CompareAndSwapInt32(&u.state, stopped, transitioning) {
		u.logger.Error("Start called when the updater was not in stopped state", zap.Error(ErrUpdaterNotStopped))
		return ErrUpdaterNotStopped
	}

	u.ticker.Reset(u.config.PullInterval)
	go func() {
		u.poll()
		for {
			select {
			case <-u.shutdown:
				return
			case <-u.ticker.C:
				u.poll()
			}
		}
	}()

	atomic.SwapInt32(&u.state, running)
	return nil
}

// Stop requests the polling goroutine to stop and waits for it to receive the request.
// Calling Stop() when the updater is not running (or while it is getting stopped)
// returns an error.
func (u *Updater) Stop(_ context.Context) error {
	if u.mirror.ReadOnly() {
		return nil
	}

	if !atomic.CompareAndSwapInt32(&u.state, running, transitioning) {
		u.logger.Error("Stop called when the updater was not in running state", zap.Error(ErrUpdaterNotRunning))
		return ErrUpdaterNotRunning
	}

	u.ticker.Stop()
	u.shutdown <- struct{}{}
	atomic.SwapInt32(&u.state, stopped)
	return nil
}
