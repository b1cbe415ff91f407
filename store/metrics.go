// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

// Names
const (
	ReadCounter       = "nbmirror_store_reads_total"
	RefreshCounter    = "nbmirror_store_refreshes_total"
	WriteCounter      = "nbmirror_store_writes_total"
	HandleOpenCounter = "nbmirror_store_handle_opens_total"
	BatchCounter      = "nbmirror_store_batches_total"
)

// Labels
const (
	ResultLabel   = "result"
	OutcomeLabel  = "outcome"
	TypeLabel     = "type"
	StrategyLabel = "strategy"
)

// Label Values
const (
	HitResult     = "hit"
	MissResult    = "miss"
	StaleResult   = "stale"
	CorruptResult = "corrupt"

	SuccessOutcome = "success"
	FailureOutcome = "failure"

	WriteType  = "write"
	DeleteType = "delete"

	CachedStrategy     = "cached"
	IndividualStrategy = "individual"
	BulkStrategy       = "bulk"
)

// ProvideMetrics returns the Metrics relevant to this package
func ProvideMetrics() fx.Option {
	return fx.Options(
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: ReadCounter,
				Help: "Counter for store reads by result (hit, miss, stale, corrupt).",
			},
			ResultLabel,
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: RefreshCounter,
				Help: "Counter for read-through refreshes by outcome.",
			},
			OutcomeLabel,
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: WriteCounter,
				Help: "Counter for store writes and deletes by outcome.",
			},
			TypeLabel,
			OutcomeLabel,
		),
		touchstone.Counter(
			prometheus.CounterOpts{
				Name: HandleOpenCounter,
				Help: "Counter for the number of backend handles opened.",
			},
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: BatchCounter,
				Help: "Counter for batch reads by the strategy used to fill misses.",
			},
			StrategyLabel,
		),
	)
}

type Measures struct {
	fx.In
	Reads       *prometheus.CounterVec `name:"nbmirror_store_reads_total"`
	Refreshes   *prometheus.CounterVec `name:"nbmirror_store_refreshes_total"`
	Writes      *prometheus.CounterVec `name:"nbmirror_store_writes_total"`
	HandleOpens prometheus.Counter     `name:"nbmirror_store_handle_opens_total"`
	Batches     *prometheus.CounterVec `name:"nbmirror_store_batches_total"`
}

// NewUnregisteredMeasures builds Measures that are not attached to any registry.
func NewUnregisteredMeasures() *Measures {
	return &Measures{
		Reads: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: ReadCounter},
			[]string{ResultLabel},
		),
		Refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: RefreshCounter},
			[]string{OutcomeLabel},
		),
		Writes: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: WriteCounter},
			[]string{TypeLabel, OutcomeLabel},
		),
		HandleOpens: prometheus.NewCounter(
			prometheus.CounterOpts{Name: HandleOpenCounter},
		),
		Batches: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: BatchCounter},
			[]string{StrategyLabel},
		),
	}
}
