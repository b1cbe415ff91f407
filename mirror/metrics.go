// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package mirror

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

// Names
const (
	SyncCounter        = "nbmirror_mirror_syncs_total"
	IndexCounter       = "nbmirror_mirror_indexes_total"
	JoinFailureCounter = "nbmirror_mirror_join_failures_total"
)

// Labels
const (
	TypeLabel    = "type"
	OutcomeLabel = "outcome"
)

// Label Values
const (
	SkipSync     = "skip"
	FullSync     = "full"
	DeltaSync    = "delta"
	ReadOnlySync = "readonly"

	BuiltOutcome = "built"
	StaleOutcome = "stale"
)

// ProvideMetrics returns the Metrics relevant to this package
func ProvideMetrics() fx.Option {
	return fx.Options(
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: SyncCounter,
				Help: "Counter for collection syncs by type (skip, full, delta, readonly).",
			},
			TypeLabel,
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: IndexCounter,
				Help: "Counter for index builds and stale index reads.",
			},
			OutcomeLabel,
		),
		touchstone.Counter(
			prometheus.CounterOpts{
				Name: JoinFailureCounter,
				Help: "Counter for termination events that could not be resolved to an endpoint.",
			},
		),
	)
}

type Measures struct {
	fx.In
	Syncs        *prometheus.CounterVec `name:"nbmirror_mirror_syncs_total"`
	Indexes      *prometheus.CounterVec `name:"nbmirror_mirror_indexes_total"`
	JoinFailures prometheus.Counter     `name:"nbmirror_mirror_join_failures_total"`
}

// NewUnregisteredMeasures builds Measures that are not attached to any registry.
func NewUnregisteredMeasures() *Measures {
	return &Measures{
		Syncs: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: SyncCounter},
			[]string{TypeLabel},
		),
		Indexes: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: IndexCounter},
			[]string{OutcomeLabel},
		),
		JoinFailures: prometheus.NewCounter(
			prometheus.CounterOpts{Name: JoinFailureCounter},
		),
	}
}
