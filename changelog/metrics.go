// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package changelog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

// Names
const (
	HeadGauge    = "nbmirror_changelog_head"
	ProbeCounter = "nbmirror_changelog_probes_total"
)

// Labels
const (
	ResultLabel = "result"
)

// Label Values
const (
	FoundResult = "found"
	MissResult  = "miss"
)

// ProvideMetrics returns the Metrics relevant to this package
func ProvideMetrics() fx.Option {
	return fx.Options(
		touchstone.Gauge(
			prometheus.GaugeOpts{
				Name: HeadGauge,
				Help: "The highest change id known to this mirror.",
			},
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: ProbeCounter,
				Help: "Counter for change log probes by result (found, miss).",
			},
			ResultLabel,
		),
	)
}

type Measures struct {
	fx.In
	Head   prometheus.Gauge       `name:"nbmirror_changelog_head"`
	Probes *prometheus.CounterVec `name:"nbmirror_changelog_probes_total"`
}

// NewUnregisteredMeasures builds Measures that are not attached to any registry.
func NewUnregisteredMeasures() *Measures {
	return &Measures{
		Head: prometheus.NewGauge(
			prometheus.GaugeOpts{Name: HeadGauge},
		),
		Probes: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: ProbeCounter},
			[]string{ResultLabel},
		),
	}
}
