// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package netbox

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

// Names
const (
	RequestCounter = "nbmirror_netbox_requests_total"
)

// Labels
const (
	TypeLabel    = "type"
	OutcomeLabel = "outcome"
)

// Label Values
const (
	ListType = "list"
	GetType  = "get"

	SuccessOutcome  = "success"
	NotFoundOutcome = "not_found"
	FailureOutcome  = "failure"
)

// ProvideMetrics returns the Metrics relevant to this package
func ProvideMetrics() fx.Option {
	return fx.Options(
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: RequestCounter,
				Help: "Counter for the number of requests (and their outcomes) sent to NetBox.",
			},
			TypeLabel,
			OutcomeLabel,
		),
	)
}

type Measures struct {
	fx.In
	Requests *prometheus.CounterVec `name:"nbmirror_netbox_requests_total"`
}

// NewUnregisteredMeasures builds Measures that are not attached to any registry.
func NewUnregisteredMeasures() *Measures {
	return &Measures{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: RequestCounter},
			[]string{TypeLabel, OutcomeLabel},
		),
	}
}
