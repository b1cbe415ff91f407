// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

// Generic Metrics
const (
	QueryDurationSeconds = "backend_query_duration_seconds"
	QuerySuccessCounter  = "backend_query_success_count"
	QueryFailureCounter  = "backend_query_failure_count"
)

// DynamoDB metrics
const (
	CapacityUnitConsumedCounter  = "capacity_unit_consumed"
	ReadCapacityConsumedCounter  = "read_capacity_unit_consumed"
	WriteCapacityConsumedCounter = "write_capacity_unit_consumed"
)

// Labels
const (
	TypeLabel = "type"
)

// Label Values
const (
	ReadType   = "read"
	InsertType = "insert"
	DeleteType = "delete"
	PingType   = "ping"
)

// ProvideMetrics returns the Metrics relevant to the remote backends.
func ProvideMetrics() fx.Option {
	return fx.Options(
		touchstone.HistogramVec(
			prometheus.HistogramOpts{
				Name:    QueryDurationSeconds,
				Help:    "A histogram of latencies for backend queries.",
				Buckets: []float64{0.0625, 0.125, .25, .5, 1, 5, 10, 20, 40, 80, 160},
			},
			TypeLabel,
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: QuerySuccessCounter,
				Help: "The total number of successful backend queries",
			},
			TypeLabel,
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: QueryFailureCounter,
				Help: "The total number of failed backend queries",
			},
			TypeLabel,
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: CapacityUnitConsumedCounter,
				Help: "The number of capacity units consumed by the operation.",
			},
			TypeLabel,
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: ReadCapacityConsumedCounter,
				Help: "The number of read capacity units consumed by the operation.",
			},
			TypeLabel,
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: WriteCapacityConsumedCounter,
				Help: "The number of write capacity units consumed by the operation.",
			},
			TypeLabel,
		),
	)
}

type Measures struct {
	fx.In
	QueryDuration      prometheus.ObserverVec `name:"backend_query_duration_seconds"`
	QuerySuccessCount  *prometheus.CounterVec `name:"backend_query_success_count"`
	QueryFailureCount  *prometheus.CounterVec `name:"backend_query_failure_count"`
	CapacityUnitsCount *prometheus.CounterVec `name:"capacity_unit_consumed"`

	// DynamoDB Metrics
	ReadCapacityUnitsCount  *prometheus.CounterVec `name:"read_capacity_unit_consumed"`
	WriteCapacityUnitsCount *prometheus.CounterVec `name:"write_capacity_unit_consumed"`
}

// NewUnregisteredMeasures builds Measures that are not attached to any registry.
func NewUnregisteredMeasures() Measures {
	counter := func(name string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{Name: name}, []string{TypeLabel})
	}
	return Measures{
		QueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: QueryDurationSeconds},
			[]string{TypeLabel},
		),
		QuerySuccessCount:       counter(QuerySuccessCounter),
		QueryFailureCount:       counter(QueryFailureCounter),
		CapacityUnitsCount:      counter(CapacityUnitConsumedCounter),
		ReadCapacityUnitsCount:  counter(ReadCapacityConsumedCounter),
		WriteCapacityUnitsCount: counter(WriteCapacityConsumedCounter),
	}
}

// Observe records the outcome of one query.
func (m Measures) Observe(queryType string, seconds float64, err error) {
	labels := prometheus.Labels{TypeLabel: queryType}
	m.QueryDuration.With(labels).Observe(seconds)
	if err != nil {
		m.QueryFailureCount.With(labels).Inc()
		return
	}
	m.QuerySuccessCount.With(labels).Inc()
}
