// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package dynamodb

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/nbmirror/store/db/metric"
)

type instrumentingService struct {
	service
	measures metric.Measures
	now      func() time.Time
}

func newInstrumentingService(measures metric.Measures, s service) service {
	return &instrumentingService{measures: measures, service: s, now: time.Now}
}

func (s *instrumentingService) Put(key string, value []byte) (consumedCapacity *types.ConsumedCapacity, err error) {
	defer func(start time.Time) {
		s.record(start, metric.InsertType, consumedCapacity, err)
	}(s.now())
	return s.service.Put(key, value)
}

func (s *instrumentingService) Get(key string) (value []byte, found bool, consumedCapacity *types.ConsumedCapacity, err error) {
	defer func(start time.Time) {
		s.record(start, metric.ReadType, consumedCapacity, err)
	}(s.now())
	return s.service.Get(key)
}

func (s *instrumentingService) Delete(key string) (consumedCapacity *types.ConsumedCapacity, err error) {
	defer func(start time.Time) {
		s.record(start, metric.DeleteType, consumedCapacity, err)
	}(s.now())
	return s.service.Delete(key)
}

func (s *instrumentingService) record(start time.Time, queryType string, consumedCapacity *types.ConsumedCapacity, err error) {
	s.measures.Observe(queryType, s.now().Sub(start).Seconds(), err)
	if consumedCapacity == nil {
		return
	}

	labels := prometheus.Labels{metric.TypeLabel: queryType}
	if consumedCapacity.CapacityUnits != nil {
		s.measures.CapacityUnitsCount.With(labels).Add(*consumedCapacity.CapacityUnits)
	}
	if consumedCapacity.ReadCapacityUnits != nil {
		s.measures.ReadCapacityUnitsCount.With(labels).Add(*consumedCapacity.ReadCapacityUnits)
	}
	if consumedCapacity.WriteCapacityUnits != nil {
		s.measures.WriteCapacityUnitsCount.With(labels).Add(*consumedCapacity.WriteCapacityUnits)
	}
}
