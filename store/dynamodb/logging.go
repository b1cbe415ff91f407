// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package dynamodb

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

type loggingService struct {
	service
	logger *zap.Logger
}

func newLoggingService(logger *zap.Logger, s service) service {
	return &loggingService{service: s, logger: logger}
}

func (s *loggingService) Put(key string, value []byte) (consumedCapacity *types.ConsumedCapacity, err error) {
	defer func() {
		s.logger.Debug("dynamodb put", zap.String("key", key), zap.Int("size", len(value)), zap.Error(err))
	}()
	return s.service.Put(key, value)
}

func (s *loggingService) Get(key string) (value []byte, found bool, consumedCapacity *types.ConsumedCapacity, err error) {
	defer func() {
		s.logger.Debug("dynamodb get", zap.String("key", key), zap.Bool("found", found), zap.Error(err))
	}()
	return s.service.Get(key)
}

func (s *loggingService) Delete(key string) (consumedCapacity *types.ConsumedCapacity, err error) {
	defer func() {
		s.logger.Debug("dynamodb delete", zap.String("key", key), zap.Error(err))
	}()
	return s.service.Delete(key)
}
