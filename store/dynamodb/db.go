// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package dynamodb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/xmidt-org/nbmirror/store"
	"github.com/xmidt-org/nbmirror/store/db/metric"
	"go.uber.org/zap"
)

const (
	DynamoDB = "dynamo"

	defaultTable      = "nbmirror"
	defaultMaxRetries = 3
	defaultOpTimeout  = 10 * time.Second
)

type Config struct {
	Table      string
	Endpoint   string
	Region     string
	MaxRetries int
	AccessKey  string
	SecretKey  string
	OpTimeout  time.Duration
}

// Opener hands out handles on one shared table.  Handles hold no resources, so
// every mode behaves the same on this backend.
type Opener struct {
	service service
	config  Config
}

func NewOpener(c Config, measures metric.Measures, logger *zap.Logger) (*Opener, error) {
	validateConfig(&c)
	if logger == nil {
		logger = zap.NewNop()
	}

	optFns := []func(*config.LoadOptions) error{
		config.WithRetryMaxAttempts(c.MaxRetries),
	}
	if len(c.Region) > 0 {
		optFns = append(optFns, config.WithRegion(c.Region))
	}
	if len(c.AccessKey) > 0 {
		optFns = append(optFns, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, ""),
		))
	}

	awsConfig, err := config.LoadDefaultConfig(context.Background(), optFns...)
	if err != nil {
		return nil, err
	}

	client := dynamodb.NewFromConfig(awsConfig, func(o *dynamodb.Options) {
		if len(c.Endpoint) > 0 {
			o.BaseEndpoint = aws.String(c.Endpoint)
		}
	})

	return newOpener(c, client, measures, logger), nil
}

func newOpener(c Config, cl client, measures metric.Measures, logger *zap.Logger) *Opener {
	var svc service = &executor{
		c:         cl,
		tableName: c.Table,
		opTimeout: c.OpTimeout,
	}
	svc = newInstrumentingService(measures, svc)
	svc = newLoggingService(logger, svc)
	return &Opener{service: svc, config: c}
}

func (o *Opener) Open(readOnly bool) (store.Handle, error) {
	return &handle{service: o.service, readOnly: readOnly}, nil
}

type handle struct {
	service  service
	readOnly bool
}

func (h *handle) Get(key string) ([]byte, bool, error) {
	value, found, _, err := h.service.Get(key)
	return value, found, err
}

func (h *handle) Put(key string, value []byte) error {
	if h.readOnly {
		return store.ReadOnlyErr{Key: key}
	}
	_, err := h.service.Put(key, value)
	return err
}

func (h *handle) Delete(key string) error {
	if h.readOnly {
		return store.ReadOnlyErr{Key: key}
	}
	_, err := h.service.Delete(key)
	return err
}

func (h *handle) Close() error {
	return nil
}

func validateConfig(config *Config) {
	if config.Table == "" {
		config.Table = defaultTable
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = defaultMaxRetries
	}
	if config.OpTimeout <= 0 {
		config.OpTimeout = defaultOpTimeout
	}
}
