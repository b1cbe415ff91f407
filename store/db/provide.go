// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/xmidt-org/nbmirror/store"
	"github.com/xmidt-org/nbmirror/store/bolt"
	"github.com/xmidt-org/nbmirror/store/cassandra"
	"github.com/xmidt-org/nbmirror/store/db/metric"
	"github.com/xmidt-org/nbmirror/store/dynamodb"
	"github.com/xmidt-org/nbmirror/store/inmem"
	"github.com/xmidt-org/nbmirror/store/sqlite"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	Memory = "memory"

	defaultPath = "nbmirror.db"
)

// Config is the store section of the configuration.
type Config struct {
	// Backend is one of bolt (default), sqlite, memory, dynamo or yugabyte.
	Backend string `validate:"omitempty,oneof=bolt sqlite memory dynamo yugabyte"`

	// Path is the database file of the bolt and sqlite backends.
	Path string

	Mode           store.Mode
	RotateInterval time.Duration
	ReadOnly       bool
	Lifetime       time.Duration
	LockTimeout    time.Duration

	MissingThreshold int `validate:"gte=0"`

	Dynamo   *dynamodb.Config
	Yugabyte *cassandra.Config
}

type SetupIn struct {
	fx.In
	Config          Config
	Measures        store.Measures
	BackendMeasures metric.Measures
	LC              fx.Lifecycle
	Logger          *zap.Logger
}

func Provide() fx.Option {
	return fx.Options(
		store.ProvideMetrics(),
		metric.ProvideMetrics(),
		fx.Provide(
			SetupStore,
		),
	)
}

// NewOpener builds the backend named by the configuration.
func NewOpener(c Config, measures metric.Measures, logger *zap.Logger) (store.Opener, error) {
	path := c.Path
	if len(path) == 0 {
		path = defaultPath
	}

	switch strings.ToLower(c.Backend) {
	case "", bolt.Bolt:
		logger.Info("using bolt store implementation", zap.String("path", path))
		return bolt.NewOpener(bolt.Config{Path: path, LockTimeout: c.LockTimeout})
	case sqlite.SQLite:
		logger.Info("using sqlite store implementation", zap.String("path", path))
		return sqlite.NewOpener(sqlite.Config{Path: path, BusyTimeout: c.LockTimeout})
	case Memory:
		logger.Info("using in memory store implementation")
		return inmem.NewInMem(), nil
	case dynamodb.DynamoDB:
		logger.Info("using dynamodb store implementation")
		var dc dynamodb.Config
		if c.Dynamo != nil {
			dc = *c.Dynamo
		}
		return dynamodb.NewOpener(dc, measures, logger)
	case cassandra.Yugabyte:
		logger.Info("using yugabyte store implementation")
		var yc cassandra.Config
		if c.Yugabyte != nil {
			yc = *c.Yugabyte
		}
		return cassandra.NewOpener(yc, measures, logger)
	default:
		return nil, fmt.Errorf("%w: %q", store.ErrUnknownBackend, c.Backend)
	}
}

func SetupStore(in SetupIn) (*store.Store, error) {
	if err := validator.New().Struct(in.Config); err != nil {
		return nil, err
	}

	o, err := NewOpener(in.Config, in.BackendMeasures, in.Logger)
	if err != nil {
		return nil, err
	}

	s, err := store.New(o, store.Options{
		Mode:             in.Config.Mode,
		RotateInterval:   in.Config.RotateInterval,
		ReadOnly:         in.Config.ReadOnly,
		Lifetime:         in.Config.Lifetime,
		MissingThreshold: in.Config.MissingThreshold,
		Logger:           in.Logger,
		Measures:         &in.Measures,
	})
	if err != nil {
		return nil, err
	}

	in.LC.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if c, ok := o.(*cassandra.Opener); ok {
				c.StartPing()
			}
			return nil
		},
		OnStop: func(context.Context) error {
			err := s.Close()
			if c, ok := o.(*cassandra.Opener); ok {
				c.Close()
			}
			return err
		},
	})
	return s, nil
}
