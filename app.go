// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"

	"github.com/xmidt-org/nbmirror/changelog"
	"github.com/xmidt-org/nbmirror/inventory"
	"github.com/xmidt-org/nbmirror/mirror"
	"github.com/xmidt-org/nbmirror/netbox"
	"github.com/xmidt-org/nbmirror/store"
	"github.com/xmidt-org/nbmirror/updater"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ClientIn struct {
	fx.In
	Config   netbox.ClientConfig
	Measures netbox.Measures
	Logger   *zap.Logger
}

type TrackerIn struct {
	fx.In
	Store    *store.Store
	Client   *netbox.Client
	Config   changelog.Config
	Measures changelog.Measures
	Logger   *zap.Logger
}

type MirrorIn struct {
	fx.In
	Store    *store.Store
	Tracker  *changelog.Tracker
	Client   *netbox.Client
	Config   mirror.Config
	Measures mirror.Measures
	Logger   *zap.Logger
	LC       fx.Lifecycle
}

type UpdaterIn struct {
	fx.In
	Mirror    *mirror.Mirror
	Inventory *inventory.Inventory
	Config    updater.Config
	Measures  updater.Measures
	Logger    *zap.Logger
}

func provideMirror() fx.Option {
	return fx.Provide(
		func(in ClientIn) (*netbox.Client, error) {
			in.Config.Logger = in.Logger.Named("netbox")
			return netbox.NewClient(in.Config, &in.Measures, nil)
		},
		func(in TrackerIn) (*changelog.Tracker, error) {
			return changelog.NewTracker(in.Store, in.Client, in.Config, &in.Measures, in.Logger.Named("changelog"))
		},
		func(in MirrorIn) (*mirror.Mirror, error) {
			m, err := mirror.New(in.Store, in.Tracker, in.Client, in.Config, &in.Measures, in.Logger.Named("mirror"))
			if err != nil {
				return nil, err
			}
			in.LC.Append(fx.StopHook(m.Close))
			return m, nil
		},
		func(m *mirror.Mirror, c inventory.Config, logger *zap.Logger) (*inventory.Inventory, error) {
			return inventory.New(m, c, logger.Named("inventory"))
		},
		func(in UpdaterIn) (*updater.Updater, error) {
			return updater.NewUpdater(in.Config, in.Mirror, &in.Measures, in.Logger.Named("updater"), in.Inventory)
		},
	)
}

func startUpdater(u *updater.Updater, lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return u.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return u.Stop(ctx)
		},
	})
}
