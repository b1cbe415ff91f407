// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/xmidt-org/nbmirror/changelog"
	"github.com/xmidt-org/nbmirror/mirror"
	"github.com/xmidt-org/nbmirror/netbox"
	"github.com/xmidt-org/nbmirror/store/db"
	"github.com/xmidt-org/nbmirror/updater"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

const (
	applicationName = "nbmirror"
)

var (
	GitCommit = "undefined"
	Version   = "undefined"
	BuildTime = "undefined"
)

func main() {
	v, logger, err := setup(os.Args[1:])
	switch {
	case errors.Is(err, pflag.ErrHelp):
		return
	case err != nil:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	app := fx.New(
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),
		fx.Supply(logger, v),
		provideConfig(),
		provideTracing(),
		touchstone.Provide(),
		provideMetrics(),
		netbox.ProvideMetrics(),
		changelog.ProvideMetrics(),
		mirror.ProvideMetrics(),
		updater.ProvideMetrics(),
		db.Provide(),
		provideMirror(),
		provideServers(),
		fx.Invoke(
			startUpdater,
			BuildPrimaryRoutes,
			BuildMetricsRoutes,
			BuildHealthRoutes,
		),
	)

	if err := app.Err(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	app.Run()
}
