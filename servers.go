// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/xmidt-org/arrange/arrangehttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Router names, used as fx names for the per server routers.
const (
	primaryRouter = "servers.primary.router"
	metricsRouter = "servers.metrics.router"
	healthRouter  = "servers.health.router"
)

type ServersIn struct {
	fx.In
	Config     ServersConfig
	Logger     *zap.Logger
	LC         fx.Lifecycle
	Shutdowner fx.Shutdowner
	Primary    *mux.Router `name:"servers.primary.router"`
	Metrics    *mux.Router `name:"servers.metrics.router"`
	Health     *mux.Router `name:"servers.health.router"`
}

// provideServers creates one router per server.  The Build*Routes functions
// populate them, and the servers are started with the application.
func provideServers() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotated{Name: primaryRouter, Target: mux.NewRouter},
			fx.Annotated{Name: metricsRouter, Target: mux.NewRouter},
			fx.Annotated{Name: healthRouter, Target: mux.NewRouter},
		),
		fx.Invoke(startServers),
	)
}

func startServers(in ServersIn) error {
	servers := []struct {
		name   string
		config arrangehttp.ServerConfig
		router *mux.Router
	}{
		{name: "primary", config: in.Config.Primary, router: in.Primary},
		{name: "metrics", config: in.Config.Metrics, router: in.Metrics},
		{name: "health", config: in.Config.Health, router: in.Health},
	}

	for _, s := range servers {
		err := bindServer(in.LC, in.Shutdowner, in.Logger.With(zap.String("server", s.name)), s.config, s.router)
		if err != nil {
			return err
		}
	}
	return nil
}

// bindServer ties a server to the application lifecycle.  A server whose accept
// loop exits shuts the whole application down.  Servers without an address are
// not started.
func bindServer(lc fx.Lifecycle, sh fx.Shutdowner, logger *zap.Logger, c arrangehttp.ServerConfig, h http.Handler) error {
	logger = logger.With(zap.String("address", c.Address))
	if len(c.Address) == 0 {
		logger.Info("server has no address, not starting it")
		return nil
	}

	s, err := c.NewServer(h)
	if err != nil {
		return err
	}
	s.ErrorLog = zap.NewStdLog(logger)

	lc.Append(fx.Hook{
		OnStart: arrangehttp.ServerOnStart(
			s,
			c,
			func() { logger.Info("server exited") },
			arrangehttp.ShutdownOnExit(sh),
		),
		OnStop: s.Shutdown,
	})
	logger.Info("server bound to the application lifecycle")
	return nil
}
