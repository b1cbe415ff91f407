// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xmidt-org/candlelight"
	"github.com/xmidt-org/httpaux"
	"github.com/xmidt-org/nbmirror/api"
	"github.com/xmidt-org/nbmirror/mirror"
	"github.com/xmidt-org/touchstone/touchhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type PrimaryRoutesIn struct {
	fx.In
	Router  *mux.Router                  `name:"servers.primary.router"`
	Metrics touchhttp.ServerInstrumenter `name:"servers.primary.metrics"`
	Tracing candlelight.Tracing
	Mirror  *mirror.Mirror
	Config  api.Config
	Logger  *zap.Logger
}

func BuildPrimaryRoutes(in PrimaryRoutesIn) {
	options := []otelmux.Option{
		otelmux.WithTracerProvider(in.Tracing.TracerProvider()),
		otelmux.WithPropagators(in.Tracing.Propagator()),
	}
	in.Router.Use(
		otelmux.Middleware("server_primary", options...),
		mux.MiddlewareFunc(candlelight.EchoFirstTraceNodeInfo(in.Tracing, false)),
	)

	chain := alice.New(in.Metrics.Then)
	in.Router.PathPrefix("/").Handler(
		chain.Then(api.NewHandler(in.Mirror, in.Config, in.Logger.Named("api"))),
	)
}

type MetricsRoutesIn struct {
	fx.In
	Router   *mux.Router `name:"servers.metrics.router"`
	Config   ServersConfig
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

func BuildMetricsRoutes(in MetricsRoutesIn) {
	in.Router.Handle(in.Config.MetricsPath, promhttp.HandlerFor(in.Gatherer, promhttp.HandlerOpts{
		ErrorLog: zap.NewStdLog(in.Logger.Named("metrics")),
	})).Methods(http.MethodGet)
}

type HealthRoutesIn struct {
	fx.In
	Router  *mux.Router                  `name:"servers.health.router"`
	Metrics touchhttp.ServerInstrumenter `name:"servers.health.metrics"`
	Config  ServersConfig
}

func BuildHealthRoutes(in HealthRoutesIn) {
	in.Router.Handle(in.Config.HealthPath, alice.New(in.Metrics.Then).Then(
		httpaux.ConstantHandler{
			StatusCode: http.StatusOK,
		},
	)).Methods(http.MethodGet)
}
