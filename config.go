// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/spf13/viper"
	"github.com/xmidt-org/arrange/arrangehttp"
	"github.com/xmidt-org/candlelight"
	"github.com/xmidt-org/nbmirror/api"
	"github.com/xmidt-org/nbmirror/changelog"
	"github.com/xmidt-org/nbmirror/inventory"
	"github.com/xmidt-org/nbmirror/mirror"
	"github.com/xmidt-org/nbmirror/netbox"
	"github.com/xmidt-org/nbmirror/store/db"
	"github.com/xmidt-org/nbmirror/updater"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

// ServersConfig is the servers section of the configuration.  A server
// without an address is not started.
type ServersConfig struct {
	Primary arrangehttp.ServerConfig
	Metrics arrangehttp.ServerConfig
	Health  arrangehttp.ServerConfig

	// MetricsPath defaults to /metrics.
	MetricsPath string

	// HealthPath defaults to /health.
	HealthPath string
}

// unmarshal returns an fx constructor for the configuration section under key.
// Missing sections produce the zero value, which every component defaults.
func unmarshal[T any](key string) func(*viper.Viper) (T, error) {
	return func(v *viper.Viper) (T, error) {
		var c T
		err := v.UnmarshalKey(key, &c, decodeHooks)
		return c, err
	}
}

func provideConfig() fx.Option {
	return fx.Provide(
		unmarshal[touchstone.Config]("prometheus"),
		unmarshal[db.Config]("store"),
		unmarshal[netbox.ClientConfig]("netbox"),
		unmarshal[changelog.Config]("changelog"),
		unmarshal[mirror.Config]("mirror"),
		unmarshal[updater.Config]("updater"),
		unmarshal[inventory.Config]("inventory"),
		unmarshal[api.Config]("api"),
		func(v *viper.Viper) (ServersConfig, error) {
			c, err := unmarshal[ServersConfig]("servers")(v)
			if len(c.MetricsPath) == 0 {
				c.MetricsPath = "/metrics"
			}
			if len(c.HealthPath) == 0 {
				c.HealthPath = "/health"
			}
			return c, err
		},
	)
}

// provideTracing builds the tracing components from the tracing section.  An
// empty section leaves tracing disabled.
func provideTracing() fx.Option {
	return fx.Provide(
		func(v *viper.Viper) (candlelight.Config, error) {
			c, err := unmarshal[candlelight.Config]("tracing")(v)
			c.ApplicationName = applicationName
			return c, err
		},
		candlelight.New,
	)
}
