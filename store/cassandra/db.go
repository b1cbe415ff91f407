// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package cassandra

import (
	"errors"
	"time"

	emperrors "emperror.dev/errors"
	"github.com/gocql/gocql"
	"github.com/xmidt-org/nbmirror/store"
	"github.com/xmidt-org/nbmirror/store/db/metric"
	"go.uber.org/zap"
)

const (
	Yugabyte = "yugabyte"

	defaultOpTimeout             = time.Duration(10) * time.Second
	defaultDatabase              = "nbmirror"
	defaultTable                 = "entries"
	defaultNumRetries            = 0
	defaultWaitTimeMult          = 1
	defaultMaxNumberConnsPerHost = 2
	defaultPingInterval          = 5 * time.Second
)

var ErrNoHosts = errors.New("number of hosts must be > 0")

type Config struct {
	// Hosts to  connect to. Must have at least one
	Hosts []string

	// Database aka Keyspace for cassandra
	Database string

	// Table holds every entry as (bucket text, id text, value blob).
	Table string

	// OpTimeout
	OpTimeout time.Duration

	// SSLRootCert used for enabling tls to the cluster. SSLKey, and SSLCert must also be set.
	SSLRootCert string
	// SSLKey used for enabling tls to the cluster. SSLRootCert, and SSLCert must also be set.
	SSLKey string
	// SSLCert used for enabling tls to the cluster. SSLRootCert, and SSLRootCert must also be set.
	SSLCert string
	// If you want to verify the hostname and server cert (like a wildcard for cass cluster) then you should turn this on
	// This option is basically the inverse of InSecureSkipVerify
	// See InSecureSkipVerify in http://golang.org/pkg/crypto/tls/ for more info
	EnableHostVerification bool

	// Username to authenticate into the cluster. Password must also be provided.
	Username string
	// Password to authenticate into the cluster. Username must also be provided.
	Password string

	// NumRetries for connecting to the db
	NumRetries int

	// WaitTimeMult the amount of time to wait before retrying to connect to the db
	WaitTimeMult time.Duration

	// MaxConnsPerHost max number of connections per host
	MaxConnsPerHost int

	// PingInterval is how often the session is checked.
	PingInterval time.Duration
}

// Opener hands out handles on one shared session.
type Opener struct {
	client   dbStore
	config   Config
	logger   *zap.Logger
	measures metric.Measures
	ticker   *time.Ticker
	done     chan struct{}
}

func NewOpener(config Config, measures metric.Measures, logger *zap.Logger) (*Opener, error) {
	if len(config.Hosts) == 0 {
		return nil, ErrNoHosts
	}
	validateConfig(&config)
	if logger == nil {
		logger = zap.NewNop()
	}

	clusterConfig := gocql.NewCluster(config.Hosts...)
	clusterConfig.Consistency = gocql.LocalQuorum
	clusterConfig.Keyspace = config.Database
	clusterConfig.Timeout = config.OpTimeout
	clusterConfig.NumConns = config.MaxConnsPerHost
	// let retry package handle it
	clusterConfig.RetryPolicy = &gocql.SimpleRetryPolicy{NumRetries: 1}
	// setup ssl
	if config.SSLRootCert != "" && config.SSLCert != "" && config.SSLKey != "" {
		clusterConfig.SslOpts = &gocql.SslOptions{
			CertPath:               config.SSLCert,
			KeyPath:                config.SSLKey,
			CaPath:                 config.SSLRootCert,
			EnableHostVerification: config.EnableHostVerification,
		}
	}
	// setup authentication
	if config.Username != "" && config.Password != "" {
		clusterConfig.Authenticator = gocql.PasswordAuthenticator{
			Username: config.Username,
			Password: config.Password,
		}
	}

	client, err := connect(clusterConfig, config.Table)

	// retry if it fails
	waitTime := 1 * time.Second
	for attempt := 0; attempt < config.NumRetries && err != nil; attempt++ {
		time.Sleep(waitTime)
		client, err = connect(clusterConfig, config.Table)
		waitTime = waitTime * config.WaitTimeMult
	}
	if err != nil {
		return nil, emperrors.WrapWithDetails(err, "connecting to database failed", "hosts", config.Hosts)
	}

	return newOpener(config, client, measures, logger), nil
}

func newOpener(config Config, client dbStore, measures metric.Measures, logger *zap.Logger) *Opener {
	return &Opener{
		client:   client,
		config:   config,
		logger:   logger,
		measures: measures,
	}
}

func (o *Opener) Open(readOnly bool) (store.Handle, error) {
	return &handle{opener: o, readOnly: readOnly}, nil
}

// StartPing checks the session on an interval until Close.
func (o *Opener) StartPing() {
	if o.ticker != nil {
		return
	}
	o.ticker = time.NewTicker(o.config.PingInterval)
	o.done = make(chan struct{})
	go func(ticker *time.Ticker, done <-chan struct{}) {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := o.Ping(); err != nil {
					o.logger.Error("ping failed", zap.Error(err))
				}
			}
		}
	}(o.ticker, o.done)
}

// Ping is for pinging the database to verify that the connection is still good.
func (o *Opener) Ping() error {
	err := o.observe(metric.PingType, o.client.Ping)
	if err != nil {
		return emperrors.Wrap(err, "pinging connection failed")
	}
	return nil
}

func (o *Opener) Close() {
	if o.ticker != nil {
		o.ticker.Stop()
		close(o.done)
		o.ticker = nil
	}
	o.client.Close()
}

func (o *Opener) observe(queryType string, f func() error) error {
	start := time.Now()
	err := f()
	o.measures.Observe(queryType, time.Since(start).Seconds(), err)
	return err
}

type handle struct {
	opener   *Opener
	readOnly bool
}

func (h *handle) Get(key string) (value []byte, found bool, err error) {
	bucket, id := rowKey(key)
	err = h.opener.observe(metric.ReadType, func() error {
		value, found, err = h.opener.client.Get(bucket, id)
		return err
	})
	return
}

func (h *handle) Put(key string, value []byte) error {
	if h.readOnly {
		return store.ReadOnlyErr{Key: key}
	}
	bucket, id := rowKey(key)
	return h.opener.observe(metric.InsertType, func() error {
		return h.opener.client.Put(bucket, id, value)
	})
}

func (h *handle) Delete(key string) error {
	if h.readOnly {
		return store.ReadOnlyErr{Key: key}
	}
	bucket, id := rowKey(key)
	return h.opener.observe(metric.DeleteType, func() error {
		return h.opener.client.Delete(bucket, id)
	})
}

func (h *handle) Close() error {
	return nil
}

func validateConfig(config *Config) {
	zeroDuration := time.Duration(0) * time.Second

	if config.OpTimeout == zeroDuration {
		config.OpTimeout = defaultOpTimeout
	}

	if config.Database == "" {
		config.Database = defaultDatabase
	}
	if config.Table == "" {
		config.Table = defaultTable
	}
	if config.NumRetries < 0 {
		config.NumRetries = defaultNumRetries
	}
	if config.WaitTimeMult < 1 {
		config.WaitTimeMult = defaultWaitTimeMult
	}
	if config.MaxConnsPerHost <= 0 {
		config.MaxConnsPerHost = defaultMaxNumberConnsPerHost
	}
	if config.PingInterval <= 0 {
		config.PingInterval = defaultPingInterval
	}
}
