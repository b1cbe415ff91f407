// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package sqlite implements a single file store backend on SQLite in WAL mode,
// which lets readers in other processes proceed while one process writes.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/xmidt-org/nbmirror/store"
)

const (
	SQLite = "sqlite"

	driverName         = "sqlite3"
	defaultTable       = "entries"
	defaultBusyTimeout = 5 * time.Second
	defaultOpTimeout   = 10 * time.Second
)

var ErrNoPath = errors.New("sqlite store path cannot be empty")

type Config struct {
	// Path is the database file.
	Path string

	// Table holds every entry.  Defaults to entries.
	Table string

	// BusyTimeout bounds the wait for locks held by other connections.
	BusyTimeout time.Duration

	// OpTimeout bounds every statement.
	OpTimeout time.Duration
}

type Opener struct {
	config Config
}

func NewOpener(config Config) (*Opener, error) {
	if len(config.Path) == 0 {
		return nil, ErrNoPath
	}
	if len(config.Table) == 0 {
		config.Table = defaultTable
	}
	if config.BusyTimeout <= 0 {
		config.BusyTimeout = defaultBusyTimeout
	}
	if config.OpTimeout <= 0 {
		config.OpTimeout = defaultOpTimeout
	}
	return &Opener{config: config}, nil
}

func (o *Opener) dsn(readOnly bool) string {
	v := url.Values{}
	v.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", o.config.BusyTimeout.Milliseconds()))
	if readOnly {
		v.Set("mode", "ro")
	} else {
		v.Add("_pragma", "journal_mode(wal)")
	}
	return "file:" + o.config.Path + "?" + v.Encode()
}

func (o *Opener) Open(readOnly bool) (store.Handle, error) {
	if readOnly {
		if _, err := os.Stat(o.config.Path); err != nil {
			return nil, err
		}
	} else if err := os.MkdirAll(filepath.Dir(o.config.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open(driverName, o.dsn(readOnly))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	h := &handle{
		db:       db,
		readOnly: readOnly,
		timeout:  o.config.OpTimeout,
		get:      fmt.Sprintf("SELECT value FROM %s WHERE key = ?", o.config.Table),
		put: fmt.Sprintf("INSERT INTO %s (key, value) VALUES (?, ?) "+
			"ON CONFLICT(key) DO UPDATE SET value = excluded.value", o.config.Table),
		del: fmt.Sprintf("DELETE FROM %s WHERE key = ?", o.config.Table),
	}

	ctx, cancel := h.context()
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if readOnly {
		return h, nil
	}

	schema := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (key TEXT PRIMARY KEY, value BLOB NOT NULL)", o.config.Table)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return h, nil
}

type handle struct {
	db       *sql.DB
	readOnly bool
	timeout  time.Duration

	get string
	put string
	del string
}

func (h *handle) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), h.timeout)
}

func (h *handle) Get(key string) ([]byte, bool, error) {
	ctx, cancel := h.context()
	defer cancel()

	var value []byte
	err := h.db.QueryRowContext(ctx, h.get, key).Scan(&value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, false, nil
	case err != nil && h.readOnly && isMissingTable(err):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	return value, true, nil
}

func (h *handle) Put(key string, value []byte) error {
	if h.readOnly {
		return store.ReadOnlyErr{Key: key}
	}
	ctx, cancel := h.context()
	defer cancel()
	_, err := h.db.ExecContext(ctx, h.put, key, value)
	return err
}

func (h *handle) Delete(key string) error {
	if h.readOnly {
		return store.ReadOnlyErr{Key: key}
	}
	ctx, cancel := h.context()
	defer cancel()
	_, err := h.db.ExecContext(ctx, h.del, key)
	return err
}

func (h *handle) Close() error {
	return h.db.Close()
}

// isMissingTable reports a read against a file no writer has initialized yet.
func isMissingTable(err error) bool {
	return strings.Contains(err.Error(), "no such table")
}
