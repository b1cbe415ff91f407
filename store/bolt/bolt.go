// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package bolt implements a single file store backend on bbolt.  bbolt holds an
// exclusive file lock while a writable handle is open, so readers in other
// processes wait for it; use the transactional mode when several processes
// share a file.
package bolt

import (
	"errors"
	"os"
	"time"

	"github.com/xmidt-org/nbmirror/store"
	bolt "go.etcd.io/bbolt"
)

const (
	Bolt = "bolt"

	defaultBucket      = "nbmirror"
	defaultLockTimeout = 10 * time.Second
	defaultFileMode    = 0o640
)

var ErrNoPath = errors.New("bolt store path cannot be empty")

type Config struct {
	// Path is the database file.
	Path string

	// Bucket holds every entry.  Defaults to nbmirror.
	Bucket string

	// LockTimeout bounds the wait for the file lock held by another process.
	LockTimeout time.Duration
}

// Opener opens bbolt handles on one file.
type Opener struct {
	config Config
}

func NewOpener(config Config) (*Opener, error) {
	if len(config.Path) == 0 {
		return nil, ErrNoPath
	}
	if len(config.Bucket) == 0 {
		config.Bucket = defaultBucket
	}
	if config.LockTimeout <= 0 {
		config.LockTimeout = defaultLockTimeout
	}
	return &Opener{config: config}, nil
}

func (o *Opener) Open(readOnly bool) (store.Handle, error) {
	if readOnly {
		if _, err := os.Stat(o.config.Path); err != nil {
			return nil, err
		}
	}

	db, err := bolt.Open(o.config.Path, defaultFileMode, &bolt.Options{
		Timeout:  o.config.LockTimeout,
		ReadOnly: readOnly,
	})
	if err != nil {
		return nil, err
	}

	h := &handle{
		db:       db,
		bucket:   []byte(o.config.Bucket),
		readOnly: readOnly,
	}
	if readOnly {
		return h, nil
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(h.bucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return h, nil
}

type handle struct {
	db       *bolt.DB
	bucket   []byte
	readOnly bool
}

func (h *handle) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := h.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(h.bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			// bbolt memory is only valid inside the transaction.
			value = append([]byte{}, v...)
		}
		return nil
	})
	return value, value != nil, err
}

func (h *handle) Put(key string, value []byte) error {
	if h.readOnly {
		return store.ReadOnlyErr{Key: key}
	}
	return h.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(h.bucket).Put([]byte(key), value)
	})
}

func (h *handle) Delete(key string) error {
	if h.readOnly {
		return store.ReadOnlyErr{Key: key}
	}
	return h.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(h.bucket).Delete([]byte(key))
	})
}

func (h *handle) Close() error {
	return h.db.Close()
}
