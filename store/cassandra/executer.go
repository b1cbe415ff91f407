// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package cassandra

import (
	"errors"
	"fmt"

	"github.com/gocql/gocql"
	"github.com/hailocab/go-hostpool"
	"github.com/xmidt-org/nbmirror/model"
)

type dbStore interface {
	Get(bucket, id string) ([]byte, bool, error)
	Put(bucket, id string, value []byte) error
	Delete(bucket, id string) error
	Close()
	Ping() error
}

var errServerClosed = errors.New("server is closed")

type cassandraExecutor struct {
	session *gocql.Session

	get string
	put string
	del string
}

func connect(clusterConfig *gocql.ClusterConfig, table string) (dbStore, error) {
	clusterConfig.PoolConfig.HostSelectionPolicy = gocql.HostPoolHostPolicy(hostpool.New(nil))
	session, err := clusterConfig.CreateSession()
	if err != nil {
		return nil, err
	}

	return &cassandraExecutor{
		session: session,
		get:     fmt.Sprintf("SELECT value FROM %s WHERE bucket = ? AND id = ?", table),
		put:     fmt.Sprintf("INSERT INTO %s (bucket, id, value) VALUES (?, ?, ?)", table),
		del:     fmt.Sprintf("DELETE FROM %s WHERE bucket = ? AND id = ?", table),
	}, nil
}

// rowKey splits a store key into the partition key (its collection) and the
// clustering key (the whole key).
func rowKey(key string) (string, string) {
	bucket := model.ParseKey(key).Path.String()
	if len(bucket) == 0 {
		bucket = key
	}
	return bucket, key
}

func (s *cassandraExecutor) Get(bucket, id string) ([]byte, bool, error) {
	var value []byte
	err := s.session.Query(s.get, bucket, id).Scan(&value)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *cassandraExecutor) Put(bucket, id string, value []byte) error {
	return s.session.Query(s.put, bucket, id, value).Exec()
}

func (s *cassandraExecutor) Delete(bucket, id string) error {
	return s.session.Query(s.del, bucket, id).Exec()
}

func (s *cassandraExecutor) Close() {
	s.session.Close()
}

func (s *cassandraExecutor) Ping() error {
	if s.session.Closed() {
		return errServerClosed
	}
	return nil
}
