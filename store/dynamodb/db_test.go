// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package dynamodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/xmidt-org/nbmirror/store"
	"github.com/xmidt-org/nbmirror/store/db/metric"
	"github.com/xmidt-org/nbmirror/store/storetest"
	"go.uber.org/zap"
)

func newTestOpener(*testing.T) store.Opener {
	c := Config{}
	validateConfig(&c)
	return newOpener(c, newTableClient(), metric.NewUnregisteredMeasures(), zap.NewNop())
}

func TestOpener(t *testing.T) {
	storetest.OpenerTest(t, newTestOpener(t))
}

func TestStore(t *testing.T) {
	storetest.StoreTest(t, newTestOpener)
}

func TestValidateConfig(t *testing.T) {
	assert := assert.New(t)
	c := Config{}
	validateConfig(&c)
	assert.Equal(Config{
		Table:      defaultTable,
		MaxRetries: defaultMaxRetries,
		OpTimeout:  defaultOpTimeout,
	}, c)

	c = Config{Table: "t", MaxRetries: 1, OpTimeout: time.Minute}
	validateConfig(&c)
	assert.Equal(Config{Table: "t", MaxRetries: 1, OpTimeout: time.Minute}, c)
}
