// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package dynamodb

import (
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testTableName = "table01"
	testKey       = "dcim.devices:42"
)

func TestNewEntryKey(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(entryKey{Bucket: "dcim.devices", ID: "dcim.devices:42"}, newEntryKey("dcim.devices:42"))
	assert.Equal(entryKey{Bucket: "dcim.devices", ID: "dcim.devices:"}, newEntryKey("dcim.devices:"))
	assert.Equal(entryKey{Bucket: "changes", ID: "changes:last"}, newEntryKey("changes:last"))
	assert.Equal(entryKey{Bucket: ":", ID: ":"}, newEntryKey(":"))
}

func TestPut(t *testing.T) {
	var (
		dbErr    = errors.New("dynamodb error")
		capacity = &types.ConsumedCapacity{CapacityUnits: aws.Float64(1)}
	)
	tcs := []struct {
		Description              string
		PutItemErr               error
		ExpectedConsumedCapacity *types.ConsumedCapacity
		ExpectedErr              error
	}{
		{
			Description: "PutItem fails",
			PutItemErr:  dbErr,
			ExpectedErr: ErrOperationFailed,
		},
		{
			Description: "Throughput exceeded",
			PutItemErr:  &types.ProvisionedThroughputExceededException{},
			ExpectedErr: ErrThroughputExceeded,
		},
		{
			Description:              "Success",
			ExpectedConsumedCapacity: capacity,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.Description, func(t *testing.T) {
			assert := assert.New(t)
			m := new(mockClient)
			expectedItem, err := attributevalue.MarshalMap(storableEntry{
				entryKey: newEntryKey(testKey),
				Value:    []byte(`{"ts":1,"data":{}}`),
			})
			require.NoError(t, err)

			var output *dynamodb.PutItemOutput
			if tc.PutItemErr == nil {
				output = &dynamodb.PutItemOutput{ConsumedCapacity: capacity}
			}
			m.On("PutItem", &dynamodb.PutItemInput{
				Item:                   expectedItem,
				TableName:              aws.String(testTableName),
				ReturnConsumedCapacity: types.ReturnConsumedCapacityTotal,
			}).Return(output, tc.PutItemErr)

			svc := &executor{c: m, tableName: testTableName, opTimeout: time.Second}
			consumedCapacity, err := svc.Put(testKey, []byte(`{"ts":1,"data":{}}`))
			m.AssertExpectations(t)
			assert.Equal(tc.ExpectedConsumedCapacity, consumedCapacity)
			if tc.ExpectedErr != nil {
				assert.ErrorIs(err, tc.ExpectedErr)
			} else {
				assert.NoError(err)
			}
		})
	}
}

func TestGet(t *testing.T) {
	assert := assert.New(t)
	m := new(mockClient)
	svc := &executor{c: m, tableName: testTableName, opTimeout: time.Second}

	item, err := attributevalue.MarshalMap(storableEntry{
		entryKey: newEntryKey(testKey),
		Value:    []byte("value"),
	})
	require.NoError(t, err)

	m.On("GetItem", mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
		return itemID(in.Key) == "dcim.devices/dcim.devices:42"
	})).Return(&dynamodb.GetItemOutput{Item: item}, nil).Once()
	value, found, _, err := svc.Get(testKey)
	assert.NoError(err)
	assert.True(found)
	assert.Equal([]byte("value"), value)

	m.On("GetItem", mock.Anything).Return(&dynamodb.GetItemOutput{}, nil).Once()
	_, found, _, err = svc.Get(testKey)
	assert.NoError(err)
	assert.False(found)

	m.On("GetItem", mock.Anything).Return((*dynamodb.GetItemOutput)(nil), &types.ResourceNotFoundException{}).Once()
	_, _, _, err = svc.Get(testKey)
	assert.ErrorIs(err, ErrTableNotFound)
	m.AssertExpectations(t)
}

func TestDelete(t *testing.T) {
	assert := assert.New(t)
	m := new(mockClient)
	svc := &executor{c: m, tableName: testTableName, opTimeout: time.Second}

	m.On("DeleteItem", mock.Anything).Return(&dynamodb.DeleteItemOutput{}, nil).Once()
	_, err := svc.Delete(testKey)
	assert.NoError(err)

	m.On("DeleteItem", mock.Anything).Return((*dynamodb.DeleteItemOutput)(nil), errors.New("boom")).Once()
	_, err = svc.Delete(testKey)
	assert.ErrorIs(err, ErrOperationFailed)
	m.AssertExpectations(t)
}
