// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package dynamodb

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/mock"
)

type mockClient struct {
	mock.Mock
}

func (c *mockClient) PutItem(_ context.Context, input *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := c.Called(input)
	return args.Get(0).(*dynamodb.PutItemOutput), args.Error(1)
}

func (c *mockClient) GetItem(_ context.Context, input *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := c.Called(input)
	return args.Get(0).(*dynamodb.GetItemOutput), args.Error(1)
}

func (c *mockClient) DeleteItem(_ context.Context, input *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	args := c.Called(input)
	return args.Get(0).(*dynamodb.DeleteItemOutput), args.Error(1)
}

type mockService struct {
	mock.Mock
}

func (s *mockService) Put(key string, value []byte) (*types.ConsumedCapacity, error) {
	args := s.Called(key, value)
	return args.Get(0).(*types.ConsumedCapacity), args.Error(1)
}

func (s *mockService) Get(key string) ([]byte, bool, *types.ConsumedCapacity, error) {
	args := s.Called(key)
	return args.Get(0).([]byte), args.Bool(1), args.Get(2).(*types.ConsumedCapacity), args.Error(3)
}

func (s *mockService) Delete(key string) (*types.ConsumedCapacity, error) {
	args := s.Called(key)
	return args.Get(0).(*types.ConsumedCapacity), args.Error(1)
}

// tableClient keeps items in memory, keyed the way the real table is.
type tableClient struct {
	lock  sync.Mutex
	items map[string]map[string]types.AttributeValue
}

func newTableClient() *tableClient {
	return &tableClient{items: map[string]map[string]types.AttributeValue{}}
}

func itemID(key map[string]types.AttributeValue) string {
	b := key[bucketAttributeKey].(*types.AttributeValueMemberS).Value
	id := key[idAttributeKey].(*types.AttributeValueMemberS).Value
	return b + "/" + id
}

func (c *tableClient) PutItem(_ context.Context, input *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.items[itemID(input.Item)] = input.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (c *tableClient) GetItem(_ context.Context, input *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return &dynamodb.GetItemOutput{Item: c.items[itemID(input.Key)]}, nil
}

func (c *tableClient) DeleteItem(_ context.Context, input *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	delete(c.items, itemID(input.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}
