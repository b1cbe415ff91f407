// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package dynamodb

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/xmidt-org/nbmirror/model"
)

// client captures the methods of interest from the dynamoDB API. This
// should help mock API calls as well.
type client interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(context.Context, *dynamodb.DeleteItemInput, ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// service defines the dynamodb specific DAO interface. It helps keeping middleware
// such as logging and instrumentation orthogonal to business logic.
type service interface {
	Put(key string, value []byte) (*types.ConsumedCapacity, error)
	Get(key string) ([]byte, bool, *types.ConsumedCapacity, error)
	Delete(key string) (*types.ConsumedCapacity, error)
}

// executor satisfies the service interface.
type executor struct {
	// c is the dynamodb client
	c client

	// tableName is the name of the dynamodb table
	tableName string

	// opTimeout bounds every call
	opTimeout time.Duration
}

// Dynamo DB attribute keys
const (
	bucketAttributeKey = "bucket"
	idAttributeKey     = "id"
	valueAttributeKey  = "value"
)

var (
	ErrThroughputExceeded = errors.New("dynamodb throughput exceeded")
	ErrTableNotFound      = errors.New("dynamodb table not found")
	ErrOperationFailed    = errors.New("dynamodb operation failed")
)

// entryKey addresses one entry.  The partition key is the collection part of the
// store key so entries of one collection stay together; the sort key is the full
// store key, which is never empty.
type entryKey struct {
	Bucket string `dynamodbav:"bucket"`
	ID     string `dynamodbav:"id"`
}

type storableEntry struct {
	entryKey
	Value []byte `dynamodbav:"value"`
}

func newEntryKey(key string) entryKey {
	bucket := model.ParseKey(key).Path.String()
	if len(bucket) == 0 {
		bucket = key
	}
	return entryKey{Bucket: bucket, ID: key}
}

func handleClientError(err error) error {
	var (
		throughput *types.ProvisionedThroughputExceededException
		notFound   *types.ResourceNotFoundException
	)
	switch {
	case errors.As(err, &throughput):
		return errors.Join(ErrThroughputExceeded, err)
	case errors.As(err, &notFound):
		return errors.Join(ErrTableNotFound, err)
	default:
		return errors.Join(ErrOperationFailed, err)
	}
}

func (d *executor) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), d.opTimeout)
}

func (d *executor) Put(key string, value []byte) (*types.ConsumedCapacity, error) {
	av, err := attributevalue.MarshalMap(storableEntry{
		entryKey: newEntryKey(key),
		Value:    value,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := d.context()
	defer cancel()
	result, err := d.c.PutItem(ctx, &dynamodb.PutItemInput{
		Item:                   av,
		TableName:              aws.String(d.tableName),
		ReturnConsumedCapacity: types.ReturnConsumedCapacityTotal,
	})

	var consumedCapacity *types.ConsumedCapacity
	if result != nil {
		consumedCapacity = result.ConsumedCapacity
	}
	if err != nil {
		return consumedCapacity, handleClientError(err)
	}
	return consumedCapacity, nil
}

func (d *executor) Get(key string) ([]byte, bool, *types.ConsumedCapacity, error) {
	k, err := attributevalue.MarshalMap(newEntryKey(key))
	if err != nil {
		return nil, false, nil, err
	}

	ctx, cancel := d.context()
	defer cancel()
	result, err := d.c.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:              aws.String(d.tableName),
		Key:                    k,
		ConsistentRead:         aws.Bool(true),
		ReturnConsumedCapacity: types.ReturnConsumedCapacityTotal,
	})
	if err != nil {
		return nil, false, nil, handleClientError(err)
	}
	if len(result.Item) == 0 {
		return nil, false, result.ConsumedCapacity, nil
	}

	var e storableEntry
	if err := attributevalue.UnmarshalMap(result.Item, &e); err != nil {
		return nil, false, result.ConsumedCapacity, err
	}
	return e.Value, true, result.ConsumedCapacity, nil
}

func (d *executor) Delete(key string) (*types.ConsumedCapacity, error) {
	k, err := attributevalue.MarshalMap(newEntryKey(key))
	if err != nil {
		return nil, err
	}

	ctx, cancel := d.context()
	defer cancel()
	result, err := d.c.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:              aws.String(d.tableName),
		Key:                    k,
		ReturnConsumedCapacity: types.ReturnConsumedCapacityTotal,
	})
	if err != nil {
		return nil, handleClientError(err)
	}
	return result.ConsumedCapacity, nil
}
