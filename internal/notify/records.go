package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/frontdesk-ai/platform/pkg/logging"
)

const recordTTL = 90 * 24 * time.Hour

// ErrRecordExists indicates a record with the same ID was already written.
var ErrRecordExists = errors.New("notify: record already exists")

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// Record is the persisted trace of a notification that fired.
type Record struct {
	RecordID    string   `dynamodbav:"recordId" json:"recordId"`
	BusinessID  string   `dynamodbav:"businessId" json:"businessId"`
	Category    Category `dynamodbav:"category" json:"category"`
	CallerName  string   `dynamodbav:"callerName,omitempty" json:"callerName,omitempty"`
	CallerPhone string   `dynamodbav:"callerPhone,omitempty" json:"callerPhone,omitempty"`
	Date        string   `dynamodbav:"date,omitempty" json:"date,omitempty"`
	Time        string   `dynamodbav:"time,omitempty" json:"time,omitempty"`
	PartySize   int      `dynamodbav:"partySize,omitempty" json:"partySize,omitempty"`
	Message     string   `dynamodbav:"message,omitempty" json:"message,omitempty"`
	CreatedAt   string   `dynamodbav:"createdAt" json:"createdAt"`
	ExpiresAt   int64    `dynamodbav:"expiresAt,omitempty" json:"-"`
}

// RecordStore persists notification records.
type RecordStore interface {
	Put(ctx context.Context, rec *Record) error
}

// DynamoRecordStore writes records to DynamoDB, write-once per record ID.
type DynamoRecordStore struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

// NewDynamoRecordStore builds a store backed by the provided DynamoDB client.
func NewDynamoRecordStore(client dynamoAPI, tableName string, logger *logging.Logger) *DynamoRecordStore {
	if client == nil {
		panic("notify: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("notify: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &DynamoRecordStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

var _ RecordStore = (*DynamoRecordStore)(nil)

// Put inserts a new record. A duplicate record ID is rejected so retries
// never double-count.
func (s *DynamoRecordStore) Put(ctx context.Context, rec *Record) error {
	if rec == nil {
		return errors.New("notify: record cannot be nil")
	}
	now := time.Now().UTC()
	if rec.RecordID == "" {
		rec.RecordID = uuid.NewString()
	}
	rec.CreatedAt = now.Format(time.RFC3339Nano)
	if rec.ExpiresAt == 0 {
		rec.ExpiresAt = now.Add(recordTTL).Unix()
	}

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("notify: marshal record: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(recordId)"),
	})
	if err != nil {
		var cond *types.ConditionalCheckFailedException
		if errors.As(err, &cond) {
			return ErrRecordExists
		}
		return fmt.Errorf("notify: persist record: %w", err)
	}
	return nil
}

// NopRecordStore discards records, used when persistence is not configured.
type NopRecordStore struct{}

// Put discards the record.
func (NopRecordStore) Put(ctx context.Context, rec *Record) error { return nil }

var _ RecordStore = NopRecordStore{}
