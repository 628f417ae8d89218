package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/ignite/group-mailer/internal/pkg/logger"
)

// Entry is the lightweight schedule-index record pointing at a content blob.
// The table partitions on the bucket key and sorts on the group name, so a
// group can hold at most one pending entry per hour: scheduling a second
// message for the same group and hour overwrites the first pointer.
type Entry struct {
	ScheduledDate string `dynamodbav:"scheduled_date" json:"scheduled_date"`
	GroupName     string `dynamodbav:"group_name" json:"group_name"`
	MessageKey    string `dynamodbav:"message_key" json:"message_key"`
	MessageAdded  int64  `dynamodbav:"message_added" json:"message_added"`
	Sent          bool   `dynamodbav:"sent,omitempty" json:"sent,omitempty"`
}

// IndexAPI is the DynamoDB client surface the index consumes.
type IndexAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// Index stores and queries schedule entries in DynamoDB.
type Index struct {
	client IndexAPI
	table  string

	// Now is the clock used for the message_added stamp. Overridable in tests.
	Now func() time.Time
}

// NewIndex creates a schedule index backed by the given table.
func NewIndex(client IndexAPI, table string) *Index {
	return &Index{client: client, table: table, Now: time.Now}
}

// Insert writes a new entry with the sent flag unset.
func (i *Index) Insert(ctx context.Context, group, bucketKey, contentRef string) error {
	av, err := attributevalue.MarshalMap(Entry{
		ScheduledDate: bucketKey,
		GroupName:     group,
		MessageKey:    contentRef,
		MessageAdded:  i.Now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("marshaling schedule entry: %w", err)
	}

	_, err = i.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(i.table),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("putting schedule entry: %w", err)
	}

	return nil
}

// QueryByBucket returns every entry filed under the bucket key, sent or not,
// across all groups. Single page; an hour's entries are bounded by the
// number of groups.
func (i *Index) QueryByBucket(ctx context.Context, bucketKey string) ([]Entry, error) {
	result, err := i.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(i.table),
		KeyConditionExpression: aws.String("scheduled_date = :bucket"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":bucket": &types.AttributeValueMemberS{Value: bucketKey},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("querying schedule bucket %s: %w", bucketKey, err)
	}

	var entries []Entry
	for _, item := range result.Items {
		var entry Entry
		if err := attributevalue.UnmarshalMap(item, &entry); err != nil {
			logger.Warn("skipping unreadable schedule entry", "bucket", bucketKey, "error", err)
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// MarkSent flags the entry for (bucketKey, group) as sent. Idempotent:
// re-marking an already-sent entry rewrites the same value.
func (i *Index) MarkSent(ctx context.Context, group, bucketKey string) error {
	_, err := i.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(i.table),
		Key: map[string]types.AttributeValue{
			"scheduled_date": &types.AttributeValueMemberS{Value: bucketKey},
			"group_name":     &types.AttributeValueMemberS{Value: group},
		},
		UpdateExpression: aws.String("SET sent = :sent"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":sent": &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	if err != nil {
		return fmt.Errorf("marking %s sent for %s: %w", bucketKey, group, err)
	}

	return nil
}
