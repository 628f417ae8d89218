package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndexClient struct {
	putInputs    []*dynamodb.PutItemInput
	queryInputs  []*dynamodb.QueryInput
	updateInputs []*dynamodb.UpdateItemInput
	queryOutput  *dynamodb.QueryOutput
	err          error
}

func (f *fakeIndexClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.putInputs = append(f.putInputs, params)
	return &dynamodb.PutItemOutput{}, f.err
}

func (f *fakeIndexClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.queryInputs = append(f.queryInputs, params)
	if f.err != nil {
		return nil, f.err
	}
	if f.queryOutput != nil {
		return f.queryOutput, nil
	}
	return &dynamodb.QueryOutput{}, nil
}

func (f *fakeIndexClient) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.updateInputs = append(f.updateInputs, params)
	return &dynamodb.UpdateItemOutput{}, f.err
}

func TestIndexInsert(t *testing.T) {
	client := &fakeIndexClient{}
	index := NewIndex(client, "scheduled_messages")
	index.Now = func() time.Time { return time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC) }

	err := index.Insert(context.Background(), "serverless", "2024_1_1_10", "abcdefghij")
	require.NoError(t, err)

	require.Len(t, client.putInputs, 1)
	input := client.putInputs[0]
	assert.Equal(t, "scheduled_messages", *input.TableName)

	var entry Entry
	require.NoError(t, attributevalue.UnmarshalMap(input.Item, &entry))
	assert.Equal(t, "2024_1_1_10", entry.ScheduledDate)
	assert.Equal(t, "serverless", entry.GroupName)
	assert.Equal(t, "abcdefghij", entry.MessageKey)
	assert.Equal(t, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC).UnixMilli(), entry.MessageAdded)

	// The sent flag must be absent on insert, not stored as false.
	_, hasSent := input.Item["sent"]
	assert.False(t, hasSent)
}

func TestIndexQueryByBucket(t *testing.T) {
	item1, err := attributevalue.MarshalMap(Entry{
		ScheduledDate: "2024_1_1_10", GroupName: "serverless", MessageKey: "k1", MessageAdded: 1,
	})
	require.NoError(t, err)
	item2, err := attributevalue.MarshalMap(Entry{
		ScheduledDate: "2024_1_1_10", GroupName: "gophers", MessageKey: "k2", MessageAdded: 2, Sent: true,
	})
	require.NoError(t, err)

	client := &fakeIndexClient{queryOutput: &dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{item1, item2},
	}}
	index := NewIndex(client, "scheduled_messages")

	entries, err := index.QueryByBucket(context.Background(), "2024_1_1_10")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "serverless", entries[0].GroupName)
	assert.False(t, entries[0].Sent)
	assert.Equal(t, "gophers", entries[1].GroupName)
	assert.True(t, entries[1].Sent)

	require.Len(t, client.queryInputs, 1)
	bucket := client.queryInputs[0].ExpressionAttributeValues[":bucket"]
	assert.Equal(t, "2024_1_1_10", bucket.(*types.AttributeValueMemberS).Value)
}

func TestIndexMarkSent(t *testing.T) {
	client := &fakeIndexClient{}
	index := NewIndex(client, "scheduled_messages")

	err := index.MarkSent(context.Background(), "serverless", "2024_1_1_10")
	require.NoError(t, err)

	require.Len(t, client.updateInputs, 1)
	input := client.updateInputs[0]
	assert.Equal(t, "SET sent = :sent", *input.UpdateExpression)
	assert.Equal(t, "2024_1_1_10", input.Key["scheduled_date"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "serverless", input.Key["group_name"].(*types.AttributeValueMemberS).Value)
	assert.True(t, input.ExpressionAttributeValues[":sent"].(*types.AttributeValueMemberBOOL).Value)
}

func TestIndexQueryError(t *testing.T) {
	client := &fakeIndexClient{err: assert.AnError}
	index := NewIndex(client, "scheduled_messages")

	_, err := index.QueryByBucket(context.Background(), "2024_1_1_10")
	assert.Error(t, err)
}
