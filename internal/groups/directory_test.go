package groups

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

type fakeDirectoryClient struct {
	putInputs   []*dynamodb.PutItemInput
	queryInputs []*dynamodb.QueryInput
	queryOutput *dynamodb.QueryOutput
	err         error
}

func (f *fakeDirectoryClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.putInputs = append(f.putInputs, params)
	return &dynamodb.PutItemOutput{}, f.err
}

func (f *fakeDirectoryClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.queryInputs = append(f.queryInputs, params)
	if f.err != nil {
		return nil, f.err
	}
	if f.queryOutput != nil {
		return f.queryOutput, nil
	}
	return &dynamodb.QueryOutput{}, nil
}

func TestJoin(t *testing.T) {
	client := &fakeDirectoryClient{}
	dir := NewDirectory(client, "subscribers")
	joined := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	dir.Now = func() time.Time { return joined }

	err := dir.Join(context.Background(), "serverless", "a@x.com")
	require.NoError(t, err)

	require.Len(t, client.putInputs, 1)
	input := client.putInputs[0]
	assert.Equal(t, "subscribers", *input.TableName)

	var sub Subscriber
	require.NoError(t, attributevalue.UnmarshalMap(input.Item, &sub))
	assert.Equal(t, "serverless", sub.GroupName)
	assert.Equal(t, "a@x.com", sub.Email)
	assert.Equal(t, joined.UnixMilli(), sub.DateJoined)
}

func TestJoinInvalidEmailWritesNothing(t *testing.T) {
	tests := []struct {
		name  string
		email string
	}{
		{"empty", ""},
		{"not an address", "not-an-email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeDirectoryClient{}
			dir := NewDirectory(client, "subscribers")

			err := dir.Join(context.Background(), "serverless", tt.email)
			assert.ErrorIs(t, err, ErrInvalidEmail)
			assert.Empty(t, client.putInputs)
		})
	}
}

func TestListByGroup(t *testing.T) {
	item, err := attributevalue.MarshalMap(Subscriber{
		GroupName: "serverless", Email: "a@x.com", DateJoined: 1704100000000,
	})
	require.NoError(t, err)

	client := &fakeDirectoryClient{queryOutput: &dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{item},
	}}
	dir := NewDirectory(client, "subscribers")

	subs, err := dir.ListByGroup(context.Background(), "serverless")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "a@x.com", subs[0].Email)
	assert.Equal(t, int64(1704100000000), subs[0].DateJoined)

	require.Len(t, client.queryInputs, 1)
	group := client.queryInputs[0].ExpressionAttributeValues[":group"]
	assert.Equal(t, "serverless", group.(*types.AttributeValueMemberS).Value)
}

func TestListByGroupEmpty(t *testing.T) {
	client := &fakeDirectoryClient{}
	dir := NewDirectory(client, "subscribers")

	subs, err := dir.ListByGroup(context.Background(), "empty-group")
	require.NoError(t, err)
	assert.Empty(t, subs)
}
