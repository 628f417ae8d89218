package groups

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/ignite/group-mailer/internal/pkg/logger"
)

// ErrInvalidEmail marks a join request with a missing or malformed address.
var ErrInvalidEmail = errors.New("invalid email")

// Subscriber is one membership record. Records are written on join and
// never mutated or deleted; the (group_name, subscriber) composite key makes
// a repeat join overwrite the prior record instead of accumulating
// duplicates, which would mean duplicate sends.
type Subscriber struct {
	GroupName  string `dynamodbav:"group_name" json:"group_name"`
	Email      string `dynamodbav:"subscriber" json:"subscriber"`
	DateJoined int64  `dynamodbav:"date_joined" json:"date_joined"`
}

// DirectoryAPI is the DynamoDB client surface the directory consumes.
type DirectoryAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Directory stores and lists group subscribers in DynamoDB.
type Directory struct {
	client DirectoryAPI
	table  string

	// Now is the clock used for the date_joined stamp. Overridable in tests.
	Now func() time.Time
}

// NewDirectory creates a directory backed by the given table.
func NewDirectory(client DirectoryAPI, table string) *Directory {
	return &Directory{client: client, table: table, Now: time.Now}
}

// Join adds email to the group, stamped with the current time. Validation
// failures write nothing.
func (d *Directory) Join(ctx context.Context, group, email string) error {
	if err := validation.Validate(email, validation.Required, is.EmailFormat); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEmail, err)
	}

	av, err := attributevalue.MarshalMap(Subscriber{
		GroupName:  group,
		Email:      email,
		DateJoined: d.Now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("marshaling subscriber: %w", err)
	}

	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.table),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("putting subscriber: %w", err)
	}

	logger.Info("subscriber joined", "group", group, "subscriber", email)
	return nil
}

// ListByGroup returns every subscriber in the group, in no particular
// order. Single query page; lists beyond one page are out of scope.
func (d *Directory) ListByGroup(ctx context.Context, group string) ([]Subscriber, error) {
	result, err := d.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(d.table),
		KeyConditionExpression: aws.String("group_name = :group"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":group": &types.AttributeValueMemberS{Value: group},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("querying subscribers for %s: %w", group, err)
	}

	var subscribers []Subscriber
	for _, item := range result.Items {
		var sub Subscriber
		if err := attributevalue.UnmarshalMap(item, &sub); err != nil {
			logger.Warn("skipping unreadable subscriber record", "group", group, "error", err)
			continue
		}
		subscribers = append(subscribers, sub)
	}

	return subscribers, nil
}
