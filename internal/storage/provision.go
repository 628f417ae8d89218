package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/ignite/group-mailer/internal/pkg/logger"
)

// TableAPI is the narrow DynamoDB surface provisioning needs.
type TableAPI interface {
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// BucketAPI is the narrow S3 surface provisioning needs.
type BucketAPI interface {
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// EnsureTable creates a pay-per-request table with a string partition key
// and string sort key. An already-existing table is not an error.
func EnsureTable(ctx context.Context, client TableAPI, table, partitionKey, sortKey string) error {
	_, err := client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(table),
		AttributeDefinitions: []ddbtypes.AttributeDefinition{
			{AttributeName: aws.String(partitionKey), AttributeType: ddbtypes.ScalarAttributeTypeS},
			{AttributeName: aws.String(sortKey), AttributeType: ddbtypes.ScalarAttributeTypeS},
		},
		KeySchema: []ddbtypes.KeySchemaElement{
			{AttributeName: aws.String(partitionKey), KeyType: ddbtypes.KeyTypeHash},
			{AttributeName: aws.String(sortKey), KeyType: ddbtypes.KeyTypeRange},
		},
		BillingMode: ddbtypes.BillingModePayPerRequest,
	})
	if err != nil {
		var inUse *ddbtypes.ResourceInUseException
		if errors.As(err, &inUse) {
			logger.Info("table already exists", "table", table)
			return nil
		}
		return fmt.Errorf("creating table %s: %w", table, err)
	}

	logger.Info("table created", "table", table)
	return nil
}

// EnsureBucket creates the content bucket. An already-owned bucket is not
// an error. Regions outside us-east-1 need an explicit location constraint.
func EnsureBucket(ctx context.Context, client BucketAPI, bucket, region string) error {
	input := &s3.CreateBucketInput{
		Bucket: aws.String(bucket),
	}
	if region != "us-east-1" {
		input.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(region),
		}
	}

	_, err := client.CreateBucket(ctx, input)
	if err != nil {
		var owned *s3types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			logger.Info("bucket already exists", "bucket", bucket)
			return nil
		}
		return fmt.Errorf("creating bucket %s: %w", bucket, err)
	}

	logger.Info("bucket created", "bucket", bucket)
	return nil
}
