package storage

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	"github.com/ignite/group-mailer/internal/config"
)

// Clients bundles the AWS service clients the stores and the mailer are
// built on. Constructed once at startup and injected; nothing in this
// repository reaches for ambient global clients.
type Clients struct {
	DynamoDB *dynamodb.Client
	S3       *s3.Client
	SES      *sesv2.Client
}

// NewClients builds all AWS clients from a single shared aws.Config.
// Static credentials take precedence over a named profile; with neither
// set, the default credential chain applies.
func NewClients(ctx context.Context, cfg config.AWSConfig) (*Clients, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	switch {
	case cfg.AccessKey != "" && cfg.SecretKey != "":
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	case cfg.Profile != "":
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &Clients{
		DynamoDB: dynamodb.NewFromConfig(awsCfg),
		S3:       s3.NewFromConfig(awsCfg),
		SES:      sesv2.NewFromConfig(awsCfg),
	}, nil
}
