package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// ErrNotFound marks a content key with no stored blob behind it.
var ErrNotFound = errors.New("content not found")

// API is the S3 client surface the store consumes.
type API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Store holds opaque message blobs in S3, with descriptive object metadata
// attached for out-of-band inspection.
type Store struct {
	client API
	bucket string
}

// NewStore creates a content store backed by the given bucket.
func NewStore(client API, bucket string) *Store {
	return &Store{client: client, bucket: bucket}
}

// Put stores raw content under the caller-chosen key. Keys are assumed
// unique; no existence check is made before the write.
func (s *Store) Put(ctx context.Context, key string, raw []byte, metadata map[string]string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:   aws.String(s.bucket),
		Key:      aws.String(key),
		Body:     bytes.NewReader(raw),
		Metadata: metadata,
	})
	if err != nil {
		return fmt.Errorf("putting content %s: %w", key, err)
	}
	return nil
}

// Get retrieves the raw content for a key. A missing key is reported as
// ErrNotFound so callers can tell an absent blob from a backend failure.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("getting content %s: %w", key, err)
	}
	defer result.Body.Close()

	raw, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("reading content %s: %w", key, err)
	}
	return raw, nil
}

func isNoSuchKey(err error) bool {
	var noKey *s3types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	// GetObject against some endpoints surfaces a plain NotFound code instead.
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && (apiErr.ErrorCode() == "NoSuchKey" || apiErr.ErrorCode() == "NotFound")
}
