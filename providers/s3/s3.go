package s3bucket

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hengadev/tagxml"
)

// ContentType is set on every uploaded document.
const ContentType = "application/xml"

// AWSS3Client defines the methods used to store documents in S3
type AWSS3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Store keeps documents as objects in an S3 bucket. Each Put is a single
// PutObject call, which S3 applies atomically.
type Store struct {
	client AWSS3Client
	bucket string
	prefix string
}

// New creates a store writing to bucket, with every key placed below prefix.
func New(client AWSS3Client, bucket, prefix string) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: s3 client cannot be nil", tagxml.ErrInvalidInput)
	}
	if bucket == "" {
		return nil, fmt.Errorf("%w: bucket name cannot be empty", tagxml.ErrInvalidInput)
	}
	return &Store{client: client, bucket: bucket, prefix: prefix}, nil
}

// NewFromConfig creates a store using the default AWS credential chain.
func NewFromConfig(ctx context.Context, bucket, prefix string) (*Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load AWS config: %w", tagxml.ErrIO, err)
	}
	return New(s3.NewFromConfig(cfg), bucket, prefix)
}

// Bucket returns the bucket documents are stored in.
func (s *Store) Bucket() string {
	return s.bucket
}

// ObjectKey returns the object key used for a document key.
func (s *Store) ObjectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

// Put uploads data, replacing any existing object.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.ObjectKey(key)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(ContentType),
	})
	if err != nil {
		return fmt.Errorf("%w: failed to upload s3://%s/%s: %w", tagxml.ErrIO, s.bucket, s.ObjectKey(key), err)
	}
	return nil
}

// Get downloads the document stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.ObjectKey(key)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("%w: s3://%s/%s", tagxml.ErrNotFound, s.bucket, s.ObjectKey(key))
		}
		return nil, fmt.Errorf("%w: failed to download s3://%s/%s: %w", tagxml.ErrIO, s.bucket, s.ObjectKey(key), err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read s3://%s/%s: %w", tagxml.ErrIO, s.bucket, s.ObjectKey(key), err)
	}
	return data, nil
}
