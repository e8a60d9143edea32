package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Uploader stores a binary blob and returns a durable public URL.
type Uploader interface {
	Upload(ctx context.Context, data []byte, folder, contentType string) (string, error)
}

// S3Config holds object storage settings
type S3Config struct {
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	Endpoint      string // optional, for S3-compatible stores like minio
	PublicBaseURL string // optional, base for returned object URLs
}

// putObjectAPI is the slice of the S3 client used by S3Store
type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store implements Uploader on top of S3 (or an S3-compatible store)
type S3Store struct {
	client putObjectAPI
	config *S3Config
}

// NewS3Store creates an S3-backed Uploader
func NewS3Store(ctx context.Context, cfg *S3Config) (*S3Store, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{client: client, config: cfg}, nil
}

// newS3StoreWithClient is used by tests to inject a fake client
func newS3StoreWithClient(client putObjectAPI, cfg *S3Config) *S3Store {
	return &S3Store{client: client, config: cfg}
}

// Upload streams the blob to the store and returns its public URL.
// There is no retry; the caller treats failure as fatal to the request.
func (s *S3Store) Upload(ctx context.Context, data []byte, folder, contentType string) (string, error) {
	key := storageKey(folder)

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	return s.objectURL(key), nil
}

// storageKey builds a date-partitioned key under the given folder
func storageKey(folder string) string {
	d := time.Now()
	return fmt.Sprintf("%s/%d/%02d/%02d/%s", folder, d.Year(), int(d.Month()), d.Day(), uuid.New())
}

func (s *S3Store) objectURL(key string) string {
	if s.config.PublicBaseURL != "" {
		return strings.TrimRight(s.config.PublicBaseURL, "/") + "/" + key
	}
	if s.config.Endpoint != "" {
		return strings.TrimRight(s.config.Endpoint, "/") + "/" + s.config.Bucket + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.config.Bucket, s.config.Region, key)
}
