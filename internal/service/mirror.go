package service

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pageza/alchemorsel-cocktails/backend/config"
)

// S3PutObjectAPI is the subset of the S3 client the mirror needs
type S3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Mirror uploads stored recipe files to a bucket
type S3Mirror struct {
	client S3PutObjectAPI
	bucket string
	prefix string
}

// NewS3Mirror creates a mirror from an initialized S3 config
func NewS3Mirror(cfg *config.S3Config) *S3Mirror {
	return &S3Mirror{client: cfg.Client, bucket: cfg.BucketName, prefix: cfg.Prefix}
}

// Key returns the object key used for filename
func (m *S3Mirror) Key(filename string) string {
	if m.prefix == "" {
		return filename
	}
	return path.Join(m.prefix, filename)
}

// Put uploads body under the configured prefix
func (m *S3Mirror) Put(ctx context.Context, filename string, body []byte) error {
	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(m.Key(filename)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}
