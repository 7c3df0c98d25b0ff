package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"
)

// S3ObjectAPI is the subset of the S3 client used by S3Backend
type S3ObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Backend stores the collection as a single JSON object
type S3Backend struct {
	S3     S3ObjectAPI
	Bucket string
	Key    string
	Logger *logrus.Logger
}

func (b *S3Backend) Read(ctx context.Context) ([]byte, error) {
	output, err := b.S3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.Bucket),
		Key:    aws.String(b.Key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, nil
		}
		b.Logger.WithError(err).WithFields(logrus.Fields{
			"bucket": b.Bucket,
			"key":    b.Key,
		}).Error("Failed to get collection object")
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", b.Bucket, b.Key, err)
	}
	defer output.Body.Close()

	data, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", b.Bucket, b.Key, err)
	}
	return data, nil
}

func (b *S3Backend) Write(ctx context.Context, data []byte) error {
	_, err := b.S3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.Bucket),
		Key:         aws.String(b.Key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		b.Logger.WithError(err).WithFields(logrus.Fields{
			"bucket": b.Bucket,
			"key":    b.Key,
			"bytes":  len(data),
		}).Error("Failed to put collection object")
		return fmt.Errorf("failed to put s3://%s/%s: %w", b.Bucket, b.Key, err)
	}
	return nil
}

// Check verifies the bucket exists and is accessible
func (b *S3Backend) Check(ctx context.Context) error {
	if b.Bucket == "" || b.Key == "" {
		return fmt.Errorf("%w: s3 backend needs a bucket and a key", ErrUnavailable)
	}
	if _, err := b.S3.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(b.Bucket)}); err != nil {
		return fmt.Errorf("%w: bucket %s: %v", ErrUnavailable, b.Bucket, err)
	}
	return nil
}
