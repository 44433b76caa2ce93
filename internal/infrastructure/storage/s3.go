// Package storage provides object storage adapters for generated images
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/pictura/v1/internal/infrastructure/config"
	"github.com/pictura/v1/internal/ports/outbound"
	"go.uber.org/zap"
)

// S3Storage stores generated images in an S3 bucket and serves them
// through CloudFront when a distribution URL is configured.
type S3Storage struct {
	client        *s3.S3
	bucket        string
	region        string
	cloudFrontURL string
	logger        *zap.Logger
}

// NewS3Storage creates a new S3-backed storage service
func NewS3Storage(cfg *config.Config, logger *zap.Logger) (outbound.StorageService, error) {
	awsConfig := &aws.Config{
		Region: aws.String(cfg.AWS.Region),
	}

	if cfg.AWS.AccessKeyID != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		)
	}

	// Custom endpoint supports MinIO and localstack in development
	if cfg.AWS.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.AWS.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3Storage{
		client:        s3.New(sess),
		bucket:        cfg.AWS.S3Bucket,
		region:        cfg.AWS.Region,
		cloudFrontURL: strings.TrimRight(cfg.AWS.CloudFrontURL, "/"),
		logger:        logger.Named("s3-storage"),
	}, nil
}

// Upload stores data under key and returns its public URL
func (s *S3Storage) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	start := time.Now()

	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		s.logger.Error("S3 upload failed",
			zap.String("key", key),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	s.logger.Debug("Object uploaded",
		zap.String("key", key),
		zap.Int("size_bytes", len(data)),
		zap.Duration("duration", time.Since(start)),
	)

	return s.publicURL(key), nil
}

// Delete removes an object from the bucket
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.logger.Error("S3 delete failed",
			zap.String("key", key),
			zap.Error(err),
		)
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// GeneratePresignedURL returns a time-limited download URL for an object
func (s *S3Storage) GeneratePresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	req, _ := s.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})

	url, err := req.Presign(expiry)
	if err != nil {
		s.logger.Error("Presign failed",
			zap.String("key", key),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to presign object %s: %w", key, err)
	}
	return url, nil
}

func (s *S3Storage) publicURL(key string) string {
	if s.cloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", s.cloudFrontURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
