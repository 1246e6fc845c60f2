package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// ObjectStore is the storage capability used by the pipeline: put bytes under
// a key, get them back. Keys are namespaced paths.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Download(ctx context.Context, key string) ([]byte, error)
}

// S3Client handles object storage on S3 (or any S3-compatible endpoint)
type S3Client struct {
	s3Client *s3.S3
	bucket   string
}

// S3Config holds configuration for the S3 client
type S3Config struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	// Endpoint overrides the AWS default for S3-compatible providers
	Endpoint string
}

// NewS3Client creates a new S3 storage client
func NewS3Client(config S3Config) (*S3Client, error) {
	awsConfig := &aws.Config{
		Credentials: credentials.NewStaticCredentials(
			config.AccessKey,
			config.SecretKey,
			"",
		),
		Region: aws.String(config.Region),
	}
	if config.Endpoint != "" {
		awsConfig.Endpoint = aws.String(config.Endpoint)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}

	return &S3Client{
		s3Client: s3.New(sess),
		bucket:   config.Bucket,
	}, nil
}

// Upload stores bytes under the given key and returns the key
func (s *S3Client) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        aws.ReadSeekCloser(bytes.NewReader(data)),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}
	return key, nil
}

// Download fetches the bytes stored under the given key
func (s *S3Client) Download(ctx context.Context, key string) ([]byte, error) {
	result, err := s.s3Client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download object: %w", err)
	}
	defer result.Body.Close()

	return io.ReadAll(result.Body)
}

// UploadFileKey builds the storage key for a submitted file:
// uploads/{upload_id}/{random}_{filename}
func UploadFileKey(uploadID uint, filename string) string {
	return fmt.Sprintf("uploads/%d/%s_%s", uploadID, uuid.NewString(), filepath.Base(filename))
}

// PredictedPaperKey builds the storage key for a rendered paper:
// predicted/{upload_id}/{random}.pdf
func PredictedPaperKey(uploadID uint) string {
	return fmt.Sprintf("predicted/%d/%s.pdf", uploadID, uuid.NewString())
}

// ContentTypeFor returns the content type for a filename
func ContentTypeFor(filename string) string {
	switch filepath.Ext(filename) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".tif", ".tiff":
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}
