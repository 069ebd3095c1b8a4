package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// S3Config configures the object-storage backend. Endpoint is optional —
// set it for S3-compatible providers (R2, MinIO); leave empty for AWS S3.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// S3Store is the object-storage-backed Store, the alternative to
// LocalStore selected by ENABLE_S3_STORAGE (spec.md §6). The key layout
// (namespace/shard/hash.ext) matches LocalStore's so a deployment can
// switch backends without migrating keys.
type S3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store builds an object-storage Store from S3Config.
func NewS3Store(cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("blobstore: s3 bucket is required")
	}

	opts := s3.Options{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}

	return &S3Store{
		client: s3.New(opts),
		bucket: cfg.Bucket,
	}, nil
}

func (s *S3Store) key(sha256Hex, ext string, isThumb bool) string {
	return fmt.Sprintf("images/%s/%s/%s%s", namespace(isThumb), Shard(sha256Hex), sha256Hex, ext)
}

func (s *S3Store) Put(ctx context.Context, data []byte, ext string, isThumb bool) (string, error) {
	hash := Hash(data)
	key := s.key(hash, ext, isThumb)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("blobstore: s3 put: %w", err)
	}
	return hash, nil
}

func (s *S3Store) Delete(ctx context.Context, sha256Hex, ext string, isThumb bool) error {
	key := s.key(sha256Hex, ext, isThumb)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("blobstore: s3 delete: %w", err)
	}
	return nil
}

func (s *S3Store) Get(ctx context.Context, sha256Hex, ext string, isThumb bool) ([]byte, error) {
	key := s.key(sha256Hex, ext, isThumb)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *smithyhttp.ResponseError
		if errors.As(err, &notFound) && notFound.HTTPStatusCode() == 404 {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("blobstore: s3 get: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("blobstore: s3 read body: %w", err)
	}
	return data, nil
}

var _ Store = (*S3Store)(nil)
