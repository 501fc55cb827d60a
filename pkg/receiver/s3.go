package receiver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// EndpointEnv names the environment variable that points NewS3StoreFromEnv
// at an S3-compatible endpoint such as MinIO. Path-style addressing is used
// when it is set.
const EndpointEnv = "IMGUPLOAD_S3_ENDPOINT"

// S3Store stores uploads in an S3 bucket and serves them through
// presigned GET URLs.
type S3Store struct {
	client    *s3.Client
	presign   *s3.PresignClient
	bucket    string
	prefix    string
	maxSize   int64
	urlExpiry time.Duration
}

// NewS3Store creates a new S3 upload store.
//
// Parameters:
//   - client: AWS S3 client from aws-sdk-go-v2
//   - bucket: S3 bucket name
//   - prefix: Key prefix for uploads (e.g., "uploads/")
//   - maxSize: Maximum file size in bytes (0 = no limit)
func NewS3Store(client *s3.Client, bucket, prefix string, maxSize int64) *S3Store {
	return &S3Store{
		client:    client,
		presign:   s3.NewPresignClient(client),
		bucket:    bucket,
		prefix:    prefix,
		maxSize:   maxSize,
		urlExpiry: 15 * time.Minute,
	}
}

// NewS3StoreFromEnv builds the S3 client from the default AWS config chain
// (environment, shared config, instance role).
func NewS3StoreFromEnv(ctx context.Context, bucket, prefix string, maxSize int64) (*S3Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint := os.Getenv(EndpointEnv); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3Store(client, bucket, prefix, maxSize), nil
}

// WithURLExpiry sets how long presigned URLs are valid.
func (s *S3Store) WithURLExpiry(d time.Duration) *S3Store {
	s.urlExpiry = d
	return s
}

// Save uploads a file to S3 and returns its ID.
func (s *S3Store) Save(ctx context.Context, filename, contentType string, size int64, r io.Reader) (string, error) {
	if s.maxSize > 0 && size > s.maxSize {
		return "", ErrTooLarge
	}

	// PutObject needs a seekable body for signing, so the file is buffered.
	var buf bytes.Buffer
	reader := r
	if s.maxSize > 0 {
		reader = io.LimitReader(r, s.maxSize+1)
	}
	n, err := io.Copy(&buf, reader)
	if err != nil {
		return "", err
	}
	if s.maxSize > 0 && n > s.maxSize {
		return "", ErrTooLarge
	}

	id := uuid.NewString()
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.prefix + id),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"original-filename": filename,
			"upload-time":       time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload failed: %w", err)
	}
	return id, nil
}

// Open looks the object up and returns a presigned URL for it. The
// returned File has no Reader.
func (s *S3Store) Open(ctx context.Context, id string) (*File, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	key := s.prefix + id

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("s3 head failed: %w", err)
	}

	presigned, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.urlExpiry))
	if err != nil {
		return nil, fmt.Errorf("s3 presign failed: %w", err)
	}

	file := &File{
		ID:          id,
		Filename:    id,
		ContentType: "application/octet-stream",
		URL:         presigned.URL,
	}
	if fn, ok := head.Metadata["original-filename"]; ok {
		file.Filename = fn
	}
	if head.ContentType != nil {
		file.ContentType = *head.ContentType
	}
	if head.ContentLength != nil {
		file.Size = *head.ContentLength
	}
	return file, nil
}

// Cleanup deletes objects under the prefix older than maxAge.
func (s *S3Store) Cleanup(ctx context.Context, maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge)

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	var toDelete []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, obj := range page.Contents {
			if obj.Key != nil && obj.LastModified != nil && obj.LastModified.Before(cutoff) {
				toDelete = append(toDelete, *obj.Key)
			}
		}
	}

	var errs []error
	for _, key := range toDelete {
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
