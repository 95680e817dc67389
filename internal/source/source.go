// Package source opens dictionary artifacts from the local filesystem or
// from S3-compatible object storage.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/wangbinyq/ja-tokenizer/internal/storage"
)

// S3Scheme prefixes artifact locations held in object storage.
const S3Scheme = "s3://"

var (
	ErrNotFound        = errors.New("dictionary artifact not found")
	ErrInvalidLocation = errors.New("invalid dictionary location")
)

// S3Config holds the connection settings for s3:// locations.
type S3Config struct {
	Endpoint  string `json:"endpoint"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	Region    string `json:"region"`
	Secure    bool   `json:"secure"`
}

// Open returns a reader for the artifact at location, which is either a
// filesystem path or an s3://bucket/key URL.
func Open(ctx context.Context, location string, cfg S3Config) (io.ReadCloser, error) {
	if strings.HasPrefix(location, S3Scheme) {
		bucket, key, err := ParseS3URL(location)
		if err != nil {
			return nil, err
		}
		return openS3(ctx, cfg, bucket, key)
	}
	return openFile(location)
}

func openFile(path string) (io.ReadCloser, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidLocation)
	}
	if storage.DirExists(path) {
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, path)
	}
	if !storage.FileExists(path) {
		return nil, fmt.Errorf("%w: %s does not exist", ErrNotFound, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary %s: %w", path, err)
	}
	return f, nil
}

// ParseS3URL splits s3://bucket/key into its parts.
func ParseS3URL(location string) (bucket, key string, err error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidLocation, err)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if u.Scheme != "s3" || bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: %q, want s3://bucket/key", ErrInvalidLocation, location)
	}
	return bucket, key, nil
}

func openS3(ctx context.Context, cfg S3Config, bucket, key string) (io.ReadCloser, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: s3 endpoint is not configured", ErrInvalidLocation)
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	obj, err := client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, wrapS3Error(err, bucket, key)
	}
	// GetObject is lazy; Stat surfaces missing objects before streaming.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, wrapS3Error(err, bucket, key)
	}
	return obj, nil
}

func wrapS3Error(err error, bucket, key string) error {
	errResp := minio.ToErrorResponse(err)
	if errResp.Code == "NoSuchKey" || errResp.Code == "NoSuchBucket" || errResp.Code == "NotFound" {
		return fmt.Errorf("%w: s3://%s/%s", ErrNotFound, bucket, key)
	}
	return fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
}
