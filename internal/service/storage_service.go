package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stemsi/exstem-enroll/internal/config"
)

// StorageProvider stores uploaded files under generated names.
type StorageProvider interface {
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, name string) error
	URL(name string) string
}

// LocalStorageProvider writes files into a directory served under urlPrefix.
type LocalStorageProvider struct {
	dir       string
	urlPrefix string
}

// NewLocalStorageProvider creates the directory if needed.
func NewLocalStorageProvider(dir, urlPrefix string) (*LocalStorageProvider, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStorageProvider{dir: dir, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}, nil
}

func (p *LocalStorageProvider) Put(_ context.Context, name string, r io.Reader, _ int64, _ string) error {
	dst, err := os.OpenFile(filepath.Join(p.dir, filepath.Base(name)), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		return fmt.Errorf("write file: %w", err)
	}
	return dst.Close()
}

func (p *LocalStorageProvider) Delete(_ context.Context, name string) error {
	err := os.Remove(filepath.Join(p.dir, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (p *LocalStorageProvider) URL(name string) string {
	return p.urlPrefix + "/" + name
}

// MinioStorageProvider stores objects under a key prefix in one bucket.
type MinioStorageProvider struct {
	client   *minio.Client
	bucket   string
	prefix   string
	endpoint string
	secure   bool
}

// NewMinioStorageProvider connects to MinIO/S3 and makes sure the bucket exists.
func NewMinioStorageProvider(ctx context.Context, cfg *config.Config, prefix string) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &MinioStorageProvider{
		client:   client,
		bucket:   cfg.MinioBucket,
		prefix:   strings.Trim(prefix, "/"),
		endpoint: cfg.MinioEndpoint,
		secure:   cfg.MinioUseSSL,
	}, nil
}

func (p *MinioStorageProvider) key(name string) string {
	return path.Join(p.prefix, name)
}

func (p *MinioStorageProvider) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error {
	_, err := p.client.PutObject(ctx, p.bucket, p.key(name), r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

func (p *MinioStorageProvider) Delete(ctx context.Context, name string) error {
	return p.client.RemoveObject(ctx, p.bucket, p.key(name), minio.RemoveObjectOptions{})
}

func (p *MinioStorageProvider) URL(name string) string {
	scheme := "http"
	if p.secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, p.endpoint, p.bucket, p.key(name))
}

// NewStorageProvider picks the backend named by cfg.StorageType. dir and
// urlPrefix apply to local storage, prefix to object storage.
func NewStorageProvider(ctx context.Context, cfg *config.Config, dir, urlPrefix, prefix string) (StorageProvider, error) {
	switch cfg.StorageType {
	case "minio", "s3":
		return NewMinioStorageProvider(ctx, cfg, prefix)
	case "", "local":
		return NewLocalStorageProvider(dir, urlPrefix)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.StorageType)
	}
}
