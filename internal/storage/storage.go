package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

var ErrInvalidKey = errors.New("invalid storage key")

// Storage keeps prescription images. Keys are slash-separated relative paths
// such as "prescriptions/<patient>/<uuid>.jpg".
type Storage interface {
	Save(ctx context.Context, key string, reader io.Reader, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)

	// URL returns a link the client can fetch the object from. Backends that
	// support it return a link that expires after ttl.
	URL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Config struct {
	Type      string // local, cloudflare_r2
	BasePath  string // local only
	BaseURL   string // public URL prefix
	Bucket    string // R2
	AccessKey string // R2
	SecretKey string // R2
	Endpoint  string // R2, https://<account_id>.r2.cloudflarestorage.com
}

func NewStorage(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalStorage(cfg)
	case "cloudflare_r2":
		return NewCloudflareR2Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
