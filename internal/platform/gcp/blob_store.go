package gcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/learnhub-backend/internal/platform/logger"
)

// Stored describes one persisted blob.
type Stored struct {
	Bucket string
	Key    string
	URL    string
	Size   int64
}

// BlobStore persists derived-artifact outputs (BRF files, slide images, narration audio).
type BlobStore interface {
	Put(ctx context.Context, data []byte, key, mimeType string) (Stored, error)
	// SignedURL returns a time-limited download URL. Stores without signing return a public URL.
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

func NewBlobStore(ctx context.Context, log *logger.Logger, cfg ObjectStorageConfig) (BlobStore, error) {
	if err := ValidateObjectStorageConfig(cfg); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	if cfg.Mode == ObjectStorageModeLocal {
		return NewLocalBlobStore(log, cfg.LocalRoot, cfg.PublicBaseURL)
	}
	return NewGCSBlobStore(ctx, log, cfg)
}

func NewBlobStoreFromEnv(ctx context.Context, log *logger.Logger) (BlobStore, error) {
	cfg, err := ResolveObjectStorageConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("resolve object storage config: %w", err)
	}
	return NewBlobStore(ctx, log, cfg)
}

func cleanKey(key string) (string, error) {
	k := strings.TrimLeft(strings.TrimSpace(strings.ReplaceAll(key, "\\", "/")), "/")
	if k == "" {
		return "", fmt.Errorf("blob key is required")
	}
	for _, part := range strings.Split(k, "/") {
		if part == ".." {
			return "", fmt.Errorf("blob key %q escapes the store root", key)
		}
	}
	return k, nil
}

func contentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	if i := strings.Index(s, "?"); i >= 0 {
		s = s[:i]
	}
	switch {
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	case strings.HasSuffix(s, ".jpg"), strings.HasSuffix(s, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(s, ".webp"):
		return "image/webp"
	case strings.HasSuffix(s, ".wav"):
		return "audio/wav"
	case strings.HasSuffix(s, ".mp3"):
		return "audio/mpeg"
	case strings.HasSuffix(s, ".brf"), strings.HasSuffix(s, ".txt"):
		return "text/plain; charset=utf-8"
	case strings.HasSuffix(s, ".json"):
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

func mimeOrDefault(mimeType, key string) string {
	if m := strings.TrimSpace(mimeType); m != "" {
		return m
	}
	return contentTypeForKey(key)
}
