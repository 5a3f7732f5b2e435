package gcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yungbote/learnhub-backend/internal/platform/logger"
)

// localBlobStore writes blobs beneath a root directory that the API serves under publicBaseURL.
type localBlobStore struct {
	log           *logger.Logger
	root          string
	publicBaseURL string
}

func NewLocalBlobStore(log *logger.Logger, root, publicBaseURL string) (BlobStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("local blob store root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve local blob root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create local blob root: %w", err)
	}
	base := strings.TrimRight(strings.TrimSpace(publicBaseURL), "/")
	if base == "" {
		base = defaultLocalPublicBaseURL
	}
	storeLog := log.With("service", "BlobStore", "mode", string(ObjectStorageModeLocal))
	storeLog.Info("Object storage initialized", "root", abs, "public_base_url", base)
	return &localBlobStore{log: storeLog, root: abs, publicBaseURL: base}, nil
}

// Root is the directory served as static media.
func (s *localBlobStore) Root() string { return s.root }

func (s *localBlobStore) Put(ctx context.Context, data []byte, key, mimeType string) (Stored, error) {
	k, err := cleanKey(key)
	if err != nil {
		return Stored{}, err
	}
	if err := ctx.Err(); err != nil {
		return Stored{}, err
	}
	path := filepath.Join(s.root, filepath.FromSlash(k))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Stored{}, fmt.Errorf("create blob dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return Stored{}, fmt.Errorf("write blob: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return Stored{}, fmt.Errorf("commit blob: %w", err)
	}
	s.log.Debug("Blob stored", "key", k, "size", len(data), "mime", mimeOrDefault(mimeType, k))
	return Stored{Key: k, URL: s.publicURL(k), Size: int64(len(data))}, nil
}

func (s *localBlobStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return s.publicURL(k), nil
}

func (s *localBlobStore) publicURL(key string) string {
	return s.publicBaseURL + "/" + key
}
