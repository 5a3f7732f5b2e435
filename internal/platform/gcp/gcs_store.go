package gcp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/learnhub-backend/internal/platform/logger"
)

type gcsBlobStore struct {
	log           *logger.Logger
	client        *storage.Client
	bucket        string
	mode          ObjectStorageMode
	emulatorHost  string
	publicBaseURL string
}

func NewGCSBlobStore(ctx context.Context, log *logger.Logger, cfg ObjectStorageConfig) (BlobStore, error) {
	client, err := newStorageClientForMode(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return newGCSBlobStoreWithClient(log, client, cfg), nil
}

func newGCSBlobStoreWithClient(log *logger.Logger, client *storage.Client, cfg ObjectStorageConfig) *gcsBlobStore {
	storeLog := log.With("service", "BlobStore", "mode", string(cfg.Mode))
	publicBase := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if publicBase == "" && cfg.IsEmulatorMode() {
		publicBase = strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/")
	}
	storeLog.Info(
		"Object storage initialized",
		"bucket", cfg.Bucket,
		"mode_source", cfg.ModeSource(),
		"emulator_host", cfg.EmulatorHost,
		"public_base_url", publicBase,
	)
	return &gcsBlobStore{
		log:           storeLog,
		client:        client,
		bucket:        cfg.Bucket,
		mode:          cfg.Mode,
		emulatorHost:  strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/"),
		publicBaseURL: publicBase,
	}
}

func newStorageClientForMode(ctx context.Context, cfg ObjectStorageConfig) (*storage.Client, error) {
	if cfg.IsEmulatorMode() {
		// The client library reads the emulator endpoint from the environment.
		if err := os.Setenv("STORAGE_EMULATOR_HOST", cfg.EmulatorHost); err != nil {
			return nil, fmt.Errorf("set STORAGE_EMULATOR_HOST: %w", err)
		}
		return storage.NewClient(ctx, option.WithoutAuthentication())
	}
	opts := append(credentialOptions(cfg.Credentials), option.WithScopes(storage.ScopeReadWrite))
	return storage.NewClient(ctx, opts...)
}

func (s *gcsBlobStore) Put(ctx context.Context, data []byte, key, mimeType string) (Stored, error) {
	k, err := cleanKey(key)
	if err != nil {
		return Stored{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(k).NewWriter(ctx)
	w.ContentType = mimeOrDefault(mimeType, k)
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return Stored{}, fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return Stored{}, fmt.Errorf("failed to close GCS writer: %w", err)
	}
	s.log.Debug("Blob stored", "key", k, "size", len(data))
	return Stored{
		Bucket: s.bucket,
		Key:    k,
		URL:    s.publicURL(k),
		Size:   int64(len(data)),
	}, nil
}

func (s *gcsBlobStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if s.mode == ObjectStorageModeGCSEmulator {
		// The emulator serves objects without signatures.
		return s.publicURL(k), nil
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	u, err := s.client.Bucket(s.bucket).SignedURL(k, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("sign url for %s: %w", k, err)
	}
	return u, nil
}

func (s *gcsBlobStore) publicURL(key string) string {
	if s.mode == ObjectStorageModeGCSEmulator && s.publicBaseURL != "" {
		return fmt.Sprintf(
			"%s/storage/v1/b/%s/o/%s?alt=media",
			s.publicBaseURL,
			url.PathEscape(s.bucket),
			url.PathEscape(key),
		)
	}
	if s.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucket, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, key)
}
