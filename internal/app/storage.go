package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/learnhub-backend/internal/platform/gcp"
	"github.com/yungbote/learnhub-backend/internal/platform/logger"
)

var newBlobStore = gcp.NewBlobStore

type StorageBootstrapErrorCode string

const (
	StorageBootstrapErrorInvalidMode         StorageBootstrapErrorCode = "invalid_mode"
	StorageBootstrapErrorMissingBucket       StorageBootstrapErrorCode = "missing_bucket"
	StorageBootstrapErrorMissingEmulatorHost StorageBootstrapErrorCode = "missing_emulator_host"
	StorageBootstrapErrorInvalidEmulatorHost StorageBootstrapErrorCode = "invalid_emulator_host"
	StorageBootstrapErrorConnectFailed       StorageBootstrapErrorCode = "connect_failed"
)

type StorageBootstrapError struct {
	Code         StorageBootstrapErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *StorageBootstrapError) Error() string {
	return fmt.Sprintf(
		"blob store bootstrap failed (code=%s mode=%q emulator_host=%q): %v",
		e.Code,
		e.Mode,
		e.EmulatorHost,
		e.Cause,
	)
}

func (e *StorageBootstrapError) Unwrap() error { return e.Cause }

// mediaRooted is implemented by the local filesystem store.
type mediaRooted interface {
	Root() string
}

func resolveBlobStore(ctx context.Context, log *logger.Logger, cfg Config) (gcp.BlobStore, error) {
	storageCfg := cfg.Storage
	if cfg.StorageErr != nil {
		err := classifyStorageError(storageCfg, cfg.StorageErr)
		log.Error("Blob store configuration invalid", "mode", storageCfg.Mode, "error", err)
		return nil, err
	}

	log.Info(
		"Selecting blob store",
		"mode", storageCfg.Mode,
		"mode_source", storageCfg.ModeSource(),
		"bucket", storageCfg.Bucket,
		"emulator_host", storageCfg.EmulatorHost,
	)
	store, err := newBlobStore(ctx, log, storageCfg)
	if err != nil {
		classified := classifyStorageError(storageCfg, err)
		log.Error("Blob store bootstrap failed", "mode", storageCfg.Mode, "error", classified)
		return nil, classified
	}
	return store, nil
}

func classifyStorageError(storageCfg gcp.ObjectStorageConfig, err error) error {
	code := StorageBootstrapErrorConnectFailed
	var cfgErr *gcp.ObjectStorageConfigError
	if errors.As(err, &cfgErr) {
		switch cfgErr.Code {
		case gcp.ObjectStorageConfigErrorInvalidMode:
			code = StorageBootstrapErrorInvalidMode
		case gcp.ObjectStorageConfigErrorMissingBucket:
			code = StorageBootstrapErrorMissingBucket
		case gcp.ObjectStorageConfigErrorMissingEmulatorHost:
			code = StorageBootstrapErrorMissingEmulatorHost
		case gcp.ObjectStorageConfigErrorInvalidEmulatorHost:
			code = StorageBootstrapErrorInvalidEmulatorHost
		}
	}
	return &StorageBootstrapError{
		Code:         code,
		Mode:         string(storageCfg.Mode),
		EmulatorHost: storageCfg.EmulatorHost,
		Cause:        err,
	}
}
