package gcp

import (
	"errors"
	"testing"
)

func clearStorageEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"OBJECT_STORAGE_MODE", "STORAGE_EMULATOR_HOST", "DERIVED_GCS_BUCKET_NAME",
		"MEDIA_LOCAL_ROOT", "MEDIA_PUBLIC_BASE_URL",
		"GOOGLE_APPLICATION_CREDENTIALS_JSON", "GOOGLE_APPLICATION_CREDENTIALS",
	} {
		t.Setenv(k, "")
	}
}

func TestResolveObjectStorageConfigFromEnvDefaultLocal(t *testing.T) {
	clearStorageEnv(t)

	cfg, err := ResolveObjectStorageConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveObjectStorageConfigFromEnv: %v", err)
	}
	if cfg.Mode != ObjectStorageModeLocal {
		t.Fatalf("mode: want=%q got=%q", ObjectStorageModeLocal, cfg.Mode)
	}
	if cfg.PublicBaseURL != "/media" {
		t.Fatalf("public base: want=/media got=%q", cfg.PublicBaseURL)
	}
	if cfg.LocalRoot == "" {
		t.Fatalf("expected a default local root")
	}
}

func TestResolveObjectStorageConfigFromEnvBucketImpliesGCS(t *testing.T) {
	clearStorageEnv(t)
	t.Setenv("DERIVED_GCS_BUCKET_NAME", "derived")

	cfg, err := ResolveObjectStorageConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveObjectStorageConfigFromEnv: %v", err)
	}
	if cfg.Mode != ObjectStorageModeGCS || cfg.Bucket != "derived" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.CompatibilityFallback {
		t.Fatalf("compatibility fallback: want=false got=true")
	}
}

func TestResolveObjectStorageConfigFromEnvCompatibilityFallback(t *testing.T) {
	clearStorageEnv(t)
	t.Setenv("STORAGE_EMULATOR_HOST", "http://fake-gcs:4443")
	t.Setenv("DERIVED_GCS_BUCKET_NAME", "derived")

	cfg, err := ResolveObjectStorageConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveObjectStorageConfigFromEnv: %v", err)
	}
	if cfg.Mode != ObjectStorageModeGCSEmulator {
		t.Fatalf("mode: want=%q got=%q", ObjectStorageModeGCSEmulator, cfg.Mode)
	}
	if !cfg.CompatibilityFallback || cfg.ModeSource() != "compatibility_fallback" {
		t.Fatalf("expected compatibility fallback, got %+v", cfg)
	}
}

func TestResolveObjectStorageConfigFromEnvErrors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		code ObjectStorageConfigErrorCode
	}{
		{"invalid mode", map[string]string{"OBJECT_STORAGE_MODE": "s3"}, ObjectStorageConfigErrorInvalidMode},
		{"gcs without bucket", map[string]string{"OBJECT_STORAGE_MODE": "gcs"}, ObjectStorageConfigErrorMissingBucket},
		{
			"emulator without host",
			map[string]string{"OBJECT_STORAGE_MODE": "gcs_emulator", "DERIVED_GCS_BUCKET_NAME": "b"},
			ObjectStorageConfigErrorMissingEmulatorHost,
		},
		{
			"emulator bad host",
			map[string]string{"OBJECT_STORAGE_MODE": "gcs_emulator", "DERIVED_GCS_BUCKET_NAME": "b", "STORAGE_EMULATOR_HOST": "fake-gcs"},
			ObjectStorageConfigErrorInvalidEmulatorHost,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearStorageEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := ResolveObjectStorageConfigFromEnv()
			var cfgErr *ObjectStorageConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ObjectStorageConfigError, got %v", err)
			}
			if cfgErr.Code != tc.code {
				t.Fatalf("code: want=%q got=%q", tc.code, cfgErr.Code)
			}
		})
	}
}

func TestResolveObjectStorageConfigFromEnvCredentials(t *testing.T) {
	clearStorageEnv(t)
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/keys/sa.json")

	cfg, err := ResolveObjectStorageConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveObjectStorageConfigFromEnv: %v", err)
	}
	if cfg.Credentials != "/keys/sa.json" {
		t.Fatalf("credentials: got %q", cfg.Credentials)
	}

	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS_JSON", `{"type":"service_account"}`)
	cfg, err = ResolveObjectStorageConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveObjectStorageConfigFromEnv: %v", err)
	}
	if cfg.Credentials != `{"type":"service_account"}` {
		t.Fatalf("inline JSON should win, got %q", cfg.Credentials)
	}
}

func TestCredentialOptions(t *testing.T) {
	if got := credentialOptions("  "); got != nil {
		t.Fatalf("blank credentials should yield no options, got %d", len(got))
	}
	if got := credentialOptions(`{"type":"service_account"}`); len(got) != 1 {
		t.Fatalf("inline JSON: want 1 option, got %d", len(got))
	}
	if got := credentialOptions("/keys/sa.json"); len(got) != 1 {
		t.Fatalf("file path: want 1 option, got %d", len(got))
	}
}
