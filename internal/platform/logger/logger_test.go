package logger

import "testing"

func TestSanitizeKVsRedactsCredentialKeys(t *testing.T) {
	got := sanitizeKVs([]interface{}{
		"jwt_secret", "s3cr3t",
		"Authorization", "Bearer abc",
		"google_credentials", "{}",
		"postgres_dsn", "postgres://u:p@h/db",
		"cache_key", "curr:cbse",
	})
	want := []interface{}{
		"jwt_secret", "[REDACTED]",
		"Authorization", "[REDACTED]",
		"google_credentials", "[REDACTED]",
		"postgres_dsn", "[REDACTED]",
		"cache_key", "curr:cbse",
	}
	if len(got) != len(want) {
		t.Fatalf("len: want=%d got=%d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("kv[%d]: want=%v got=%v", i, want[i], got[i])
		}
	}
}

func TestSanitizeKVsKeepsDanglingKey(t *testing.T) {
	got := sanitizeKVs([]interface{}{"a", 1, "orphan"})
	if len(got) != 3 || got[2] != "orphan" {
		t.Fatalf("unexpected: %v", got)
	}
}

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"production", "test", "development", ""} {
		l, err := New(mode)
		if err != nil {
			t.Fatalf("New(%q): %v", mode, err)
		}
		l.With("component", "x").Debug("hello")
	}
}
