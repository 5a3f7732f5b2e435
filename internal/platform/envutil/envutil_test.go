package envutil

import (
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	t.Setenv("X_POLL", "750ms")
	if got := Duration("X_POLL", time.Second); got != 750*time.Millisecond {
		t.Fatalf("got %v", got)
	}
	t.Setenv("X_POLL", "250")
	if got := Duration("X_POLL", time.Second); got != 250*time.Millisecond {
		t.Fatalf("got %v", got)
	}
	t.Setenv("X_POLL", "nope")
	if got := Duration("X_POLL", time.Second); got != time.Second {
		t.Fatalf("got %v", got)
	}
}

func TestBoolAndInt(t *testing.T) {
	t.Setenv("X_FLAG", "yes")
	if !Bool("X_FLAG", false) {
		t.Fatalf("expected true")
	}
	t.Setenv("X_FLAG", "garbage")
	if Bool("X_FLAG", false) {
		t.Fatalf("expected default")
	}
	t.Setenv("X_N", "3")
	if Int("X_N", 1) != 3 {
		t.Fatalf("expected 3")
	}
	if String("X_MISSING_FOR_SURE", "d") != "d" {
		t.Fatalf("expected default string")
	}
}
