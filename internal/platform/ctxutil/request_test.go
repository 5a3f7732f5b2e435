package ctxutil

import (
	"context"
	"testing"
)

func TestEnsureReusesAttachedRequest(t *testing.T) {
	ctx, r := Ensure(context.Background())
	r.UserID = "u1"

	ctx2, r2 := Ensure(ctx)
	if r2 != r || ctx2 != ctx {
		t.Fatalf("Ensure should return the attached request")
	}
	if got := UserID(ctx2); got != "u1" {
		t.Fatalf("UserID: got %q", got)
	}
}

func TestLogFieldsSkipsEmpty(t *testing.T) {
	if got := LogFields(context.Background()); got != nil {
		t.Fatalf("expected nil fields, got %v", got)
	}
	ctx := WithRequest(context.Background(), &Request{RequestID: "r1"})
	got := LogFields(ctx)
	if len(got) != 2 || got[0] != "request_id" || got[1] != "r1" {
		t.Fatalf("unexpected fields: %v", got)
	}
}
