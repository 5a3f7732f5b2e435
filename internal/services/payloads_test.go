package services_test

import (
	"testing"

	"github.com/yungbote/learnhub-backend/internal/data/repos/testutil"
	"github.com/yungbote/learnhub-backend/internal/testsupport"
)

func TestPayloadSelectorBest(t *testing.T) {
	h := testsupport.NewHarness(t)
	const (
		keyA = "curr:cbse:c1:grade5:math:ch02:ms0201"
		keyB = "curr:cbse:c1:grade5:math:ch02:ms0202"
		keyC = "curr:cbse:c1:grade5:math:ch02:ms0203"
	)
	testutil.SeedContentVersion(t, h.Ctx, h.DB, keyA, 1, "en-US", `{"v":"a1"}`)
	testutil.SeedContentVersion(t, h.Ctx, h.DB, keyA, 3, "en-US", `{"v":"a3"}`)
	testutil.SeedContentVersion(t, h.Ctx, h.DB, keyB, 4, "en-US", `{"v":"b4"}`)
	testutil.SeedTranslation(t, h.Ctx, h.DB, keyA, 1, "es-ES", `{"v":"a1-es"}`)

	sel, err := h.Payloads.Best(h.DBC(), []string{keyB, keyC, keyA}, 2, "es-ES")
	if err != nil {
		t.Fatalf("Best: %v", err)
	}
	if len(sel) != 2 {
		t.Fatalf("keys without versions should be skipped, got %d", len(sel))
	}
	if sel[0].ContentKey != keyB || sel[0].Version != 4 || sel[0].Translated {
		t.Fatalf("B should fall back to its highest version untranslated: %+v", sel[0])
	}
	if sel[1].ContentKey != keyA || sel[1].Version != 1 || !sel[1].Translated || string(sel[1].Payload) != `{"v":"a1-es"}` {
		t.Fatalf("A should use the translated v1: %+v", sel[1])
	}
}

func TestPayloadSelectorCanonicalLocaleSkipsTranslation(t *testing.T) {
	h := testsupport.NewHarness(t)
	const key = "curr:cbse:c1:grade5:math:ch02:ms0201"
	testutil.SeedContentVersion(t, h.Ctx, h.DB, key, 1, "en-US", `{"v":"en"}`)
	testutil.SeedTranslation(t, h.Ctx, h.DB, key, 1, "en-US", `{"v":"other"}`)

	sel, err := h.Payloads.Best(h.DBC(), []string{key}, 1, "en-US")
	if err != nil {
		t.Fatalf("Best: %v", err)
	}
	if len(sel) != 1 || sel[0].Translated || string(sel[0].Payload) != `{"v":"en"}` {
		t.Fatalf("unexpected selection: %+v", sel)
	}
}

func TestPayloadSelectorEmptyKeys(t *testing.T) {
	h := testsupport.NewHarness(t)
	sel, err := h.Payloads.Best(h.DBC(), nil, 1, "en-US")
	if err != nil || sel == nil || len(sel) != 0 {
		t.Fatalf("want empty non-nil slice, got %v, %v", sel, err)
	}
}
