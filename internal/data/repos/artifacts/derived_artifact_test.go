package artifacts

import (
	"context"
	"encoding/json"
	"testing"

	"gorm.io/datatypes"

	"github.com/yungbote/learnhub-backend/internal/data/repos/testutil"
	types "github.com/yungbote/learnhub-backend/internal/domain"
	"github.com/yungbote/learnhub-backend/internal/platform/apierr"
	"github.com/yungbote/learnhub-backend/internal/platform/dbctx"
)

func TestDerivedArtifactRepo(t *testing.T) {
	db := testutil.DB(t)
	repo := NewDerivedArtifactRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	spec := UpsertSpec{
		ScopeType: types.ScopeMicrosection,
		ScopeID:   "curr:cbse:c1:grade5:math:ch01:ms0101",
		Version:   3,
		Locale:    "en-US",
		Kind:      types.KindBraillePreview,
		Metadata:  datatypes.JSON([]byte(`{"contentKeys":["curr:cbse:c1:grade5:math:ch01:ms0101"]}`)),
		CreatedBy: "user-1",
	}

	first, err := repo.Upsert(dbc, spec)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if first.Status != types.ArtifactPending {
		t.Fatalf("Upsert: expected PENDING, got %s", first.Status)
	}
	if first.VariantID != nil {
		t.Fatalf("Upsert: expected nil variant, got %q", *first.VariantID)
	}

	second, err := repo.Upsert(dbc, spec)
	if err != nil {
		t.Fatalf("Upsert again: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("Upsert again: expected same row %s, got %s", first.ID, second.ID)
	}
	var count int64
	if err := db.Model(&types.DerivedArtifact{}).Count(&count).Error; err != nil || count != 1 {
		t.Fatalf("row count: err=%v count=%d", err, count)
	}

	// Failed -> upsert re-arms to PENDING with error cleared, metadata kept.
	if err := repo.MarkFailed(dbc, first.ID, datatypes.JSON([]byte(`{"message":"boom"}`))); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	failed, err := repo.GetByID(dbc, first.ID)
	if err != nil || failed == nil {
		t.Fatalf("GetByID: err=%v row=%v", err, failed)
	}
	if failed.Status != types.ArtifactFailed || len(failed.Error) == 0 {
		t.Fatalf("MarkFailed: status=%s error=%s", failed.Status, string(failed.Error))
	}
	if len(failed.Metadata) == 0 {
		t.Fatalf("MarkFailed: metadata dropped")
	}

	rearmed, err := repo.Upsert(dbc, spec)
	if err != nil {
		t.Fatalf("Upsert after failure: %v", err)
	}
	if rearmed.ID != first.ID || rearmed.Status != types.ArtifactPending {
		t.Fatalf("Upsert after failure: id=%s status=%s", rearmed.ID, rearmed.Status)
	}
	if len(rearmed.Error) != 0 && string(rearmed.Error) != "null" {
		t.Fatalf("Upsert after failure: error not cleared: %s", string(rearmed.Error))
	}

	// Ready rows are returned untouched.
	if err := repo.MarkReady(dbc, first.ID, ReadyOutput{
		Metadata: datatypes.JSON([]byte(`{"previewText":"⠁⠃"}`)),
		BlobKey:  "derived/x/v3/en-US/braille/export.brf",
		BlobSize: 6,
		MimeType: "text/plain",
	}); err != nil {
		t.Fatalf("MarkReady: %v", err)
	}
	ready, err := repo.Upsert(dbc, spec)
	if err != nil {
		t.Fatalf("Upsert ready: %v", err)
	}
	if ready.Status != types.ArtifactReady || ready.BlobKey == "" {
		t.Fatalf("Upsert ready: status=%s blob=%q", ready.Status, ready.BlobKey)
	}
	var meta map[string]any
	if err := json.Unmarshal(ready.Metadata, &meta); err != nil || meta["previewText"] != "⠁⠃" {
		t.Fatalf("Upsert ready: metadata=%s err=%v", string(ready.Metadata), err)
	}

	byKey, err := repo.GetByCacheKey(dbc, ready.CacheKey)
	if err != nil || byKey == nil || byKey.ID != first.ID {
		t.Fatalf("GetByCacheKey: err=%v row=%v", err, byKey)
	}

	if missing, err := repo.GetByCacheKey(dbc, "lh:v3:nope"); err != nil || missing != nil {
		t.Fatalf("GetByCacheKey missing: err=%v row=%v", err, missing)
	}
}

func TestDerivedArtifactRepoRejectsBadKeys(t *testing.T) {
	db := testutil.DB(t)
	repo := NewDerivedArtifactRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	_, err := repo.Upsert(dbc, UpsertSpec{
		ScopeType: types.ScopeMicrosection,
		ScopeID:   "  ",
		Version:   1,
		Locale:    "en-US",
		Kind:      types.KindBraillePreview,
	})
	if apierr.KindOf(err) != apierr.KindInvalidArgument {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestDerivedArtifactRepoVariants(t *testing.T) {
	db := testutil.DB(t)
	repo := NewDerivedArtifactRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	base := UpsertSpec{
		ScopeType: types.ScopeLesson,
		ScopeID:   "lh:lesson:c1:math:ch1:s1",
		Version:   2,
		Locale:    "en-US",
		Kind:      types.KindStoryPlan,
	}
	a := base
	a.VariantID = "aaaaaaaaaaaa"
	b := base
	b.VariantID = "bbbbbbbbbbbb"

	rowA, err := repo.Upsert(dbc, a)
	if err != nil {
		t.Fatalf("Upsert a: %v", err)
	}
	rowB, err := repo.Upsert(dbc, b)
	if err != nil {
		t.Fatalf("Upsert b: %v", err)
	}
	if rowA.CacheKey == rowB.CacheKey {
		t.Fatalf("variants share cache key %s", rowA.CacheKey)
	}

	rows, err := repo.ListByScope(dbc, types.ScopeLesson, base.ScopeID, "en-US", []types.ArtifactKind{types.KindStoryPlan})
	if err != nil || len(rows) != 2 {
		t.Fatalf("ListByScope: err=%v len=%d", err, len(rows))
	}

	latest, err := repo.LatestVariant(dbc, types.ScopeLesson, base.ScopeID, 2, "en-US", types.KindStoryPlan)
	if err != nil || latest == nil {
		t.Fatalf("LatestVariant: err=%v row=%v", err, latest)
	}

	if err := repo.MarkFailed(dbc, rowA.ID, nil); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	if err := repo.MarkFailed(dbc, rowB.ID, nil); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	none, err := repo.LatestVariant(dbc, types.ScopeLesson, base.ScopeID, 2, "en-US", types.KindStoryPlan)
	if err != nil || none != nil {
		t.Fatalf("LatestVariant after failures: err=%v row=%v", err, none)
	}
}
