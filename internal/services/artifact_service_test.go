package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	artifactrepo "github.com/yungbote/learnhub-backend/internal/data/repos/artifacts"
	"github.com/yungbote/learnhub-backend/internal/data/repos/testutil"
	types "github.com/yungbote/learnhub-backend/internal/domain"
	"github.com/yungbote/learnhub-backend/internal/platform/apierr"
	"github.com/yungbote/learnhub-backend/internal/services"
	"github.com/yungbote/learnhub-backend/internal/testsupport"
)

const unitKey = "curr:cbse:c1:grade5:math:ch02:ms0201"

type chapterAccess map[string]map[uuid.UUID]bool

func (c chapterAccess) HasChapterAccess(ctx context.Context, userID string, chapterID uuid.UUID) (bool, error) {
	return c[userID][chapterID], nil
}

type fixture struct {
	h       *testsupport.Harness
	svc     services.ArtifactService
	chapter uuid.UUID
}

func newFixture(t *testing.T, access services.AccessChecker) *fixture {
	t.Helper()
	h := testsupport.NewHarness(t)
	tree := testutil.SeedCurriculumTree(t, h.Ctx, h.DB, "cbse", "class-5", "math", "fractions")
	testutil.SeedMicrosection(t, h.Ctx, h.DB, tree.Chapter, unitKey)
	testutil.SeedContentVersion(t, h.Ctx, h.DB, unitKey, 1, "en-US", `{"meta":{"title":"Halves"},"content":{"introduction":"Half of 4 is 2."}}`)
	testutil.SeedContentVersion(t, h.Ctx, h.DB, unitKey, 2, "en-US", `{"meta":{"title":"Halves"},"content":{"introduction":"Half of 6 is 3."}}`)
	svc := services.NewArtifactService(h.Log, h.Artifacts, h.Resolver, h.Curriculum, h.Enqueuer, h.Blobs, access, services.ArtifactServiceConfig{})
	return &fixture{h: h, svc: svc, chapter: tree.Chapter.ID}
}

func (f *fixture) queued(t *testing.T) []*types.GenerationJob {
	t.Helper()
	jobs, err := f.h.Jobs.List(f.h.DBC(), types.JobQueued, 50)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	return jobs
}

func TestRequestArtifactIsIdempotent(t *testing.T) {
	f := newFixture(t, nil)
	req := services.ArtifactRequest{UserID: "u1", ScopeType: types.ScopeMicrosection, ScopeID: unitKey, Locale: "", Kind: types.KindBraillePreview}

	first, err := f.svc.RequestArtifact(f.h.DBC(), req)
	if err != nil {
		t.Fatalf("RequestArtifact: %v", err)
	}
	if first.Status != types.ArtifactPending || first.CacheKey != "lh:v3:BRAILLE_PREVIEW:MICROSECTION:"+unitKey+":v2:en-US:0" {
		t.Fatalf("ticket: %+v", first)
	}
	if meta := testsupport.Meta(t, first.Artifact); len(meta["contentKeys"].([]any)) != 1 {
		t.Fatalf("metadata: %v", meta)
	}
	if jobs := f.queued(t); len(jobs) != 1 || jobs[0].Scope != "MICROSECTION" || jobs[0].Format != "BRAILLE_PREVIEW" || jobs[0].ContentVersion != 2 {
		t.Fatalf("jobs: %+v", jobs)
	}

	second, err := f.svc.RequestArtifact(f.h.DBC(), req)
	if err != nil {
		t.Fatalf("second RequestArtifact: %v", err)
	}
	if second.ArtifactID != first.ArtifactID || len(f.queued(t)) != 1 {
		t.Fatalf("duplicate work: %s vs %s, jobs=%d", second.ArtifactID, first.ArtifactID, len(f.queued(t)))
	}
}

func TestRequestArtifactReadyDoesNotEnqueue(t *testing.T) {
	f := newFixture(t, nil)
	req := services.ArtifactRequest{UserID: "u1", ScopeType: types.ScopeMicrosection, ScopeID: unitKey, Locale: "en-US", Kind: types.KindBrailleBRF}
	first, err := f.svc.RequestArtifact(f.h.DBC(), req)
	if err != nil {
		t.Fatalf("RequestArtifact: %v", err)
	}
	job := f.queued(t)[0]
	if _, err := f.h.Jobs.Claim(f.h.DBC()); err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if err := f.h.Jobs.MarkSucceeded(f.h.DBC(), job.ID); err != nil {
		t.Fatalf("MarkSucceeded: %v", err)
	}
	if err := f.h.Artifacts.MarkReady(f.h.DBC(), first.ArtifactID, artifactrepo.ReadyOutput{}); err != nil {
		t.Fatalf("MarkReady: %v", err)
	}

	again, err := f.svc.RequestArtifact(f.h.DBC(), req)
	if err != nil {
		t.Fatalf("RequestArtifact: %v", err)
	}
	if again.Status != types.ArtifactReady || len(f.queued(t)) != 0 {
		t.Fatalf("READY artifact re-queued: %+v", again)
	}
}

func TestRequestArtifactErrors(t *testing.T) {
	f := newFixture(t, chapterAccess{"u1": {}})
	cases := []struct {
		name string
		req  services.ArtifactRequest
		want error
		code string
	}{
		{"bad kind", services.ArtifactRequest{ScopeType: types.ScopeMicrosection, ScopeID: unitKey, Kind: "PODCAST"}, apierr.ErrInvalidArgument, "artifact_kind_invalid"},
		{"bad scope", services.ArtifactRequest{ScopeType: "COURSE", ScopeID: unitKey, Kind: types.KindBraillePreview}, apierr.ErrInvalidArgument, "scope_required"},
		{"no content", services.ArtifactRequest{ScopeType: types.ScopeMicrosection, ScopeID: "curr:x:y:grade1:art:ch01:ms0101", Kind: types.KindBraillePreview}, apierr.ErrNotFound, "content_not_found"},
		{"no access", services.ArtifactRequest{UserID: "u1", ScopeType: types.ScopeMicrosection, ScopeID: unitKey, Kind: types.KindBraillePreview}, apierr.ErrForbidden, "forbidden"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.RequestArtifact(f.h.DBC(), tc.req)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			var ae *apierr.Error
			if !errors.As(err, &ae) || ae.Code != tc.code {
				t.Fatalf("code: %v", err)
			}
		})
	}
	if jobs := f.queued(t); len(jobs) != 0 {
		t.Fatalf("rejected requests enqueued %d jobs", len(jobs))
	}
}

func TestGetArtifactSignsBlobs(t *testing.T) {
	f := newFixture(t, chapterAccess{"u1": {}, "u2": {}})
	creator := "u1"
	a := f.h.Artifact(t, artifactrepo.UpsertSpec{
		ScopeType: types.ScopeMicrosection, ScopeID: unitKey, Version: 2, Locale: "en-US",
		Kind: types.KindStorySlides, VariantID: "v1", CreatedBy: creator,
	}, nil)
	meta := map[string]any{"slides": []any{
		map[string]any{"slideIndex": 1, "imageKey": "derived/x/slide_01.png"},
		"junk",
	}}
	if err := f.h.Artifacts.MarkReady(f.h.DBC(), a.ID, artifactrepo.ReadyOutput{
		Metadata: testsupport.JSON(t, meta),
		BlobKey:  "derived/x/bundle.zip",
	}); err != nil {
		t.Fatalf("MarkReady: %v", err)
	}

	view, err := f.svc.GetArtifact(f.h.DBC(), creator, a.ID)
	if err != nil {
		t.Fatalf("GetArtifact: %v", err)
	}
	if view.DownloadURL == nil || *view.DownloadURL != "/media/derived/x/bundle.zip" {
		t.Fatalf("downloadUrl: %v", view.DownloadURL)
	}
	slides := view.Metadata["slides"].([]any)
	if slides[0].(map[string]any)["imageUrl"] != "/media/derived/x/slide_01.png" || slides[1] != "junk" {
		t.Fatalf("slides: %v", slides)
	}

	if _, err := f.svc.GetArtifact(f.h.DBC(), "u2", a.ID); !errors.Is(err, apierr.ErrForbidden) {
		t.Fatalf("non-creator without chapter access: %v", err)
	}
	if _, err := f.svc.GetArtifact(f.h.DBC(), creator, uuid.New()); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("missing artifact: %v", err)
	}
}

func TestGetArtifactChapterAccess(t *testing.T) {
	f := newFixture(t, nil)
	access := chapterAccess{"reader": {f.chapter: true}}
	svc := services.NewArtifactService(f.h.Log, f.h.Artifacts, f.h.Resolver, f.h.Curriculum, f.h.Enqueuer, f.h.Blobs, access, services.ArtifactServiceConfig{})
	ticket, err := svc.RequestArtifact(f.h.DBC(), services.ArtifactRequest{UserID: "reader", ScopeType: types.ScopeMicrosection, ScopeID: unitKey, Kind: types.KindBraillePreview})
	if err != nil {
		t.Fatalf("RequestArtifact: %v", err)
	}
	view, err := svc.GetArtifact(f.h.DBC(), "other-reader-with-grant", ticket.ArtifactID)
	if !errors.Is(err, apierr.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v %v", view, err)
	}
	access["other-reader-with-grant"] = map[uuid.UUID]bool{f.chapter: true}
	view, err = svc.GetArtifact(f.h.DBC(), "other-reader-with-grant", ticket.ArtifactID)
	if err != nil || view.DownloadURL != nil {
		t.Fatalf("GetArtifact: %v %v", view, err)
	}
}
