package story_plan

import (
	"errors"
	"strings"
	"testing"

	"github.com/yungbote/learnhub-backend/internal/artifacts/keys"
	"github.com/yungbote/learnhub-backend/internal/data/repos/testutil"
	types "github.com/yungbote/learnhub-backend/internal/domain"
	"github.com/yungbote/learnhub-backend/internal/platform/dbctx"
	"github.com/yungbote/learnhub-backend/internal/services"
	"github.com/yungbote/learnhub-backend/internal/testsupport"
)

const (
	unitKey = "curr:cbse:c1:grade5:math:ch02:ms0201"
	payload = `{"meta":{"title":"Fractions"},"learningObjectives":["Name halves","Compare parts"],"content":{"introduction":"A fraction is part of a whole."}}`
)

func seedMeta() map[string]any {
	return map[string]any{
		"contentKeys": []string{unitKey},
		"seed":        map[string]any{"baseSeed": "0", "variantSeed": "42"},
	}
}

func TestFallbackPlanChainsSlides(t *testing.T) {
	h := testsupport.NewHarness(t)
	testutil.SeedContentVersion(t, h.Ctx, h.DB, unitKey, 1, "en-US", payload)
	plan, slides, _ := h.StoryFamily(t, unitKey, "abc123", seedMeta())
	p := New(h.Log, h.Artifacts, h.Resolver, h.Payloads, h.Enqueuer, nil)
	job := h.Enqueue(t, plan)
	<-h.Notifier.Wake()

	if err := h.Run(p, job); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := h.Reload(t, plan)
	if got.Status != types.ArtifactReady {
		t.Fatalf("status: %s", got.Status)
	}
	meta := testsupport.Meta(t, got)
	if meta["model"] != "fallback" || meta["prompt"] != nil {
		t.Fatalf("model/prompt: %v %v", meta["model"], meta["prompt"])
	}
	if seed, _ := meta["seed"].(map[string]any); seed["variantSeed"] != "42" {
		t.Fatalf("seed metadata lost: %v", meta["seed"])
	}
	pl, _ := meta["plan"].(map[string]any)
	scenes, _ := pl["scenes"].([]any)
	if len(scenes) != 6 {
		t.Fatalf("scenes: %d", len(scenes))
	}
	first := scenes[0].(map[string]any)
	if first["objective"] != "Name halves" || scenes[1].(map[string]any)["objective"] != "Compare parts" || scenes[2].(map[string]any)["objective"] != "Name halves" {
		t.Fatalf("objectives not cycled: %v", scenes)
	}
	if pl["storySeed"] != "42" || pl["title"] != "Fractions" {
		t.Fatalf("plan header: %v", pl)
	}
	if ph, _ := meta["planHash"].(string); len(ph) != 64 {
		t.Fatalf("planHash: %v", meta["planHash"])
	}

	next, err := h.Jobs.GetByIdempotencyKey(h.DBC(), keys.IdempotencyKey(types.JobTypeStorySlidesGenerate, slides.CacheKey))
	if err != nil || next == nil {
		t.Fatalf("slides job not chained: %v %v", next, err)
	}
	if next.Status != types.JobQueued || next.Format != string(types.KindStorySlides) {
		t.Fatalf("slides job: %+v", next)
	}
	select {
	case <-h.Notifier.Wake():
	default:
		t.Fatalf("expected a worker wake-up")
	}
}

func TestProviderPlan(t *testing.T) {
	h := testsupport.NewHarness(t)
	testutil.SeedContentVersion(t, h.Ctx, h.DB, unitKey, 1, "en-US", payload)
	plan, _, _ := h.StoryFamily(t, unitKey, "abc123", seedMeta())
	text := &testsupport.FakeText{Out: map[string]any{
		"storySeed": "42",
		"scenes": []any{
			map[string]any{"caption": "Pizza", "narration": "Cut the pizza."},
			map[string]any{"caption": "Halves", "narration": "Two halves."},
		},
	}}
	p := New(h.Log, h.Artifacts, h.Resolver, h.Payloads, h.Enqueuer, text)

	if err := h.Run(p, h.Enqueue(t, plan)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	meta := testsupport.Meta(t, h.Reload(t, plan))
	if meta["model"] != "fake" {
		t.Fatalf("model: %v", meta["model"])
	}
	prompt, _ := meta["prompt"].(string)
	if !strings.Contains(prompt, "Seed: 42") || !strings.Contains(prompt, "A fraction is part of a whole.") {
		t.Fatalf("prompt: %q", prompt)
	}
	pl := meta["plan"].(map[string]any)
	scenes := pl["scenes"].([]any)
	if len(scenes) != 2 || scenes[1].(map[string]any)["index"] != float64(2) {
		t.Fatalf("scenes: %v", scenes)
	}
	if len(text.Users) != 1 {
		t.Fatalf("provider calls: %d", len(text.Users))
	}
}

func TestProviderFailureFallsBack(t *testing.T) {
	h := testsupport.NewHarness(t)
	testutil.SeedContentVersion(t, h.Ctx, h.DB, unitKey, 1, "en-US", payload)
	plan, _, _ := h.StoryFamily(t, unitKey, "abc123", seedMeta())
	p := New(h.Log, h.Artifacts, h.Resolver, h.Payloads, h.Enqueuer, &testsupport.FakeText{Err: errors.New("quota")})

	if err := h.Run(p, h.Enqueue(t, plan)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := h.Reload(t, plan)
	meta := testsupport.Meta(t, got)
	if got.Status != types.ArtifactReady || meta["model"] != "fallback" {
		t.Fatalf("status=%s model=%v", got.Status, meta["model"])
	}
	if _, ok := meta["prompt"].(string); !ok {
		t.Fatalf("prompt should be recorded even on fallback: %v", meta["prompt"])
	}
}

func TestPlanWithoutSiblingsDoesNotChain(t *testing.T) {
	h := testsupport.NewHarness(t)
	testutil.SeedContentVersion(t, h.Ctx, h.DB, unitKey, 1, "en-US", payload)
	plan, slides, _ := h.StoryFamily(t, unitKey, "abc123", seedMeta())
	if err := h.DB.Delete(slides).Error; err != nil {
		t.Fatalf("delete slides: %v", err)
	}
	p := New(h.Log, h.Artifacts, h.Resolver, h.Payloads, h.Enqueuer, nil)

	if err := h.Run(p, h.Enqueue(t, plan)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	jobs, err := h.Jobs.List(h.DBC(), types.JobQueued, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, j := range jobs {
		if j.JobType == types.JobTypeStorySlidesGenerate {
			t.Fatalf("unexpected slides job: %+v", j)
		}
	}
}

// flakyEnqueuer fails the first enqueue for one artifact kind.
type flakyEnqueuer struct {
	services.JobEnqueuer
	failKind types.ArtifactKind
}

func (f *flakyEnqueuer) EnqueueFor(dbc dbctx.Context, a *types.DerivedArtifact) (*types.GenerationJob, error) {
	if a != nil && a.Kind == f.failKind {
		f.failKind = ""
		return nil, errors.New("queue unavailable")
	}
	return f.JobEnqueuer.EnqueueFor(dbc, a)
}

func TestRetryAfterLostChainEnqueuesSlides(t *testing.T) {
	h := testsupport.NewHarness(t)
	testutil.SeedContentVersion(t, h.Ctx, h.DB, unitKey, 1, "en-US", payload)
	plan, slides, _ := h.StoryFamily(t, unitKey, "abc123", seedMeta())
	p := New(h.Log, h.Artifacts, h.Resolver, h.Payloads, &flakyEnqueuer{JobEnqueuer: h.Enqueuer, failKind: types.KindStorySlides}, nil)
	admin := services.NewQueueAdmin(h.Log, h.Jobs, h.Artifacts, h.Enqueuer)
	slidesKey := keys.IdempotencyKey(types.JobTypeStorySlidesGenerate, slides.CacheKey)

	job := h.Enqueue(t, plan)
	if _, err := h.Jobs.Claim(h.DBC()); err != nil {
		t.Fatalf("Claim: %v", err)
	}
	runErr := h.Run(p, job)
	if runErr == nil {
		t.Fatalf("expected the chain enqueue to fail")
	}
	if err := h.Jobs.MarkFailed(h.DBC(), job.ID, runErr.Error()); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	if got := h.Reload(t, plan); got.Status != types.ArtifactReady {
		t.Fatalf("plan status: %s", got.Status)
	}
	if next, _ := h.Jobs.GetByIdempotencyKey(h.DBC(), slidesKey); next != nil {
		t.Fatalf("slides job should not exist yet: %+v", next)
	}

	retried, err := admin.Retry(h.DBC(), job.ID)
	if err != nil || retried.Status != types.JobQueued {
		t.Fatalf("Retry: %+v %v", retried, err)
	}
	if err := h.Run(p, retried); err != nil {
		t.Fatalf("rerun: %v", err)
	}
	next, err := h.Jobs.GetByIdempotencyKey(h.DBC(), slidesKey)
	if err != nil || next == nil || next.Status != types.JobQueued {
		t.Fatalf("slides job not chained on rerun: %+v %v", next, err)
	}
}
