package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	artifactrepo "github.com/yungbote/learnhub-backend/internal/data/repos/artifacts"
	jobrepo "github.com/yungbote/learnhub-backend/internal/data/repos/jobs"
	types "github.com/yungbote/learnhub-backend/internal/domain"
	"github.com/yungbote/learnhub-backend/internal/jobs/runtime"
	"github.com/yungbote/learnhub-backend/internal/testsupport"
)

type funcHandler struct {
	jobType string
	run     func(jc *runtime.Context) error
}

func (f funcHandler) Type() string                  { return f.jobType }
func (f funcHandler) Run(jc *runtime.Context) error { return f.run(jc) }

func previewArtifact(t *testing.T, h *testsupport.Harness, scopeID string) *types.DerivedArtifact {
	t.Helper()
	return h.Artifact(t, artifactrepo.UpsertSpec{
		ScopeType: types.ScopeMicrosection,
		ScopeID:   scopeID,
		Version:   1,
		Locale:    "en-US",
		Kind:      types.KindBraillePreview,
	}, nil)
}

func newWorker(h *testsupport.Harness, handlers ...runtime.Handler) *Worker {
	reg := runtime.NewRegistry()
	reg.MustRegister(handlers...)
	return NewWorker(h.DB, h.Log, h.Jobs, h.Artifacts, reg, h.Notifier, Config{PollInterval: 10 * time.Millisecond})
}

func jobStatus(t *testing.T, h *testsupport.Harness, job *types.GenerationJob) *types.GenerationJob {
	t.Helper()
	got, err := h.Jobs.GetByID(h.DBC(), job.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: %v %v", got, err)
	}
	return got
}

func TestDrainOutcomes(t *testing.T) {
	h := testsupport.NewHarness(t)
	okJob := h.Enqueue(t, previewArtifact(t, h, "ok"))
	failing := previewArtifact(t, h, "fail")
	failJob := h.Enqueue(t, failing)
	panicking := previewArtifact(t, h, "panic")
	panicJob := h.Enqueue(t, panicking)

	w := newWorker(h, funcHandler{jobType: types.JobTypeBraillePreviewGenerate, run: func(jc *runtime.Context) error {
		switch {
		case strings.Contains(jc.Job.TargetCacheKey, ":fail:"):
			return errors.New("transliteration exploded")
		case strings.Contains(jc.Job.TargetCacheKey, ":panic:"):
			panic("nil scene")
		}
		return nil
	}})

	n, err := w.Drain(h.Ctx, 0)
	if err != nil || n != 3 {
		t.Fatalf("Drain: n=%d err=%v", n, err)
	}

	if got := jobStatus(t, h, okJob); got.Status != types.JobSucceeded || got.FinishedAt == nil {
		t.Fatalf("ok job: %+v", got)
	}
	if got := jobStatus(t, h, failJob); got.Status != types.JobFailed || got.Error != "transliteration exploded" {
		t.Fatalf("failed job: %+v", got)
	}
	// A returned error leaves the artifact to the handler.
	if got := h.Reload(t, failing); got.Status != types.ArtifactPending {
		t.Fatalf("failing artifact: %s", got.Status)
	}

	got := jobStatus(t, h, panicJob)
	if got.Status != types.JobFailed || !strings.Contains(got.Error, "panic: nil scene") {
		t.Fatalf("panic job: %+v", got)
	}
	a := h.Reload(t, panicking)
	if a.Status != types.ArtifactFailed {
		t.Fatalf("panicking artifact: %s", a.Status)
	}
	var payload map[string]any
	if err := json.Unmarshal(a.Error, &payload); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if payload["job_type"] != types.JobTypeBraillePreviewGenerate || payload["artifact_kind"] != string(types.KindBraillePreview) {
		t.Fatalf("error payload: %v", payload)
	}

	if n, err := w.Drain(h.Ctx, 0); err != nil || n != 0 {
		t.Fatalf("second Drain: n=%d err=%v", n, err)
	}
}

func TestMissingHandlerFailsJob(t *testing.T) {
	h := testsupport.NewHarness(t)
	job := h.Enqueue(t, previewArtifact(t, h, "orphan"))
	w := newWorker(h)

	if processed, err := w.RunOnce(h.Ctx); err != nil || !processed {
		t.Fatalf("RunOnce: %v %v", processed, err)
	}
	got := jobStatus(t, h, job)
	if got.Status != types.JobFailed || !strings.Contains(got.Error, "no handler registered") {
		t.Fatalf("job: %+v", got)
	}
}

func TestRetiredJobTypesFailWithoutStallingTheQueue(t *testing.T) {
	h := testsupport.NewHarness(t)
	var ran atomic.Int32
	w := newWorker(h, funcHandler{jobType: types.JobTypeBraillePreviewGenerate, run: func(jc *runtime.Context) error {
		ran.Add(1)
		return nil
	}})
	for _, jobType := range []string{"translate_content", "build_story_plan", "generate_story_image", "generate_story_audio", "build_braille_export"} {
		if _, err := h.Jobs.Enqueue(h.DBC(), jobrepo.EnqueueSpec{
			JobType:        jobType,
			TargetCacheKey: "legacy:" + jobType,
			IdempotencyKey: "legacy:" + jobType,
		}); err != nil {
			t.Fatalf("Enqueue %s: %v", jobType, err)
		}
	}
	h.Enqueue(t, previewArtifact(t, h, "after-legacy"))

	if n, err := w.Drain(h.Ctx, 0); err != nil || n != 6 {
		t.Fatalf("Drain: n=%d err=%v", n, err)
	}
	if ran.Load() != 1 {
		t.Fatalf("preview handler ran %d times", ran.Load())
	}
	stats, err := h.Jobs.Stats(h.DBC())
	if err != nil || stats[types.JobFailed] != 5 || stats[types.JobSucceeded] != 1 {
		t.Fatalf("stats: %v %v", stats, err)
	}
}

func TestDrainLimit(t *testing.T) {
	h := testsupport.NewHarness(t)
	for _, id := range []string{"a", "b", "c"} {
		h.Enqueue(t, previewArtifact(t, h, id))
	}
	var runs atomic.Int32
	w := newWorker(h, funcHandler{jobType: types.JobTypeBraillePreviewGenerate, run: func(jc *runtime.Context) error {
		runs.Add(1)
		return nil
	}})
	if n, err := w.Drain(h.Ctx, 2); err != nil || n != 2 || runs.Load() != 2 {
		t.Fatalf("Drain(2): n=%d runs=%d err=%v", n, runs.Load(), err)
	}
}

func TestRunProcessesWokenJobs(t *testing.T) {
	h := testsupport.NewHarness(t)
	done := make(chan string, 1)
	w := newWorker(h, funcHandler{jobType: types.JobTypeBraillePreviewGenerate, run: func(jc *runtime.Context) error {
		done <- jc.Job.TargetCacheKey
		return nil
	}})

	ctx, cancel := context.WithCancel(h.Ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	a := previewArtifact(t, h, "live")
	h.Enqueue(t, a)

	select {
	case key := <-done:
		if key != a.CacheKey {
			t.Fatalf("ran %s, want %s", key, a.CacheKey)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("job was not picked up")
	}
	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run: %v", err)
	}
}
