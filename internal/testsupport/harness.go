// Package testsupport wires the artifact stack against a per-test database, a
// temporary local blob store and in-memory providers.
package testsupport

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/learnhub-backend/internal/artifacts/scope"
	artifactrepo "github.com/yungbote/learnhub-backend/internal/data/repos/artifacts"
	contentrepo "github.com/yungbote/learnhub-backend/internal/data/repos/content"
	curriculumrepo "github.com/yungbote/learnhub-backend/internal/data/repos/curriculum"
	jobrepo "github.com/yungbote/learnhub-backend/internal/data/repos/jobs"
	"github.com/yungbote/learnhub-backend/internal/data/repos/testutil"
	types "github.com/yungbote/learnhub-backend/internal/domain"
	jobrt "github.com/yungbote/learnhub-backend/internal/jobs/runtime"
	"github.com/yungbote/learnhub-backend/internal/platform/dbctx"
	"github.com/yungbote/learnhub-backend/internal/platform/gcp"
	"github.com/yungbote/learnhub-backend/internal/platform/logger"
	"github.com/yungbote/learnhub-backend/internal/platform/redisx"
	"github.com/yungbote/learnhub-backend/internal/services"
)

type Harness struct {
	Ctx context.Context
	DB  *gorm.DB
	Log *logger.Logger

	Artifacts  artifactrepo.DerivedArtifactRepo
	Jobs       jobrepo.GenerationJobRepo
	Content    contentrepo.ContentVersionRepo
	Curriculum curriculumrepo.CurriculumRepo

	Docs     scope.StaticDocumentSource
	Resolver *scope.Resolver
	Payloads services.PayloadSelector
	Notifier *redisx.LocalNotifier
	Enqueuer services.JobEnqueuer

	BlobRoot string
	Blobs    gcp.BlobStore
}

func NewHarness(t *testing.T) *Harness {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)

	h := &Harness{
		Ctx:        context.Background(),
		DB:         db,
		Log:        log,
		Artifacts:  artifactrepo.NewDerivedArtifactRepo(db, log),
		Jobs:       jobrepo.NewGenerationJobRepo(db, log),
		Content:    contentrepo.NewContentVersionRepo(db, log),
		Curriculum: curriculumrepo.NewCurriculumRepo(db, log),
		Docs:       scope.StaticDocumentSource{},
		Notifier:   redisx.NewLocalNotifier(),
		BlobRoot:   filepath.Join(t.TempDir(), "media"),
	}
	h.Resolver = scope.NewResolver(log, h.Content, h.Curriculum, h.Docs)
	h.Payloads = services.NewPayloadSelector(log, h.Content)
	h.Enqueuer = services.NewJobEnqueuer(log, h.Jobs, h.Notifier)

	blobs, err := gcp.NewLocalBlobStore(log, h.BlobRoot, "/media")
	if err != nil {
		t.Fatalf("local blob store: %v", err)
	}
	h.Blobs = blobs
	return h
}

func (h *Harness) DBC() dbctx.Context {
	return dbctx.Context{Ctx: h.Ctx}
}

// Artifact upserts a PENDING artifact carrying meta as its metadata.
func (h *Harness) Artifact(t *testing.T, spec artifactrepo.UpsertSpec, meta map[string]any) *types.DerivedArtifact {
	t.Helper()
	if meta != nil {
		spec.Metadata = JSON(t, meta)
	}
	a, err := h.Artifacts.Upsert(h.DBC(), spec)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	return a
}

// Enqueue queues the job that produces a and returns it.
func (h *Harness) Enqueue(t *testing.T, a *types.DerivedArtifact) *types.GenerationJob {
	t.Helper()
	job, err := h.Enqueuer.EnqueueFor(h.DBC(), a)
	if err != nil {
		t.Fatalf("EnqueueFor: %v", err)
	}
	return job
}

// Run executes handler for job outside the worker loop.
func (h *Harness) Run(handler jobrt.Handler, job *types.GenerationJob) error {
	return handler.Run(jobrt.NewContext(h.Ctx, h.DB, job, h.Log))
}

// Reload fetches a by cache key.
func (h *Harness) Reload(t *testing.T, a *types.DerivedArtifact) *types.DerivedArtifact {
	t.Helper()
	out, err := h.Artifacts.GetByCacheKey(h.DBC(), a.CacheKey)
	if err != nil || out == nil {
		t.Fatalf("GetByCacheKey(%s): %v %v", a.CacheKey, out, err)
	}
	return out
}

// Meta decodes an artifact's metadata.
func Meta(t *testing.T, a *types.DerivedArtifact) map[string]any {
	t.Helper()
	out := map[string]any{}
	if len(a.Metadata) == 0 {
		return out
	}
	if err := json.Unmarshal(a.Metadata, &out); err != nil {
		t.Fatalf("decode metadata: %v", err)
	}
	return out
}

func JSON(t *testing.T, v any) datatypes.JSON {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return datatypes.JSON(raw)
}

// StoryFamily upserts the PLAN, SLIDES and AUDIO rows of one story variant for a
// microsection scope, each seeded with meta.
func (h *Harness) StoryFamily(t *testing.T, scopeID, variantID string, meta map[string]any) (plan, slides, audio *types.DerivedArtifact) {
	t.Helper()
	spec := func(kind types.ArtifactKind) artifactrepo.UpsertSpec {
		return artifactrepo.UpsertSpec{
			ScopeType: types.ScopeMicrosection,
			ScopeID:   scopeID,
			Version:   1,
			Locale:    "en-US",
			Kind:      kind,
			VariantID: variantID,
		}
	}
	plan = h.Artifact(t, spec(types.KindStoryPlan), meta)
	slides = h.Artifact(t, spec(types.KindStorySlides), meta)
	audio = h.Artifact(t, spec(types.KindStoryAudio), meta)
	return plan, slides, audio
}
