package services

import (
	"fmt"

	"github.com/yungbote/learnhub-backend/internal/artifacts/keys"
	jobrepo "github.com/yungbote/learnhub-backend/internal/data/repos/jobs"
	types "github.com/yungbote/learnhub-backend/internal/domain"
	"github.com/yungbote/learnhub-backend/internal/platform/dbctx"
	"github.com/yungbote/learnhub-backend/internal/platform/logger"
	"github.com/yungbote/learnhub-backend/internal/platform/redisx"
)

var jobTypeByKind = map[types.ArtifactKind]string{
	types.KindBraillePreview: types.JobTypeBraillePreviewGenerate,
	types.KindBrailleBRF:     types.JobTypeBrailleBRFGenerate,
	types.KindStoryPlan:      types.JobTypeStoryPlanGenerate,
	types.KindStorySlides:    types.JobTypeStorySlidesGenerate,
	types.KindStoryAudio:     types.JobTypeStoryAudioGenerate,
}

// JobTypeFor maps an artifact kind to the job type that produces it.
func JobTypeFor(kind types.ArtifactKind) (string, bool) {
	t, ok := jobTypeByKind[kind]
	return t, ok
}

// JobEnqueuer queues the generation job for an artifact and wakes idle workers.
type JobEnqueuer interface {
	EnqueueFor(dbc dbctx.Context, a *types.DerivedArtifact) (*types.GenerationJob, error)
}

type jobEnqueuer struct {
	log    *logger.Logger
	jobs   jobrepo.GenerationJobRepo
	notify redisx.Notifier
}

func NewJobEnqueuer(baseLog *logger.Logger, jobs jobrepo.GenerationJobRepo, notify redisx.Notifier) JobEnqueuer {
	return &jobEnqueuer{
		log:    baseLog.With("service", "JobEnqueuer"),
		jobs:   jobs,
		notify: notify,
	}
}

func (e *jobEnqueuer) EnqueueFor(dbc dbctx.Context, a *types.DerivedArtifact) (*types.GenerationJob, error) {
	if a == nil {
		return nil, fmt.Errorf("artifact required")
	}
	jobType, ok := JobTypeFor(a.Kind)
	if !ok {
		return nil, fmt.Errorf("no job type for artifact kind %s", a.Kind)
	}
	job, err := e.jobs.Enqueue(dbc, jobrepo.EnqueueSpec{
		JobType:        jobType,
		TargetCacheKey: a.CacheKey,
		Version:        a.ContentVersion,
		Locale:         a.Locale,
		Scope:          string(a.ScopeType),
		Format:         string(a.Kind),
		IdempotencyKey: keys.IdempotencyKey(jobType, a.CacheKey),
	})
	if err != nil {
		return nil, err
	}
	e.log.Debug("Job enqueued",
		"job_id", job.ID.String(),
		"job_type", jobType,
		"cache_key", a.CacheKey,
		"artifact_id", a.ID.String(),
		"status", job.Status,
	)
	if e.notify != nil {
		if err := e.notify.Notify(dbc.Ctx, jobType); err != nil {
			e.log.Warn("job wake notify failed (ignored)", "job_type", jobType, "error", err)
		}
	}
	return job, nil
}
