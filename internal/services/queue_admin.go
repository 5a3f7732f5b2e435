package services

import (
	"github.com/google/uuid"

	artifactrepo "github.com/yungbote/learnhub-backend/internal/data/repos/artifacts"
	jobrepo "github.com/yungbote/learnhub-backend/internal/data/repos/jobs"
	types "github.com/yungbote/learnhub-backend/internal/domain"
	"github.com/yungbote/learnhub-backend/internal/platform/apierr"
	"github.com/yungbote/learnhub-backend/internal/platform/dbctx"
	"github.com/yungbote/learnhub-backend/internal/platform/logger"
)

// QueueAdmin is the operator view of the generation queue.
type QueueAdmin interface {
	List(dbc dbctx.Context, status types.JobStatus, limit int) ([]*types.GenerationJob, error)
	Stats(dbc dbctx.Context) (map[types.JobStatus]int64, error)
	// Retry re-arms a finished job, resetting its target artifact to PENDING unless it is READY.
	Retry(dbc dbctx.Context, jobID uuid.UUID) (*types.GenerationJob, error)
}

type queueAdmin struct {
	log       *logger.Logger
	jobs      jobrepo.GenerationJobRepo
	artifacts artifactrepo.DerivedArtifactRepo
	enqueuer  JobEnqueuer
}

func NewQueueAdmin(baseLog *logger.Logger, jobs jobrepo.GenerationJobRepo, artifacts artifactrepo.DerivedArtifactRepo, enqueuer JobEnqueuer) QueueAdmin {
	return &queueAdmin{
		log:       baseLog.With("service", "QueueAdmin"),
		jobs:      jobs,
		artifacts: artifacts,
		enqueuer:  enqueuer,
	}
}

func (q *queueAdmin) List(dbc dbctx.Context, status types.JobStatus, limit int) ([]*types.GenerationJob, error) {
	return q.jobs.List(dbc, status, limit)
}

func (q *queueAdmin) Stats(dbc dbctx.Context) (map[types.JobStatus]int64, error) {
	return q.jobs.Stats(dbc)
}

func (q *queueAdmin) Retry(dbc dbctx.Context, jobID uuid.UUID) (*types.GenerationJob, error) {
	const op = "queue.Retry"
	job, err := q.jobs.GetByID(dbc, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, apierr.NotFound(op, "job_not_found")
	}
	if job.Active() {
		return job, nil
	}
	a, err := q.artifacts.GetByCacheKey(dbc, job.TargetCacheKey)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apierr.NotFound(op, "artifact_not_found")
	}
	// A READY target keeps its output; only the job is re-armed, and its handler
	// reruns the follow-on steps. Otherwise Upsert flips the row back to PENDING
	// and keeps its metadata.
	if !a.IsReady() {
		a, err = q.artifacts.Upsert(dbc, artifactrepo.UpsertSpec{
			ScopeType: a.ScopeType,
			ScopeID:   a.ScopeID,
			Version:   a.ContentVersion,
			Locale:    a.Locale,
			Kind:      a.Kind,
			VariantID: a.Variant(),
		})
		if err != nil {
			return nil, err
		}
	}
	rearmed, err := q.enqueuer.EnqueueFor(dbc, a)
	if err != nil {
		return nil, err
	}
	q.log.Info("Job retried", "job_id", rearmed.ID.String(), "cache_key", a.CacheKey, "previous_status", job.Status)
	return rearmed, nil
}
