package runtime

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/learnhub-backend/internal/domain"
	"github.com/yungbote/learnhub-backend/internal/platform/apierr"
	"github.com/yungbote/learnhub-backend/internal/platform/dbctx"
	"github.com/yungbote/learnhub-backend/internal/platform/logger"
)

/*
Context is the execution handle for one claimed generation job.
Handlers read the job row and report failure by returning an error; the worker
owns the job's terminal transition. Handlers never update generation_job directly.
*/
type Context struct {
	Ctx context.Context
	DB  *gorm.DB
	Job *types.GenerationJob
	Log *logger.Logger
}

func NewContext(ctx context.Context, db *gorm.DB, job *types.GenerationJob, baseLog *logger.Logger) *Context {
	log := baseLog
	if job != nil {
		log = baseLog.With(
			"job_id", job.ID.String(),
			"job_type", job.JobType,
			"cache_key", job.TargetCacheKey,
		)
	}
	return &Context{Ctx: ctx, DB: db, Job: job, Log: log}
}

// DBC is the repository context for this run.
func (c *Context) DBC() dbctx.Context {
	return dbctx.Context{Ctx: c.Ctx, Tx: c.DB}
}

// ArtifactError is the JSON stored on a FAILED artifact.
type ArtifactError struct {
	Message      string `json:"message"`
	JobType      string `json:"job_type,omitempty"`
	ArtifactKind string `json:"artifact_kind,omitempty"`
	Kind         string `json:"kind,omitempty"`
	Code         string `json:"code,omitempty"`
}

func NewArtifactError(jobType string, kind types.ArtifactKind, err error) ArtifactError {
	out := ArtifactError{
		Message:      "unknown",
		JobType:      jobType,
		ArtifactKind: string(kind),
	}
	if err == nil {
		return out
	}
	out.Message = err.Error()
	out.Kind = string(apierr.KindOf(err))
	var ae *apierr.Error
	if errors.As(err, &ae) {
		out.Code = ae.Code
	}
	return out
}

func (e ArtifactError) JSON() datatypes.JSON {
	raw, err := json.Marshal(e)
	if err != nil {
		return datatypes.JSON(`{"message":"unknown"}`)
	}
	return datatypes.JSON(raw)
}
