package jobs

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/learnhub-backend/internal/domain"
	"github.com/yungbote/learnhub-backend/internal/platform/dbctx"
	"github.com/yungbote/learnhub-backend/internal/platform/logger"
)

// claimAttempts bounds how many times Claim retries after losing a CAS race.
const claimAttempts = 8

// EnqueueSpec is everything a queue entry carries. IdempotencyKey is supplied by the caller.
type EnqueueSpec struct {
	JobType        string
	TargetCacheKey string
	Version        int
	Locale         string
	Scope          string
	Format         string
	IdempotencyKey string
}

type GenerationJobRepo interface {
	Enqueue(dbc dbctx.Context, spec EnqueueSpec) (*types.GenerationJob, error)
	Claim(dbc dbctx.Context) (*types.GenerationJob, error)
	MarkSucceeded(dbc dbctx.Context, id uuid.UUID) error
	MarkFailed(dbc dbctx.Context, id uuid.UUID, message string) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.GenerationJob, error)
	GetByIdempotencyKey(dbc dbctx.Context, key string) (*types.GenerationJob, error)
	List(dbc dbctx.Context, status types.JobStatus, limit int) ([]*types.GenerationJob, error)
	Stats(dbc dbctx.Context) (map[types.JobStatus]int64, error)
	RequeueStale(dbc dbctx.Context, olderThan time.Duration) (int64, error)
}

type generationJobRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGenerationJobRepo(db *gorm.DB, baseLog *logger.Logger) GenerationJobRepo {
	return &generationJobRepo{
		db:  db,
		log: baseLog.With("repo", "GenerationJobRepo"),
	}
}

// Enqueue returns an active row unchanged, re-arms a finished row (failed or succeeded)
// back to queued with its error cleared, and otherwise inserts a new queued row.
func (r *generationJobRepo) Enqueue(dbc dbctx.Context, spec EnqueueSpec) (*types.GenerationJob, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	spec.IdempotencyKey = strings.TrimSpace(spec.IdempotencyKey)
	if spec.IdempotencyKey == "" || spec.JobType == "" || spec.TargetCacheKey == "" {
		return nil, fmt.Errorf("enqueue: job type, target cache key and idempotency key are required")
	}

	existing, err := r.GetByIdempotencyKey(dbc, spec.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Active() {
			return existing, nil
		}
		if err := transaction.WithContext(dbc.Ctx).
			Model(&types.GenerationJob{}).
			Where("id = ? AND status IN ?", existing.ID, []types.JobStatus{types.JobFailed, types.JobSucceeded}).
			Updates(map[string]interface{}{
				"status":      types.JobQueued,
				"error":       "",
				"claimed_at":  nil,
				"finished_at": nil,
				"updated_at":  time.Now(),
			}).Error; err != nil {
			return nil, err
		}
		r.log.Debug("Job re-armed", "job_id", existing.ID, "job_type", existing.JobType, "previous_status", existing.Status)
		return r.GetByID(dbc, existing.ID)
	}

	job := &types.GenerationJob{
		IdempotencyKey: spec.IdempotencyKey,
		JobType:        spec.JobType,
		TargetCacheKey: spec.TargetCacheKey,
		ContentVersion: spec.Version,
		Locale:         spec.Locale,
		Scope:          spec.Scope,
		Format:         spec.Format,
		Status:         types.JobQueued,
	}
	res := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "idempotency_key"}}, DoNothing: true}).
		Create(job)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected > 0 {
		return job, nil
	}
	winner, err := r.GetByIdempotencyKey(dbc, spec.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if winner == nil {
		return nil, fmt.Errorf("enqueue failed for idempotency key %s", spec.IdempotencyKey)
	}
	return winner, nil
}

// Claim moves the oldest queued job to claimed with a conditional update, so two
// callers racing on the same row cannot both win. Returns nil when nothing is queued.
func (r *generationJobRepo) Claim(dbc dbctx.Context) (*types.GenerationJob, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	for attempt := 0; attempt < claimAttempts; attempt++ {
		var candidate types.GenerationJob
		err := transaction.WithContext(dbc.Ctx).
			Select("id").
			Where("status = ?", types.JobQueued).
			Order("created_at ASC").
			Limit(1).
			Find(&candidate).Error
		if err != nil {
			return nil, err
		}
		if candidate.ID == uuid.Nil {
			return nil, nil
		}

		now := time.Now()
		res := transaction.WithContext(dbc.Ctx).
			Model(&types.GenerationJob{}).
			Where("id = ? AND status = ?", candidate.ID, types.JobQueued).
			Updates(map[string]interface{}{
				"status":     types.JobClaimed,
				"attempts":   gorm.Expr("attempts + 1"),
				"claimed_at": now,
				"updated_at": now,
			})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			return r.GetByID(dbc, candidate.ID)
		}
	}
	return nil, nil
}

func (r *generationJobRepo) MarkSucceeded(dbc dbctx.Context, id uuid.UUID) error {
	return r.finish(dbc, id, types.JobSucceeded, "")
}

func (r *generationJobRepo) MarkFailed(dbc dbctx.Context, id uuid.UUID, message string) error {
	if strings.TrimSpace(message) == "" {
		message = "unknown error"
	}
	return r.finish(dbc, id, types.JobFailed, message)
}

func (r *generationJobRepo) finish(dbc dbctx.Context, id uuid.UUID, status types.JobStatus, message string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	now := time.Now()
	return transaction.WithContext(dbc.Ctx).
		Model(&types.GenerationJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      status,
			"error":       message,
			"finished_at": now,
			"updated_at":  now,
		}).Error
}

func (r *generationJobRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.GenerationJob, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var job types.GenerationJob
	err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *generationJobRepo) GetByIdempotencyKey(dbc dbctx.Context, key string) (*types.GenerationJob, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if key == "" {
		return nil, nil
	}
	var job types.GenerationJob
	err := transaction.WithContext(dbc.Ctx).Where("idempotency_key = ?", key).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *generationJobRepo) List(dbc dbctx.Context, status types.JobStatus, limit int) ([]*types.GenerationJob, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 50
	}
	var out []*types.GenerationJob
	q := transaction.WithContext(dbc.Ctx).Model(&types.GenerationJob{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *generationJobRepo) Stats(dbc dbctx.Context) (map[types.JobStatus]int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []struct {
		Status types.JobStatus
		N      int64
	}
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.GenerationJob{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := map[types.JobStatus]int64{
		types.JobQueued:    0,
		types.JobClaimed:   0,
		types.JobSucceeded: 0,
		types.JobFailed:    0,
	}
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}

// RequeueStale returns claimed jobs whose claim is older than olderThan to the queue.
func (r *generationJobRepo) RequeueStale(dbc dbctx.Context, olderThan time.Duration) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if olderThan <= 0 {
		return 0, nil
	}
	cutoff := time.Now().Add(-olderThan)
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.GenerationJob{}).
		Where("status = ? AND claimed_at IS NOT NULL AND claimed_at < ?", types.JobClaimed, cutoff).
		Updates(map[string]interface{}{
			"status":     types.JobQueued,
			"claimed_at": nil,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		r.log.Warn("Requeued stale claimed jobs", "count", res.RowsAffected, "older_than", olderThan)
	}
	return res.RowsAffected, nil
}
