package jobs

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Status string

const (
	StatusQueued    Status = "queued"
	StatusClaimed   Status = "claimed"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

const (
	TypeBraillePreviewGenerate = "BRAILLE_PREVIEW_GENERATE"
	TypeBrailleBRFGenerate     = "BRAILLE_BRF_GENERATE"
	TypeStoryPlanGenerate      = "STORY_PLAN_GENERATE"
	TypeStorySlidesGenerate    = "STORY_SLIDES_GENERATE"
	TypeStoryAudioGenerate     = "STORY_AUDIO_GENERATE"
)

// GenerationJob is one unit of queued work targeting a derived artifact by cache key.
// IdempotencyKey is unique: re-enqueueing never creates a second row.
type GenerationJob struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	IdempotencyKey string     `gorm:"column:idempotency_key;not null;uniqueIndex" json:"idempotency_key"`
	JobType        string     `gorm:"column:job_type;not null;index" json:"job_type"`
	TargetCacheKey string     `gorm:"column:target_cache_key;not null;index" json:"target_cache_key"`
	ContentVersion int        `gorm:"column:content_version;not null;default:0" json:"content_version"`
	Locale         string     `gorm:"column:locale" json:"locale"`
	Scope          string     `gorm:"column:scope" json:"scope,omitempty"`
	Format         string     `gorm:"column:format" json:"format,omitempty"`
	Status         Status     `gorm:"column:status;not null;index:idx_generation_job_status_created" json:"status"`
	Error          string     `gorm:"column:error" json:"error,omitempty"`
	Attempts       int        `gorm:"column:attempts;not null;default:0" json:"attempts"`
	ClaimedAt      *time.Time `gorm:"column:claimed_at;index" json:"claimed_at,omitempty"`
	FinishedAt     *time.Time `gorm:"column:finished_at" json:"finished_at,omitempty"`
	CreatedAt      time.Time  `gorm:"not null;autoCreateTime;index:idx_generation_job_status_created" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (GenerationJob) TableName() string { return "generation_job" }

func (j *GenerationJob) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}

// Active reports whether the job is waiting for or holding a worker.
func (j *GenerationJob) Active() bool {
	return j != nil && (j.Status == StatusQueued || j.Status == StatusClaimed)
}
