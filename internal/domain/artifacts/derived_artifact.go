package artifacts

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPending Status = "PENDING"
	StatusReady   Status = "READY"
	StatusFailed  Status = "FAILED"
)

type Kind string

const (
	KindBraillePreview Kind = "BRAILLE_PREVIEW"
	KindBrailleBRF     Kind = "BRAILLE_BRF"
	KindStoryPlan      Kind = "STORY_PLAN"
	KindStorySlides    Kind = "STORY_SLIDES"
	KindStoryAudio     Kind = "STORY_AUDIO"
)

func (k Kind) Valid() bool {
	switch k {
	case KindBraillePreview, KindBrailleBRF, KindStoryPlan, KindStorySlides, KindStoryAudio:
		return true
	}
	return false
}

type ScopeType string

const (
	ScopeMicrosection ScopeType = "MICROSECTION"
	ScopeLesson       ScopeType = "LESSON"
	ScopeChapter      ScopeType = "CHAPTER"
)

func (s ScopeType) Valid() bool {
	switch s {
	case ScopeMicrosection, ScopeLesson, ScopeChapter:
		return true
	}
	return false
}

// DerivedArtifact is one cached output for a (scope, version, locale, kind, variant) tuple.
// CacheKey is unique; READY rows are never regenerated.
type DerivedArtifact struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CacheKey       string         `gorm:"column:cache_key;not null;uniqueIndex" json:"cache_key"`
	ScopeType      ScopeType      `gorm:"column:scope_type;not null;index:idx_derived_artifact_scope" json:"scope_type"`
	ScopeID        string         `gorm:"column:scope_id;not null;index:idx_derived_artifact_scope" json:"scope_id"`
	ContentVersion int            `gorm:"column:content_version;not null" json:"content_version"`
	Locale         string         `gorm:"column:locale;not null" json:"locale"`
	Kind           Kind           `gorm:"column:artifact_kind;not null;index" json:"artifact_kind"`
	VariantID      *string        `gorm:"column:variant_id" json:"variant_id,omitempty"`
	Status         Status         `gorm:"column:status;not null;index" json:"status"`
	Metadata       datatypes.JSON `gorm:"column:metadata" json:"metadata"`
	BlobBucket     string         `gorm:"column:blob_bucket" json:"blob_bucket,omitempty"`
	BlobKey        string         `gorm:"column:blob_key" json:"blob_key,omitempty"`
	BlobSize       int64          `gorm:"column:blob_size;not null;default:0" json:"blob_size,omitempty"`
	MimeType       string         `gorm:"column:mime_type" json:"mime_type,omitempty"`
	Error          datatypes.JSON `gorm:"column:error" json:"error,omitempty"`
	CreatedBy      string         `gorm:"column:created_by" json:"created_by,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;autoUpdateTime;index" json:"updated_at"`
}

func (DerivedArtifact) TableName() string { return "derived_artifact" }

func (a *DerivedArtifact) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Variant returns the variant id or "" when absent.
func (a *DerivedArtifact) Variant() string {
	if a == nil || a.VariantID == nil {
		return ""
	}
	return *a.VariantID
}

func (a *DerivedArtifact) IsReady() bool { return a != nil && a.Status == StatusReady }
