package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ContentVersion is one immutable revision of a content unit's structured payload.
type ContentVersion struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ContentKey      string         `gorm:"column:content_key;not null;uniqueIndex:idx_content_version_key_version" json:"content_key"`
	Version         int            `gorm:"column:version;not null;uniqueIndex:idx_content_version_key_version" json:"version"`
	CanonicalLocale string         `gorm:"column:canonical_locale;not null" json:"canonical_locale"`
	Payload         datatypes.JSON `gorm:"column:payload" json:"payload"`
	PayloadHash     string         `gorm:"column:payload_hash" json:"payload_hash"`
	CreatedAt       time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (ContentVersion) TableName() string { return "content_version" }

func (c *ContentVersion) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ContentTranslation is a locale rendering of one specific content version.
type ContentTranslation struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ContentKey  string         `gorm:"column:content_key;not null;uniqueIndex:idx_content_translation_key" json:"content_key"`
	Version     int            `gorm:"column:version;not null;uniqueIndex:idx_content_translation_key" json:"version"`
	Locale      string         `gorm:"column:locale;not null;uniqueIndex:idx_content_translation_key" json:"locale"`
	Payload     datatypes.JSON `gorm:"column:payload" json:"payload"`
	PayloadHash string         `gorm:"column:payload_hash" json:"payload_hash"`
	Model       string         `gorm:"column:model" json:"model,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (ContentTranslation) TableName() string { return "content_translation" }

func (c *ContentTranslation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
