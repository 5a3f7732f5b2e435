package curriculum

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Curriculum struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Slug string    `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	Name string    `gorm:"column:name" json:"name"`
}

func (Curriculum) TableName() string { return "curriculum" }

type Class struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CurriculumID uuid.UUID `gorm:"type:uuid;column:curriculum_id;not null;index" json:"curriculum_id"`
	Slug         string    `gorm:"column:slug;not null" json:"slug"`
}

func (Class) TableName() string { return "class" }

type Subject struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Slug string    `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	Name string    `gorm:"column:name" json:"name"`
}

func (Subject) TableName() string { return "subject" }

type GradeSubject struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClassID   uuid.UUID `gorm:"type:uuid;column:class_id;not null;index" json:"class_id"`
	SubjectID uuid.UUID `gorm:"type:uuid;column:subject_id;not null;index" json:"subject_id"`
}

func (GradeSubject) TableName() string { return "grade_subject" }

type Chapter struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GradeSubjectID uuid.UUID `gorm:"type:uuid;column:grade_subject_id;not null;index" json:"grade_subject_id"`
	Slug           string    `gorm:"column:slug;not null" json:"slug"`
	Title          string    `gorm:"column:title" json:"title"`
	SortOrder      int       `gorm:"column:sort_order;not null;default:0" json:"sort_order"`
}

func (Chapter) TableName() string { return "chapter" }

// Microsection links a content unit key back to its owning chapter for access checks.
type Microsection struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChapterID  uuid.UUID `gorm:"type:uuid;column:chapter_id;not null;index" json:"chapter_id"`
	ContentKey string    `gorm:"column:content_key;not null;uniqueIndex" json:"content_key"`
}

func (Microsection) TableName() string { return "microsection" }

func (c *Curriculum) BeforeCreate(tx *gorm.DB) error   { return ensureID(&c.ID) }
func (c *Class) BeforeCreate(tx *gorm.DB) error        { return ensureID(&c.ID) }
func (s *Subject) BeforeCreate(tx *gorm.DB) error      { return ensureID(&s.ID) }
func (g *GradeSubject) BeforeCreate(tx *gorm.DB) error { return ensureID(&g.ID) }
func (c *Chapter) BeforeCreate(tx *gorm.DB) error      { return ensureID(&c.ID) }
func (m *Microsection) BeforeCreate(tx *gorm.DB) error { return ensureID(&m.ID) }

func ensureID(id *uuid.UUID) error {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	return nil
}
