package curriculum

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/learnhub-backend/internal/domain"
	"github.com/yungbote/learnhub-backend/internal/platform/dbctx"
	"github.com/yungbote/learnhub-backend/internal/platform/logger"
)

type CurriculumRepo interface {
	GetClass(dbc dbctx.Context, id uuid.UUID) (*types.Class, error)
	GetCurriculum(dbc dbctx.Context, id uuid.UUID) (*types.Curriculum, error)
	// ResolveChapterID maps a structured (class, subject, chapter) triple to the chapter row id.
	ResolveChapterID(dbc dbctx.Context, classID uuid.UUID, subjectSlug, chapterSlug string) (*uuid.UUID, error)
	MicrosectionChapterID(dbc dbctx.Context, contentKey string) (*uuid.UUID, error)
}

type curriculumRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCurriculumRepo(db *gorm.DB, baseLog *logger.Logger) CurriculumRepo {
	return &curriculumRepo{
		db:  db,
		log: baseLog.With("repo", "CurriculumRepo"),
	}
}

func (r *curriculumRepo) GetClass(dbc dbctx.Context, id uuid.UUID) (*types.Class, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.Class
	err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *curriculumRepo) GetCurriculum(dbc dbctx.Context, id uuid.UUID) (*types.Curriculum, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.Curriculum
	err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *curriculumRepo) ResolveChapterID(dbc dbctx.Context, classID uuid.UUID, subjectSlug, chapterSlug string) (*uuid.UUID, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if classID == uuid.Nil || subjectSlug == "" || chapterSlug == "" {
		return nil, nil
	}
	var chapter types.Chapter
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.Chapter{}).
		Joins("JOIN grade_subject ON grade_subject.id = chapter.grade_subject_id").
		Joins("JOIN subject ON subject.id = grade_subject.subject_id").
		Where("grade_subject.class_id = ? AND subject.slug = ? AND chapter.slug = ?", classID, subjectSlug, chapterSlug).
		Select("chapter.id").
		Limit(1).
		Find(&chapter).Error
	if err != nil {
		return nil, err
	}
	if chapter.ID == uuid.Nil {
		return nil, nil
	}
	return &chapter.ID, nil
}

func (r *curriculumRepo) MicrosectionChapterID(dbc dbctx.Context, contentKey string) (*uuid.UUID, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if contentKey == "" {
		return nil, nil
	}
	var ms types.Microsection
	err := transaction.WithContext(dbc.Ctx).
		Where("content_key = ?", contentKey).
		Limit(1).
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	if ms.ID == uuid.Nil {
		return nil, nil
	}
	return &ms.ChapterID, nil
}
