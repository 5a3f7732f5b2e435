package testutil

import (
	"context"
	"testing"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/learnhub-backend/internal/domain"
)

// CurriculumTree is the chain of rows one structured chapter hangs off.
type CurriculumTree struct {
	Curriculum   *types.Curriculum
	Class        *types.Class
	Subject      *types.Subject
	GradeSubject *types.GradeSubject
	Chapter      *types.Chapter
}

func SeedCurriculumTree(tb testing.TB, ctx context.Context, tx *gorm.DB, currSlug, classSlug, subjectSlug, chapterSlug string) *CurriculumTree {
	tb.Helper()
	tree := &CurriculumTree{
		Curriculum: &types.Curriculum{Slug: currSlug, Name: currSlug},
	}
	mustCreate(tb, ctx, tx, "curriculum", tree.Curriculum)

	tree.Class = &types.Class{CurriculumID: tree.Curriculum.ID, Slug: classSlug}
	mustCreate(tb, ctx, tx, "class", tree.Class)

	var subject types.Subject
	if err := tx.WithContext(ctx).Where("slug = ?", subjectSlug).Limit(1).Find(&subject).Error; err != nil {
		tb.Fatalf("lookup subject: %v", err)
	}
	if subject.Slug == "" {
		subject = types.Subject{Slug: subjectSlug, Name: subjectSlug}
		mustCreate(tb, ctx, tx, "subject", &subject)
	}
	tree.Subject = &subject

	tree.GradeSubject = &types.GradeSubject{ClassID: tree.Class.ID, SubjectID: tree.Subject.ID}
	mustCreate(tb, ctx, tx, "grade subject", tree.GradeSubject)

	tree.Chapter = &types.Chapter{GradeSubjectID: tree.GradeSubject.ID, Slug: chapterSlug, Title: chapterSlug}
	mustCreate(tb, ctx, tx, "chapter", tree.Chapter)
	return tree
}

func SeedMicrosection(tb testing.TB, ctx context.Context, tx *gorm.DB, chapter *types.Chapter, contentKey string) *types.Microsection {
	tb.Helper()
	ms := &types.Microsection{ChapterID: chapter.ID, ContentKey: contentKey}
	mustCreate(tb, ctx, tx, "microsection", ms)
	return ms
}

func SeedContentVersion(tb testing.TB, ctx context.Context, tx *gorm.DB, contentKey string, version int, locale, payload string) *types.ContentVersion {
	tb.Helper()
	cv := &types.ContentVersion{
		ContentKey:      contentKey,
		Version:         version,
		CanonicalLocale: locale,
		Payload:         datatypes.JSON([]byte(payload)),
	}
	mustCreate(tb, ctx, tx, "content version", cv)
	return cv
}

func SeedTranslation(tb testing.TB, ctx context.Context, tx *gorm.DB, contentKey string, version int, locale, payload string) *types.ContentTranslation {
	tb.Helper()
	ct := &types.ContentTranslation{
		ContentKey: contentKey,
		Version:    version,
		Locale:     locale,
		Payload:    datatypes.JSON([]byte(payload)),
		Model:      "test",
	}
	mustCreate(tb, ctx, tx, "content translation", ct)
	return ct
}

func mustCreate(tb testing.TB, ctx context.Context, tx *gorm.DB, what string, v any) {
	tb.Helper()
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed %s: %v", what, err)
	}
}
