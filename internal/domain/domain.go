package domain

import (
	"github.com/yungbote/learnhub-backend/internal/domain/artifacts"
	"github.com/yungbote/learnhub-backend/internal/domain/content"
	"github.com/yungbote/learnhub-backend/internal/domain/curriculum"
	"github.com/yungbote/learnhub-backend/internal/domain/jobs"
)

type (
	DerivedArtifact = artifacts.DerivedArtifact
	ArtifactStatus  = artifacts.Status
	ArtifactKind    = artifacts.Kind
	ScopeType       = artifacts.ScopeType

	GenerationJob = jobs.GenerationJob
	JobStatus     = jobs.Status

	ContentVersion     = content.ContentVersion
	ContentTranslation = content.ContentTranslation

	Curriculum   = curriculum.Curriculum
	Class        = curriculum.Class
	Subject      = curriculum.Subject
	GradeSubject = curriculum.GradeSubject
	Chapter      = curriculum.Chapter
	Microsection = curriculum.Microsection

	StructuredChapter      = curriculum.StructuredChapter
	StructuredSection      = curriculum.StructuredSection
	StructuredMicrosection = curriculum.StructuredMicrosection
)

const (
	ArtifactPending = artifacts.StatusPending
	ArtifactReady   = artifacts.StatusReady
	ArtifactFailed  = artifacts.StatusFailed

	KindBraillePreview = artifacts.KindBraillePreview
	KindBrailleBRF     = artifacts.KindBrailleBRF
	KindStoryPlan      = artifacts.KindStoryPlan
	KindStorySlides    = artifacts.KindStorySlides
	KindStoryAudio     = artifacts.KindStoryAudio

	ScopeMicrosection = artifacts.ScopeMicrosection
	ScopeLesson       = artifacts.ScopeLesson
	ScopeChapter      = artifacts.ScopeChapter

	JobQueued    = jobs.StatusQueued
	JobClaimed   = jobs.StatusClaimed
	JobSucceeded = jobs.StatusSucceeded
	JobFailed    = jobs.StatusFailed

	JobTypeBraillePreviewGenerate = jobs.TypeBraillePreviewGenerate
	JobTypeBrailleBRFGenerate     = jobs.TypeBrailleBRFGenerate
	JobTypeStoryPlanGenerate      = jobs.TypeStoryPlanGenerate
	JobTypeStorySlidesGenerate    = jobs.TypeStorySlidesGenerate
	JobTypeStoryAudioGenerate     = jobs.TypeStoryAudioGenerate
)

// AllModels lists every persisted model in migration order.
func AllModels() []any {
	return []any{
		&Curriculum{},
		&Class{},
		&Subject{},
		&GradeSubject{},
		&Chapter{},
		&Microsection{},
		&ContentVersion{},
		&ContentTranslation{},
		&DerivedArtifact{},
		&GenerationJob{},
	}
}
