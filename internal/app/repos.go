package app

import (
	"gorm.io/gorm"

	artifactrepo "github.com/yungbote/learnhub-backend/internal/data/repos/artifacts"
	contentrepo "github.com/yungbote/learnhub-backend/internal/data/repos/content"
	curriculumrepo "github.com/yungbote/learnhub-backend/internal/data/repos/curriculum"
	jobrepo "github.com/yungbote/learnhub-backend/internal/data/repos/jobs"
	"github.com/yungbote/learnhub-backend/internal/platform/logger"
)

type Repos struct {
	Artifacts  artifactrepo.DerivedArtifactRepo
	Jobs       jobrepo.GenerationJobRepo
	Content    contentrepo.ContentVersionRepo
	Curriculum curriculumrepo.CurriculumRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Artifacts:  artifactrepo.NewDerivedArtifactRepo(db, log),
		Jobs:       jobrepo.NewGenerationJobRepo(db, log),
		Content:    contentrepo.NewContentVersionRepo(db, log),
		Curriculum: curriculumrepo.NewCurriculumRepo(db, log),
	}
}
