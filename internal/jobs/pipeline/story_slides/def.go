package story_slides

import (
	artifactrepo "github.com/yungbote/learnhub-backend/internal/data/repos/artifacts"
	types "github.com/yungbote/learnhub-backend/internal/domain"
	"github.com/yungbote/learnhub-backend/internal/platform/gcp"
	"github.com/yungbote/learnhub-backend/internal/platform/logger"
	"github.com/yungbote/learnhub-backend/internal/platform/openai"
	"github.com/yungbote/learnhub-backend/internal/services"
)

type Pipeline struct {
	log       *logger.Logger
	artifacts artifactrepo.DerivedArtifactRepo
	blobs     gcp.BlobStore
	jobs      services.JobEnqueuer
	images    openai.ImageGenerator
}

// New builds the slides handler. images may be nil; slides are then placeholder PNGs.
func New(
	baseLog *logger.Logger,
	artifacts artifactrepo.DerivedArtifactRepo,
	blobs gcp.BlobStore,
	jobs services.JobEnqueuer,
	images openai.ImageGenerator,
) *Pipeline {
	return &Pipeline{
		log:       baseLog.With("job", "story_slides_generate"),
		artifacts: artifacts,
		blobs:     blobs,
		jobs:      jobs,
		images:    images,
	}
}

func (p *Pipeline) Type() string { return types.JobTypeStorySlidesGenerate }
