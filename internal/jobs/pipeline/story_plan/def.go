package story_plan

import (
	artifactrepo "github.com/yungbote/learnhub-backend/internal/data/repos/artifacts"
	types "github.com/yungbote/learnhub-backend/internal/domain"
	"github.com/yungbote/learnhub-backend/internal/jobs/pipeline/artifactjob"
	"github.com/yungbote/learnhub-backend/internal/platform/logger"
	"github.com/yungbote/learnhub-backend/internal/platform/openai"
	"github.com/yungbote/learnhub-backend/internal/services"
)

type Pipeline struct {
	log       *logger.Logger
	artifacts artifactrepo.DerivedArtifactRepo
	resolver  artifactjob.KeyResolver
	payloads  services.PayloadSelector
	jobs      services.JobEnqueuer
	text      openai.TextGenerator
}

// New builds the plan handler. text may be nil, in which case plans are built
// deterministically from the lesson's objectives.
func New(
	baseLog *logger.Logger,
	artifacts artifactrepo.DerivedArtifactRepo,
	resolver artifactjob.KeyResolver,
	payloads services.PayloadSelector,
	jobs services.JobEnqueuer,
	text openai.TextGenerator,
) *Pipeline {
	return &Pipeline{
		log:       baseLog.With("job", "story_plan_generate"),
		artifacts: artifacts,
		resolver:  resolver,
		payloads:  payloads,
		jobs:      jobs,
		text:      text,
	}
}

func (p *Pipeline) Type() string { return types.JobTypeStoryPlanGenerate }
