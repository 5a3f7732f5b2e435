package story_audio

import (
	artifactrepo "github.com/yungbote/learnhub-backend/internal/data/repos/artifacts"
	types "github.com/yungbote/learnhub-backend/internal/domain"
	"github.com/yungbote/learnhub-backend/internal/platform/gcp"
	"github.com/yungbote/learnhub-backend/internal/platform/logger"
	"github.com/yungbote/learnhub-backend/internal/platform/openai"
)

type Pipeline struct {
	log       *logger.Logger
	artifacts artifactrepo.DerivedArtifactRepo
	blobs     gcp.BlobStore
	speech    openai.SpeechSynthesizer
}

func New(
	baseLog *logger.Logger,
	artifacts artifactrepo.DerivedArtifactRepo,
	blobs gcp.BlobStore,
	speech openai.SpeechSynthesizer,
) *Pipeline {
	return &Pipeline{
		log:       baseLog.With("job", "story_audio_generate"),
		artifacts: artifacts,
		blobs:     blobs,
		speech:    speech,
	}
}

func (p *Pipeline) Type() string { return types.JobTypeStoryAudioGenerate }
