package braille_generate

import (
	artifactrepo "github.com/yungbote/learnhub-backend/internal/data/repos/artifacts"
	types "github.com/yungbote/learnhub-backend/internal/domain"
	"github.com/yungbote/learnhub-backend/internal/jobs/pipeline/artifactjob"
	"github.com/yungbote/learnhub-backend/internal/platform/gcp"
	"github.com/yungbote/learnhub-backend/internal/platform/logger"
	"github.com/yungbote/learnhub-backend/internal/services"
)

// Pipeline serves both Braille job types; the BRF variant also persists a blob.
type Pipeline struct {
	log       *logger.Logger
	jobType   string
	artifacts artifactrepo.DerivedArtifactRepo
	resolver  artifactjob.KeyResolver
	payloads  services.PayloadSelector
	blobs     gcp.BlobStore
}

func NewPreview(
	baseLog *logger.Logger,
	artifacts artifactrepo.DerivedArtifactRepo,
	resolver artifactjob.KeyResolver,
	payloads services.PayloadSelector,
) *Pipeline {
	return &Pipeline{
		log:       baseLog.With("job", "braille_preview_generate"),
		jobType:   types.JobTypeBraillePreviewGenerate,
		artifacts: artifacts,
		resolver:  resolver,
		payloads:  payloads,
	}
}

func NewBRF(
	baseLog *logger.Logger,
	artifacts artifactrepo.DerivedArtifactRepo,
	resolver artifactjob.KeyResolver,
	payloads services.PayloadSelector,
	blobs gcp.BlobStore,
) *Pipeline {
	return &Pipeline{
		log:       baseLog.With("job", "braille_brf_generate"),
		jobType:   types.JobTypeBrailleBRFGenerate,
		artifacts: artifacts,
		resolver:  resolver,
		payloads:  payloads,
		blobs:     blobs,
	}
}

func (p *Pipeline) Type() string { return p.jobType }
