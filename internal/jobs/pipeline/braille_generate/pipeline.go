package braille_generate

import (
	"fmt"

	"github.com/yungbote/learnhub-backend/internal/artifacts/keys"
	"github.com/yungbote/learnhub-backend/internal/artifacts/textextract"
	"github.com/yungbote/learnhub-backend/internal/braille"
	artifactrepo "github.com/yungbote/learnhub-backend/internal/data/repos/artifacts"
	types "github.com/yungbote/learnhub-backend/internal/domain"
	"github.com/yungbote/learnhub-backend/internal/jobs/pipeline/artifactjob"
	jobrt "github.com/yungbote/learnhub-backend/internal/jobs/runtime"
	"github.com/yungbote/learnhub-backend/internal/platform/apierr"
	"github.com/yungbote/learnhub-backend/internal/services"
)

const brfMimeType = "text/plain; charset=utf-8"

func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Job == nil {
		return nil
	}
	a, ok, err := artifactjob.LoadTarget(jc, p.artifacts)
	if err != nil || !ok {
		return err
	}
	if err := p.generate(jc, a); err != nil {
		return artifactjob.Fail(jc, p.artifacts, a, err)
	}
	return nil
}

func (p *Pipeline) generate(jc *jobrt.Context, a *types.DerivedArtifact) error {
	dbc := jc.DBC()
	meta := artifactjob.Meta(a)

	contentKeys, err := artifactjob.ContentKeys(dbc, p.resolver, a, meta)
	if err != nil {
		return err
	}
	selected, err := p.payloads.Best(dbc, contentKeys, a.ContentVersion, a.Locale)
	if err != nil {
		return err
	}
	sourceText := textextract.ExtractAll(services.Payloads(selected))
	sourceHash := keys.SHA256Text(sourceText)

	converted := braille.ConvertMixed(sourceText)
	validation := braille.ValidateSegments(converted.Segments)
	if !validation.OK {
		jc.Log.Warn("braille validation warnings", "artifact_id", a.ID.String(), "warnings", validation.Warnings)
	}

	meta["contentKeys"] = contentKeys
	meta["sourceHash"] = sourceHash
	meta["validation"] = validation

	out := artifactrepo.ReadyOutput{}
	switch p.jobType {
	case types.JobTypeBraillePreviewGenerate:
		meta["previewText"] = converted.FullBraille
		meta["segments"] = converted.Segments

	case types.JobTypeBrailleBRFGenerate:
		if p.blobs == nil {
			return fmt.Errorf("blob store not configured")
		}
		brf := braille.FormatBRF(converted.FullBraille, braille.LineWidth)
		stored, err := p.blobs.Put(jc.Ctx, []byte(brf), keys.BlobPath(a, "braille", "export.brf"), brfMimeType)
		if err != nil {
			return apierr.GenerationFailure("braille.brf_upload", err)
		}
		meta["publicUrl"] = stored.URL
		out.BlobBucket = stored.Bucket
		out.BlobKey = stored.Key
		out.BlobSize = stored.Size
		out.MimeType = brfMimeType

	default:
		return fmt.Errorf("unsupported job type %s", p.jobType)
	}

	encoded, err := artifactjob.EncodeMeta(meta)
	if err != nil {
		return err
	}
	out.Metadata = encoded
	if err := p.artifacts.MarkReady(dbc, a.ID, out); err != nil {
		return err
	}
	jc.Log.Info("braille artifact ready",
		"artifact_id", a.ID.String(),
		"segments", len(converted.Segments),
		"content_keys", len(contentKeys),
	)
	return nil
}
