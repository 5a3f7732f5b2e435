package story_slides

import (
	"encoding/base64"

	"github.com/yungbote/learnhub-backend/internal/artifacts/keys"
	artifactrepo "github.com/yungbote/learnhub-backend/internal/data/repos/artifacts"
	types "github.com/yungbote/learnhub-backend/internal/domain"
	"github.com/yungbote/learnhub-backend/internal/jobs/pipeline/artifactjob"
	jobrt "github.com/yungbote/learnhub-backend/internal/jobs/runtime"
	"github.com/yungbote/learnhub-backend/internal/platform/apierr"
	"github.com/yungbote/learnhub-backend/internal/story"
)

const (
	imageMime        = "image/png"
	fallbackProvider = "fallback"
)

// Slide is one rendered scene recorded in the artifact's metadata.
type Slide struct {
	SlideIndex int    `json:"slideIndex"`
	Caption    string `json:"caption"`
	ImageURL   string `json:"imageUrl"`
	ImageKey   string `json:"imageKey"`
	ImageMime  string `json:"imageMime"`
	Checksum   string `json:"checksum"`
}

func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Job == nil {
		return nil
	}
	a, ok, err := artifactjob.LoadTarget(jc, p.artifacts)
	if err != nil || a == nil {
		return err
	}
	if ok {
		if err := p.generate(jc, a); err != nil {
			return artifactjob.Fail(jc, p.artifacts, a, err)
		}
	}
	// A READY target still chains: a rerun re-issues a audio enqueue that failed after MarkReady.
	if _, err := artifactjob.ChainSibling(jc, p.artifacts, p.jobs, a, types.KindStoryAudio); err != nil {
		jc.Log.Warn("failed to chain audio job", "error", err)
		return err
	}
	return nil
}

func (p *Pipeline) generate(jc *jobrt.Context, a *types.DerivedArtifact) error {
	dbc := jc.DBC()
	plan, planMeta, err := artifactjob.ReadyPlan(jc, p.artifacts, a)
	if err != nil {
		return err
	}
	seed := artifactjob.Seed(planMeta)
	provider := fallbackProvider
	if p.images != nil {
		provider = p.images.Name() + "-image"
	}

	scenes := plan.Lead()
	slides := make([]Slide, 0, len(scenes))
	for pos, scene := range scenes {
		idx := scene.Index
		if idx <= 0 {
			idx = pos + 1
		}
		scene.Index = idx

		img, err := p.render(jc, seed, scene)
		if err != nil {
			return err
		}
		stored, err := p.blobs.Put(jc.Ctx, img, keys.BlobPath(a, "story", a.Variant(), "slides", keys.SlotName("slide", idx)+".png"), imageMime)
		if err != nil {
			return apierr.GenerationFailure("story.slide_upload", err)
		}
		slides = append(slides, Slide{
			SlideIndex: idx,
			Caption:    scene.CaptionOrDefault(),
			ImageURL:   stored.URL,
			ImageKey:   stored.Key,
			ImageMime:  imageMime,
			Checksum:   keys.SHA256Text(base64.StdEncoding.EncodeToString(img)),
		})
	}

	meta := artifactjob.Meta(a)
	meta["slides"] = slides
	meta["provider"] = map[string]any{"image": provider}
	encoded, err := artifactjob.EncodeMeta(meta)
	if err != nil {
		return err
	}
	if err := p.artifacts.MarkReady(dbc, a.ID, artifactrepo.ReadyOutput{Metadata: encoded}); err != nil {
		return err
	}
	jc.Log.Info("story slides ready", "artifact_id", a.ID.String(), "slides", len(slides), "provider", provider)
	return nil
}

func (p *Pipeline) render(jc *jobrt.Context, seed string, scene story.Scene) ([]byte, error) {
	if p.images == nil {
		caption := scene.Caption
		if caption == "" {
			caption = scene.OnScreenText
		}
		return story.PlaceholderSlide(seed, scene.Index, caption)
	}
	img, err := p.images.GenerateImage(jc.Ctx, story.SlidePrompt(seed, scene))
	if err != nil {
		return nil, apierr.GenerationFailure("story.slide_image", err)
	}
	return img.Bytes, nil
}
