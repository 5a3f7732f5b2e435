package story_audio

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
	audioMime        = "audio/wav"
	fallbackProvider = "fallback"
)

// Track is the narration for one slide.
type Track struct {
	SlideIndex int    `json:"slideIndex"`
	Narration  string `json:"narration"`
	Caption    string `json:"caption"`
	AudioURL   string `json:"audioUrl"`
	AudioKey   string `json:"audioKey"`
	MimeType   string `json:"mimeType"`
	DurationMs int    `json:"durationMs"`
	Checksum   string `json:"checksum"`
}

// Run is the last stage of the story chain; nothing is enqueued after it.
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
	plan, _, err := artifactjob.ReadyPlan(jc, p.artifacts, a)
	if err != nil {
		return err
	}
	provider := fallbackProvider
	if p.speech != nil {
		provider = p.speech.Name() + "-tts"
	}

	scenes := plan.Lead()
	tracks := make([]Track, 0, len(scenes))
	for pos, scene := range scenes {
		idx := scene.Index
		if idx <= 0 {
			idx = pos + 1
		}
		scene.Index = idx
		narration := scene.NarrationOrDefault()
		durationMs := story.NarrationDuration(narration)

		wav, err := p.synthesize(jc, narration, durationMs)
		if err != nil {
			return err
		}
		stored, err := p.blobs.Put(jc.Ctx, wav, keys.BlobPath(a, "story", a.Variant(), "audio", keys.SlotName("slide", idx)+".wav"), audioMime)
		if err != nil {
			return apierr.GenerationFailure("story.audio_upload", err)
		}
		tracks = append(tracks, Track{
			SlideIndex: idx,
			Narration:  narration,
			Caption:    scene.CaptionOrDefault(),
			AudioURL:   stored.URL,
			AudioKey:   stored.Key,
			MimeType:   audioMime,
			DurationMs: durationMs,
			Checksum:   keys.SHA256Text(base64.StdEncoding.EncodeToString(wav)),
		})
	}

	meta := artifactjob.Meta(a)
	meta["slides"] = tracks
	meta["provider"] = map[string]any{"tts": provider}
	encoded, err := artifactjob.EncodeMeta(meta)
	if err != nil {
		return err
	}
	if err := p.artifacts.MarkReady(jc.DBC(), a.ID, artifactrepo.ReadyOutput{Metadata: encoded}); err != nil {
		return err
	}
	jc.Log.Info("story audio ready", "artifact_id", a.ID.String(), "tracks", len(tracks), "provider", provider)
	return nil
}

func (p *Pipeline) synthesize(jc *jobrt.Context, narration string, durationMs int) ([]byte, error) {
	if p.speech == nil {
		return story.SilentWAV(durationMs, story.WAVSampleRate), nil
	}
	out, err := p.speech.Synthesize(jc.Ctx, narration)
	if err != nil {
		return nil, apierr.GenerationFailure("story.narration", err)
	}
	return out.Bytes, nil
}
