package story_plan

import (
	"encoding/json"
	"strings"

	"github.com/yungbote/learnhub-backend/internal/artifacts/keys"
	"github.com/yungbote/learnhub-backend/internal/artifacts/textextract"
	artifactrepo "github.com/yungbote/learnhub-backend/internal/data/repos/artifacts"
	types "github.com/yungbote/learnhub-backend/internal/domain"
	"github.com/yungbote/learnhub-backend/internal/jobs/pipeline/artifactjob"
	jobrt "github.com/yungbote/learnhub-backend/internal/jobs/runtime"
	"github.com/yungbote/learnhub-backend/internal/services"
	"github.com/yungbote/learnhub-backend/internal/story"
)

const (
	defaultTitle  = "Lesson"
	fallbackModel = "fallback"
	planSystem    = "You write short illustrated stories that teach school lessons. Respond with JSON only."
)

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
	// A READY target still chains: a rerun re-issues a slides enqueue that failed after MarkReady.
	if _, err := artifactjob.ChainSibling(jc, p.artifacts, p.jobs, a, types.KindStorySlides); err != nil {
		jc.Log.Warn("failed to chain slides job", "error", err)
		return err
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
	seed := artifactjob.Seed(meta)
	title, objectives := lessonHeader(selected)

	var (
		plan   story.Plan
		prompt string
		model  = fallbackModel
		built  bool
	)
	if p.text != nil {
		sourceText := textextract.ExtractAll(services.Payloads(selected))
		prompt = story.PlanPrompt(seed, a.Locale, sourceText)
		if pl, ok := p.fromProvider(jc, prompt); ok {
			plan, model, built = pl, p.text.Name(), true
		}
	}
	if !built {
		plan = story.FallbackPlan(seed, title, objectives, a.Locale)
	}

	meta["contentKeys"] = contentKeys
	meta["model"] = model
	meta["prompt"] = nullable(prompt)
	meta["plan"] = plan
	meta["planHash"] = keys.SHA256JSON(plan)

	encoded, err := artifactjob.EncodeMeta(meta)
	if err != nil {
		return err
	}
	if err := p.artifacts.MarkReady(dbc, a.ID, artifactrepo.ReadyOutput{Metadata: encoded}); err != nil {
		return err
	}
	jc.Log.Info("story plan ready", "artifact_id", a.ID.String(), "model", model, "scenes", len(plan.Scenes))
	return nil
}

// fromProvider asks the text provider for a plan. Any provider or decode failure
// falls back to the deterministic plan.
func (p *Pipeline) fromProvider(jc *jobrt.Context, prompt string) (story.Plan, bool) {
	obj, err := p.text.GenerateJSON(jc.Ctx, planSystem, prompt)
	if err != nil {
		jc.Log.Warn("plan provider failed; using fallback plan", "error", err)
		return story.Plan{}, false
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return story.Plan{}, false
	}
	plan, err := story.DecodePlan(raw)
	if err != nil {
		jc.Log.Warn("plan provider returned an unusable plan; using fallback plan", "error", err)
		return story.Plan{}, false
	}
	return plan, true
}

// lessonHeader reads meta.title and learningObjectives from the first payload.
func lessonHeader(selected []services.SelectedPayload) (string, []string) {
	if len(selected) == 0 {
		return defaultTitle, nil
	}
	var doc struct {
		Meta struct {
			Title any `json:"title"`
		} `json:"meta"`
		LearningObjectives []any `json:"learningObjectives"`
	}
	if err := json.Unmarshal(selected[0].Payload, &doc); err != nil {
		return defaultTitle, nil
	}
	title := defaultTitle
	if s, ok := doc.Meta.Title.(string); ok && strings.TrimSpace(s) != "" {
		title = strings.TrimSpace(s)
	}
	objectives := make([]string, 0, story.MaxObjectives)
	for _, o := range doc.LearningObjectives {
		if len(objectives) == story.MaxObjectives {
			break
		}
		if s, ok := o.(string); ok && strings.TrimSpace(s) != "" {
			objectives = append(objectives, strings.TrimSpace(s))
		}
	}
	return title, objectives
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
