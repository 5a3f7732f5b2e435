package story

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	FallbackScenes = 6
	MaxScenes      = 8
	MaxObjectives  = 8

	defaultObjective = "Understand the concept"
)

type Scene struct {
	Index        int    `json:"index"`
	Objective    string `json:"objective"`
	Caption      string `json:"caption"`
	Narration    string `json:"narration"`
	ImagePrompt  string `json:"imagePrompt"`
	OnScreenText string `json:"onScreenText"`
}

type Plan struct {
	StorySeed          string   `json:"storySeed"`
	Locale             string   `json:"locale"`
	SlideCount         int      `json:"slideCount"`
	Title              string   `json:"title,omitempty"`
	LearningObjectives []string `json:"learningObjectives,omitempty"`
	Scenes             []Scene  `json:"scenes"`
}

// FallbackPlan derives FallbackScenes scenes from the objectives, cycling through
// them when there are fewer.
func FallbackPlan(seed, title string, objectives []string, locale string) Plan {
	if seed == "" {
		seed = "0"
	}
	scenes := make([]Scene, 0, FallbackScenes)
	for i := 0; i < FallbackScenes; i++ {
		idx := i + 1
		objective := defaultObjective
		if len(objectives) > 0 {
			if o := strings.TrimSpace(objectives[i%len(objectives)]); o != "" {
				objective = o
			}
		}
		scenes = append(scenes, Scene{
			Index:       idx,
			Objective:   objective,
			Caption:     truncate(fmt.Sprintf("Slide %d: %s", idx, objective), 80),
			Narration:   fmt.Sprintf("Let's learn: %s.", objective),
			ImagePrompt: fmt.Sprintf("Kid-safe educational illustration. Seed %s. Objective: %s.", seed, objective),
		})
	}
	return Plan{
		StorySeed:  seed,
		Locale:     locale,
		SlideCount: len(scenes),
		Title:      title,
		Scenes:     scenes,
	}
}

// DecodePlan accepts a provider or stored plan, filling missing scene indexes from
// position. A plan without scenes is an error.
func DecodePlan(raw []byte) (Plan, error) {
	var p Plan
	if err := json.Unmarshal(raw, &p); err != nil {
		return Plan{}, fmt.Errorf("decode story plan: %w", err)
	}
	if len(p.Scenes) == 0 {
		return Plan{}, fmt.Errorf("story plan has no scenes")
	}
	for i := range p.Scenes {
		if p.Scenes[i].Index <= 0 {
			p.Scenes[i].Index = i + 1
		}
	}
	if p.SlideCount <= 0 {
		p.SlideCount = len(p.Scenes)
	}
	return p, nil
}

// Lead returns at most MaxScenes scenes.
func (p Plan) Lead() []Scene {
	if len(p.Scenes) > MaxScenes {
		return p.Scenes[:MaxScenes]
	}
	return p.Scenes
}

// CaptionOrDefault falls back to "Slide N".
func (s Scene) CaptionOrDefault() string {
	if c := strings.TrimSpace(s.Caption); c != "" {
		return c
	}
	return fmt.Sprintf("Slide %d", s.Index)
}

// NarrationOrDefault falls back to the caption.
func (s Scene) NarrationOrDefault() string {
	if n := strings.TrimSpace(s.Narration); n != "" {
		return n
	}
	return s.CaptionOrDefault()
}

func SlidePrompt(seed string, s Scene) string {
	raw := strings.TrimSpace(s.ImagePrompt)
	if raw == "" {
		raw = s.CaptionOrDefault()
	}
	return fmt.Sprintf("Kid-safe educational comic illustration. No text. Seed %s. %s", seed, raw)
}

// PlanPrompt is the instruction sent to a text provider to build a plan.
func PlanPrompt(seed, locale, sourceText string) string {
	src, _ := json.Marshal(truncate(sourceText, 6000))
	return fmt.Sprintf(`You are a deterministic story compiler.
Seed: %s
Locale: %s

Build a story plan (JSON only) that teaches the lesson.
Return JSON with:
- storySeed
- slideCount (max %d)
- learningObjectives (array)
- scenes: [{ index, objective, caption, narration, imagePrompt, onScreenText }]

Lesson source text:
%s
`, seed, locale, MaxScenes, string(src))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
