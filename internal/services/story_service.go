package services

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/yungbote/learnhub-backend/internal/artifacts/keys"
	artifactrepo "github.com/yungbote/learnhub-backend/internal/data/repos/artifacts"
	types "github.com/yungbote/learnhub-backend/internal/domain"
	"github.com/yungbote/learnhub-backend/internal/platform/ctxutil"
	"github.com/yungbote/learnhub-backend/internal/platform/dbctx"
)

var storyKinds = []types.ArtifactKind{types.KindStoryPlan, types.KindStorySlides, types.KindStoryAudio}

func isStoryKind(k types.ArtifactKind) bool {
	return k == types.KindStoryPlan || k == types.KindStorySlides || k == types.KindStoryAudio
}

type StoryRequest struct {
	UserID    string
	ScopeType types.ScopeType
	ScopeID   string
	Locale    string
	// Seed pins the variant id; empty means a fresh variant.
	Seed        string
	ReuseLatest bool
}

type StoryArtifactIDs struct {
	PlanID   uuid.UUID `json:"planId"`
	SlidesID uuid.UUID `json:"slidesId"`
	AudioID  uuid.UUID `json:"audioId"`
}

type StoryTicket struct {
	VariantID string               `json:"variantId"`
	Status    types.ArtifactStatus `json:"status"`
	Reused    bool                 `json:"reused"`
	Artifacts StoryArtifactIDs     `json:"artifacts"`
}

// StoryVariant groups the three stages of one variant; a stage may be nil.
type StoryVariant struct {
	VariantID string                 `json:"variantId"`
	Version   int                    `json:"version"`
	Plan      *types.DerivedArtifact `json:"plan"`
	Slides    *types.DerivedArtifact `json:"slides"`
	Audio     *types.DerivedArtifact `json:"audio"`
}

type storyFamily struct {
	plan, slides, audio *types.DerivedArtifact
}

func (f storyFamily) byKind(k types.ArtifactKind) *types.DerivedArtifact {
	switch k {
	case types.KindStorySlides:
		return f.slides
	case types.KindStoryAudio:
		return f.audio
	}
	return f.plan
}

// firstPending is the earliest stage not yet READY, or nil when all three are.
func (f storyFamily) firstPending() *types.DerivedArtifact {
	for _, a := range []*types.DerivedArtifact{f.plan, f.slides, f.audio} {
		if !a.IsReady() {
			return a
		}
	}
	return nil
}

// StoryVariantID derives a stable 12-char variant id from a caller seed.
func StoryVariantID(scopeID, locale, seed string) string {
	return keys.SHA256Text(scopeID + "|" + locale + "|" + seed)[:12]
}

func storySeedMeta(baseSeed, variantSeed string) map[string]any {
	if baseSeed == "" {
		baseSeed = keys.NoVariant
	}
	if variantSeed == "" {
		variantSeed = baseSeed
	}
	return map[string]any{"baseSeed": baseSeed, "variantSeed": variantSeed}
}

func (s *artifactService) CompileStory(dbc dbctx.Context, req StoryRequest) (*StoryTicket, error) {
	const op = "artifacts.CompileStory"
	locale := s.locale(req.Locale)
	rs, err := s.resolve(dbc, op, req.UserID, req.ScopeType, req.ScopeID)
	if err != nil {
		return nil, err
	}

	var (
		variantID string
		reused    bool
	)
	if req.ReuseLatest {
		latest, err := s.artifacts.LatestVariant(dbc, rs.scopeType, rs.scopeID, rs.version, locale, types.KindStoryPlan)
		if err != nil {
			return nil, err
		}
		if latest != nil {
			variantID, reused = latest.Variant(), true
		}
	}
	if variantID == "" {
		if req.Seed != "" {
			variantID = StoryVariantID(rs.scopeID, locale, req.Seed)
		} else {
			variantID = uuid.NewString()
		}
	}

	fam, err := s.ensureStoryFamily(dbc, rs, locale, variantID, req.UserID, storySeedMeta(req.Seed, variantID))
	if err != nil {
		return nil, err
	}
	if err := s.enqueueIfPending(dbc, fam.firstPending()); err != nil {
		return nil, err
	}
	s.log.Info("Story compile requested", append([]any{
		"scope_type", rs.scopeType,
		"scope_id", rs.scopeID,
		"variant_id", variantID,
		"reused", reused,
		"plan_status", fam.plan.Status,
	}, ctxutil.LogFields(dbc.Ctx)...)...)
	return &StoryTicket{
		VariantID: variantID,
		Status:    fam.plan.Status,
		Reused:    reused,
		Artifacts: StoryArtifactIDs{PlanID: fam.plan.ID, SlidesID: fam.slides.ID, AudioID: fam.audio.ID},
	}, nil
}

// ensureStoryFamily upserts the PLAN, SLIDES and AUDIO rows of one variant.
func (s *artifactService) ensureStoryFamily(dbc dbctx.Context, rs *resolvedScope, locale, variantID, userID string, seed map[string]any) (storyFamily, error) {
	meta := mustJSON(map[string]any{"contentKeys": rs.contentKeys, "seed": seed})
	var fam storyFamily
	for _, kind := range storyKinds {
		a, err := s.artifacts.Upsert(dbc, artifactrepo.UpsertSpec{
			ScopeType: rs.scopeType,
			ScopeID:   rs.scopeID,
			Version:   rs.version,
			Locale:    locale,
			Kind:      kind,
			VariantID: variantID,
			Metadata:  meta,
			CreatedBy: userID,
		})
		if err != nil {
			return storyFamily{}, err
		}
		switch kind {
		case types.KindStoryPlan:
			fam.plan = a
		case types.KindStorySlides:
			fam.slides = a
		case types.KindStoryAudio:
			fam.audio = a
		}
	}
	return fam, nil
}

func (s *artifactService) ListStoryVariants(dbc dbctx.Context, userID string, scopeType types.ScopeType, scopeID, locale string) ([]StoryVariant, error) {
	const op = "artifacts.ListStoryVariants"
	locale = s.locale(locale)
	rs, err := s.resolve(dbc, op, userID, scopeType, scopeID)
	if err != nil {
		return nil, err
	}
	rows, err := s.artifacts.ListByScope(dbc, rs.scopeType, rs.scopeID, locale, storyKinds)
	if err != nil {
		return nil, err
	}

	// Rows arrive newest first; variants keep that order.
	index := map[string]int{}
	out := []StoryVariant{}
	for _, a := range rows {
		id := a.Variant()
		if id == "" {
			id = keys.NoVariant
		}
		key := id + "|" + strconv.Itoa(a.ContentVersion)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, StoryVariant{VariantID: id, Version: a.ContentVersion})
		}
		switch a.Kind {
		case types.KindStoryPlan:
			out[i].Plan = a
		case types.KindStorySlides:
			out[i].Slides = a
		case types.KindStoryAudio:
			out[i].Audio = a
		}
	}
	return out, nil
}
