package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/learnhub-backend/internal/artifacts/scope"
	artifactrepo "github.com/yungbote/learnhub-backend/internal/data/repos/artifacts"
	types "github.com/yungbote/learnhub-backend/internal/domain"
	"github.com/yungbote/learnhub-backend/internal/platform/apierr"
	"github.com/yungbote/learnhub-backend/internal/platform/ctxutil"
	"github.com/yungbote/learnhub-backend/internal/platform/dbctx"
	"github.com/yungbote/learnhub-backend/internal/platform/gcp"
	"github.com/yungbote/learnhub-backend/internal/platform/logger"
)

const DefaultSignedURLTTL = 5 * time.Minute

// AccessChecker reports whether a user may read content under a chapter.
type AccessChecker interface {
	HasChapterAccess(ctx context.Context, userID string, chapterID uuid.UUID) (bool, error)
}

type ScopeResolver interface {
	Resolve(dbc dbctx.Context, scopeType types.ScopeType, scopeID string) (*scope.Resolution, error)
	ResolveVersion(dbc dbctx.Context, contentKeys []string) (int, error)
	ChapterAnchor(dbc dbctx.Context, scopeType types.ScopeType, scopeID string) (*uuid.UUID, error)
}

type MicrosectionLookup interface {
	MicrosectionChapterID(dbc dbctx.Context, contentKey string) (*uuid.UUID, error)
}

type ArtifactRequest struct {
	UserID    string
	ScopeType types.ScopeType
	ScopeID   string
	Locale    string
	Kind      types.ArtifactKind
}

// ArtifactTicket is what a requester polls with.
type ArtifactTicket struct {
	Status     types.ArtifactStatus   `json:"status"`
	ArtifactID uuid.UUID              `json:"artifactId"`
	CacheKey   string                 `json:"cacheKey"`
	Artifact   *types.DerivedArtifact `json:"artifact"`
}

// ArtifactView is an artifact with its metadata decoded and blob references signed.
type ArtifactView struct {
	Artifact    *types.DerivedArtifact `json:"artifact"`
	Metadata    map[string]any         `json:"metadata"`
	DownloadURL *string                `json:"downloadUrl"`
}

type ArtifactService interface {
	RequestArtifact(dbc dbctx.Context, req ArtifactRequest) (*ArtifactTicket, error)
	GetArtifact(dbc dbctx.Context, userID string, id uuid.UUID) (*ArtifactView, error)
	CompileStory(dbc dbctx.Context, req StoryRequest) (*StoryTicket, error)
	ListStoryVariants(dbc dbctx.Context, userID string, scopeType types.ScopeType, scopeID, locale string) ([]StoryVariant, error)
}

type ArtifactServiceConfig struct {
	SignedURLTTL  time.Duration
	DefaultLocale string
}

type artifactService struct {
	log          *logger.Logger
	artifacts    artifactrepo.DerivedArtifactRepo
	resolver     ScopeResolver
	microsection MicrosectionLookup
	jobs         JobEnqueuer
	blobs        gcp.BlobStore
	access       AccessChecker
	cfg          ArtifactServiceConfig
}

// NewArtifactService wires the request side of the pipeline. blobs and access may be
// nil: without blobs no URLs are signed, without access every user is allowed.
func NewArtifactService(
	baseLog *logger.Logger,
	artifacts artifactrepo.DerivedArtifactRepo,
	resolver ScopeResolver,
	microsection MicrosectionLookup,
	jobs JobEnqueuer,
	blobs gcp.BlobStore,
	access AccessChecker,
	cfg ArtifactServiceConfig,
) ArtifactService {
	if cfg.SignedURLTTL <= 0 {
		cfg.SignedURLTTL = DefaultSignedURLTTL
	}
	if strings.TrimSpace(cfg.DefaultLocale) == "" {
		cfg.DefaultLocale = DefaultLocale
	}
	return &artifactService{
		log:          baseLog.With("service", "ArtifactService"),
		artifacts:    artifacts,
		resolver:     resolver,
		microsection: microsection,
		jobs:         jobs,
		blobs:        blobs,
		access:       access,
		cfg:          cfg,
	}
}

// resolvedScope is a scope that exists, has content and passed the access check.
type resolvedScope struct {
	scopeType   types.ScopeType
	scopeID     string
	contentKeys []string
	version     int
}

func (s *artifactService) resolve(dbc dbctx.Context, op, userID string, scopeType types.ScopeType, scopeID string) (*resolvedScope, error) {
	scopeID = strings.TrimSpace(scopeID)
	if !scopeType.Valid() || scopeID == "" {
		return nil, apierr.InvalidArgument(op, "scope_required")
	}
	res, err := s.resolver.Resolve(dbc, scopeType, scopeID)
	if err != nil {
		return nil, err
	}
	version, err := s.resolver.ResolveVersion(dbc, res.ContentKeys)
	if err != nil {
		return nil, err
	}
	if version <= 0 {
		return nil, apierr.NotFound(op, "content_not_found")
	}

	anchor := res.AccessAnchor
	if anchor == nil && scopeType == types.ScopeMicrosection {
		if anchor, err = s.microsection.MicrosectionChapterID(dbc, scopeID); err != nil {
			return nil, err
		}
	}
	if anchor != nil {
		if err := s.checkChapter(dbc.Ctx, op, userID, *anchor); err != nil {
			return nil, err
		}
	}
	return &resolvedScope{scopeType: scopeType, scopeID: scopeID, contentKeys: res.ContentKeys, version: version}, nil
}

func (s *artifactService) checkChapter(ctx context.Context, op, userID string, chapterID uuid.UUID) error {
	if s.access == nil {
		return nil
	}
	ok, err := s.access.HasChapterAccess(ctx, userID, chapterID)
	if err != nil {
		return err
	}
	if !ok {
		return apierr.Forbidden(op, "forbidden")
	}
	return nil
}

func (s *artifactService) RequestArtifact(dbc dbctx.Context, req ArtifactRequest) (*ArtifactTicket, error) {
	const op = "artifacts.RequestArtifact"
	if !req.Kind.Valid() {
		return nil, apierr.InvalidArgument(op, "artifact_kind_invalid")
	}
	locale := s.locale(req.Locale)
	rs, err := s.resolve(dbc, op, req.UserID, req.ScopeType, req.ScopeID)
	if err != nil {
		return nil, err
	}

	if isStoryKind(req.Kind) {
		fam, err := s.ensureStoryFamily(dbc, rs, locale, "", req.UserID, storySeedMeta("", ""))
		if err != nil {
			return nil, err
		}
		// Later stages only run once the plan is READY, so the earliest pending
		// stage is queued and the chain carries the rest.
		if err := s.enqueueIfPending(dbc, fam.firstPending()); err != nil {
			return nil, err
		}
		return ticket(fam.byKind(req.Kind)), nil
	}

	a, err := s.artifacts.Upsert(dbc, artifactrepo.UpsertSpec{
		ScopeType: rs.scopeType,
		ScopeID:   rs.scopeID,
		Version:   rs.version,
		Locale:    locale,
		Kind:      req.Kind,
		Metadata:  mustJSON(map[string]any{"contentKeys": rs.contentKeys}),
		CreatedBy: req.UserID,
	})
	if err != nil {
		return nil, err
	}
	if err := s.enqueueIfPending(dbc, a); err != nil {
		return nil, err
	}
	s.log.Info("Artifact requested", append([]any{
		"artifact_id", a.ID.String(),
		"cache_key", a.CacheKey,
		"status", a.Status,
	}, ctxutil.LogFields(dbc.Ctx)...)...)
	return ticket(a), nil
}

func (s *artifactService) enqueueIfPending(dbc dbctx.Context, a *types.DerivedArtifact) error {
	if a == nil || a.IsReady() {
		return nil
	}
	_, err := s.jobs.EnqueueFor(dbc, a)
	return err
}

func (s *artifactService) GetArtifact(dbc dbctx.Context, userID string, id uuid.UUID) (*ArtifactView, error) {
	const op = "artifacts.GetArtifact"
	if id == uuid.Nil {
		return nil, apierr.InvalidArgument(op, "artifact_id_required")
	}
	a, err := s.artifacts.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apierr.NotFound(op, "not_found")
	}
	if err := s.authorizeRead(dbc, op, userID, a); err != nil {
		return nil, err
	}

	view := &ArtifactView{Artifact: a, Metadata: decodeMeta(a)}
	if !a.IsReady() || s.blobs == nil {
		return view, nil
	}
	if a.BlobKey != "" {
		if url, err := s.blobs.SignedURL(dbc.Ctx, a.BlobKey, s.cfg.SignedURLTTL); err == nil {
			view.DownloadURL = &url
		} else {
			s.log.Warn("signing artifact blob failed", "artifact_id", a.ID.String(), "error", err)
		}
	}
	if slides, ok := view.Metadata["slides"].([]any); ok {
		view.Metadata["slides"] = s.signSlides(dbc.Ctx, slides)
	}
	return view, nil
}

// authorizeRead lets the creator through and otherwise checks the chapter behind the scope.
func (s *artifactService) authorizeRead(dbc dbctx.Context, op, userID string, a *types.DerivedArtifact) error {
	if s.access == nil {
		return nil
	}
	if a.CreatedBy != "" && a.CreatedBy == userID {
		return nil
	}
	switch a.ScopeType {
	case types.ScopeMicrosection:
		chapterID, err := s.microsection.MicrosectionChapterID(dbc, a.ScopeID)
		if err != nil {
			return err
		}
		if chapterID == nil {
			return nil
		}
		return s.checkChapter(dbc.Ctx, op, userID, *chapterID)
	default:
		chapterID, err := s.resolver.ChapterAnchor(dbc, a.ScopeType, a.ScopeID)
		if err != nil {
			return err
		}
		if chapterID == nil {
			return apierr.Forbidden(op, "forbidden")
		}
		return s.checkChapter(dbc.Ctx, op, userID, *chapterID)
	}
}

func (s *artifactService) signSlides(ctx context.Context, slides []any) []any {
	out := make([]any, 0, len(slides))
	for _, item := range slides {
		slide, ok := item.(map[string]any)
		if !ok {
			out = append(out, item)
			continue
		}
		for keyField, urlField := range map[string]string{"imageKey": "imageUrl", "audioKey": "audioUrl"} {
			key, _ := slide[keyField].(string)
			if key == "" {
				continue
			}
			if url, err := s.blobs.SignedURL(ctx, key, s.cfg.SignedURLTTL); err == nil {
				slide[urlField] = url
			}
		}
		out = append(out, slide)
	}
	return out
}

func (s *artifactService) locale(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return s.cfg.DefaultLocale
	}
	return NormalizeLocale(raw)
}

func ticket(a *types.DerivedArtifact) *ArtifactTicket {
	return &ArtifactTicket{Status: a.Status, ArtifactID: a.ID, CacheKey: a.CacheKey, Artifact: a}
}

func decodeMeta(a *types.DerivedArtifact) map[string]any {
	out := map[string]any{}
	if len(a.Metadata) > 0 {
		_ = json.Unmarshal(a.Metadata, &out)
	}
	if out == nil {
		out = map[string]any{}
	}
	return out
}

func mustJSON(v any) []byte {
	raw, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return raw
}
