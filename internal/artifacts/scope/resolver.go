package scope

import (
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/learnhub-backend/internal/artifacts/keys"
	types "github.com/yungbote/learnhub-backend/internal/domain"
	"github.com/yungbote/learnhub-backend/internal/platform/apierr"
	"github.com/yungbote/learnhub-backend/internal/platform/dbctx"
	"github.com/yungbote/learnhub-backend/internal/platform/logger"
)

type VersionStore interface {
	MaxVersion(dbc dbctx.Context, contentKeys []string) (int, error)
}

type CurriculumLookup interface {
	GetClass(dbc dbctx.Context, id uuid.UUID) (*types.Class, error)
	GetCurriculum(dbc dbctx.Context, id uuid.UUID) (*types.Curriculum, error)
	ResolveChapterID(dbc dbctx.Context, classID uuid.UUID, subjectSlug, chapterSlug string) (*uuid.UUID, error)
}

// Resolution is the ordered content-unit keys behind a scope plus the chapter id
// access is checked against (nil for MICROSECTION).
type Resolution struct {
	ContentKeys  []string
	AccessAnchor *uuid.UUID
}

type Resolver struct {
	log        *logger.Logger
	versions   VersionStore
	curriculum CurriculumLookup
	docs       DocumentSource
}

func NewResolver(baseLog *logger.Logger, versions VersionStore, curriculum CurriculumLookup, docs DocumentSource) *Resolver {
	return &Resolver{
		log:        baseLog.With("component", "ScopeResolver"),
		versions:   versions,
		curriculum: curriculum,
		docs:       docs,
	}
}

func (r *Resolver) Resolve(dbc dbctx.Context, scopeType types.ScopeType, scopeID string) (*Resolution, error) {
	const op = "scope.Resolve"
	scopeID = strings.TrimSpace(scopeID)
	if scopeID == "" {
		return nil, apierr.InvalidArgument(op, "scope_id_required")
	}

	switch scopeType {
	case types.ScopeMicrosection:
		return &Resolution{ContentKeys: []string{scopeID}}, nil

	case types.ScopeLesson:
		parsed, ok := keys.ParseLessonScopeID(scopeID)
		if !ok {
			return nil, apierr.InvalidArgument(op, "invalid_lesson_scope_id")
		}
		tree, err := r.loadTree(dbc, parsed.ClassID, parsed.SubjectSlug, parsed.ChapterSlug)
		if err != nil {
			return nil, err
		}
		sectionIdx := -1
		for i, s := range tree.chapter.Sections {
			if s.Slug == parsed.SectionSlug {
				sectionIdx = i
				break
			}
		}
		if sectionIdx < 0 {
			return nil, apierr.NotFound(op, "section_not_found")
		}
		section := tree.chapter.Sections[sectionIdx]
		out := &Resolution{ContentKeys: make([]string, 0, len(section.Microsections))}
		for u := range section.Microsections {
			out.ContentKeys = append(out.ContentKeys, tree.key(sectionIdx+1, u+1))
		}
		out.AccessAnchor, err = r.curriculum.ResolveChapterID(dbc, tree.classID, parsed.SubjectSlug, parsed.ChapterSlug)
		if err != nil {
			return nil, err
		}
		return out, nil

	case types.ScopeChapter:
		parsed, ok := keys.ParseChapterScopeID(scopeID)
		if !ok {
			return nil, apierr.InvalidArgument(op, "invalid_chapter_scope_id")
		}
		tree, err := r.loadTree(dbc, parsed.ClassID, parsed.SubjectSlug, parsed.ChapterSlug)
		if err != nil {
			return nil, err
		}
		out := &Resolution{}
		for s, section := range tree.chapter.Sections {
			for u := range section.Microsections {
				out.ContentKeys = append(out.ContentKeys, tree.key(s+1, u+1))
			}
		}
		out.AccessAnchor, err = r.curriculum.ResolveChapterID(dbc, tree.classID, parsed.SubjectSlug, parsed.ChapterSlug)
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, apierr.InvalidArgument(op, "invalid_scope_type")
}

// ResolveVersion is the max stored version across the keys; missing keys are ignored
// and 0 means no content exists at all.
func (r *Resolver) ResolveVersion(dbc dbctx.Context, contentKeys []string) (int, error) {
	if len(contentKeys) == 0 {
		return 0, nil
	}
	return r.versions.MaxVersion(dbc, contentKeys)
}

// ChapterAnchor maps a LESSON/CHAPTER scope id straight to its chapter row id.
func (r *Resolver) ChapterAnchor(dbc dbctx.Context, scopeType types.ScopeType, scopeID string) (*uuid.UUID, error) {
	var classID, subject, chapter string
	switch scopeType {
	case types.ScopeLesson:
		p, ok := keys.ParseLessonScopeID(scopeID)
		if !ok {
			return nil, nil
		}
		classID, subject, chapter = p.ClassID, p.SubjectSlug, p.ChapterSlug
	case types.ScopeChapter:
		p, ok := keys.ParseChapterScopeID(scopeID)
		if !ok {
			return nil, nil
		}
		classID, subject, chapter = p.ClassID, p.SubjectSlug, p.ChapterSlug
	default:
		return nil, nil
	}
	cid, err := uuid.Parse(classID)
	if err != nil {
		return nil, nil
	}
	return r.curriculum.ResolveChapterID(dbc, cid, subject, chapter)
}

type chapterTree struct {
	classID      uuid.UUID
	position     keys.UnitPosition
	chapter      types.StructuredChapter
	chapterIndex int
}

func (t *chapterTree) key(section, unit int) string {
	p := t.position
	p.ChapterIndex = t.chapterIndex + 1
	p.SectionIndex = section
	p.UnitIndex = unit
	return keys.ContentKey(p)
}

func (r *Resolver) loadTree(dbc dbctx.Context, classIDRaw, subjectSlug, chapterSlug string) (*chapterTree, error) {
	const op = "scope.Resolve"
	classID, err := uuid.Parse(classIDRaw)
	if err != nil {
		return nil, apierr.NotFound(op, "class_not_found")
	}
	class, err := r.curriculum.GetClass(dbc, classID)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, apierr.NotFound(op, "class_not_found")
	}
	grade, ok := keys.ParseGrade(class.Slug)
	if !ok {
		return nil, apierr.NotFound(op, "grade_parse_failed")
	}
	curr, err := r.curriculum.GetCurriculum(dbc, class.CurriculumID)
	if err != nil {
		return nil, err
	}
	if curr == nil {
		return nil, apierr.NotFound(op, "curriculum_not_found")
	}

	chapters, err := r.docs.LoadChapters(dbc.Ctx, curr.Slug, class.Slug, subjectSlug)
	if err != nil {
		return nil, err
	}
	if chapters == nil {
		r.log.Debug("Structured content missing", "curriculum", curr.Slug, "class", class.Slug, "subject", subjectSlug)
		return nil, apierr.NotFound(op, "structured_content_not_found")
	}
	idx := -1
	for i, c := range chapters {
		if c.ChapterID == chapterSlug {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, apierr.NotFound(op, "chapter_not_found")
	}
	return &chapterTree{
		classID: classID,
		position: keys.UnitPosition{
			CurriculumSlug: curr.Slug,
			CurriculumID:   curr.ID.String(),
			Grade:          grade,
			SubjectSlug:    subjectSlug,
		},
		chapter:      chapters[idx],
		chapterIndex: idx,
	}, nil
}
