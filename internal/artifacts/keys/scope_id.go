package keys

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// LessonScope identifies one section of a structured chapter:
// lh:lesson:{classId}:{subjectSlug}:{chapterSlug}:{sectionSlug}
type LessonScope struct {
	ClassID     string
	SubjectSlug string
	ChapterSlug string
	SectionSlug string
}

// ChapterScope identifies a whole structured chapter:
// lh:chapter:{classId}:{subjectSlug}:{chapterSlug}
type ChapterScope struct {
	ClassID     string
	SubjectSlug string
	ChapterSlug string
}

func (s LessonScope) String() string {
	return strings.Join([]string{Namespace, "lesson", s.ClassID, s.SubjectSlug, s.ChapterSlug, s.SectionSlug}, ":")
}

func (s ChapterScope) String() string {
	return strings.Join([]string{Namespace, "chapter", s.ClassID, s.SubjectSlug, s.ChapterSlug}, ":")
}

func ParseLessonScopeID(scopeID string) (LessonScope, bool) {
	parts := strings.Split(strings.TrimSpace(scopeID), ":")
	if len(parts) < 6 || parts[0] != Namespace || parts[1] != "lesson" {
		return LessonScope{}, false
	}
	out := LessonScope{ClassID: parts[2], SubjectSlug: parts[3], ChapterSlug: parts[4], SectionSlug: parts[5]}
	if out.ClassID == "" || out.SubjectSlug == "" || out.ChapterSlug == "" || out.SectionSlug == "" {
		return LessonScope{}, false
	}
	return out, true
}

func ParseChapterScopeID(scopeID string) (ChapterScope, bool) {
	parts := strings.Split(strings.TrimSpace(scopeID), ":")
	if len(parts) < 5 || parts[0] != Namespace || parts[1] != "chapter" {
		return ChapterScope{}, false
	}
	out := ChapterScope{ClassID: parts[2], SubjectSlug: parts[3], ChapterSlug: parts[4]}
	if out.ClassID == "" || out.SubjectSlug == "" || out.ChapterSlug == "" {
		return ChapterScope{}, false
	}
	return out, true
}

// UnitPosition locates one content unit inside curriculum -> grade -> subject -> chapter -> section.
// Indexes are 1-based.
type UnitPosition struct {
	CurriculumSlug string
	CurriculumID   string
	Grade          int
	SubjectSlug    string
	ChapterIndex   int
	SectionIndex   int
	UnitIndex      int
}

// ContentKey renders the stable content-unit key:
// curr:{curriculumSlug}:{curriculumId}:grade{n}:{subject}:ch{NN}:ms{SS}{UU}
func ContentKey(p UnitPosition) string {
	return fmt.Sprintf("curr:%s:%s:grade%d:%s:ch%02d:ms%02d%02d",
		p.CurriculumSlug, p.CurriculumID, p.Grade, p.SubjectSlug,
		p.ChapterIndex, p.SectionIndex, p.UnitIndex,
	)
}

var gradeRe = regexp.MustCompile(`(\d{1,2})`)

// ParseGrade pulls the grade number out of a class slug such as "class-11".
func ParseGrade(classSlug string) (int, bool) {
	m := gradeRe.FindStringSubmatch(classSlug)
	if m == nil {
		return 0, false
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return v, true
}
