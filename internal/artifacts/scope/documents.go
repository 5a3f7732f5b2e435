package scope

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	types "github.com/yungbote/learnhub-backend/internal/domain"
)

// DocumentSource loads the ordered chapter/section/unit tree for one class+subject.
// A missing document is (nil, nil).
type DocumentSource interface {
	LoadChapters(ctx context.Context, curriculumSlug, classSlug, subjectSlug string) ([]types.StructuredChapter, error)
}

// FileDocumentSource reads {curriculum}_{class}_{subject}.json|yaml|yml from Dir,
// where {class} is the class slug with its first '-' removed ("class-5" -> "class5").
type FileDocumentSource struct {
	Dir string
}

func NewFileDocumentSource(dir string) *FileDocumentSource {
	return &FileDocumentSource{Dir: dir}
}

func DocumentName(curriculumSlug, classSlug, subjectSlug string) string {
	return fmt.Sprintf("%s_%s_%s", curriculumSlug, strings.Replace(classSlug, "-", "", 1), subjectSlug)
}

func (s *FileDocumentSource) LoadChapters(ctx context.Context, curriculumSlug, classSlug, subjectSlug string) ([]types.StructuredChapter, error) {
	if s == nil || strings.TrimSpace(s.Dir) == "" {
		return nil, nil
	}
	base := DocumentName(curriculumSlug, classSlug, subjectSlug)
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(s.Dir, base+ext)
		raw, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		var chapters []types.StructuredChapter
		if ext == ".json" {
			err = json.Unmarshal(raw, &chapters)
		} else {
			err = yaml.Unmarshal(raw, &chapters)
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return chapters, nil
	}
	return nil, nil
}

// StaticDocumentSource serves documents from memory, keyed by DocumentName.
type StaticDocumentSource map[string][]types.StructuredChapter

func (s StaticDocumentSource) LoadChapters(_ context.Context, curriculumSlug, classSlug, subjectSlug string) ([]types.StructuredChapter, error) {
	return s[DocumentName(curriculumSlug, classSlug, subjectSlug)], nil
}
