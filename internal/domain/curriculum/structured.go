package curriculum

// StructuredChapter is one chapter of a structured subject document. Documents are
// ordered lists of chapters; positions (1-based) feed content-unit keys.
type StructuredChapter struct {
	ChapterID string              `json:"chapterId" yaml:"chapterId"`
	Title     string              `json:"title" yaml:"title"`
	Sections  []StructuredSection `json:"sections" yaml:"sections"`
}

type StructuredSection struct {
	Slug          string                   `json:"slug" yaml:"slug"`
	Title         string                   `json:"title" yaml:"title"`
	Microsections []StructuredMicrosection `json:"microsections" yaml:"microsections"`
}

type StructuredMicrosection struct {
	Title string `json:"title" yaml:"title"`
	Type  string `json:"type,omitempty" yaml:"type,omitempty"`
}
