package braille

import (
	"regexp"
	"sort"
	"strings"
)

type SegmentType string

const (
	SegmentText SegmentType = "text"
	SegmentMath SegmentType = "math"
)

type Segment struct {
	Type     SegmentType `json:"type"`
	Original string      `json:"original"`
	Braille  string      `json:"braille"`
}

type Result struct {
	Segments    []Segment `json:"segments"`
	FullBraille string    `json:"fullBraille"`
	EnglishOnly string    `json:"englishOnly"`
	MathOnly    []string  `json:"mathOnly"`
}

var mathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$\$([^$]+)\$\$`),
	regexp.MustCompile(`\$([^$]+)\$`),
	regexp.MustCompile(`\\\[([^\]]+)\\\]`),
	regexp.MustCompile(`\\\(([^)]+)\\\)`),
}

type rawSegment struct {
	typ      SegmentType
	content  string
	original string
}

type mathMatch struct {
	start, end int
	content    string
	original   string
}

// split breaks a document into text and math runs. Every pattern's matches are
// collected and ordered by start offset; overlapping matches from different
// patterns are both kept, in start order.
func split(doc string) []rawSegment {
	var matches []mathMatch
	for _, re := range mathPatterns {
		for _, loc := range re.FindAllStringSubmatchIndex(doc, -1) {
			matches = append(matches, mathMatch{
				start:    loc[0],
				end:      loc[1],
				content:  strings.TrimSpace(doc[loc[2]:loc[3]]),
				original: doc[loc[0]:loc[1]],
			})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].start < matches[j].start })

	var out []rawSegment
	cursor := 0
	for _, m := range matches {
		if m.start > cursor {
			if text := strings.TrimSpace(doc[cursor:m.start]); text != "" {
				out = append(out, rawSegment{typ: SegmentText, content: text, original: text})
			}
		}
		out = append(out, rawSegment{typ: SegmentMath, content: m.content, original: m.original})
		cursor = m.end
	}
	if cursor < len(doc) {
		if text := strings.TrimSpace(doc[cursor:]); text != "" {
			out = append(out, rawSegment{typ: SegmentText, content: text, original: text})
		}
	}
	if len(out) == 0 {
		text := strings.TrimSpace(doc)
		out = append(out, rawSegment{typ: SegmentText, content: text, original: text})
	}
	return out
}

// ConvertMixed transliterates text runs with the general table and math runs with
// Nemeth (after CleanLatex), wraps math in the Nemeth delimiters and joins all runs
// with a blank cell.
func ConvertMixed(doc string) Result {
	raw := split(doc)
	res := Result{Segments: make([]Segment, 0, len(raw)), MathOnly: []string{}}
	parts := make([]string, 0, len(raw))
	var english []string
	for _, seg := range raw {
		switch seg.typ {
		case SegmentMath:
			cleaned := CleanLatex(seg.content)
			out := NemethOpen + Nemeth(cleaned) + NemethClose
			res.Segments = append(res.Segments, Segment{Type: SegmentMath, Original: seg.original, Braille: out})
			res.MathOnly = append(res.MathOnly, seg.original+" = "+cleaned)
			parts = append(parts, out)
		default:
			out := General(seg.content)
			res.Segments = append(res.Segments, Segment{Type: SegmentText, Original: seg.original, Braille: out})
			english = append(english, seg.content)
			parts = append(parts, out)
		}
	}
	res.FullBraille = strings.Join(parts, Cell)
	res.EnglishOnly = strings.TrimSpace(strings.Join(english, " "))
	return res
}
