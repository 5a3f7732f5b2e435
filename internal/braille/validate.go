package braille

import (
	"strings"
	"unicode/utf8"
)

const (
	WarnMissingDelimiters = "Nemeth delimiters missing on a math segment."
	WarnShortMath         = "Math segment braille output is unexpectedly short."

	minMathCells = 6
)

type Validation struct {
	OK       bool     `json:"ok"`
	Warnings []string `json:"warnings"`
}

// ValidateSegments flags math segments lacking the Nemeth delimiters or with
// implausibly short output. Warnings are advisory.
func ValidateSegments(segments []Segment) Validation {
	warnings := []string{}
	for _, seg := range segments {
		if seg.Type != SegmentMath {
			continue
		}
		if !strings.HasPrefix(seg.Braille, NemethOpen) || !strings.HasSuffix(seg.Braille, NemethClose) {
			warnings = append(warnings, WarnMissingDelimiters)
		}
		if utf8.RuneCountInString(seg.Braille) < minMathCells {
			warnings = append(warnings, WarnShortMath)
		}
	}
	return Validation{OK: len(warnings) == 0, Warnings: warnings}
}

// InBrailleBlock reports whether s carries at least one Unicode braille pattern (U+2800-U+28FF).
func InBrailleBlock(s string) bool {
	for _, r := range s {
		if r >= 0x2800 && r <= 0x28FF {
			return true
		}
	}
	return false
}
