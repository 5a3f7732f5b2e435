package braille

import (
	"strings"
	"unicode/utf8"
)

// LineWidth is the standard BRF line length in cells.
const LineWidth = 40

// FormatBRF reflows braille text into lines of at most width cells, breaking at
// blank cells where possible and hard-splitting longer words.
func FormatBRF(text string, width int) string {
	if width <= 0 {
		width = LineWidth
	}
	var out []string
	for _, para := range strings.Split(text, "\n") {
		out = append(out, wrap(strings.Trim(para, Cell+" "), width)...)
	}
	return strings.Join(out, "\n") + "\n"
}

func wrap(para string, width int) []string {
	if para == "" {
		return []string{""}
	}
	var (
		lines []string
		line  []rune
	)
	flush := func() {
		lines = append(lines, string(line))
		line = line[:0]
	}
	for _, word := range strings.FieldsFunc(para, func(r rune) bool { return r == '⠀' || r == ' ' }) {
		w := []rune(word)
		for len(w) > width {
			if len(line) > 0 {
				flush()
			}
			lines = append(lines, string(w[:width]))
			w = w[width:]
		}
		need := len(w)
		if len(line) > 0 {
			need++
		}
		if len(line)+need > width {
			flush()
		}
		if len(line) > 0 {
			line = append(line, '⠀')
		}
		line = append(line, w...)
	}
	if len(line) > 0 || len(lines) == 0 {
		flush()
	}
	return lines
}

// LineCells counts cells per line, handy for asserting the width contract.
func LineCells(line string) int { return utf8.RuneCountInString(line) }
