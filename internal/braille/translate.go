package braille

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

type Dialect string

const (
	DialectGeneral Dialect = "general"
	DialectNemeth  Dialect = "nemeth"
)

func Translate(d Dialect, s string) string {
	if d == DialectNemeth {
		return Nemeth(s)
	}
	return General(s)
}

// General is a per-character lookup over the lowercase text.
func General(s string) string {
	var b strings.Builder
	for _, r := range s {
		b.WriteString(lookup(generalTable, r))
	}
	return b.String()
}

var greekNameRe = func() *regexp.Regexp {
	names := make([]string, 0, len(greekNames))
	for n := range greekNames {
		names = append(names, n)
	}
	sort.Strings(names)
	return regexp.MustCompile(`(?i)\b(` + strings.Join(names, "|") + `)\b`)
}()

// functionNames is sorted longest first so the scan takes the longest match.
var functionNames = func() []string {
	names := make([]string, 0, len(nemethFunctions))
	for n := range nemethFunctions {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return names
}()

// ReplaceGreekNames turns spelled-out Greek letters (whole words, any case) into symbols.
func ReplaceGreekNames(s string) string {
	return greekNameRe.ReplaceAllStringFunc(s, func(m string) string {
		return greekNames[strings.ToLower(m)]
	})
}

// Nemeth transliterates a math expression.
func Nemeth(s string) string {
	runes := []rune(ReplaceGreekNames(s))
	var b strings.Builder
	for i := 0; i < len(runes); {
		if name, ok := functionAt(runes, i); ok {
			b.WriteString(nemethFunctions[name])
			i += len(name)
			continue
		}
		b.WriteString(lookup(nemethTable, runes[i]))
		i++
	}
	return b.String()
}

func functionAt(runes []rune, i int) (string, bool) {
	for _, name := range functionNames {
		end := i + len(name)
		if end > len(runes) {
			continue
		}
		if strings.EqualFold(string(runes[i:end]), name) {
			return name, true
		}
	}
	return "", false
}

// lookup prefers an exact entry, then the capital indicator plus the lowercase
// entry, then the blank cell.
func lookup(table map[rune]string, r rune) string {
	if v, ok := table[r]; ok {
		return v
	}
	if unicode.IsUpper(r) {
		if v, ok := table[unicode.ToLower(r)]; ok {
			return CapitalIndicator + v
		}
	}
	return Cell
}
