package braille

import (
	"strings"
	"unicode/utf8"
)

var reverseGeneral = func() map[string]rune {
	m := make(map[string]rune, len(generalTable))
	for k, v := range generalTable {
		if k == '\n' {
			continue
		}
		m[v] = k
	}
	return m
}()

// BackTranslate reverses the general table (longest cell sequence first). Unknown
// braille cells become '?', anything outside the braille block is kept.
func BackTranslate(s string) string {
	var b strings.Builder
	for len(s) > 0 {
		if s[0] == '\n' {
			b.WriteByte('\n')
			s = s[1:]
			continue
		}
		if r, n, ok := matchCells(s, 2); ok {
			b.WriteRune(r)
			s = s[n:]
			continue
		}
		r, size := utf8.DecodeRuneInString(s)
		if r >= 0x2800 && r <= 0x28FF {
			b.WriteByte('?')
		} else {
			b.WriteRune(r)
		}
		s = s[size:]
	}
	return b.String()
}

func matchCells(s string, maxCells int) (rune, int, bool) {
	for cells := maxCells; cells >= 1; cells-- {
		n, i := 0, 0
		for ; i < cells && n < len(s); i++ {
			_, size := utf8.DecodeRuneInString(s[n:])
			n += size
		}
		if i < cells {
			continue
		}
		if r, ok := reverseGeneral[s[:n]]; ok {
			return r, n, true
		}
	}
	return 0, 0, false
}
