package braille

import (
	"regexp"
	"strings"
)

var (
	fracRe    = regexp.MustCompile(`\\frac\{([^}]+)\}\{([^}]+)\}`)
	sqrtRe    = regexp.MustCompile(`\\sqrt\{([^}]+)\}`)
	degreeRe  = regexp.MustCompile(`\^\{?\\circ\}?`)
	commandRe = regexp.MustCompile(`\\([A-Za-z]+)`)
	bracesRe  = regexp.MustCompile(`[{}]`)
)

var latexSymbols = map[string]string{
	"times": "*",
	"cdot":  "*",
	"div":   "/",
}

// CleanLatex rewrites common LaTeX into the plain notation the Nemeth table reads:
// \frac{a}{b} -> (a/b), \sqrt{x} -> sqrt(x), \theta -> theta, then drops braces and backslashes.
func CleanLatex(s string) string {
	s = fracRe.ReplaceAllString(s, "($1/$2)")
	s = sqrtRe.ReplaceAllString(s, "sqrt($1)")
	s = degreeRe.ReplaceAllString(s, " degrees")
	s = commandRe.ReplaceAllStringFunc(s, func(m string) string {
		name := m[1:]
		if sym, ok := latexSymbols[name]; ok {
			return sym
		}
		return name
	})
	s = bracesRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, `\`, "")
	return strings.TrimSpace(s)
}
