package services

import "strings"

const DefaultLocale = "en-US"

// NormalizeLocale maps Spanish and Hindi variants onto the locales content is translated
// into and defaults an empty locale to en-US. Anything else passes through trimmed.
func NormalizeLocale(locale string) string {
	cleaned := strings.TrimSpace(locale)
	if cleaned == "" {
		return DefaultLocale
	}
	lower := strings.ToLower(cleaned)
	switch {
	case strings.HasPrefix(lower, "es"):
		return "es-ES"
	case strings.HasPrefix(lower, "hi"):
		return "hi-IN"
	}
	return cleaned
}
