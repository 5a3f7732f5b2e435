package keys

import (
	"regexp"
	"strconv"
	"strings"

	types "github.com/yungbote/learnhub-backend/internal/domain"
)

var unsafeKeyPart = regexp.MustCompile(`[^a-z0-9]+`)

// SafeKeyPart lowercases and collapses everything but [a-z0-9] into '_' (max 120 chars).
func SafeKeyPart(v string) string {
	s := unsafeKeyPart.ReplaceAllString(strings.ToLower(v), "_")
	s = strings.Trim(s, "_")
	if len(s) > 120 {
		s = s[:120]
	}
	if s == "" {
		return "x"
	}
	return s
}

// BlobPath builds derived/<scope-slug>/v<version>/<locale>/<segments...>.
func BlobPath(a *types.DerivedArtifact, segments ...string) string {
	parts := []string{
		"derived",
		SafeKeyPart(string(a.ScopeType) + "_" + a.ScopeID),
		"v" + strconv.Itoa(a.ContentVersion),
		a.Locale,
	}
	parts = append(parts, segments...)
	return strings.Join(parts, "/")
}

// SlotName renders a zero-padded per-scene file stem, e.g. slide_03.
func SlotName(prefix string, idx int) string {
	s := strconv.Itoa(idx)
	if len(s) < 2 {
		s = "0" + s
	}
	return prefix + "_" + s
}
