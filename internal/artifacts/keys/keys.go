package keys

import (
	"strconv"
	"strings"

	types "github.com/yungbote/learnhub-backend/internal/domain"
	"github.com/yungbote/learnhub-backend/internal/platform/apierr"
)

const (
	Namespace     = "lh"
	SchemaVersion = "v3"
	// NoVariant stands in for an absent variant id.
	NoVariant = "0"
)

// Input is the tuple a cache key is derived from.
type Input struct {
	ScopeType types.ScopeType
	ScopeID   string
	Version   int
	Locale    string
	Kind      types.ArtifactKind
	VariantID string
}

// Make builds the canonical cache key:
//
//	lh:v3:{kind}:{scopeType}:{scopeId}:v{version}:{locale}:{variant|0}
//
// Locale and variant may not contain ':' so the scope id is the only field that can,
// which keeps the mapping injective when read from both ends.
func Make(in Input) (string, error) {
	scopeID := strings.TrimSpace(in.ScopeID)
	locale := strings.TrimSpace(in.Locale)
	if scopeID == "" {
		return "", apierr.InvalidArgument("keys.Make", "scope_id_required")
	}
	if locale == "" {
		return "", apierr.InvalidArgument("keys.Make", "locale_required")
	}
	if strings.ContainsAny(locale, ": \t\n") {
		return "", apierr.InvalidArgument("keys.Make", "locale_invalid")
	}
	if in.Version < 0 {
		return "", apierr.InvalidArgument("keys.Make", "version_negative")
	}
	if !in.Kind.Valid() {
		return "", apierr.InvalidArgument("keys.Make", "artifact_kind_invalid")
	}
	if !in.ScopeType.Valid() {
		return "", apierr.InvalidArgument("keys.Make", "scope_type_invalid")
	}
	variant := strings.TrimSpace(in.VariantID)
	if strings.Contains(variant, ":") {
		return "", apierr.InvalidArgument("keys.Make", "variant_invalid")
	}
	if variant == "" {
		variant = NoVariant
	}

	return strings.Join([]string{
		Namespace,
		SchemaVersion,
		string(in.Kind),
		string(in.ScopeType),
		scopeID,
		"v" + strconv.Itoa(in.Version),
		locale,
		variant,
	}, ":"), nil
}

// MakeFloat accepts a version that arrived as a float (JSON numbers) and rejects
// NaN, infinities and fractional values before delegating to Make.
func MakeFloat(in Input, version float64) (string, error) {
	if version != version || version > 1<<53 || version < -(1<<53) {
		return "", apierr.InvalidArgument("keys.Make", "version_not_finite")
	}
	if version != float64(int64(version)) {
		return "", apierr.InvalidArgument("keys.Make", "version_not_integer")
	}
	in.Version = int(version)
	return Make(in)
}

// Sibling returns the input for another artifact kind of the same family member
// (same scope, version, locale and variant).
func Sibling(a *types.DerivedArtifact, kind types.ArtifactKind) Input {
	return Input{
		ScopeType: a.ScopeType,
		ScopeID:   a.ScopeID,
		Version:   a.ContentVersion,
		Locale:    a.Locale,
		Kind:      kind,
		VariantID: a.Variant(),
	}
}

// IdempotencyKey is the default queue de-duplication token for a job targeting cacheKey.
func IdempotencyKey(jobType, cacheKey string) string {
	return SHA256Text(jobType + "|" + cacheKey)
}
