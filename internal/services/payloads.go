package services

import (
	"gorm.io/datatypes"

	contentrepo "github.com/yungbote/learnhub-backend/internal/data/repos/content"
	types "github.com/yungbote/learnhub-backend/internal/domain"
	"github.com/yungbote/learnhub-backend/internal/platform/dbctx"
	"github.com/yungbote/learnhub-backend/internal/platform/logger"
)

// SelectedPayload is the payload chosen for one content unit.
type SelectedPayload struct {
	ContentKey  string
	Version     int
	Payload     datatypes.JSON
	PayloadHash string
	Translated  bool
}

type PayloadSelector interface {
	Best(dbc dbctx.Context, contentKeys []string, version int, locale string) ([]SelectedPayload, error)
}

type payloadSelector struct {
	log      *logger.Logger
	versions contentrepo.ContentVersionRepo
}

func NewPayloadSelector(baseLog *logger.Logger, versions contentrepo.ContentVersionRepo) PayloadSelector {
	return &payloadSelector{
		log:      baseLog.With("service", "PayloadSelector"),
		versions: versions,
	}
}

// Best picks, per content key and in key order, the highest version at or below the
// target, else the highest overall. When locale differs from the version's canonical
// locale and a translation of that exact version exists, its payload replaces the
// original. Keys with no versions are skipped.
func (s *payloadSelector) Best(dbc dbctx.Context, contentKeys []string, version int, locale string) ([]SelectedPayload, error) {
	if len(contentKeys) == 0 {
		return []SelectedPayload{}, nil
	}
	rows, err := s.versions.ListByKeys(dbc, contentKeys)
	if err != nil {
		return nil, err
	}
	byKey := map[string][]*types.ContentVersion{}
	for _, row := range rows {
		byKey[row.ContentKey] = append(byKey[row.ContentKey], row)
	}

	out := make([]SelectedPayload, 0, len(contentKeys))
	for _, key := range contentKeys {
		candidates := byKey[key]
		if len(candidates) == 0 {
			continue
		}
		preferred := candidates[0]
		for _, c := range candidates {
			if c.Version <= version {
				preferred = c
				break
			}
		}
		sel := SelectedPayload{
			ContentKey:  key,
			Version:     preferred.Version,
			Payload:     preferred.Payload,
			PayloadHash: preferred.PayloadHash,
		}
		if locale != "" && locale != preferred.CanonicalLocale {
			tr, err := s.versions.GetTranslation(dbc, key, preferred.Version, locale)
			if err != nil {
				return nil, err
			}
			if tr != nil && len(tr.Payload) > 0 {
				sel.Payload = tr.Payload
				sel.Translated = true
			}
		}
		out = append(out, sel)
	}
	return out, nil
}

// Payloads returns the raw payload bytes in selection order.
func Payloads(sel []SelectedPayload) [][]byte {
	out := make([][]byte, 0, len(sel))
	for _, s := range sel {
		out = append(out, []byte(s.Payload))
	}
	return out
}
