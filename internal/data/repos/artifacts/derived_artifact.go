package artifacts

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/learnhub-backend/internal/artifacts/keys"
	types "github.com/yungbote/learnhub-backend/internal/domain"
	"github.com/yungbote/learnhub-backend/internal/platform/dbctx"
	"github.com/yungbote/learnhub-backend/internal/platform/logger"
)

// UpsertSpec describes the artifact a caller wants to exist.
type UpsertSpec struct {
	ScopeType types.ScopeType
	ScopeID   string
	Version   int
	Locale    string
	Kind      types.ArtifactKind
	VariantID string
	Metadata  datatypes.JSON
	CreatedBy string
}

// ReadyOutput is attached by MarkReady. Blob fields are optional.
type ReadyOutput struct {
	Metadata   datatypes.JSON
	BlobBucket string
	BlobKey    string
	BlobSize   int64
	MimeType   string
}

type DerivedArtifactRepo interface {
	Upsert(dbc dbctx.Context, spec UpsertSpec) (*types.DerivedArtifact, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.DerivedArtifact, error)
	GetByCacheKey(dbc dbctx.Context, cacheKey string) (*types.DerivedArtifact, error)
	MarkReady(dbc dbctx.Context, id uuid.UUID, out ReadyOutput) error
	MarkFailed(dbc dbctx.Context, id uuid.UUID, errPayload datatypes.JSON) error
	ListByScope(dbc dbctx.Context, scopeType types.ScopeType, scopeID, locale string, kinds []types.ArtifactKind) ([]*types.DerivedArtifact, error)
	LatestVariant(dbc dbctx.Context, scopeType types.ScopeType, scopeID string, version int, locale string, kind types.ArtifactKind) (*types.DerivedArtifact, error)
}

type derivedArtifactRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDerivedArtifactRepo(db *gorm.DB, baseLog *logger.Logger) DerivedArtifactRepo {
	return &derivedArtifactRepo{
		db:  db,
		log: baseLog.With("repo", "DerivedArtifactRepo"),
	}
}

func (r *derivedArtifactRepo) Upsert(dbc dbctx.Context, spec UpsertSpec) (*types.DerivedArtifact, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	cacheKey, err := keys.Make(keys.Input{
		ScopeType: spec.ScopeType,
		ScopeID:   spec.ScopeID,
		Version:   spec.Version,
		Locale:    spec.Locale,
		Kind:      spec.Kind,
		VariantID: spec.VariantID,
	})
	if err != nil {
		return nil, err
	}

	existing, err := r.GetByCacheKey(dbc, cacheKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Status == types.ArtifactReady {
			return existing, nil
		}
		if err := transaction.WithContext(dbc.Ctx).
			Model(&types.DerivedArtifact{}).
			Where("id = ? AND status <> ?", existing.ID, types.ArtifactReady).
			Updates(map[string]interface{}{
				"status":     types.ArtifactPending,
				"error":      nil,
				"updated_at": time.Now(),
			}).Error; err != nil {
			return nil, err
		}
		return r.GetByCacheKey(dbc, cacheKey)
	}

	metadata := spec.Metadata
	if len(metadata) == 0 {
		metadata = datatypes.JSON([]byte("{}"))
	}
	row := &types.DerivedArtifact{
		CacheKey:       cacheKey,
		ScopeType:      spec.ScopeType,
		ScopeID:        spec.ScopeID,
		ContentVersion: spec.Version,
		Locale:         spec.Locale,
		Kind:           spec.Kind,
		Status:         types.ArtifactPending,
		Metadata:       metadata,
		CreatedBy:      spec.CreatedBy,
	}
	if v := spec.VariantID; v != "" && v != keys.NoVariant {
		row.VariantID = &v
	}
	res := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "cache_key"}}, DoNothing: true}).
		Create(row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected > 0 {
		return row, nil
	}

	// Lost the insert race; the winner's row is authoritative.
	winner, err := r.GetByCacheKey(dbc, cacheKey)
	if err != nil {
		return nil, err
	}
	if winner == nil {
		return nil, fmt.Errorf("artifact upsert failed for %s", cacheKey)
	}
	r.log.Debug("Artifact insert lost race", "cache_key", cacheKey, "artifact_id", winner.ID)
	return winner, nil
}

func (r *derivedArtifactRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.DerivedArtifact, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.DerivedArtifact
	err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *derivedArtifactRepo) GetByCacheKey(dbc dbctx.Context, cacheKey string) (*types.DerivedArtifact, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if cacheKey == "" {
		return nil, nil
	}
	var out types.DerivedArtifact
	err := transaction.WithContext(dbc.Ctx).Where("cache_key = ?", cacheKey).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *derivedArtifactRepo) MarkReady(dbc dbctx.Context, id uuid.UUID, out ReadyOutput) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	updates := map[string]interface{}{
		"status":     types.ArtifactReady,
		"error":      nil,
		"updated_at": time.Now(),
	}
	if len(out.Metadata) > 0 {
		updates["metadata"] = out.Metadata
	}
	if out.BlobKey != "" {
		updates["blob_bucket"] = out.BlobBucket
		updates["blob_key"] = out.BlobKey
		updates["blob_size"] = out.BlobSize
		updates["mime_type"] = out.MimeType
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.DerivedArtifact{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// MarkFailed records the error payload and drops any blob pointer. Metadata is kept.
func (r *derivedArtifactRepo) MarkFailed(dbc dbctx.Context, id uuid.UUID, errPayload datatypes.JSON) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	if len(errPayload) == 0 {
		errPayload = datatypes.JSON([]byte(`{"message":"unknown"}`))
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.DerivedArtifact{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      types.ArtifactFailed,
			"error":       errPayload,
			"blob_bucket": "",
			"blob_key":    "",
			"blob_size":   0,
			"mime_type":   "",
			"updated_at":  time.Now(),
		}).Error
}

func (r *derivedArtifactRepo) ListByScope(dbc dbctx.Context, scopeType types.ScopeType, scopeID, locale string, kinds []types.ArtifactKind) ([]*types.DerivedArtifact, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.DerivedArtifact
	if scopeID == "" {
		return out, nil
	}
	q := transaction.WithContext(dbc.Ctx).
		Where("scope_type = ? AND scope_id = ?", scopeType, scopeID)
	if locale != "" {
		q = q.Where("locale = ?", locale)
	}
	if len(kinds) > 0 {
		q = q.Where("artifact_kind IN ?", kinds)
	}
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// LatestVariant returns the newest non-failed variant row of one kind, or nil.
func (r *derivedArtifactRepo) LatestVariant(dbc dbctx.Context, scopeType types.ScopeType, scopeID string, version int, locale string, kind types.ArtifactKind) (*types.DerivedArtifact, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.DerivedArtifact
	err := transaction.WithContext(dbc.Ctx).
		Where("scope_type = ? AND scope_id = ? AND content_version = ? AND locale = ? AND artifact_kind = ?",
			scopeType, scopeID, version, locale, kind).
		Where("variant_id IS NOT NULL AND status IN ?", []types.ArtifactStatus{types.ArtifactReady, types.ArtifactPending}).
		Order("created_at DESC").
		Limit(1).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	if out.ID == uuid.Nil {
		return nil, nil
	}
	return &out, nil
}
