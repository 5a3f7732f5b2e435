package content

import (
	"database/sql"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/learnhub-backend/internal/domain"
	"github.com/yungbote/learnhub-backend/internal/platform/dbctx"
	"github.com/yungbote/learnhub-backend/internal/platform/logger"
)

type ContentVersionRepo interface {
	Create(dbc dbctx.Context, rows []*types.ContentVersion) ([]*types.ContentVersion, error)
	// ListByKeys returns every stored version for the keys, highest version first.
	ListByKeys(dbc dbctx.Context, contentKeys []string) ([]*types.ContentVersion, error)
	MaxVersion(dbc dbctx.Context, contentKeys []string) (int, error)
	GetTranslation(dbc dbctx.Context, contentKey string, version int, locale string) (*types.ContentTranslation, error)
	CreateTranslation(dbc dbctx.Context, row *types.ContentTranslation) error
}

type contentVersionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentVersionRepo(db *gorm.DB, baseLog *logger.Logger) ContentVersionRepo {
	return &contentVersionRepo{
		db:  db,
		log: baseLog.With("repo", "ContentVersionRepo"),
	}
}

func (r *contentVersionRepo) Create(dbc dbctx.Context, rows []*types.ContentVersion) ([]*types.ContentVersion, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.ContentVersion{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *contentVersionRepo) ListByKeys(dbc dbctx.Context, contentKeys []string) ([]*types.ContentVersion, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ContentVersion
	if len(contentKeys) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("content_key IN ?", contentKeys).
		Order("version DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contentVersionRepo) MaxVersion(dbc dbctx.Context, contentKeys []string) (int, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(contentKeys) == 0 {
		return 0, nil
	}
	var max sql.NullInt64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.ContentVersion{}).
		Where("content_key IN ?", contentKeys).
		Select("MAX(version)").
		Row().Scan(&max); err != nil {
		return 0, err
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64), nil
}

func (r *contentVersionRepo) GetTranslation(dbc dbctx.Context, contentKey string, version int, locale string) (*types.ContentTranslation, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if contentKey == "" || locale == "" {
		return nil, nil
	}
	var out types.ContentTranslation
	err := transaction.WithContext(dbc.Ctx).
		Where("content_key = ? AND version = ? AND locale = ?", contentKey, version, locale).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTranslation keeps the first translation stored for (key, version, locale).
func (r *contentVersionRepo) CreateTranslation(dbc dbctx.Context, row *types.ContentTranslation) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "content_key"}, {Name: "version"}, {Name: "locale"}},
			DoNothing: true,
		}).
		Create(row).Error
}
