package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sonahq/sona-backend/internal/logger"
	"github.com/sonahq/sona-backend/internal/types"
)

type MethodologyRepo interface {
	GetBySection(ctx context.Context, tx *gorm.DB, sectionKey string) (*types.MethodologySettings, error)
	Create(ctx context.Context, tx *gorm.DB, settings *types.MethodologySettings) error
	Save(ctx context.Context, tx *gorm.DB, settings *types.MethodologySettings) error
	CreateVersion(ctx context.Context, tx *gorm.DB, version *types.MethodologyVersion) error
	NextVersionNumber(ctx context.Context, tx *gorm.DB, settingsID uuid.UUID) (int, error)
	ListVersions(ctx context.Context, tx *gorm.DB, settingsID uuid.UUID, limit int) ([]*types.MethodologyVersion, error)
	GetVersionByNumber(ctx context.Context, tx *gorm.DB, settingsID uuid.UUID, versionNumber int) (*types.MethodologyVersion, error)
	PruneToLimit(ctx context.Context, tx *gorm.DB, settingsID uuid.UUID, limit int) (int, error)
}

type methodologyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMethodologyRepo(db *gorm.DB, baseLog *logger.Logger) MethodologyRepo {
	return &methodologyRepo{db: db, log: baseLog.With("repo", "MethodologyRepo")}
}

func (r *methodologyRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *methodologyRepo) GetBySection(ctx context.Context, tx *gorm.DB, sectionKey string) (*types.MethodologySettings, error) {
	var settings types.MethodologySettings
	err := r.conn(tx).WithContext(ctx).
		Where("section_key = ?", sectionKey).
		First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *methodologyRepo) Create(ctx context.Context, tx *gorm.DB, settings *types.MethodologySettings) error {
	return r.conn(tx).WithContext(ctx).Create(settings).Error
}

func (r *methodologyRepo) Save(ctx context.Context, tx *gorm.DB, settings *types.MethodologySettings) error {
	return r.conn(tx).WithContext(ctx).Save(settings).Error
}

func (r *methodologyRepo) CreateVersion(ctx context.Context, tx *gorm.DB, version *types.MethodologyVersion) error {
	return r.conn(tx).WithContext(ctx).Create(version).Error
}

func (r *methodologyRepo) NextVersionNumber(ctx context.Context, tx *gorm.DB, settingsID uuid.UUID) (int, error) {
	var current int
	err := r.conn(tx).WithContext(ctx).
		Model(&types.MethodologyVersion{}).
		Where("settings_id = ?", settingsID).
		Select("COALESCE(MAX(version_number), 0)").
		Scan(&current).Error
	if err != nil {
		return 0, err
	}
	return current + 1, nil
}

func (r *methodologyRepo) ListVersions(ctx context.Context, tx *gorm.DB, settingsID uuid.UUID, limit int) ([]*types.MethodologyVersion, error) {
	query := r.conn(tx).WithContext(ctx).
		Where("settings_id = ?", settingsID).
		Order("version_number DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var results []*types.MethodologyVersion
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *methodologyRepo) GetVersionByNumber(ctx context.Context, tx *gorm.DB, settingsID uuid.UUID, versionNumber int) (*types.MethodologyVersion, error) {
	var version types.MethodologyVersion
	err := r.conn(tx).WithContext(ctx).
		Where("settings_id = ? AND version_number = ?", settingsID, versionNumber).
		First(&version).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &version, nil
}

func (r *methodologyRepo) PruneToLimit(ctx context.Context, tx *gorm.DB, settingsID uuid.UUID, limit int) (int, error) {
	versions, err := r.ListVersions(ctx, tx, settingsID, 0)
	if err != nil {
		return 0, err
	}
	if len(versions) <= limit {
		return 0, nil
	}
	cutoff := versions[limit-1].VersionNumber
	result := r.conn(tx).WithContext(ctx).
		Where("settings_id = ? AND version_number < ?", settingsID, cutoff).
		Delete(&types.MethodologyVersion{})
	if result.Error != nil {
		return 0, result.Error
	}
	return int(result.RowsAffected), nil
}
