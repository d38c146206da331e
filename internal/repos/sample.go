package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sonahq/sona-backend/internal/logger"
	"github.com/sonahq/sona-backend/internal/types"
)

type SampleRepo interface {
	Create(ctx context.Context, tx *gorm.DB, sample *types.WritingSample) error
	GetByID(ctx context.Context, tx *gorm.DB, sampleID uuid.UUID) (*types.WritingSample, error)
	ListByClone(ctx context.Context, tx *gorm.DB, cloneID uuid.UUID) ([]*types.WritingSample, int64, error)
	Delete(ctx context.Context, tx *gorm.DB, sampleID uuid.UUID) error
}

type sampleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSampleRepo(db *gorm.DB, baseLog *logger.Logger) SampleRepo {
	return &sampleRepo{db: db, log: baseLog.With("repo", "SampleRepo")}
}

func (r *sampleRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *sampleRepo) Create(ctx context.Context, tx *gorm.DB, sample *types.WritingSample) error {
	return r.conn(tx).WithContext(ctx).Create(sample).Error
}

func (r *sampleRepo) GetByID(ctx context.Context, tx *gorm.DB, sampleID uuid.UUID) (*types.WritingSample, error) {
	var sample types.WritingSample
	err := r.conn(tx).WithContext(ctx).
		Where("id = ?", sampleID).
		First(&sample).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sample, nil
}

func (r *sampleRepo) ListByClone(ctx context.Context, tx *gorm.DB, cloneID uuid.UUID) ([]*types.WritingSample, int64, error) {
	conn := r.conn(tx).WithContext(ctx)

	var total int64
	if err := conn.Model(&types.WritingSample{}).
		Where("clone_id = ?", cloneID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var results []*types.WritingSample
	if err := conn.
		Where("clone_id = ?", cloneID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *sampleRepo) Delete(ctx context.Context, tx *gorm.DB, sampleID uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).
		Where("id = ?", sampleID).
		Delete(&types.WritingSample{}).Error
}
