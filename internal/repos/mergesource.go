package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sonahq/sona-backend/internal/logger"
	"github.com/sonahq/sona-backend/internal/types"
)

type MergeSourceRepo interface {
	Create(ctx context.Context, tx *gorm.DB, sources []*types.MergedCloneSource) error
	ListByMerged(ctx context.Context, tx *gorm.DB, mergedCloneID uuid.UUID) ([]*types.MergedCloneSource, error)
}

type mergeSourceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMergeSourceRepo(db *gorm.DB, baseLog *logger.Logger) MergeSourceRepo {
	return &mergeSourceRepo{db: db, log: baseLog.With("repo", "MergeSourceRepo")}
}

func (r *mergeSourceRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *mergeSourceRepo) Create(ctx context.Context, tx *gorm.DB, sources []*types.MergedCloneSource) error {
	if len(sources) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Create(&sources).Error
}

func (r *mergeSourceRepo) ListByMerged(ctx context.Context, tx *gorm.DB, mergedCloneID uuid.UUID) ([]*types.MergedCloneSource, error) {
	var results []*types.MergedCloneSource
	err := r.conn(tx).WithContext(ctx).
		Where("merged_clone_id = ?", mergedCloneID).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
