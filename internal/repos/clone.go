package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sonahq/sona-backend/internal/logger"
	"github.com/sonahq/sona-backend/internal/types"
)

type CloneRepo interface {
	Create(ctx context.Context, tx *gorm.DB, clone *types.VoiceClone) error
	GetByID(ctx context.Context, tx *gorm.DB, cloneID uuid.UUID) (*types.VoiceClone, error)
	GetWithEvidence(ctx context.Context, tx *gorm.DB, cloneID uuid.UUID) (*types.VoiceClone, error)
	List(ctx context.Context, tx *gorm.DB, typeFilter, search string) ([]*types.VoiceClone, int64, error)
	Save(ctx context.Context, tx *gorm.DB, clone *types.VoiceClone) error
	SoftDelete(ctx context.Context, tx *gorm.DB, cloneID uuid.UUID) error
	Restore(ctx context.Context, tx *gorm.DB, cloneID uuid.UUID) error
	GetAnyByID(ctx context.Context, tx *gorm.DB, cloneID uuid.UUID) (*types.VoiceClone, error)
	ListDeletedSince(ctx context.Context, tx *gorm.DB, cutoff time.Time) ([]*types.VoiceClone, error)
	HardDeleteExpired(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int, error)
	HardDelete(ctx context.Context, tx *gorm.DB, cloneID uuid.UUID) error
}

type cloneRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCloneRepo(db *gorm.DB, baseLog *logger.Logger) CloneRepo {
	return &cloneRepo{db: db, log: baseLog.With("repo", "CloneRepo")}
}

func (r *cloneRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *cloneRepo) Create(ctx context.Context, tx *gorm.DB, clone *types.VoiceClone) error {
	return r.conn(tx).WithContext(ctx).Create(clone).Error
}

// GetByID returns the clone, or nil when it does not exist or is
// soft-deleted.
func (r *cloneRepo) GetByID(ctx context.Context, tx *gorm.DB, cloneID uuid.UUID) (*types.VoiceClone, error) {
	var clone types.VoiceClone
	err := r.conn(tx).WithContext(ctx).
		Where("id = ?", cloneID).
		First(&clone).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &clone, nil
}

// GetWithEvidence loads the clone together with its samples and DNA
// versions, the inputs of the confidence score.
func (r *cloneRepo) GetWithEvidence(ctx context.Context, tx *gorm.DB, cloneID uuid.UUID) (*types.VoiceClone, error) {
	var clone types.VoiceClone
	err := r.conn(tx).WithContext(ctx).
		Preload("Samples").
		Preload("DNAVersions").
		Where("id = ?", cloneID).
		First(&clone).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &clone, nil
}

func (r *cloneRepo) List(ctx context.Context, tx *gorm.DB, typeFilter, search string) ([]*types.VoiceClone, int64, error) {
	query := r.conn(tx).WithContext(ctx).Model(&types.VoiceClone{})
	if typeFilter != "" {
		query = query.Where("type = ?", typeFilter)
	}
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var results []*types.VoiceClone
	if err := query.
		Preload("Samples").
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *cloneRepo) Save(ctx context.Context, tx *gorm.DB, clone *types.VoiceClone) error {
	return r.conn(tx).WithContext(ctx).Save(clone).Error
}

func (r *cloneRepo) SoftDelete(ctx context.Context, tx *gorm.DB, cloneID uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).
		Where("id = ?", cloneID).
		Delete(&types.VoiceClone{}).Error
}

func (r *cloneRepo) Restore(ctx context.Context, tx *gorm.DB, cloneID uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).Unscoped().
		Model(&types.VoiceClone{}).
		Where("id = ?", cloneID).
		Update("deleted_at", nil).Error
}

// GetAnyByID looks the clone up regardless of soft-delete state.
func (r *cloneRepo) GetAnyByID(ctx context.Context, tx *gorm.DB, cloneID uuid.UUID) (*types.VoiceClone, error) {
	var clone types.VoiceClone
	err := r.conn(tx).WithContext(ctx).Unscoped().
		Where("id = ?", cloneID).
		First(&clone).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &clone, nil
}

func (r *cloneRepo) ListDeletedSince(ctx context.Context, tx *gorm.DB, cutoff time.Time) ([]*types.VoiceClone, error) {
	var results []*types.VoiceClone
	err := r.conn(tx).WithContext(ctx).Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at > ?", cutoff).
		Order("deleted_at DESC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *cloneRepo) HardDeleteExpired(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int, error) {
	var expired []*types.VoiceClone
	conn := r.conn(tx).WithContext(ctx)
	if err := conn.Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at <= ?", cutoff).
		Find(&expired).Error; err != nil {
		return 0, err
	}
	for _, clone := range expired {
		if err := r.HardDelete(ctx, tx, clone.ID); err != nil {
			return 0, err
		}
	}
	return len(expired), nil
}

// HardDelete removes the clone and everything it owns. Lineage rows where
// the clone is a merge *source* are deliberately left in place.
func (r *cloneRepo) HardDelete(ctx context.Context, tx *gorm.DB, cloneID uuid.UUID) error {
	conn := r.conn(tx).WithContext(ctx)

	if err := conn.Where("clone_id = ?", cloneID).Delete(&types.WritingSample{}).Error; err != nil {
		return err
	}
	if err := conn.Where("clone_id = ?", cloneID).Delete(&types.VoiceDNAVersion{}).Error; err != nil {
		return err
	}
	var contentIDs []uuid.UUID
	if err := conn.Model(&types.Content{}).
		Where("clone_id = ?", cloneID).
		Pluck("id", &contentIDs).Error; err != nil {
		return err
	}
	if len(contentIDs) > 0 {
		if err := conn.Where("content_id IN ?", contentIDs).Delete(&types.ContentVersion{}).Error; err != nil {
			return err
		}
		if err := conn.Where("clone_id = ?", cloneID).Delete(&types.Content{}).Error; err != nil {
			return err
		}
	}
	if err := conn.Where("merged_clone_id = ?", cloneID).Delete(&types.MergedCloneSource{}).Error; err != nil {
		return err
	}
	return conn.Unscoped().Where("id = ?", cloneID).Delete(&types.VoiceClone{}).Error
}
