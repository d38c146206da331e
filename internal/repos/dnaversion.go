package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sonahq/sona-backend/internal/logger"
	"github.com/sonahq/sona-backend/internal/types"
)

type DNAVersionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, version *types.VoiceDNAVersion) error
	NextVersionNumber(ctx context.Context, tx *gorm.DB, cloneID uuid.UUID) (int, error)
	Latest(ctx context.Context, tx *gorm.DB, cloneID uuid.UUID) (*types.VoiceDNAVersion, error)
	GetByNumber(ctx context.Context, tx *gorm.DB, cloneID uuid.UUID, versionNumber int) (*types.VoiceDNAVersion, error)
	ListByClone(ctx context.Context, tx *gorm.DB, cloneID uuid.UUID) ([]*types.VoiceDNAVersion, error)
	PruneToLimit(ctx context.Context, tx *gorm.DB, cloneID uuid.UUID, limit int) (int, error)
}

type dnaVersionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDNAVersionRepo(db *gorm.DB, baseLog *logger.Logger) DNAVersionRepo {
	return &dnaVersionRepo{db: db, log: baseLog.With("repo", "DNAVersionRepo")}
}

func (r *dnaVersionRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *dnaVersionRepo) Create(ctx context.Context, tx *gorm.DB, version *types.VoiceDNAVersion) error {
	return r.conn(tx).WithContext(ctx).Create(version).Error
}

// NextVersionNumber is max(existing)+1, or 1 when the clone has no
// versions yet. Callers serialize per clone; see DNAService.
func (r *dnaVersionRepo) NextVersionNumber(ctx context.Context, tx *gorm.DB, cloneID uuid.UUID) (int, error) {
	var current int
	err := r.conn(tx).WithContext(ctx).
		Model(&types.VoiceDNAVersion{}).
		Where("clone_id = ?", cloneID).
		Select("COALESCE(MAX(version_number), 0)").
		Scan(&current).Error
	if err != nil {
		return 0, err
	}
	return current + 1, nil
}

func (r *dnaVersionRepo) Latest(ctx context.Context, tx *gorm.DB, cloneID uuid.UUID) (*types.VoiceDNAVersion, error) {
	var version types.VoiceDNAVersion
	err := r.conn(tx).WithContext(ctx).
		Where("clone_id = ?", cloneID).
		Order("version_number DESC").
		First(&version).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &version, nil
}

func (r *dnaVersionRepo) GetByNumber(ctx context.Context, tx *gorm.DB, cloneID uuid.UUID, versionNumber int) (*types.VoiceDNAVersion, error) {
	var version types.VoiceDNAVersion
	err := r.conn(tx).WithContext(ctx).
		Where("clone_id = ? AND version_number = ?", cloneID, versionNumber).
		First(&version).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &version, nil
}

func (r *dnaVersionRepo) ListByClone(ctx context.Context, tx *gorm.DB, cloneID uuid.UUID) ([]*types.VoiceDNAVersion, error) {
	var results []*types.VoiceDNAVersion
	err := r.conn(tx).WithContext(ctx).
		Where("clone_id = ?", cloneID).
		Order("version_number DESC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// PruneToLimit deletes everything older than the `limit` most recent
// versions by version number, keeping a contiguous window. Returns the
// number of versions deleted.
func (r *dnaVersionRepo) PruneToLimit(ctx context.Context, tx *gorm.DB, cloneID uuid.UUID, limit int) (int, error) {
	versions, err := r.ListByClone(ctx, tx, cloneID)
	if err != nil {
		return 0, err
	}
	if len(versions) <= limit {
		return 0, nil
	}

	// versions are ordered newest first; the cutoff is the oldest survivor.
	cutoff := versions[limit-1].VersionNumber
	result := r.conn(tx).WithContext(ctx).
		Where("clone_id = ? AND version_number < ?", cloneID, cutoff).
		Delete(&types.VoiceDNAVersion{})
	if result.Error != nil {
		return 0, result.Error
	}
	r.log.Debug("Pruned DNA versions", "clone_id", cloneID.String(), "deleted", result.RowsAffected)
	return int(result.RowsAffected), nil
}
