package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sonahq/sona-backend/internal/apierr"
	"github.com/sonahq/sona-backend/internal/logger"
	"github.com/sonahq/sona-backend/internal/repos"
	"github.com/sonahq/sona-backend/internal/types"
)

// CloneUpdate carries the mutable clone fields. Nil pointers leave the
// field untouched.
type CloneUpdate struct {
	Name        *string
	Description *string
	Tags        []string
}

type CloneService interface {
	Create(ctx context.Context, name, description string, tags []string) (*types.VoiceClone, error)
	Get(ctx context.Context, cloneID uuid.UUID) (*types.VoiceClone, error)
	List(ctx context.Context, typeFilter, search string) ([]*types.VoiceClone, int64, error)
	Update(ctx context.Context, cloneID uuid.UUID, update CloneUpdate) (*types.VoiceClone, error)
	SoftDelete(ctx context.Context, cloneID uuid.UUID) error
	Restore(ctx context.Context, cloneID uuid.UUID) (*types.VoiceClone, error)
	ListDeleted(ctx context.Context) ([]*types.VoiceClone, error)
	PurgeExpired(ctx context.Context) (int, error)
	Confidence(ctx context.Context, cloneID uuid.UUID) (ConfidenceBreakdown, error)
}

type cloneService struct {
	db            *gorm.DB
	log           *logger.Logger
	cloneRepo     repos.CloneRepo
	retentionDays int
}

// retentionDays is how long soft-deleted clones stay restorable before
// PurgeExpired removes them.
func NewCloneService(db *gorm.DB, log *logger.Logger, cloneRepo repos.CloneRepo, retentionDays int) CloneService {
	return &cloneService{
		db:            db,
		log:           log.With("service", "CloneService"),
		cloneRepo:     cloneRepo,
		retentionDays: retentionDays,
	}
}

func (s *cloneService) Create(ctx context.Context, name, description string, tags []string) (*types.VoiceClone, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apierr.NewValidation("Clone name must not be empty")
	}
	clone := &types.VoiceClone{
		Name:        name,
		Description: description,
		Tags:        tags,
		Type:        types.CloneTypeOriginal,
	}
	if err := s.cloneRepo.Create(ctx, nil, clone); err != nil {
		return nil, apierr.NewInternal(err)
	}
	s.log.Info("Clone created", "clone_id", clone.ID.String(), "name", name)
	return clone, nil
}

// Get loads the clone with its samples and DNA versions.
func (s *cloneService) Get(ctx context.Context, cloneID uuid.UUID) (*types.VoiceClone, error) {
	clone, err := s.cloneRepo.GetWithEvidence(ctx, nil, cloneID)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	if clone == nil {
		return nil, apierr.NewCloneNotFound(cloneID.String())
	}
	return clone, nil
}

func (s *cloneService) List(ctx context.Context, typeFilter, search string) ([]*types.VoiceClone, int64, error) {
	clones, total, err := s.cloneRepo.List(ctx, nil, typeFilter, search)
	if err != nil {
		return nil, 0, apierr.NewInternal(err)
	}
	return clones, total, nil
}

func (s *cloneService) Update(ctx context.Context, cloneID uuid.UUID, update CloneUpdate) (*types.VoiceClone, error) {
	clone, err := s.cloneRepo.GetByID(ctx, nil, cloneID)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	if clone == nil {
		return nil, apierr.NewCloneNotFound(cloneID.String())
	}
	if update.Name != nil {
		if strings.TrimSpace(*update.Name) == "" {
			return nil, apierr.NewValidation("Clone name must not be empty")
		}
		clone.Name = *update.Name
	}
	if update.Description != nil {
		clone.Description = *update.Description
	}
	if update.Tags != nil {
		clone.Tags = update.Tags
	}
	if err := s.cloneRepo.Save(ctx, nil, clone); err != nil {
		return nil, apierr.NewInternal(err)
	}
	return clone, nil
}

// SoftDelete hides the clone. It stays restorable for the retention window
// before PurgeExpired removes it for good.
func (s *cloneService) SoftDelete(ctx context.Context, cloneID uuid.UUID) error {
	clone, err := s.cloneRepo.GetByID(ctx, nil, cloneID)
	if err != nil {
		return apierr.NewInternal(err)
	}
	if clone == nil {
		return apierr.NewCloneNotFound(cloneID.String())
	}
	if err := s.cloneRepo.SoftDelete(ctx, nil, cloneID); err != nil {
		return apierr.NewInternal(err)
	}
	s.log.Info("Clone soft-deleted", "clone_id", cloneID.String())
	return nil
}

func (s *cloneService) Restore(ctx context.Context, cloneID uuid.UUID) (*types.VoiceClone, error) {
	clone, err := s.cloneRepo.GetAnyByID(ctx, nil, cloneID)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	if clone == nil {
		return nil, apierr.NewCloneNotFound(cloneID.String())
	}
	if !clone.DeletedAt.Valid {
		return nil, apierr.NewValidation("Clone is not deleted")
	}
	if err := s.cloneRepo.Restore(ctx, nil, cloneID); err != nil {
		return nil, apierr.NewInternal(err)
	}
	restored, err := s.cloneRepo.GetByID(ctx, nil, cloneID)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	s.log.Info("Clone restored", "clone_id", cloneID.String())
	return restored, nil
}

// ListDeleted returns clones still inside the restore window.
func (s *cloneService) ListDeleted(ctx context.Context) ([]*types.VoiceClone, error) {
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	clones, err := s.cloneRepo.ListDeletedSince(ctx, nil, cutoff)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	return clones, nil
}

// PurgeExpired hard-deletes clones whose restore window has lapsed,
// cascading to their samples, versions and content.
func (s *cloneService) PurgeExpired(ctx context.Context) (int, error) {
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	var purged int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		n, err := s.cloneRepo.HardDeleteExpired(ctx, tx, cutoff)
		purged = n
		return err
	})
	if err != nil {
		return 0, apierr.NewInternal(err)
	}
	if purged > 0 {
		s.log.Info("Purged expired clones", "count", purged)
	}
	return purged, nil
}

func (s *cloneService) Confidence(ctx context.Context, cloneID uuid.UUID) (ConfidenceBreakdown, error) {
	clone, err := s.cloneRepo.GetWithEvidence(ctx, nil, cloneID)
	if err != nil {
		return ConfidenceBreakdown{}, apierr.NewInternal(err)
	}
	if clone == nil {
		return ConfidenceBreakdown{}, apierr.NewCloneNotFound(cloneID.String())
	}
	return CalculateConfidence(clone), nil
}
