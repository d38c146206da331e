package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/sonahq/sona-backend/internal/apierr"
	"github.com/sonahq/sona-backend/internal/logger"
	"github.com/sonahq/sona-backend/internal/repos"
	"github.com/sonahq/sona-backend/internal/types"
)

// MethodologyService manages the versioned instruction texts injected into
// analysis prompts.
type MethodologyService interface {
	GetSection(ctx context.Context, sectionKey string) (*types.MethodologySettings, error)
	UpdateSection(ctx context.Context, sectionKey, content string) (*types.MethodologySettings, error)
	ListVersions(ctx context.Context, sectionKey string, limit int) ([]*types.MethodologyVersion, error)
	Revert(ctx context.Context, sectionKey string, targetVersionNumber int) (*types.MethodologySettings, error)
}

type methodologyService struct {
	db   *gorm.DB
	log  *logger.Logger
	repo repos.MethodologyRepo
}

func NewMethodologyService(db *gorm.DB, log *logger.Logger, repo repos.MethodologyRepo) MethodologyService {
	return &methodologyService{
		db:   db,
		log:  log.With("service", "MethodologyService"),
		repo: repo,
	}
}

func validSection(key string) bool {
	switch key {
	case types.MethodologySectionVoiceCloning, types.MethodologySectionVoiceCloningInstructions:
		return true
	}
	return false
}

func (s *methodologyService) GetSection(ctx context.Context, sectionKey string) (*types.MethodologySettings, error) {
	if !validSection(sectionKey) {
		return nil, apierr.NewValidation(fmt.Sprintf("Unknown methodology section '%s'", sectionKey))
	}
	settings, err := s.repo.GetBySection(ctx, nil, sectionKey)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	if settings == nil {
		// A section that was never written reads as empty.
		return &types.MethodologySettings{SectionKey: sectionKey}, nil
	}
	return settings, nil
}

// UpdateSection stores new instruction text and snapshots it as a version.
// Writing identical text is a no-op.
func (s *methodologyService) UpdateSection(ctx context.Context, sectionKey, content string) (*types.MethodologySettings, error) {
	if !validSection(sectionKey) {
		return nil, apierr.NewValidation(fmt.Sprintf("Unknown methodology section '%s'", sectionKey))
	}

	settings, err := s.repo.GetBySection(ctx, nil, sectionKey)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	if settings != nil && settings.CurrentContent == content {
		return settings, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if settings == nil {
			settings = &types.MethodologySettings{
				SectionKey:     sectionKey,
				CurrentContent: content,
			}
			if err := s.repo.Create(ctx, tx, settings); err != nil {
				return err
			}
		} else {
			settings.CurrentContent = content
			if err := s.repo.Save(ctx, tx, settings); err != nil {
				return err
			}
		}
		return s.snapshot(ctx, tx, settings, types.TriggerManualEdit)
	})
	if err != nil {
		return nil, apierr.NewInternal(err)
	}

	s.log.Info("Methodology section updated", "section", sectionKey)
	return settings, nil
}

func (s *methodologyService) ListVersions(ctx context.Context, sectionKey string, limit int) ([]*types.MethodologyVersion, error) {
	if !validSection(sectionKey) {
		return nil, apierr.NewValidation(fmt.Sprintf("Unknown methodology section '%s'", sectionKey))
	}
	settings, err := s.repo.GetBySection(ctx, nil, sectionKey)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	if settings == nil {
		return nil, nil
	}
	versions, err := s.repo.ListVersions(ctx, nil, settings.ID, limit)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	return versions, nil
}

// Revert copies an older snapshot's text back as the current content and
// records the copy as a new version.
func (s *methodologyService) Revert(ctx context.Context, sectionKey string, targetVersionNumber int) (*types.MethodologySettings, error) {
	if !validSection(sectionKey) {
		return nil, apierr.NewValidation(fmt.Sprintf("Unknown methodology section '%s'", sectionKey))
	}
	settings, err := s.repo.GetBySection(ctx, nil, sectionKey)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	if settings == nil {
		return nil, apierr.NewValidation(fmt.Sprintf("Methodology section '%s' has no versions", sectionKey))
	}
	target, err := s.repo.GetVersionByNumber(ctx, nil, settings.ID, targetVersionNumber)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	if target == nil {
		return nil, apierr.NewValidation(fmt.Sprintf("Methodology version %d not found", targetVersionNumber))
	}

	settings.CurrentContent = target.Content
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Save(ctx, tx, settings); err != nil {
			return err
		}
		return s.snapshot(ctx, tx, settings, types.TriggerRevert)
	})
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	return settings, nil
}

func (s *methodologyService) snapshot(ctx context.Context, tx *gorm.DB, settings *types.MethodologySettings, trigger string) error {
	next, err := s.repo.NextVersionNumber(ctx, tx, settings.ID)
	if err != nil {
		return err
	}
	if err := s.repo.CreateVersion(ctx, tx, &types.MethodologyVersion{
		SettingsID:    settings.ID,
		VersionNumber: next,
		Content:       settings.CurrentContent,
		Trigger:       trigger,
	}); err != nil {
		return err
	}
	_, err = s.repo.PruneToLimit(ctx, tx, settings.ID, types.MaxMethodologyVersions)
	return err
}
