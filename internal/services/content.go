package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/sonahq/sona-backend/internal/apierr"
	"github.com/sonahq/sona-backend/internal/llm"
	"github.com/sonahq/sona-backend/internal/logger"
	"github.com/sonahq/sona-backend/internal/repos"
	"github.com/sonahq/sona-backend/internal/types"
)

// GenerateInput describes one fan-out generation request.
type GenerateInput struct {
	CloneID    uuid.UUID
	Platforms  []string
	InputText  string
	Properties map[string]any
	Topic      string
	Campaign   string
	Provider   string
	Model      string
}

// ContentUpdate carries the mutable fields of a content item. Nil pointers
// leave the field untouched.
type ContentUpdate struct {
	ContentCurrent *string
	Status         *string
	Topic          *string
	Campaign       *string
	Tags           []string
}

type ContentService interface {
	Generate(ctx context.Context, input GenerateInput) ([]*types.Content, error)
	Get(ctx context.Context, contentID uuid.UUID) (*types.Content, error)
	List(ctx context.Context, filter repos.ContentFilter) ([]*types.Content, int64, error)
	Update(ctx context.Context, contentID uuid.UUID, update ContentUpdate) (*types.Content, error)
	Delete(ctx context.Context, contentID uuid.UUID) error
	ListVersions(ctx context.Context, contentID uuid.UUID) ([]*types.ContentVersion, error)
	RestoreVersion(ctx context.Context, contentID uuid.UUID, versionNumber int) (*types.Content, error)
}

type contentService struct {
	db          *gorm.DB
	log         *logger.Logger
	cloneRepo   repos.CloneRepo
	versionRepo repos.DNAVersionRepo
	contentRepo repos.ContentRepo
	registry    *llm.Registry
}

func NewContentService(
	db *gorm.DB,
	log *logger.Logger,
	cloneRepo repos.CloneRepo,
	versionRepo repos.DNAVersionRepo,
	contentRepo repos.ContentRepo,
	registry *llm.Registry,
) ContentService {
	return &contentService{
		db:          db,
		log:         log.With("service", "ContentService"),
		cloneRepo:   cloneRepo,
		versionRepo: versionRepo,
		contentRepo: contentRepo,
		registry:    registry,
	}
}

// Generate drafts content for every requested platform concurrently, then
// persists the results sequentially in the original platform order. Any
// provider failure fails the whole batch before a single row is written.
func (s *contentService) Generate(ctx context.Context, input GenerateInput) ([]*types.Content, error) {
	if len(input.Platforms) == 0 {
		return nil, apierr.NewValidation("At least one target platform is required")
	}
	if strings.TrimSpace(input.InputText) == "" {
		return nil, apierr.NewValidation("Input text must not be empty")
	}

	clone, err := s.cloneRepo.GetByID(ctx, nil, input.CloneID)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	if clone == nil {
		return nil, apierr.NewCloneNotFound(input.CloneID.String())
	}

	latest, err := s.versionRepo.Latest(ctx, nil, input.CloneID)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	if latest == nil {
		return nil, apierr.NewValidation("Analyze Voice DNA before generating content")
	}

	provider, err := s.registry.Get(input.Provider)
	if err != nil {
		return nil, err
	}

	s.log.Info("Generating content",
		"clone_id", input.CloneID.String(),
		"platforms", len(input.Platforms),
		"provider", provider.Name())

	texts := make([]string, len(input.Platforms))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, platform := range input.Platforms {
		i, platform := i, platform
		group.Go(func() error {
			messages := llm.BuildGenerationPrompt(latest.Data, platform, input.InputText, input.Properties)
			text, err := provider.Complete(groupCtx, messages, llm.Options{Model: input.Model})
			if err != nil {
				return fmt.Errorf("generation for %s failed: %w", platform, err)
			}
			texts[i] = text
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	// Sequential writes in request order keep version rows from interleaving.
	results := make([]*types.Content, 0, len(input.Platforms))
	for i, platform := range input.Platforms {
		text := texts[i]
		content := &types.Content{
			CloneID:              input.CloneID,
			Platform:             platform,
			Status:               types.ContentStatusDraft,
			ContentCurrent:       text,
			ContentOriginal:      text,
			InputText:            input.InputText,
			GenerationProperties: input.Properties,
			Topic:                input.Topic,
			Campaign:             input.Campaign,
			WordCount:            countWords(text),
			CharCount:            len(text),
		}
		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := s.contentRepo.Create(ctx, tx, content); err != nil {
				return err
			}
			return s.contentRepo.CreateVersion(ctx, tx, &types.ContentVersion{
				ContentID:     content.ID,
				VersionNumber: 1,
				ContentText:   text,
				Trigger:       types.ContentTriggerGeneration,
				WordCount:     content.WordCount,
			})
		})
		if err != nil {
			return nil, apierr.NewInternal(err)
		}
		results = append(results, content)
	}
	return results, nil
}

func (s *contentService) Get(ctx context.Context, contentID uuid.UUID) (*types.Content, error) {
	content, err := s.contentRepo.GetByID(ctx, nil, contentID)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	if content == nil {
		return nil, apierr.NewContentNotFound(contentID.String())
	}
	return content, nil
}

func (s *contentService) List(ctx context.Context, filter repos.ContentFilter) ([]*types.Content, int64, error) {
	items, total, err := s.contentRepo.List(ctx, nil, filter)
	if err != nil {
		return nil, 0, apierr.NewInternal(err)
	}
	return items, total, nil
}

// Update applies field edits. A text change snapshots a new content version
// with trigger inline_edit.
func (s *contentService) Update(ctx context.Context, contentID uuid.UUID, update ContentUpdate) (*types.Content, error) {
	content, err := s.contentRepo.GetByID(ctx, nil, contentID)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	if content == nil {
		return nil, apierr.NewContentNotFound(contentID.String())
	}

	if update.Status != nil {
		switch *update.Status {
		case types.ContentStatusDraft, types.ContentStatusApproved, types.ContentStatusArchived:
			content.Status = *update.Status
		default:
			return nil, apierr.NewValidation(fmt.Sprintf("Unknown content status '%s'", *update.Status))
		}
	}
	if update.Topic != nil {
		content.Topic = *update.Topic
	}
	if update.Campaign != nil {
		content.Campaign = *update.Campaign
	}
	if update.Tags != nil {
		content.Tags = update.Tags
	}

	textChanged := update.ContentCurrent != nil && *update.ContentCurrent != content.ContentCurrent
	if textChanged {
		content.ContentCurrent = *update.ContentCurrent
		content.WordCount = countWords(content.ContentCurrent)
		content.CharCount = len(content.ContentCurrent)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.contentRepo.Save(ctx, tx, content); err != nil {
			return err
		}
		if !textChanged {
			return nil
		}
		return s.snapshotVersion(ctx, tx, content, types.ContentTriggerInlineEdit)
	})
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	return content, nil
}

func (s *contentService) Delete(ctx context.Context, contentID uuid.UUID) error {
	content, err := s.contentRepo.GetByID(ctx, nil, contentID)
	if err != nil {
		return apierr.NewInternal(err)
	}
	if content == nil {
		return apierr.NewContentNotFound(contentID.String())
	}
	if err := s.contentRepo.Delete(ctx, nil, contentID); err != nil {
		return apierr.NewInternal(err)
	}
	return nil
}

func (s *contentService) ListVersions(ctx context.Context, contentID uuid.UUID) ([]*types.ContentVersion, error) {
	content, err := s.contentRepo.GetByID(ctx, nil, contentID)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	if content == nil {
		return nil, apierr.NewContentNotFound(contentID.String())
	}
	versions, err := s.contentRepo.ListVersions(ctx, nil, contentID)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	return versions, nil
}

// RestoreVersion copies an older snapshot's text back onto the content item
// as a new version with trigger restore. The source version stays put.
func (s *contentService) RestoreVersion(ctx context.Context, contentID uuid.UUID, versionNumber int) (*types.Content, error) {
	content, err := s.contentRepo.GetByID(ctx, nil, contentID)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	if content == nil {
		return nil, apierr.NewContentNotFound(contentID.String())
	}

	target, err := s.contentRepo.GetVersionByNumber(ctx, nil, contentID, versionNumber)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	if target == nil {
		return nil, apierr.NewValidation(fmt.Sprintf("Content version %d not found", versionNumber))
	}

	content.ContentCurrent = target.ContentText
	content.WordCount = target.WordCount
	content.CharCount = len(target.ContentText)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.contentRepo.Save(ctx, tx, content); err != nil {
			return err
		}
		return s.snapshotVersion(ctx, tx, content, types.ContentTriggerRestore)
	})
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	return content, nil
}

func (s *contentService) snapshotVersion(ctx context.Context, tx *gorm.DB, content *types.Content, trigger string) error {
	next, err := s.contentRepo.NextVersionNumber(ctx, tx, content.ID)
	if err != nil {
		return err
	}
	return s.contentRepo.CreateVersion(ctx, tx, &types.ContentVersion{
		ContentID:     content.ID,
		VersionNumber: next,
		ContentText:   content.ContentCurrent,
		Trigger:       trigger,
		WordCount:     content.WordCount,
	})
}

func countWords(text string) int {
	return len(strings.Fields(text))
}
