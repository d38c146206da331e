package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sonahq/sona-backend/internal/apierr"
	"github.com/sonahq/sona-backend/internal/logger"
	"github.com/sonahq/sona-backend/internal/repos"
	"github.com/sonahq/sona-backend/internal/types"
)

// AddSampleInput is the payload for attaching a writing sample to a clone.
type AddSampleInput struct {
	CloneID        uuid.UUID
	Content        string
	ContentType    string
	SourceType     string
	SourceURL      string
	SourceFilename string
}

type SampleService interface {
	Add(ctx context.Context, input AddSampleInput) (*types.WritingSample, error)
	Get(ctx context.Context, sampleID uuid.UUID) (*types.WritingSample, error)
	ListByClone(ctx context.Context, cloneID uuid.UUID) ([]*types.WritingSample, int64, error)
	Delete(ctx context.Context, sampleID uuid.UUID) error
}

type sampleService struct {
	db         *gorm.DB
	log        *logger.Logger
	cloneRepo  repos.CloneRepo
	sampleRepo repos.SampleRepo
}

func NewSampleService(db *gorm.DB, log *logger.Logger, cloneRepo repos.CloneRepo, sampleRepo repos.SampleRepo) SampleService {
	return &sampleService{
		db:         db,
		log:        log.With("service", "SampleService"),
		cloneRepo:  cloneRepo,
		sampleRepo: sampleRepo,
	}
}

func (s *sampleService) Add(ctx context.Context, input AddSampleInput) (*types.WritingSample, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, apierr.NewValidation("Sample content must not be empty")
	}
	if input.ContentType == "" {
		return nil, apierr.NewValidation("Sample content type is required")
	}

	clone, err := s.cloneRepo.GetByID(ctx, nil, input.CloneID)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	if clone == nil {
		return nil, apierr.NewCloneNotFound(input.CloneID.String())
	}
	if clone.Type == types.CloneTypeMerged {
		return nil, apierr.NewValidation("Cannot add samples to a merged clone")
	}

	words := countWords(input.Content)
	sample := &types.WritingSample{
		CloneID:        input.CloneID,
		Content:        input.Content,
		ContentType:    input.ContentType,
		WordCount:      words,
		LengthCategory: lengthCategory(words),
		SourceType:     input.SourceType,
		SourceURL:      input.SourceURL,
		SourceFilename: input.SourceFilename,
	}
	if err := s.sampleRepo.Create(ctx, nil, sample); err != nil {
		return nil, apierr.NewInternal(err)
	}

	s.log.Info("Sample added",
		"clone_id", input.CloneID.String(),
		"sample_id", sample.ID.String(),
		"words", words)
	return sample, nil
}

func (s *sampleService) Get(ctx context.Context, sampleID uuid.UUID) (*types.WritingSample, error) {
	sample, err := s.sampleRepo.GetByID(ctx, nil, sampleID)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	if sample == nil {
		return nil, apierr.NewSampleNotFound(sampleID.String())
	}
	return sample, nil
}

func (s *sampleService) ListByClone(ctx context.Context, cloneID uuid.UUID) ([]*types.WritingSample, int64, error) {
	clone, err := s.cloneRepo.GetByID(ctx, nil, cloneID)
	if err != nil {
		return nil, 0, apierr.NewInternal(err)
	}
	if clone == nil {
		return nil, 0, apierr.NewCloneNotFound(cloneID.String())
	}
	samples, total, err := s.sampleRepo.ListByClone(ctx, nil, cloneID)
	if err != nil {
		return nil, 0, apierr.NewInternal(err)
	}
	return samples, total, nil
}

func (s *sampleService) Delete(ctx context.Context, sampleID uuid.UUID) error {
	sample, err := s.sampleRepo.GetByID(ctx, nil, sampleID)
	if err != nil {
		return apierr.NewInternal(err)
	}
	if sample == nil {
		return apierr.NewSampleNotFound(sampleID.String())
	}
	if err := s.sampleRepo.Delete(ctx, nil, sampleID); err != nil {
		return apierr.NewInternal(err)
	}
	return nil
}

// lengthCategory buckets a sample by word count: under 300 short, up to
// 1000 medium, beyond that long.
func lengthCategory(words int) string {
	switch {
	case words < 300:
		return types.LengthCategoryShort
	case words <= 1000:
		return types.LengthCategoryMedium
	default:
		return types.LengthCategoryLong
	}
}
