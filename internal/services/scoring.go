package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sonahq/sona-backend/internal/apierr"
	"github.com/sonahq/sona-backend/internal/llm"
	"github.com/sonahq/sona-backend/internal/logger"
	"github.com/sonahq/sona-backend/internal/repos"
	"github.com/sonahq/sona-backend/internal/types"
)

// scoringTemperature keeps repeated scores of the same content stable.
const scoringTemperature = 0.3

// DimensionScore is one axis of the authenticity breakdown.
type DimensionScore struct {
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

type ScoringService interface {
	Score(ctx context.Context, contentID uuid.UUID, providerName, model string) (*types.Content, error)
}

type scoringService struct {
	db          *gorm.DB
	log         *logger.Logger
	contentRepo repos.ContentRepo
	versionRepo repos.DNAVersionRepo
	registry    *llm.Registry
}

func NewScoringService(
	db *gorm.DB,
	log *logger.Logger,
	contentRepo repos.ContentRepo,
	versionRepo repos.DNAVersionRepo,
	registry *llm.Registry,
) ScoringService {
	return &scoringService{
		db:          db,
		log:         log.With("service", "ScoringService"),
		contentRepo: contentRepo,
		versionRepo: versionRepo,
		registry:    registry,
	}
}

// Score rates how authentically a content item matches its clone's latest
// Voice DNA, persisting the overall score plus the dimension breakdown.
func (s *scoringService) Score(ctx context.Context, contentID uuid.UUID, providerName, model string) (*types.Content, error) {
	content, err := s.contentRepo.GetByID(ctx, nil, contentID)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	if content == nil {
		return nil, apierr.NewContentNotFound(contentID.String())
	}

	latest, err := s.versionRepo.Latest(ctx, nil, content.CloneID)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	if latest == nil {
		return nil, apierr.NewValidation("Analyze Voice DNA before scoring content")
	}

	provider, err := s.registry.Get(providerName)
	if err != nil {
		return nil, err
	}

	dnaJSON, err := json.Marshal(latest.Data)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	messages := llm.BuildScoringPrompt(string(dnaJSON), content.ContentCurrent)

	raw, err := provider.Complete(ctx, messages, llm.Options{Model: model, Temperature: llm.Float32(scoringTemperature)})
	if err != nil {
		return nil, apierr.NewScoringFailed(provider.Name(), err)
	}

	dimensions, err := parseScoringResponse(raw)
	if err != nil {
		return nil, apierr.NewScoringFailed(provider.Name(), err)
	}

	sum := 0
	breakdown := make([]any, 0, len(dimensions))
	for _, d := range dimensions {
		sum += d.Score
		breakdown = append(breakdown, map[string]any{
			"name":     d.Name,
			"score":    d.Score,
			"feedback": d.Feedback,
		})
	}
	overall := int(math.Round(float64(sum) / float64(len(dimensions))))

	content.AuthenticityScore = &overall
	content.ScoreDimensions = datatypes.JSONMap{"dimensions": breakdown}
	if err := s.contentRepo.Save(ctx, nil, content); err != nil {
		return nil, apierr.NewInternal(err)
	}

	s.log.Info("Content scored",
		"content_id", contentID.String(),
		"overall", overall,
		"provider", provider.Name())
	return content, nil
}

func parseScoringResponse(raw string) ([]DimensionScore, error) {
	cleaned := stripCodeFence(raw)

	var parsed struct {
		Dimensions []DimensionScore `json:"dimensions"`
	}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, fmt.Errorf("invalid JSON in scoring response: %w", err)
	}
	if len(parsed.Dimensions) == 0 {
		return nil, fmt.Errorf("scoring response contains no dimensions")
	}
	for _, d := range parsed.Dimensions {
		if d.Score < 0 || d.Score > 100 {
			return nil, fmt.Errorf("dimension %q score %d out of range", d.Name, d.Score)
		}
	}
	return parsed.Dimensions, nil
}
