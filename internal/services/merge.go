package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sonahq/sona-backend/internal/apierr"
	"github.com/sonahq/sona-backend/internal/llm"
	"github.com/sonahq/sona-backend/internal/logger"
	"github.com/sonahq/sona-backend/internal/repos"
	"github.com/sonahq/sona-backend/internal/types"
)

// MergeSourceSpec names one source clone and its per-trait weights.
type MergeSourceSpec struct {
	CloneID uuid.UUID      `json:"clone_id"`
	Weights map[string]any `json:"weights"`
}

type MergeService interface {
	Merge(ctx context.Context, name string, sources []MergeSourceSpec, providerName, model string) (*types.VoiceClone, *types.VoiceDNAVersion, error)
	Lineage(ctx context.Context, mergedCloneID uuid.UUID) ([]*types.MergedCloneSource, error)
}

type mergeService struct {
	db          *gorm.DB
	log         *logger.Logger
	cloneRepo   repos.CloneRepo
	versionRepo repos.DNAVersionRepo
	sourceRepo  repos.MergeSourceRepo
	registry    *llm.Registry
}

func NewMergeService(
	db *gorm.DB,
	log *logger.Logger,
	cloneRepo repos.CloneRepo,
	versionRepo repos.DNAVersionRepo,
	sourceRepo repos.MergeSourceRepo,
	registry *llm.Registry,
) MergeService {
	return &mergeService{
		db:          db,
		log:         log.With("service", "MergeService"),
		cloneRepo:   cloneRepo,
		versionRepo: versionRepo,
		sourceRepo:  sourceRepo,
		registry:    registry,
	}
}

// Merge blends the latest DNA of two or more source clones into a brand-new
// merged clone. The provider call happens before any write, so a failed
// merge leaves nothing behind.
func (s *mergeService) Merge(ctx context.Context, name string, sources []MergeSourceSpec, providerName, model string) (*types.VoiceClone, *types.VoiceDNAVersion, error) {
	if len(sources) < 2 {
		return nil, nil, apierr.NewValidation("Merging requires at least 2 source clones")
	}
	if name == "" {
		return nil, nil, apierr.NewValidation("Merged clone name must not be empty")
	}

	provider, err := s.registry.Get(providerName)
	if err != nil {
		return nil, nil, err
	}

	inputs := make([]llm.MergeSourceInput, 0, len(sources))
	for _, src := range sources {
		clone, err := s.cloneRepo.GetByID(ctx, nil, src.CloneID)
		if err != nil {
			return nil, nil, apierr.NewInternal(err)
		}
		if clone == nil {
			return nil, nil, apierr.NewCloneNotFound(src.CloneID.String())
		}
		latest, err := s.versionRepo.Latest(ctx, nil, src.CloneID)
		if err != nil {
			return nil, nil, apierr.NewInternal(err)
		}
		if latest == nil {
			return nil, nil, apierr.NewValidation(fmt.Sprintf("Source clone '%s' has no Voice DNA. Analyze it before merging.", clone.Name))
		}

		dnaJSON, err := json.Marshal(latest.Data)
		if err != nil {
			return nil, nil, apierr.NewInternal(err)
		}
		inputs = append(inputs, llm.MergeSourceInput{
			Name:    clone.Name,
			DNAJSON: string(dnaJSON),
			Weights: src.Weights,
		})
	}

	s.log.Info("Merging voice clones",
		"name", name,
		"sources", len(sources),
		"provider", provider.Name())

	raw, err := provider.Complete(ctx, llm.BuildMergePrompt(inputs), llm.Options{Model: model})
	if err != nil {
		return nil, nil, apierr.NewMergeFailed(err)
	}
	data, prominence, err := parseVoiceDNAResponse(raw)
	if err != nil {
		return nil, nil, apierr.NewMergeFailed(err)
	}

	modelUsed := model
	if modelUsed == "" {
		modelUsed = provider.Name()
	}

	merged := &types.VoiceClone{
		Name: name,
		Type: types.CloneTypeMerged,
	}
	version := &types.VoiceDNAVersion{
		VersionNumber:    1,
		Data:             data,
		ProminenceScores: prominence,
		Trigger:          types.TriggerMerge,
		ModelUsed:        modelUsed,
	}

	// Clone, version 1 and lineage land together or not at all.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.cloneRepo.Create(ctx, tx, merged); err != nil {
			return err
		}
		version.CloneID = merged.ID
		if err := persistDNAVersion(ctx, s.versionRepo, tx, version); err != nil {
			return err
		}
		lineage := make([]*types.MergedCloneSource, 0, len(sources))
		for _, src := range sources {
			lineage = append(lineage, &types.MergedCloneSource{
				MergedCloneID: merged.ID,
				SourceCloneID: src.CloneID,
				Weights:       src.Weights,
			})
		}
		return s.sourceRepo.Create(ctx, tx, lineage)
	})
	if err != nil {
		return nil, nil, apierr.NewInternal(err)
	}

	s.log.Info("Merged clone created", "clone_id", merged.ID.String())
	return merged, version, nil
}

func (s *mergeService) Lineage(ctx context.Context, mergedCloneID uuid.UUID) ([]*types.MergedCloneSource, error) {
	clone, err := s.cloneRepo.GetByID(ctx, nil, mergedCloneID)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	if clone == nil {
		return nil, apierr.NewCloneNotFound(mergedCloneID.String())
	}
	rows, err := s.sourceRepo.ListByMerged(ctx, nil, mergedCloneID)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	return rows, nil
}
