package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sonahq/sona-backend/internal/apierr"
	"github.com/sonahq/sona-backend/internal/llm"
	"github.com/sonahq/sona-backend/internal/logger"
	"github.com/sonahq/sona-backend/internal/repos"
	"github.com/sonahq/sona-backend/internal/types"
)

// DNAService orchestrates Voice DNA version creation: model-driven
// analysis, manual edits, and non-destructive reverts.
type DNAService interface {
	Analyze(ctx context.Context, cloneID uuid.UUID, providerName, model string) (*types.VoiceDNAVersion, error)
	ManualEdit(ctx context.Context, cloneID uuid.UUID, data, prominenceScores map[string]any) (*types.VoiceDNAVersion, error)
	Revert(ctx context.Context, cloneID uuid.UUID, targetVersionNumber int) (*types.VoiceDNAVersion, error)
	ListVersions(ctx context.Context, cloneID uuid.UUID) ([]*types.VoiceDNAVersion, error)
	Current(ctx context.Context, cloneID uuid.UUID) (*types.VoiceDNAVersion, error)
}

type dnaService struct {
	db              *gorm.DB
	log             *logger.Logger
	cloneRepo       repos.CloneRepo
	sampleRepo      repos.SampleRepo
	versionRepo     repos.DNAVersionRepo
	methodologyRepo repos.MethodologyRepo
	registry        *llm.Registry

	locks cloneLocks
}

func NewDNAService(
	db *gorm.DB,
	log *logger.Logger,
	cloneRepo repos.CloneRepo,
	sampleRepo repos.SampleRepo,
	versionRepo repos.DNAVersionRepo,
	methodologyRepo repos.MethodologyRepo,
	registry *llm.Registry,
) DNAService {
	return &dnaService{
		db:              db,
		log:             log.With("service", "DNAService"),
		cloneRepo:       cloneRepo,
		sampleRepo:      sampleRepo,
		versionRepo:     versionRepo,
		methodologyRepo: methodologyRepo,
		registry:        registry,
	}
}

// cloneLocks serializes version allocation per clone so concurrent writers
// cannot race max(version_number)+1.
type cloneLocks struct {
	mu sync.Map
}

func (l *cloneLocks) lock(cloneID uuid.UUID) func() {
	v, _ := l.mu.LoadOrStore(cloneID, &sync.Mutex{})
	m := v.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

func (s *dnaService) Analyze(ctx context.Context, cloneID uuid.UUID, providerName, model string) (*types.VoiceDNAVersion, error) {
	clone, err := s.cloneRepo.GetByID(ctx, nil, cloneID)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	if clone == nil {
		return nil, apierr.NewCloneNotFound(cloneID.String())
	}

	samples, _, err := s.sampleRepo.ListByClone(ctx, nil, cloneID)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	if len(samples) == 0 {
		return nil, apierr.NewValidation("Add at least one writing sample before analyzing Voice DNA")
	}

	provider, err := s.registry.Get(providerName)
	if err != nil {
		return nil, err
	}

	methodology := ""
	settings, err := s.methodologyRepo.GetBySection(ctx, nil, types.MethodologySectionVoiceCloning)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	if settings != nil {
		methodology = settings.CurrentContent
	}

	texts := make([]string, 0, len(samples))
	for _, sample := range samples {
		texts = append(texts, sample.Content)
	}
	messages := llm.BuildDNAAnalysisPrompt(texts, methodology)

	s.log.Info("Analyzing Voice DNA",
		"clone_id", cloneID.String(),
		"samples", len(samples),
		"provider", provider.Name())

	raw, err := provider.Complete(ctx, messages, llm.Options{Model: model})
	if err != nil {
		return nil, apierr.NewAnalysisFailed(provider.Name(), err)
	}

	data, prominence, err := parseVoiceDNAResponse(raw)
	if err != nil {
		return nil, apierr.NewAnalysisFailed(provider.Name(), err)
	}

	modelUsed := model
	if modelUsed == "" {
		modelUsed = provider.Name()
	}
	return s.createVersion(ctx, cloneID, data, prominence, modelUsed)
}

func (s *dnaService) ManualEdit(ctx context.Context, cloneID uuid.UUID, data, prominenceScores map[string]any) (*types.VoiceDNAVersion, error) {
	clone, err := s.cloneRepo.GetByID(ctx, nil, cloneID)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	if clone == nil {
		return nil, apierr.NewCloneNotFound(cloneID.String())
	}
	if len(data) == 0 {
		return nil, apierr.NewValidation("Voice DNA data must not be empty")
	}

	unlock := s.locks.lock(cloneID)
	defer unlock()

	latest, err := s.versionRepo.Latest(ctx, nil, cloneID)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	if latest == nil {
		return nil, apierr.NewValidation("No Voice DNA exists to edit. Run analysis first.")
	}

	return s.writeVersion(ctx, cloneID, data, prominenceScores, types.TriggerManualEdit, types.ModelUsedManual)
}

func (s *dnaService) Revert(ctx context.Context, cloneID uuid.UUID, targetVersionNumber int) (*types.VoiceDNAVersion, error) {
	clone, err := s.cloneRepo.GetByID(ctx, nil, cloneID)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	if clone == nil {
		return nil, apierr.NewCloneNotFound(cloneID.String())
	}

	unlock := s.locks.lock(cloneID)
	defer unlock()

	target, err := s.versionRepo.GetByNumber(ctx, nil, cloneID, targetVersionNumber)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	if target == nil {
		return nil, apierr.NewValidation(fmt.Sprintf("Voice DNA version %d not found", targetVersionNumber))
	}

	// The target version itself is never deleted here; copying it forward
	// is what makes revert non-destructive.
	return s.writeVersion(ctx, cloneID, target.Data, target.ProminenceScores, types.TriggerRevert, target.ModelUsed)
}

func (s *dnaService) ListVersions(ctx context.Context, cloneID uuid.UUID) ([]*types.VoiceDNAVersion, error) {
	clone, err := s.cloneRepo.GetByID(ctx, nil, cloneID)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	if clone == nil {
		return nil, apierr.NewCloneNotFound(cloneID.String())
	}
	versions, err := s.versionRepo.ListByClone(ctx, nil, cloneID)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	return versions, nil
}

func (s *dnaService) Current(ctx context.Context, cloneID uuid.UUID) (*types.VoiceDNAVersion, error) {
	clone, err := s.cloneRepo.GetByID(ctx, nil, cloneID)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	if clone == nil {
		return nil, apierr.NewCloneNotFound(cloneID.String())
	}
	latest, err := s.versionRepo.Latest(ctx, nil, cloneID)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	if latest == nil {
		return nil, apierr.NewValidation("No Voice DNA exists for this clone yet")
	}
	return latest, nil
}

// createVersion allocates the next number under the clone's lock and picks
// the trigger: initial_analysis for version 1, regeneration afterwards.
func (s *dnaService) createVersion(ctx context.Context, cloneID uuid.UUID, data, prominence map[string]any, modelUsed string) (*types.VoiceDNAVersion, error) {
	unlock := s.locks.lock(cloneID)
	defer unlock()

	next, err := s.versionRepo.NextVersionNumber(ctx, nil, cloneID)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	trigger := types.TriggerRegeneration
	if next == 1 {
		trigger = types.TriggerInitialAnalysis
	}
	return s.writeVersionNumbered(ctx, cloneID, next, data, prominence, trigger, modelUsed)
}

// writeVersion allocates and persists in one step. Callers must hold the
// clone's lock.
func (s *dnaService) writeVersion(ctx context.Context, cloneID uuid.UUID, data, prominence map[string]any, trigger, modelUsed string) (*types.VoiceDNAVersion, error) {
	next, err := s.versionRepo.NextVersionNumber(ctx, nil, cloneID)
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	return s.writeVersionNumbered(ctx, cloneID, next, data, prominence, trigger, modelUsed)
}

func (s *dnaService) writeVersionNumbered(ctx context.Context, cloneID uuid.UUID, number int, data, prominence map[string]any, trigger, modelUsed string) (*types.VoiceDNAVersion, error) {
	version := &types.VoiceDNAVersion{
		CloneID:          cloneID,
		VersionNumber:    number,
		Data:             data,
		ProminenceScores: prominence,
		Trigger:          trigger,
		ModelUsed:        modelUsed,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return persistDNAVersion(ctx, s.versionRepo, tx, version)
	})
	if err != nil {
		return nil, apierr.NewInternal(err)
	}
	s.log.Info("Voice DNA version created",
		"clone_id", cloneID.String(),
		"version", version.VersionNumber,
		"trigger", trigger)
	return version, nil
}

// persistDNAVersion writes the version and prunes the clone's history to
// the retention cap inside the caller's transaction. Every version insert
// goes through here so the window holds no matter who writes.
func persistDNAVersion(ctx context.Context, repo repos.DNAVersionRepo, tx *gorm.DB, version *types.VoiceDNAVersion) error {
	if err := repo.Create(ctx, tx, version); err != nil {
		return err
	}
	_, err := repo.PruneToLimit(ctx, tx, version.CloneID, types.MaxDNAVersions)
	return err
}

// parseVoiceDNAResponse decodes a model response into the trait map and
// optional prominence scores. The payload may arrive either flat or nested
// under a "dna" key, and may be wrapped in a markdown code fence.
func parseVoiceDNAResponse(raw string) (map[string]any, map[string]any, error) {
	cleaned := stripCodeFence(raw)

	var parsed map[string]any
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, nil, fmt.Errorf("invalid JSON in model response: %w", err)
	}

	data := parsed
	if nested, ok := parsed["dna"].(map[string]any); ok {
		data = nested
	}
	if len(data) == 0 {
		return nil, nil, fmt.Errorf("model response contains no voice dimensions")
	}

	var prominence map[string]any
	if p, ok := parsed["prominence_scores"].(map[string]any); ok {
		prominence = p
		delete(data, "prominence_scores")
	}
	return data, prominence, nil
}

func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
