package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/sonahq/sona-backend/internal/apierr"
	"github.com/sonahq/sona-backend/internal/types"
)

func TestAnalyzeCreatesInitialVersion(t *testing.T) {
	env := newTestEnv(t)
	clone := env.mustCreateClone(t, "Writer")
	env.mustAddSample(t, clone, "Some sample text with a distinctive rhythm.", "blog")
	env.provider.responses = []string{dnaResponse}

	version, err := env.dna.Analyze(context.Background(), clone.ID, "fake", "test-model")
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if version.VersionNumber != 1 {
		t.Fatalf("expected version 1, got %d", version.VersionNumber)
	}
	if version.Trigger != types.TriggerInitialAnalysis {
		t.Fatalf("expected initial_analysis trigger, got %s", version.Trigger)
	}
	if version.ModelUsed != "test-model" {
		t.Fatalf("expected test-model, got %s", version.ModelUsed)
	}
	if version.Data["tone"] != "wry" {
		t.Fatalf("expected parsed dna data, got %v", version.Data)
	}
	if version.ProminenceScores["tone"] != float64(90) {
		t.Fatalf("expected prominence scores, got %v", version.ProminenceScores)
	}
}

func TestAnalyzeSecondRunIsRegeneration(t *testing.T) {
	env := newTestEnv(t)
	clone := env.mustCreateClone(t, "Writer")
	env.mustAddSample(t, clone, "sample text", "blog")
	env.provider.responses = []string{dnaResponse}

	env.mustAnalyze(t, clone)
	second := env.mustAnalyze(t, clone)
	if second.VersionNumber != 2 {
		t.Fatalf("expected version 2, got %d", second.VersionNumber)
	}
	if second.Trigger != types.TriggerRegeneration {
		t.Fatalf("expected regeneration trigger, got %s", second.Trigger)
	}
}

func TestAnalyzeUnknownCloneFails(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.dna.Analyze(context.Background(), uuid.New(), "fake", "")
	if !apierr.IsKind(err, apierr.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestAnalyzeRequiresSamples(t *testing.T) {
	env := newTestEnv(t)
	clone := env.mustCreateClone(t, "Writer")
	_, err := env.dna.Analyze(context.Background(), clone.ID, "fake", "")
	if !apierr.IsKind(err, apierr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAnalyzeWrapsProviderFailure(t *testing.T) {
	env := newTestEnv(t)
	clone := env.mustCreateClone(t, "Writer")
	env.mustAddSample(t, clone, "sample text", "blog")
	env.provider.err = apierr.NewProviderRateLimit("fake", "throttled")

	_, err := env.dna.Analyze(context.Background(), clone.ID, "fake", "")
	if !apierr.IsKind(err, apierr.KindAnalysisFailed) {
		t.Fatalf("expected analysis_failed, got %v", err)
	}
}

func TestAnalyzeWrapsParseFailure(t *testing.T) {
	env := newTestEnv(t)
	clone := env.mustCreateClone(t, "Writer")
	env.mustAddSample(t, clone, "sample text", "blog")
	env.provider.responses = []string{"not json at all"}

	_, err := env.dna.Analyze(context.Background(), clone.ID, "fake", "")
	if !apierr.IsKind(err, apierr.KindAnalysisFailed) {
		t.Fatalf("expected analysis_failed, got %v", err)
	}
}

func TestAnalyzeAcceptsFlatAndFencedResponses(t *testing.T) {
	env := newTestEnv(t)
	clone := env.mustCreateClone(t, "Writer")
	env.mustAddSample(t, clone, "sample text", "blog")
	env.provider.responses = []string{"```json\n{\"tone\": \"direct\"}\n```"}

	version := env.mustAnalyze(t, clone)
	if version.Data["tone"] != "direct" {
		t.Fatalf("expected flat fenced payload to parse, got %v", version.Data)
	}
}

func TestAnalyzeInjectsMethodologyText(t *testing.T) {
	env := newTestEnv(t)
	clone := env.mustCreateClone(t, "Writer")
	env.mustAddSample(t, clone, "sample text", "blog")
	env.provider.responses = []string{dnaResponse}

	if _, err := env.methodology.UpdateSection(context.Background(), types.MethodologySectionVoiceCloning, "Pay attention to cadence."); err != nil {
		t.Fatalf("failed to set methodology: %v", err)
	}
	env.mustAnalyze(t, clone)

	prompt := env.provider.prompts[0]
	if !strings.Contains(prompt[0].Content, "Pay attention to cadence.") {
		t.Fatalf("analysis prompt missing methodology text: %q", prompt[0].Content)
	}
}

func TestManualEditRequiresExistingVersion(t *testing.T) {
	env := newTestEnv(t)
	clone := env.mustCreateClone(t, "Writer")

	_, err := env.dna.ManualEdit(context.Background(), clone.ID, map[string]any{"tone": "calm"}, nil)
	if !apierr.IsKind(err, apierr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestManualEditCreatesVersionWithManualModel(t *testing.T) {
	env := newTestEnv(t)
	clone := env.mustCreateClone(t, "Writer")
	env.mustAddSample(t, clone, "sample text", "blog")
	env.provider.responses = []string{dnaResponse}
	env.mustAnalyze(t, clone)

	version, err := env.dna.ManualEdit(context.Background(), clone.ID, map[string]any{"tone": "calm"}, map[string]any{"tone": 50})
	if err != nil {
		t.Fatalf("manual edit failed: %v", err)
	}
	if version.VersionNumber != 2 || version.Trigger != types.TriggerManualEdit {
		t.Fatalf("unexpected version %d trigger %s", version.VersionNumber, version.Trigger)
	}
	if version.ModelUsed != types.ModelUsedManual {
		t.Fatalf("expected manual model marker, got %s", version.ModelUsed)
	}
}

func TestRevertCopiesTargetForward(t *testing.T) {
	env := newTestEnv(t)
	clone := env.mustCreateClone(t, "Writer")
	env.mustAddSample(t, clone, "sample text", "blog")
	env.provider.responses = []string{dnaResponse}
	env.mustAnalyze(t, clone)

	if _, err := env.dna.ManualEdit(context.Background(), clone.ID, map[string]any{"tone": "edited"}, nil); err != nil {
		t.Fatalf("manual edit failed: %v", err)
	}

	reverted, err := env.dna.Revert(context.Background(), clone.ID, 1)
	if err != nil {
		t.Fatalf("revert failed: %v", err)
	}
	if reverted.VersionNumber != 3 || reverted.Trigger != types.TriggerRevert {
		t.Fatalf("unexpected version %d trigger %s", reverted.VersionNumber, reverted.Trigger)
	}
	if reverted.Data["tone"] != "wry" {
		t.Fatalf("expected version 1 data copied forward, got %v", reverted.Data)
	}

	// Non-destructive: the target version is still there.
	target, err := env.versionRepo.GetByNumber(context.Background(), nil, clone.ID, 1)
	if err != nil || target == nil {
		t.Fatalf("target version missing after revert: %v", err)
	}
}

func TestRevertUnknownVersionFails(t *testing.T) {
	env := newTestEnv(t)
	clone := env.mustCreateClone(t, "Writer")
	env.mustAddSample(t, clone, "sample text", "blog")
	env.provider.responses = []string{dnaResponse}
	env.mustAnalyze(t, clone)

	_, err := env.dna.Revert(context.Background(), clone.ID, 99)
	if !apierr.IsKind(err, apierr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestVersionRetentionKeepsLatestWindow(t *testing.T) {
	env := newTestEnv(t)
	clone := env.mustCreateClone(t, "Writer")
	env.mustAddSample(t, clone, "sample text", "blog")
	env.provider.responses = []string{dnaResponse}

	for i := 0; i < types.MaxDNAVersions+1; i++ {
		env.mustAnalyze(t, clone)
	}

	versions, err := env.dna.ListVersions(context.Background(), clone.ID)
	if err != nil {
		t.Fatalf("list versions failed: %v", err)
	}
	if len(versions) != types.MaxDNAVersions {
		t.Fatalf("expected %d retained versions, got %d", types.MaxDNAVersions, len(versions))
	}
	if versions[0].VersionNumber != 11 {
		t.Fatalf("expected newest version 11, got %d", versions[0].VersionNumber)
	}
	if versions[len(versions)-1].VersionNumber != 2 {
		t.Fatalf("expected oldest retained version 2, got %d", versions[len(versions)-1].VersionNumber)
	}
}

func TestCurrentReturnsLatest(t *testing.T) {
	env := newTestEnv(t)
	clone := env.mustCreateClone(t, "Writer")
	env.mustAddSample(t, clone, "sample text", "blog")
	env.provider.responses = []string{dnaResponse}
	env.mustAnalyze(t, clone)
	env.mustAnalyze(t, clone)

	current, err := env.dna.Current(context.Background(), clone.ID)
	if err != nil {
		t.Fatalf("current failed: %v", err)
	}
	if current.VersionNumber != 2 {
		t.Fatalf("expected latest version 2, got %d", current.VersionNumber)
	}
}

func TestParseVoiceDNAResponseSeparatesProminence(t *testing.T) {
	data, prominence, err := parseVoiceDNAResponse(`{"tone": "dry", "prominence_scores": {"tone": 55}}`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if _, ok := data["prominence_scores"]; ok {
		t.Fatalf("prominence_scores should be split out of data")
	}
	if prominence["tone"] != float64(55) {
		t.Fatalf("unexpected prominence %v", prominence)
	}
}
