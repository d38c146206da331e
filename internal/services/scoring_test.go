package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/sonahq/sona-backend/internal/apierr"
	"github.com/sonahq/sona-backend/internal/llm"
	"github.com/sonahq/sona-backend/internal/types"
)

func scoringResponse(scores []int) string {
	dims := make([]map[string]any, 0, len(scores))
	for i, score := range scores {
		dims = append(dims, map[string]any{
			"name":     llm.ScoringDimensions[i],
			"score":    score,
			"feedback": "fine",
		})
	}
	raw, _ := json.Marshal(map[string]any{"dimensions": dims})
	return string(raw)
}

func generatedContent(t *testing.T, env *testEnv) *types.Content {
	t.Helper()
	clone := analyzedClone(t, env, "Writer")
	env.provider.responses = []string{"generated text"}
	results, err := env.content.Generate(context.Background(), GenerateInput{
		CloneID:   clone.ID,
		Platforms: []string{"twitter"},
		InputText: "say something",
		Provider:  "fake",
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	return results[0]
}

func TestScoreUnknownContentFails(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.scoring.Score(context.Background(), uuid.New(), "fake", "")
	if !apierr.IsKind(err, apierr.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestScorePersistsOverallAndBreakdown(t *testing.T) {
	env := newTestEnv(t)
	item := generatedContent(t, env)
	env.provider.responses = []string{scoringResponse([]int{80, 82, 78, 90, 85, 88, 76, 81})}

	scored, err := env.scoring.Score(context.Background(), item.ID, "fake", "")
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if scored.AuthenticityScore == nil {
		t.Fatalf("overall score not persisted")
	}
	// mean of the 8 scores is 82.5, rounded to 83
	if *scored.AuthenticityScore != 83 {
		t.Fatalf("expected overall 83, got %d", *scored.AuthenticityScore)
	}
	dims, ok := scored.ScoreDimensions["dimensions"].([]any)
	if !ok || len(dims) != 8 {
		t.Fatalf("expected 8-dimension breakdown, got %v", scored.ScoreDimensions)
	}

	reloaded, err := env.content.Get(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.AuthenticityScore == nil || *reloaded.AuthenticityScore != 83 {
		t.Fatalf("score not persisted to storage")
	}
}

func TestScoreUsesLowTemperatureAndLatestDNA(t *testing.T) {
	env := newTestEnv(t)
	item := generatedContent(t, env)
	env.provider.responses = []string{scoringResponse([]int{70, 70, 70, 70, 70, 70, 70, 70})}

	if _, err := env.scoring.Score(context.Background(), item.ID, "fake", ""); err != nil {
		t.Fatalf("score failed: %v", err)
	}

	lastOpts := env.provider.opts[len(env.provider.opts)-1]
	if lastOpts.Temperature == nil || *lastOpts.Temperature != 0.3 {
		t.Fatalf("expected temperature 0.3, got %v", lastOpts.Temperature)
	}
	lastPrompt := env.provider.prompts[len(env.provider.prompts)-1]
	if !strings.Contains(lastPrompt[0].Content, `"tone":"wry"`) {
		t.Fatalf("scoring prompt missing dna json: %q", lastPrompt[0].Content)
	}
	if !strings.Contains(lastPrompt[1].Content, "generated text") {
		t.Fatalf("scoring prompt missing content text")
	}
}

func TestScoreRequiresDNA(t *testing.T) {
	env := newTestEnv(t)
	clone := env.mustCreateClone(t, "Writer")

	// Write a content row directly; its clone has no DNA yet.
	item := &types.Content{
		CloneID:         clone.ID,
		Platform:        "twitter",
		Status:          types.ContentStatusDraft,
		ContentCurrent:  "text",
		ContentOriginal: "text",
		InputText:       "in",
	}
	if err := env.contentRepo.Create(context.Background(), nil, item); err != nil {
		t.Fatalf("failed to seed content: %v", err)
	}

	_, err := env.scoring.Score(context.Background(), item.ID, "fake", "")
	if !apierr.IsKind(err, apierr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestScoreWrapsProviderAndParseFailures(t *testing.T) {
	env := newTestEnv(t)
	item := generatedContent(t, env)

	env.provider.err = apierr.NewProviderRateLimit("fake", "throttled")
	_, err := env.scoring.Score(context.Background(), item.ID, "fake", "")
	if !apierr.IsKind(err, apierr.KindAnalysisFailed) {
		t.Fatalf("expected wrapped provider failure, got %v", err)
	}

	env.provider.err = nil
	env.provider.responses = []string{"not json"}
	_, err = env.scoring.Score(context.Background(), item.ID, "fake", "")
	if !apierr.IsKind(err, apierr.KindAnalysisFailed) {
		t.Fatalf("expected wrapped parse failure, got %v", err)
	}
}

func TestParseScoringResponseRejectsOutOfRange(t *testing.T) {
	raw := fmt.Sprintf(`{"dimensions": [{"name": "%s", "score": 140, "feedback": ""}]}`, llm.ScoringDimensions[0])
	if _, err := parseScoringResponse(raw); err == nil {
		t.Fatalf("expected out-of-range score to be rejected")
	}
}
