package llm

import (
	"strings"
	"testing"
)

func TestDNAAnalysisPromptNumbersSamples(t *testing.T) {
	msgs := BuildDNAAnalysisPrompt([]string{"first sample", "second sample"}, "")
	if len(msgs) != 2 {
		t.Fatalf("expected system+user messages, got %d", len(msgs))
	}
	if msgs[0].Role != "system" || msgs[1].Role != "user" {
		t.Fatalf("unexpected roles %s/%s", msgs[0].Role, msgs[1].Role)
	}
	if !strings.Contains(msgs[0].Content, "consistency_score") {
		t.Fatalf("system prompt missing consistency_score instruction")
	}
	if !strings.Contains(msgs[1].Content, "--- Sample 1 ---\nfirst sample") {
		t.Fatalf("user prompt missing numbered first sample: %q", msgs[1].Content)
	}
	if !strings.Contains(msgs[1].Content, "--- Sample 2 ---\nsecond sample") {
		t.Fatalf("user prompt missing numbered second sample")
	}
}

func TestDNAAnalysisPromptIncludesMethodology(t *testing.T) {
	msgs := BuildDNAAnalysisPrompt([]string{"text"}, "Focus on rhythm first.")
	if !strings.Contains(msgs[0].Content, "Focus on rhythm first.") {
		t.Fatalf("system prompt missing methodology text")
	}
}

func TestGenerationPromptCarriesPlatformAndProperties(t *testing.T) {
	dna := map[string]any{"tone": "wry", "rhythm": "staccato"}
	msgs := BuildGenerationPrompt(dna, "linkedin", "write about onboarding", map[string]any{"length": "short"})
	if !strings.Contains(msgs[0].Content, "Target platform: linkedin.") {
		t.Fatalf("system prompt missing platform")
	}
	if !strings.Contains(msgs[0].Content, "- tone: wry") {
		t.Fatalf("system prompt missing dna trait: %q", msgs[0].Content)
	}
	if !strings.Contains(msgs[0].Content, "length=short") {
		t.Fatalf("system prompt missing properties")
	}
	if msgs[1].Content != "write about onboarding" {
		t.Fatalf("user prompt should be the input text, got %q", msgs[1].Content)
	}
}

func TestScoringPromptListsAllDimensions(t *testing.T) {
	msgs := BuildScoringPrompt(`{"tone":"wry"}`, "some generated post")
	for _, dim := range ScoringDimensions {
		if !strings.Contains(msgs[0].Content, dim) {
			t.Fatalf("scoring prompt missing dimension %s", dim)
		}
	}
	if !strings.Contains(msgs[0].Content, "below 70") {
		t.Fatalf("scoring prompt missing feedback threshold rule")
	}
}

func TestMergePromptIncludesEachSourceAndWeights(t *testing.T) {
	msgs := BuildMergePrompt([]MergeSourceInput{
		{Name: "Alice", DNAJSON: `{"tone":"warm"}`, Weights: map[string]any{"tone": 70}},
		{Name: "Bob", DNAJSON: `{"tone":"blunt"}`, Weights: nil},
	})
	user := msgs[1].Content
	if !strings.Contains(user, "Source 1: Alice") || !strings.Contains(user, "Source 2: Bob") {
		t.Fatalf("merge prompt missing source headers: %q", user)
	}
	if !strings.Contains(user, "tone=70") {
		t.Fatalf("merge prompt missing weights")
	}
	if !strings.Contains(user, "equal weighting") {
		t.Fatalf("merge prompt missing equal-weight fallback")
	}
	if !strings.Contains(msgs[0].Content, `"prominence_scores"`) {
		t.Fatalf("merge prompt missing output format instruction")
	}
}
