package llm

import (
	"fmt"
	"sort"
	"strings"
)

// ScoringDimensions are the fixed axes of authenticity scoring.
var ScoringDimensions = []string{
	"vocabulary_match",
	"sentence_flow",
	"structural_rhythm",
	"tone_fidelity",
	"rhetorical_fingerprint",
	"punctuation_signature",
	"hook_and_close",
	"voice_personality",
}

// BuildDNAAnalysisPrompt assembles the message list for extracting a
// Voice DNA profile from writing samples. methodology, when non-empty,
// is appended to the system instructions verbatim.
func BuildDNAAnalysisPrompt(samples []string, methodology string) []Message {
	systemParts := []string{
		"You are an expert linguist analyzing writing samples to extract a Voice DNA profile.",
		"Identify patterns in tone, vocabulary, sentence structure, rhythm, and stylistic quirks.",
		"Return a structured JSON object with the voice dimensions.",
		"Also rate the overall voice consistency across all samples as a" +
			" consistency_score (0-100), where 100 means the writing voice is" +
			" perfectly consistent across all samples.",
	}
	if methodology != "" {
		systemParts = append(systemParts, "Follow this analysis methodology:\n"+methodology)
	}

	numbered := make([]string, 0, len(samples))
	for i, text := range samples {
		numbered = append(numbered, fmt.Sprintf("--- Sample %d ---\n%s", i+1, text))
	}

	return []Message{
		{Role: "system", Content: strings.Join(systemParts, " ")},
		{Role: "user", Content: "Analyze these writing samples:\n\n" + strings.Join(numbered, "\n\n")},
	}
}

// BuildGenerationPrompt assembles the message list for drafting content
// in the clone's voice for a target platform.
func BuildGenerationPrompt(dna map[string]any, platform, inputText string, properties map[string]any) []Message {
	systemParts := []string{
		"You are a ghostwriter that matches the user's unique voice.",
		"Voice DNA profile:\n" + formatTraits(dna),
		fmt.Sprintf("Target platform: %s.", platform),
		"Write content that authentically matches this voice for the given platform.",
	}
	if len(properties) > 0 {
		pairs := make([]string, 0, len(properties))
		for _, key := range sortedKeys(properties) {
			pairs = append(pairs, fmt.Sprintf("%s=%v", key, properties[key]))
		}
		systemParts = append(systemParts, fmt.Sprintf("Additional properties: %s.", strings.Join(pairs, ", ")))
	}

	return []Message{
		{Role: "system", Content: strings.Join(systemParts, "\n\n")},
		{Role: "user", Content: inputText},
	}
}

// BuildScoringPrompt assembles the message list for authenticity scoring.
// Callers should run it at low temperature so repeated scores stay stable.
func BuildScoringPrompt(dnaJSON, contentText string) []Message {
	systemContent := strings.Join([]string{
		"You are an expert voice analyst evaluating how authentically" +
			" a piece of content matches an author's Voice DNA.",
		fmt.Sprintf("Score the content on these 8 dimensions (0-100 each): %s.",
			strings.Join(ScoringDimensions, ", ")),
		"Return ONLY a JSON object in this exact format:\n" +
			`{"dimensions": [{"name": "<dimension>", "score": <0-100>,` +
			` "feedback": "<actionable feedback>"}]}`,
		"For any dimension scoring below 70, provide specific," +
			" actionable feedback with examples of how to improve.",
		"For dimensions scoring 70 or above, a brief positive note is sufficient.",
		"Voice DNA profile:\n" + dnaJSON,
	}, "\n\n")

	return []Message{
		{Role: "system", Content: systemContent},
		{Role: "user", Content: "Score the following content for voice authenticity:\n\n" + contentText},
	}
}

// MergeSourceInput is one weighted source profile fed to BuildMergePrompt.
type MergeSourceInput struct {
	Name    string
	DNAJSON string
	Weights map[string]any
}

// BuildMergePrompt assembles the message list for blending multiple
// source Voice DNA profiles into one.
func BuildMergePrompt(sources []MergeSourceInput) []Message {
	systemContent := strings.Join([]string{
		"You are an expert linguist blending multiple Voice DNA profiles into a single merged voice.",
		"Each source profile carries per-trait weights (0-100) describing how strongly it should" +
			" influence the corresponding traits of the merged voice.",
		"Return ONLY a JSON object in this exact format:\n" +
			`{"dna": {<merged voice dimensions>}, "prominence_scores": {<dimension>: <0-100>}}`,
		"prominence_scores rates how strongly each merged dimension expresses itself.",
	}, "\n\n")

	var user strings.Builder
	user.WriteString("Merge these voice profiles:\n")
	for i, src := range sources {
		fmt.Fprintf(&user, "\n--- Source %d: %s ---\n", i+1, src.Name)
		user.WriteString("Voice DNA:\n")
		user.WriteString(src.DNAJSON)
		user.WriteString("\nWeights: ")
		user.WriteString(formatWeights(src.Weights))
		user.WriteString("\n")
	}

	return []Message{
		{Role: "system", Content: systemContent},
		{Role: "user", Content: user.String()},
	}
}

func formatTraits(dna map[string]any) string {
	lines := make([]string, 0, len(dna))
	for _, key := range sortedKeys(dna) {
		lines = append(lines, fmt.Sprintf("- %s: %v", key, dna[key]))
	}
	return strings.Join(lines, "\n")
}

func formatWeights(weights map[string]any) string {
	if len(weights) == 0 {
		return "equal weighting across all traits"
	}
	pairs := make([]string, 0, len(weights))
	for _, key := range sortedKeys(weights) {
		pairs = append(pairs, fmt.Sprintf("%s=%v", key, weights[key]))
	}
	return strings.Join(pairs, ", ")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
