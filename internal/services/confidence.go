package services

import (
	"github.com/sonahq/sona-backend/internal/types"
)

// ConfidenceBreakdown itemizes how a clone's confidence score was earned.
type ConfidenceBreakdown struct {
	WordCount   int `json:"word_count"`
	SampleCount int `json:"sample_count"`
	TypeVariety int `json:"type_variety"`
	LengthMix   int `json:"length_mix"`
	Consistency int `json:"consistency"`
	Total       int `json:"total"`
}

// CalculateConfidence scores how well-evidenced a clone's voice profile is,
// 0-100. Deterministic over the clone's samples and latest DNA version; no
// model call is involved.
func CalculateConfidence(clone *types.VoiceClone) ConfidenceBreakdown {
	var b ConfidenceBreakdown

	totalWords := 0
	contentTypes := map[string]bool{}
	lengthCategories := map[string]bool{}
	for _, s := range clone.Samples {
		totalWords += s.WordCount
		if s.ContentType != "" {
			contentTypes[s.ContentType] = true
		}
		if s.LengthCategory != "" {
			lengthCategories[s.LengthCategory] = true
		}
	}

	b.WordCount = wordCountPoints(totalWords)
	b.SampleCount = sampleCountPoints(len(clone.Samples))
	b.TypeVariety = varietyPoints(len(contentTypes))
	b.LengthMix = lengthMixPoints(len(lengthCategories))
	b.Consistency = consistencyPoints(latestVersion(clone.DNAVersions))

	b.Total = b.WordCount + b.SampleCount + b.TypeVariety + b.LengthMix + b.Consistency
	if b.Total > 100 {
		b.Total = 100
	}
	return b
}

func wordCountPoints(words int) int {
	switch {
	case words >= 5000:
		return 30
	case words >= 2500:
		return 22
	case words >= 1000:
		return 15
	case words >= 500:
		return 10
	case words > 0:
		return 5
	default:
		return 0
	}
}

func sampleCountPoints(count int) int {
	switch {
	case count >= 6:
		return 20
	case count >= 5:
		return 16
	case count >= 3:
		return 12
	case count >= 2:
		return 8
	case count >= 1:
		return 4
	default:
		return 0
	}
}

func varietyPoints(distinctTypes int) int {
	switch {
	case distinctTypes >= 4:
		return 20
	case distinctTypes >= 3:
		return 15
	case distinctTypes >= 2:
		return 10
	case distinctTypes >= 1:
		return 5
	default:
		return 0
	}
}

func lengthMixPoints(distinctCategories int) int {
	switch {
	case distinctCategories >= 3:
		return 15
	case distinctCategories >= 2:
		return 10
	case distinctCategories >= 1:
		return 5
	default:
		return 0
	}
}

// consistencyPoints scales the latest version's consistency_score (0-100)
// into at most 15 points. When the model omitted consistency_score, the
// mean of the prominence scores stands in for it.
func consistencyPoints(latest *types.VoiceDNAVersion) int {
	if latest == nil {
		return 0
	}
	score, ok := numericField(latest.Data, "consistency_score")
	if !ok {
		score, ok = meanNumeric(latest.ProminenceScores)
		if !ok {
			return 0
		}
	}
	if score < 0 {
		score = 0
	}
	points := int(score * 15 / 100)
	if points > 15 {
		points = 15
	}
	return points
}

func latestVersion(versions []types.VoiceDNAVersion) *types.VoiceDNAVersion {
	var latest *types.VoiceDNAVersion
	for i := range versions {
		if latest == nil || versions[i].VersionNumber > latest.VersionNumber {
			latest = &versions[i]
		}
	}
	return latest
}

func numericField(m map[string]any, key string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	return asFloat(m[key])
}

func meanNumeric(m map[string]any) (float64, bool) {
	if len(m) == 0 {
		return 0, false
	}
	sum := 0.0
	count := 0
	for _, v := range m {
		if f, ok := asFloat(v); ok {
			sum += f
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
