package llm

import "testing"

func TestOptionsWithDefaults(t *testing.T) {
	opts := Options{}.withDefaults()
	if opts.Temperature == nil || *opts.Temperature != DefaultTemperature {
		t.Fatalf("expected default temperature, got %v", opts.Temperature)
	}
	if opts.MaxTokens != DefaultMaxTokens {
		t.Fatalf("expected default max tokens, got %d", opts.MaxTokens)
	}
}

func TestOptionsExplicitZeroTemperatureSurvives(t *testing.T) {
	opts := Options{Temperature: Float32(0), MaxTokens: 64}.withDefaults()
	if opts.Temperature == nil || *opts.Temperature != 0 {
		t.Fatalf("explicit zero temperature must not be coerced, got %v", opts.Temperature)
	}
	if opts.MaxTokens != 64 {
		t.Fatalf("explicit max tokens must survive, got %d", opts.MaxTokens)
	}
}

func TestApproxTokensFloorsAtOne(t *testing.T) {
	if n := ApproxTokens(""); n != 1 {
		t.Fatalf("expected 1, got %d", n)
	}
	if n := ApproxTokens("12345678"); n != 2 {
		t.Fatalf("expected 2, got %d", n)
	}
}
