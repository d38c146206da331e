package llm

import "context"

// Message is one chat turn sent to a completion provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options tune a single completion call. Zero values fall back to the
// defaults below; Temperature is a pointer so an explicit 0 stays
// distinguishable from unset.
type Options struct {
	Model       string
	Temperature *float32
	MaxTokens   int
}

const (
	DefaultTemperature float32 = 0.7
	DefaultMaxTokens           = 4096
)

// Float32 builds an Options.Temperature value in place.
func Float32(v float32) *float32 { return &v }

func (o Options) withDefaults() Options {
	if o.Temperature == nil {
		d := DefaultTemperature
		o.Temperature = &d
	}
	if o.MaxTokens == 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	return o
}

// Provider is the completion-client contract every backend implements.
// Errors are normalized to the four provider kinds in apierr.
type Provider interface {
	Name() string

	// Complete sends a non-streaming request and returns the text response.
	Complete(ctx context.Context, messages []Message, opts Options) (string, error)

	// Stream delivers text chunks through onDelta until end-of-stream.
	// The stream is finite and not restartable; replaying requires a
	// fresh call.
	Stream(ctx context.Context, messages []Message, opts Options, onDelta func(delta string)) error

	// CountTokens approximates the token count of text.
	CountTokens(ctx context.Context, text string) (int, error)

	// TestConnection reports whether the provider is reachable with the
	// configured credentials. All errors collapse to false.
	TestConnection(ctx context.Context) bool
}

// ApproxTokens is the shared length/4 heuristic, not real tokenization.
func ApproxTokens(text string) int {
	n := len(text) / 4
	if n < 1 {
		return 1
	}
	return n
}
