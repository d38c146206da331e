package llm

import (
	"sort"
	"sync"

	"github.com/sonahq/sona-backend/internal/apierr"
	"github.com/sonahq/sona-backend/internal/logger"
)

// Credentials holds the API keys loaded at startup. An empty key means
// the provider is not configured.
type Credentials struct {
	OpenAIAPIKey    string
	AnthropicAPIKey string
	GoogleAIAPIKey  string
	DefaultProvider string
}

// ProviderModels lists the selectable models per provider, default first.
var ProviderModels = map[string][]string{
	"openai":    {"gpt-4o", "gpt-4o-mini", "gpt-4.1", "o3-mini"},
	"anthropic": {"claude-sonnet-4-20250514", "claude-opus-4-20250514", "claude-3-5-haiku-20241022"},
	"google":    {"gemini-2.0-flash", "gemini-2.5-pro", "gemini-2.5-flash"},
}

// Registry resolves provider names to configured, retry-wrapped clients.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	defName   string
	log       *logger.Logger
}

func NewRegistry(creds Credentials, baseLog *logger.Logger) *Registry {
	log := baseLog.With("component", "llm.Registry")
	r := &Registry{
		providers: make(map[string]Provider),
		defName:   creds.DefaultProvider,
		log:       log,
	}
	if creds.OpenAIAPIKey != "" {
		r.providers["openai"] = WithRetry(NewOpenAIProvider(creds.OpenAIAPIKey, baseLog), baseLog)
	}
	if creds.AnthropicAPIKey != "" {
		r.providers["anthropic"] = WithRetry(NewAnthropicProvider(creds.AnthropicAPIKey, baseLog), baseLog)
	}
	if creds.GoogleAIAPIKey != "" {
		r.providers["google"] = WithRetry(NewGoogleProvider(creds.GoogleAIAPIKey, baseLog), baseLog)
	}
	if r.defName == "" {
		r.defName = "openai"
	}
	log.Info("Provider registry initialized", "configured", r.ListConfigured(), "default", r.defName)
	return r
}

// Register installs a provider under name, replacing any existing one.
// Used by tests to inject fakes.
func (r *Registry) Register(name string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = p
}

// Get resolves name to a configured provider. An empty name picks the
// default provider.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name == "" {
		name = r.defName
	}
	p, ok := r.providers[name]
	if !ok {
		return nil, apierr.NewProviderNotConfigured(name)
	}
	return p, nil
}

// DefaultName returns the name Get resolves an empty name to.
func (r *Registry) DefaultName() string {
	return r.defName
}

// ListConfigured returns the names of providers with credentials, sorted.
func (r *Registry) ListConfigured() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ModelsFor returns the known model list for a provider name.
func ModelsFor(name string) []string {
	return ProviderModels[name]
}
