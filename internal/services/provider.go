package services

import (
	"context"

	"github.com/sonahq/sona-backend/internal/llm"
	"github.com/sonahq/sona-backend/internal/logger"
)

// ProviderStatus reports one provider's configuration state for the
// settings surface.
type ProviderStatus struct {
	Name       string   `json:"name"`
	Configured bool     `json:"configured"`
	Default    bool     `json:"default"`
	Models     []string `json:"models"`
}

type ProviderService interface {
	List(ctx context.Context) []ProviderStatus
	TestConnection(ctx context.Context, name string) (bool, error)
}

type providerService struct {
	log      *logger.Logger
	registry *llm.Registry
}

func NewProviderService(log *logger.Logger, registry *llm.Registry) ProviderService {
	return &providerService{
		log:      log.With("service", "ProviderService"),
		registry: registry,
	}
}

func (s *providerService) List(ctx context.Context) []ProviderStatus {
	configured := map[string]bool{}
	for _, name := range s.registry.ListConfigured() {
		configured[name] = true
	}
	statuses := make([]ProviderStatus, 0, len(llm.ProviderModels))
	for _, name := range []string{"openai", "anthropic", "google"} {
		statuses = append(statuses, ProviderStatus{
			Name:       name,
			Configured: configured[name],
			Default:    name == s.registry.DefaultName(),
			Models:     llm.ModelsFor(name),
		})
	}
	return statuses
}

func (s *providerService) TestConnection(ctx context.Context, name string) (bool, error) {
	provider, err := s.registry.Get(name)
	if err != nil {
		return false, err
	}
	ok := provider.TestConnection(ctx)
	s.log.Info("Provider connection tested", "provider", provider.Name(), "ok", ok)
	return ok, nil
}
