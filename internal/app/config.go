package app

import (
	"strings"

	"github.com/sonahq/sona-backend/internal/llm"
	"github.com/sonahq/sona-backend/internal/logger"
	"github.com/sonahq/sona-backend/internal/types"
	"github.com/sonahq/sona-backend/internal/utils"
)

// Config is everything the process reads from the environment.
type Config struct {
	Port          string
	LogMode       string
	DBDriver      string
	DBDSN         string
	DBAutoMigrate bool
	RetentionDays int
	AllowOrigins  []string
	Credentials   llm.Credentials
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:          utils.GetEnv("PORT", "8080", log),
		LogMode:       utils.GetEnv("LOG_MODE", "development", log),
		DBDriver:      utils.GetEnv("DB_DRIVER", "sqlite", log),
		DBDSN:         utils.GetEnv("DB_DSN", "sona.db", log),
		DBAutoMigrate: utils.GetEnvAsBool("DB_AUTO_MIGRATE", true, log),
		RetentionDays: utils.GetEnvAsInt("CLONE_RETENTION_DAYS", types.SoftDeleteRetentionDays, log),
		Credentials: llm.Credentials{
			OpenAIAPIKey:    utils.GetEnv("OPENAI_API_KEY", "", log),
			AnthropicAPIKey: utils.GetEnv("ANTHROPIC_API_KEY", "", log),
			GoogleAIAPIKey:  utils.GetEnv("GOOGLE_AI_API_KEY", "", log),
			DefaultProvider: utils.GetEnv("DEFAULT_PROVIDER", "openai", log),
		},
	}
	origins := utils.GetEnv("CORS_ALLOW_ORIGINS", "", log)
	if origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				cfg.AllowOrigins = append(cfg.AllowOrigins, trimmed)
			}
		}
	}
	return cfg
}
