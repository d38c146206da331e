package app

import (
	"testing"

	"github.com/sonahq/sona-backend/internal/logger"
	"github.com/sonahq/sona-backend/internal/types"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig(logger.NewNop())
	if !cfg.DBAutoMigrate {
		t.Fatalf("auto-migrate should default to on")
	}
	if cfg.RetentionDays != types.SoftDeleteRetentionDays {
		t.Fatalf("expected retention %d, got %d", types.SoftDeleteRetentionDays, cfg.RetentionDays)
	}
}

func TestLoadConfigReadsTypedKnobs(t *testing.T) {
	t.Setenv("DB_AUTO_MIGRATE", "false")
	t.Setenv("CLONE_RETENTION_DAYS", "7")

	cfg := LoadConfig(logger.NewNop())
	if cfg.DBAutoMigrate {
		t.Fatalf("expected auto-migrate off")
	}
	if cfg.RetentionDays != 7 {
		t.Fatalf("expected retention 7, got %d", cfg.RetentionDays)
	}
}

func TestLoadConfigIgnoresMalformedKnobs(t *testing.T) {
	t.Setenv("DB_AUTO_MIGRATE", "maybe")
	t.Setenv("CLONE_RETENTION_DAYS", "a week")

	cfg := LoadConfig(logger.NewNop())
	if !cfg.DBAutoMigrate {
		t.Fatalf("malformed bool should fall back to default")
	}
	if cfg.RetentionDays != types.SoftDeleteRetentionDays {
		t.Fatalf("malformed int should fall back to default, got %d", cfg.RetentionDays)
	}
}
