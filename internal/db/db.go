package db

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sonahq/sona-backend/internal/logger"
	"github.com/sonahq/sona-backend/internal/types"
)

// Service owns the gorm connection for the process.
type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

// New opens a database connection. driver is "postgres" or "sqlite"; dsn is
// the postgres URL or the sqlite file path.
func New(driver, dsn string, log *logger.Logger) (*Service, error) {
	serviceLog := log.With("service", "DBService")

	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	serviceLog.Info("Connecting to database...", "driver", driver)
	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		serviceLog.Error("Failed to connect to database", "driver", driver, "error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Service{db: db, log: serviceLog}, nil
}

// NewMemory opens a throwaway in-memory sqlite database. Each call gets its
// own database; the shared cache keeps it visible across pooled connections.
func NewMemory(log *logger.Logger) (*Service, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	svc, err := New("sqlite", dsn, log)
	if err != nil {
		return nil, err
	}
	if err := svc.AutoMigrateAll(); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	err := s.db.AutoMigrate(
		&types.VoiceClone{},
		&types.WritingSample{},
		&types.VoiceDNAVersion{},
		&types.MergedCloneSource{},
		&types.Content{},
		&types.ContentVersion{},
		&types.MethodologySettings{},
		&types.MethodologyVersion{},
	)
	if err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}

func (s *Service) DB() *gorm.DB {
	return s.db
}
