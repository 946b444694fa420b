package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/avosuivi/actionplan-backend/internal/domain"
	"github.com/avosuivi/actionplan-backend/internal/platform/envutil"
	"github.com/avosuivi/actionplan-backend/internal/platform/logger"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	dsn := loadDSN(log)

	serviceLog.Info("Connecting to Postgres...")
	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	return &PostgresService{db: gormDB, log: serviceLog}, nil
}

// loadDSN prefers a full DATABASE_URL and otherwise assembles the DSN from
// discrete POSTGRES_* variables. The hosted databases this service replaced
// required TLS, so the ssl mode stays configurable.
func loadDSN(log *logger.Logger) string {
	if direct := strings.TrimSpace(envutil.GetEnv("DATABASE_URL", "", log)); direct != "" {
		return direct
	}
	host := envutil.GetEnv("POSTGRES_HOST", "localhost", log)
	port := envutil.GetEnv("POSTGRES_PORT", "5432", log)
	user := envutil.GetEnv("POSTGRES_USER", "postgres", log)
	password := envutil.GetEnv("POSTGRES_PASSWORD", "", log)
	name := envutil.GetEnv("POSTGRES_NAME", "actionplan", log)
	sslmode := envutil.GetEnv("POSTGRES_SSLMODE", "disable", log)
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, password, host, port, name, sslmode)
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := AutoMigrate(s.db); err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	return nil
}

// AutoMigrate is shared with the test helpers so the schema stays in one place.
func AutoMigrate(gormDB *gorm.DB) error {
	return gormDB.AutoMigrate(
		&domain.Conversation{},
		&domain.Sujet{},
		&domain.Action{},
	)
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
