package database

import (
	"embed"
	"errors"
	"fmt"
	"net/url"

	"github.com/sameerjoshi/docsimus-physicians-sub001/config"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/entity"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Models lists every table owned by the service, parents first.
var Models = []interface{}{
	&entity.Role{},
	&entity.User{},
	&entity.Application{},
	&entity.DocumentSlot{},
	&entity.Component{},
	&entity.ComponentComment{},
	&entity.Assignment{},
	&entity.AuditLog{},
}

// Migrate brings the schema up to date. PostgreSQL runs the versioned SQL
// migrations; SQLite is built from the entity definitions.
func Migrate(cfg config.DBConfig, db *gorm.DB, log *logrus.Logger) error {
	if cfg.Driver == config.DriverSQLite {
		return AutoMigrate(db)
	}
	return MigratePostgres(cfg, log)
}

func MigratePostgres(cfg config.DBConfig, log *logrus.Logger) error {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}

	dsn := url.URL{
		Scheme:   "pgx5",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     cfg.Host + ":" + cfg.Port,
		Path:     "/" + cfg.Name,
		RawQuery: url.Values{"sslmode": []string{cfg.SSLMode}}.Encode(),
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, dsn.String())
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	log.Infof("Database schema at version %d (dirty=%v)", version, dirty)
	return nil
}

// AutoMigrate creates the schema from the entities.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("failed to auto-migrate: %w", err)
	}
	return nil
}
