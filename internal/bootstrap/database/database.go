package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"complyd/internal/bootstrap/config"
	"complyd/internal/bootstrap/logging"
	"complyd/internal/errs"
)

// Open connects to the configured database. Postgres is the production
// driver; sqlite serves local runs and tests.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.database"))

	var dialector gorm.Dialector
	switch strings.ToLower(cfg.Driver) {
	case "postgres", "postgresql":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite", "sqlite3":
		dialector = gormsqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, errs.Wrapf(err, "open %s database", cfg.Driver)
	}
	logging.Info(logCtx, "database opened", slog.String("driver", cfg.Driver))
	return db, nil
}
