package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"lipidgenesis/internal/config"
	"lipidgenesis/internal/db"
	"lipidgenesis/internal/db/mock"
	applog "lipidgenesis/internal/log"
	"lipidgenesis/internal/refdata"
)

var (
	newMockDatabaseFunc = mock.New
	configureDatabase   = db.Configure
)

var errNoDatabase = errors.New("no catalogue database configured; set DATABASE_URL or DATABASE_USE_MOCK")

// openDatabase connects to the configured catalogue store. It returns a nil
// handle when neither a URL nor the mock database is configured.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	if cfg.UseMock {
		applog.Info(ctx, "using mock database")
		database, err := newMockDatabaseFunc(ctx)
		if err != nil {
			return nil, fmt.Errorf("initialise mock database: %w", err)
		}
		return database, nil
	}
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, nil
	}

	applog.Info(ctx, "connecting to database")
	database, err := configureDatabase(cfg)
	if err != nil {
		return nil, fmt.Errorf("configure database: %w", err)
	}
	return database, nil
}

// loadCatalog resolves the reference catalogue: from the database when one is
// configured (seeding it on first use), otherwise from CATALOG_PATH or the
// embedded data.
func loadCatalog(ctx context.Context, cfg config.Config) (*refdata.Catalog, error) {
	database, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if database != nil {
		return catalogFromDatabase(ctx, database, cfg.Catalog)
	}
	return fileCatalog(ctx, cfg.Catalog)
}

func fileCatalog(ctx context.Context, cfg config.CatalogConfig) (*refdata.Catalog, error) {
	if cfg.Path == "" {
		return refdata.Default()
	}
	applog.Debug(ctx, "loading catalog file", "path", cfg.Path)
	return refdata.LoadFile(cfg.Path)
}

func catalogFromDatabase(ctx context.Context, database *gorm.DB, fileCfg config.CatalogConfig) (*refdata.Catalog, error) {
	cat, err := refdata.FromDB(ctx, database)
	if err != nil {
		return nil, err
	}
	if len(cat.OilNames()) > 0 {
		return cat, nil
	}

	seed, err := fileCatalog(ctx, fileCfg)
	if err != nil {
		return nil, err
	}
	applog.Info(ctx, "seeding empty catalog database", "oils", len(seed.OilNames()))
	if err := refdata.Seed(ctx, database, seed); err != nil {
		return nil, fmt.Errorf("seed catalog: %w", err)
	}
	return refdata.FromDB(ctx, database)
}
