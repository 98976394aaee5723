package migration

import (
	"fmt"

	"github.com/BaSui01/schemaflow/store"
)

// NewMigratorFromStoreConfig creates a migrator for the record store's
// database. DSN-based drivers reuse the store's connection string; the
// sqlite URL is built from the configured file path.
func NewMigratorFromStoreConfig(cfg store.Config) (*DefaultMigrator, error) {
	dbType, err := ParseDatabaseType(cfg.Database.Driver)
	if err != nil {
		return nil, fmt.Errorf("invalid database type: %w", err)
	}

	var dbURL string
	switch dbType {
	case DatabaseTypePostgres, DatabaseTypeMySQL:
		if cfg.Database.DSN == "" {
			return nil, fmt.Errorf("database DSN is required for driver %s", cfg.Database.Driver)
		}
		dbURL = cfg.Database.DSN
	case DatabaseTypeSQLite:
		path := cfg.Database.Path
		if path == "" {
			path = store.DefaultConfig().Database.Path
		}
		dbURL = BuildDatabaseURL(dbType, "", 0, path, "", "", "")
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}

	return NewMigrator(&Config{
		DatabaseType: dbType,
		DatabaseURL:  dbURL,
		TableName:    "schema_migrations",
	})
}

// NewMigratorFromURL creates a new migrator from a database URL
func NewMigratorFromURL(dbType, dbURL string) (*DefaultMigrator, error) {
	dt, err := ParseDatabaseType(dbType)
	if err != nil {
		return nil, err
	}

	return NewMigrator(&Config{
		DatabaseType: dt,
		DatabaseURL:  dbURL,
		TableName:    "schema_migrations",
	})
}
