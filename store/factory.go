package store

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/BaSui01/schemaflow/internal/database"
)

// NewStore creates a record store based on the configuration
func NewStore(config Config, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch config.Type {
	case StoreTypeMemory, "":
		return NewMemoryStore(config), nil

	case StoreTypeDatabase:
		return newDatabaseStore(config, logger)

	case StoreTypeRedis:
		return NewRedisStore(config)

	default:
		return nil, fmt.Errorf("unsupported store type: %s", config.Type)
	}
}

func newDatabaseStore(config Config, logger *zap.Logger) (Store, error) {
	dialector, err := openDialector(config.Database)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	poolCfg := database.DefaultPoolConfig()
	if config.Database.MaxOpenConns > 0 {
		poolCfg.MaxOpenConns = config.Database.MaxOpenConns
	}
	if config.Database.MaxIdleConns > 0 {
		poolCfg.MaxIdleConns = config.Database.MaxIdleConns
	}

	pool, err := database.NewPoolManager(db, poolCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to configure connection pool: %w", err)
	}

	logger.Info("record store database connected",
		zap.String("driver", config.Database.Driver))

	return NewDatabaseStore(pool, config, logger)
}

// openDialector selects the GORM dialector for the configured driver.
// The sqlite dialector is the pure-Go glebarez build, so file stores
// work without cgo.
func openDialector(cfg DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "postgres":
		return postgres.Open(cfg.DSN), nil
	case "mysql":
		return mysql.Open(cfg.DSN), nil
	case "sqlite":
		path := cfg.Path
		if path == "" {
			path = DefaultConfig().Database.Path
		}
		return sqlite.Open(path), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s (supported: postgres, mysql, sqlite)", cfg.Driver)
	}
}
