package store

import (
	"fmt"

	"leverage/internal/config"
	"leverage/pkg/logger"
)

// Open selects the backend named by cfg.Driver.
func Open(cfg *config.ConfigStore, logger logger.Logger) (Backend, error) {
	switch cfg.Driver {
	case config.StoreDriverLevelDB, "":
		return NewLevelDBBackend(cfg.DataDir, logger)
	case config.StoreDriverSQLite:
		dbCfg := cfg.SQLite
		if dbCfg.DataDir == "" {
			dbCfg.DataDir = cfg.DataDir
		}
		return NewSQLiteBackend(&dbCfg, logger)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}
