package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mikey/spam-detective/internal/adapters/repo"
	"github.com/mikey/spam-detective/internal/config"
	"github.com/mikey/spam-detective/internal/core"
)

// RepositoryFactory creates account repositories based on configuration
type RepositoryFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(cfg *config.Config, logger *zap.Logger) *RepositoryFactory {
	return &RepositoryFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateAccountRepository creates an account repository based on the configuration
func (f *RepositoryFactory) CreateAccountRepository() (core.AccountRepository, error) {
	driver := f.cfg.GetString("repository.driver")

	switch driver {
	case "sqlite3":
		sqlitePath := f.cfg.GetString("repository.sqlite_path")
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return repo.New(driver, sqlitePath)
	case "mysql":
		return repo.New(driver, f.cfg.GetString("repository.mysql_dsn"))
	default:
		return nil, fmt.Errorf("unsupported repository driver: %s", driver)
	}
}
