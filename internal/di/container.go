package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/spam-detective/internal/adapters/external"
	"github.com/mikey/spam-detective/internal/config"
	"github.com/mikey/spam-detective/internal/core"
	"github.com/mikey/spam-detective/internal/domainlist"
	"github.com/mikey/spam-detective/internal/engine"
	"github.com/mikey/spam-detective/internal/factory"
	"github.com/mikey/spam-detective/internal/lifecycle"
	"github.com/mikey/spam-detective/internal/logging"
	"github.com/mikey/spam-detective/internal/settings"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewRepositoryFactory); err != nil {
		return nil, err
	}

	// Register cache store
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheStore, error) {
		return f.CreateCacheStore()
	}); err != nil {
		return nil, err
	}

	// Register account repository
	if err := container.Provide(func(f *factory.RepositoryFactory) (core.AccountRepository, error) {
		return f.CreateAccountRepository()
	}); err != nil {
		return nil, err
	}

	// Register settings store and domain lists
	if err := container.Provide(settings.NewStore); err != nil {
		return nil, err
	}
	if err := container.Provide(domainlist.NewManager); err != nil {
		return nil, err
	}

	// Register external checker
	if err := container.Provide(func(cfg *config.Config, cacheStore core.CacheStore, logger *zap.Logger) (*external.Checker, error) {
		externalCfg, err := cfg.GetExternal()
		if err != nil {
			return nil, err
		}
		return external.NewChecker(externalCfg, cacheStore, logger), nil
	}); err != nil {
		return nil, err
	}

	// Register scoring engine
	if err := container.Provide(func(
		cfg *config.Config,
		cacheFactory *factory.CacheFactory,
		repo core.AccountRepository,
		cacheStore core.CacheStore,
		checker *external.Checker,
		domains *domainlist.Manager,
		logger *zap.Logger,
	) (*engine.Engine, error) {
		thresholds, err := cfg.GetThresholds()
		if err != nil {
			return nil, err
		}
		cacheTTL, err := cacheFactory.GetCacheTTL()
		if err != nil {
			return nil, err
		}
		return engine.New(engine.Params{
			Repo:         repo,
			Cache:        cacheStore,
			External:     checker,
			Domains:      domains,
			Thresholds:   thresholds,
			Detection:    cfg.GetDetection(),
			Batch:        cfg.GetBatch(),
			CacheEnabled: cacheFactory.IsCacheEnabled(),
			CacheTTL:     cacheTTL,
			Logger:       logger,
		}), nil
	}); err != nil {
		return nil, err
	}

	// Register lifecycle manager
	if err := container.Provide(func(
		cfg *config.Config,
		repo core.AccountRepository,
		eng *engine.Engine,
		logger *zap.Logger,
	) *lifecycle.Manager {
		return lifecycle.NewManager(repo, eng, cfg.GetLifecycle(), logger)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
