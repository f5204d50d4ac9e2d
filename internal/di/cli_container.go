package di

import (
	"flag"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/spam-detective/internal/adapters/cache"
	"github.com/mikey/spam-detective/internal/adapters/external"
	"github.com/mikey/spam-detective/internal/config"
	"github.com/mikey/spam-detective/internal/core"
	"github.com/mikey/spam-detective/internal/domainlist"
	"github.com/mikey/spam-detective/internal/engine"
	"github.com/mikey/spam-detective/internal/logging"
	"github.com/mikey/spam-detective/internal/settings"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Account fields
	Username     string
	Email        string
	DisplayName  string
	FirstName    string
	LastName     string
	RegisteredAt string
	Posts        int
	Comments     int
	IP           string

	// Detection flags
	External bool

	// Output flags
	Verbose    bool
	JSONLog    bool
	JSONOutput bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	// Account fields
	flag.StringVar(&flags.Username, "username", "", "Username to analyze (required)")
	flag.StringVar(&flags.Email, "email", "", "Email address to analyze (required)")
	flag.StringVar(&flags.DisplayName, "display-name", "", "Display name")
	flag.StringVar(&flags.FirstName, "first-name", "", "First name")
	flag.StringVar(&flags.LastName, "last-name", "", "Last name")
	flag.StringVar(&flags.RegisteredAt, "registered", "", "Registration time, RFC3339 (defaults to now)")
	flag.IntVar(&flags.Posts, "posts", 0, "Post count")
	flag.IntVar(&flags.Comments, "comments", 0, "Comment count")
	flag.StringVar(&flags.IP, "ip", "", "Registration IP address")

	// Detection flags
	flag.BoolVar(&flags.External, "external", false, "Enable external reputation checks")

	// Output flags
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.BoolVar(&flags.JSONOutput, "json", false, "Print the result as JSON")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags) (*config.Config, error) {
		cfg, err := config.New()
		if err != nil {
			return nil, err
		}
		if flags.External {
			cfg.GetViper().Set("external.enabled", true)
		}
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	// Register an in-process cache; the CLI only needs it for the
	// external lookup memoization within a single run
	if err := container.Provide(func(logger *zap.Logger) core.CacheStore {
		return cache.NewMemoryCache(logger, time.Hour)
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

	// Register scoring engine with no repository and no result cache;
	// repository-backed analyzers are skipped for ad-hoc accounts
	if err := container.Provide(func(
		cfg *config.Config,
		checker *external.Checker,
		domains *domainlist.Manager,
		logger *zap.Logger,
	) (*engine.Engine, error) {
		thresholds, err := cfg.GetThresholds()
		if err != nil {
			return nil, err
		}
		return engine.New(engine.Params{
			External:   checker,
			Domains:    domains,
			Thresholds: thresholds,
			Detection:  cfg.GetDetection(),
			Batch:      cfg.GetBatch(),
			Logger:     logger,
		}), nil
	}); err != nil {
		return nil, err
	}

	return container, nil
}
