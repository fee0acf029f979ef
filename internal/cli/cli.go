// Package cli implements the fwmeta command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fwmeta/pkg/buildinfo"
	"github.com/matzehuels/fwmeta/pkg/cache"
	"github.com/matzehuels/fwmeta/pkg/catalog"
	"github.com/matzehuels/fwmeta/pkg/chdk"
	"github.com/matzehuels/fwmeta/pkg/config"
	"github.com/matzehuels/fwmeta/pkg/errors"
	"github.com/matzehuels/fwmeta/pkg/meta"
	"github.com/matzehuels/fwmeta/pkg/software"
	"github.com/matzehuels/fwmeta/pkg/zipmeta"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "fwmeta"

	// detectorName identifies the signature detector in cache keys. The schema
	// version is part of it so a schema change invalidates old entries.
	detectorName = "chdk-signature/" + software.SchemaVersion
)

// Log levels for New.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "fwmeta extracts firmware metadata from camera packages",
		Long:         `fwmeta walks (possibly nested) ZIP packages, finds camera boot files and derives a complete metadata record for each one.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/fwmeta/config.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(c.scanCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the configuration selected by --config.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, path, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if path != "" {
		c.Logger.Debug("Loaded config", "path", path)
	} else {
		c.Logger.Debug("No config file, using defaults")
	}
	return cfg, nil
}

// =============================================================================
// Provider Factory
// =============================================================================

// newProvider builds the CHDK provider set for cfg with detection results
// cached in cc.
func (c *CLI) newProvider(cfg *config.Config, cc cache.Cache) (*zipmeta.Provider, error) {
	providers := chdk.Providers(chdk.Options{
		ProductName: cfg.ProductName,
		Category:    cfg.Category,
		Boot:        cfg.Boot,
	})

	keyer := cache.NewDefaultKeyer()
	if cfg.Cache.Backend == config.BackendRedis {
		keyer = cache.NewScopedKeyer(keyer, cfg.Cache.Redis.Prefix)
	}
	providers.Detector = &meta.CachingDetector{
		Detector: providers.Detector,
		Cache:    cc,
		Keyer:    keyer,
		Name:     detectorName,
		TTL:      cfg.CacheTTL(),
		Logger:   c.Logger,
	}

	return zipmeta.New(zipmeta.Options{
		Providers:       providers,
		Category:        cfg.Category,
		BootFile:        cfg.BootFile,
		NestedExtension: cfg.NestedExtension,
		Logger:          c.Logger,
	})
}

// newCache opens the configured detection cache.
func newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		return rc, nil
	case config.BackendFile:
		dir, err := cacheDir(cfg)
		if err != nil {
			return cache.NewNullCache(), nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	default:
		return cache.NewNullCache(), nil
	}
}

// newStore opens the configured catalog.
func newStore(ctx context.Context, cfg *config.Config) (catalog.Store, error) {
	switch cfg.Catalog.Backend {
	case config.BackendMongo:
		ms, err := catalog.NewMongoStore(ctx, catalog.MongoConfig{
			URI:        cfg.Catalog.Mongo.URI,
			Database:   cfg.Catalog.Mongo.Database,
			Collection: cfg.Catalog.Mongo.Collection,
		})
		if err != nil {
			return nil, err
		}
		return ms, nil
	case config.BackendFile:
		dir, err := catalogDir(cfg)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "locate catalog directory")
		}
		fs, err := catalog.NewFileStore(dir)
		if err != nil {
			return nil, err
		}
		return fs, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "no catalog configured: set [catalog] backend to file or mongo")
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the file cache directory: the configured one, or the
// per-user cache directory (~/.cache/fwmeta/).
func cacheDir(cfg *config.Config) (string, error) {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

// catalogDir returns the file catalog directory using the XDG data
// directory (~/.local/share/fwmeta/catalog/) unless one is configured.
func catalogDir(cfg *config.Config) (string, error) {
	if cfg.Catalog.Dir != "" {
		return cfg.Catalog.Dir, nil
	}
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName, "catalog"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName, "catalog"), nil
}
