package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fwmeta/pkg/cache"
	"github.com/matzehuels/fwmeta/pkg/config"
	"github.com/matzehuels/fwmeta/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the detection cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached detection results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			return clearCache(cmd.Context(), cfg)
		},
	}
}

func clearCache(ctx context.Context, cfg *config.Config) error {
	switch cfg.Cache.Backend {
	case config.BackendFile:
		dir, err := cacheDir(cfg)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "get cache dir")
		}
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			printInfo("Cache is empty")
			return nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return err
		}
		count, err := fc.Clear()
		if err != nil {
			return err
		}
		printSuccess("Cleared %d cached entries", count)
		printDetail("Directory: %s", dir)

	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rc.Close()
		count, err := rc.Clear(ctx, cfg.Cache.Redis.Prefix)
		if err != nil {
			return err
		}
		printSuccess("Cleared %d cached entries", count)
		printDetail("Redis: %s (prefix %q)", cfg.Cache.Redis.Addr, cfg.Cache.Redis.Prefix)

	default:
		printInfo("Cache is disabled")
	}
	return nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where detection results are cached",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			switch cfg.Cache.Backend {
			case config.BackendFile:
				dir, err := cacheDir(cfg)
				if err != nil {
					return errors.Wrap(errors.ErrCodeInternal, err, "get cache dir")
				}
				fmt.Fprintln(cmd.OutOrStdout(), dir)
			case config.BackendRedis:
				fmt.Fprintf(cmd.OutOrStdout(), "redis://%s/%d\n", cfg.Cache.Redis.Addr, cfg.Cache.Redis.DB)
			default:
				printInfo("Cache is disabled")
			}
			return nil
		},
	}
}
