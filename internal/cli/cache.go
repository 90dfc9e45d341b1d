package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lineage/pkg/cache"
)

// newCache opens the configured render cache, or a null cache when caching
// is disabled or the backend is unreachable.
func (c *CLI) newCache(ctx context.Context, noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	cfg := c.Config.Cache
	store, err := cache.Open(ctx, cache.Options{
		Backend:   cfg.Backend,
		Dir:       dir,
		URL:       cfg.URL,
		Namespace: cfg.Namespace,
	})
	if err != nil {
		printWarning("Render cache disabled: %v", err)
		return cache.NewNullCache()
	}
	c.Logger.Debug("render cache", "backend", cfg.Backend)
	return store
}

// cacheCommand creates the cache command group for the render cache.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the render cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached render",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if b := strings.ToLower(c.Config.Cache.Backend); b != cache.BackendFile && b != "" {
				return fmt.Errorf("cache clear only supports the file backend; entries in %s expire after %s", b, c.Config.Cache.TTL)
			}
			dir, err := cacheDir()
			if err != nil {
				return err
			}
			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			if err := fc.Clear(); err != nil {
				return err
			}
			printSuccess("Cache cleared")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return err
			}
			_, err = c.Out.Write([]byte(dir + "\n"))
			return err
		},
	})

	return cmd
}
