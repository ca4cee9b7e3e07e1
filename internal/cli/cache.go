package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/linkscope/pkg/cache"
)

// cacheCommand groups the cache maintenance subcommands.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the parse and snapshot cache",
		Long: `The cache holds parsed uploads and rendered snapshots, keyed by content
hash. The CLI uses files under the cache directory; "linkscope serve" with a
Redis URL keeps them in Redis instead.`,
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	var redisURL string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete cached graphs and snapshots",
		Example: `  linkscope cache clear
  linkscope cache clear --redis redis://localhost:6379/0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newPrinter(cmd.OutOrStdout())
			if redisURL != "" {
				client, err := cache.DialRedis(cmd.Context(), redisURL)
				if err != nil {
					return fmt.Errorf("connect redis: %w", err)
				}
				defer client.Close()
				if err := cache.NewRedisCache(client, redisCachePrefix).Clear(cmd.Context()); err != nil {
					return fmt.Errorf("clear cache: %w", err)
				}
				out.success("Cleared Redis cache")
				out.detail("Prefix: %s", redisCachePrefix)
				return nil
			}

			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			entries, err := os.ReadDir(dir)
			switch {
			case os.IsNotExist(err), err == nil && len(entries) == 0:
				out.info("Cache is empty")
				return nil
			case err != nil:
				return err
			}

			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			if err := fc.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			out.success("Cleared %d cached entries", len(entries))
			out.detail("Directory: %s", dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&redisURL, "redis", "", "clear the Redis cache at this URL instead of the file cache")
	return cmd
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
