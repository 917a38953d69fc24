package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lanechart/pkg/cache"
)

// cacheCommand groups the render cache subcommands. All of them act on the
// configured directory, or the XDG default.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the render cache",
		Long: `The render cache keeps routed layouts, rendered files and downloaded
charts so unchanged inputs are not processed twice.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "info",
		Short: "Show the number and size of cached entries",
		Args:  cobra.NoArgs,
		RunE:  c.withFileCache(c.cacheInfo),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove all cached layouts, renders and downloads",
		Args:  cobra.NoArgs,
		RunE:  c.withFileCache(c.cacheClear),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("locate cache: %w", err)
			}
			fmt.Fprintln(stdout, dir)
			return nil
		},
	})

	return cmd
}

// withFileCache opens the on-disk cache for fn.
func (c *CLI) withFileCache(fn func(*cache.FileCache) error) func(*cobra.Command, []string) error {
	return func(*cobra.Command, []string) error {
		dir, err := c.cacheDir()
		if err != nil {
			return fmt.Errorf("locate cache: %w", err)
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return err
		}
		return fn(fc)
	}
}

func (c *CLI) cacheInfo(fc *cache.FileCache) error {
	entries, size, err := fc.Usage()
	if err != nil {
		return err
	}
	printKeyValue("directory", fc.Dir())
	printKeyValue("entries", fmt.Sprint(entries))
	printKeyValue("size", humanBytes(size))
	return nil
}

func (c *CLI) cacheClear(fc *cache.FileCache) error {
	count, err := fc.Clear()
	if err != nil {
		return err
	}
	if count == 0 {
		printInfo("Cache is empty")
		return nil
	}
	printSuccess("Cleared %d cached entries", count)
	printKeyValue("directory", fc.Dir())
	return nil
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
