package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/doeshing/recogaize/internal/app"
	"github.com/doeshing/recogaize/internal/domain"
)

// NewCacheCommand creates the cache command with all subcommands
func NewCacheCommand(container *app.Container) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the caption cache",
	}

	cacheCmd.AddCommand(
		newCacheListCommand(container),
		newCacheClearCommand(container),
	)

	return cacheCmd
}

func newCacheListCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cache entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.CacheStore == nil {
				return errors.New(ErrCacheStoreUnavailable)
			}
			entries, err := container.CacheStore.Entries(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to retrieve cache entries: %w", err)
			}
			displayCacheEntries(cmd.OutOrStdout(), container.CacheStore.Location(), entries)
			return nil
		},
	}
}

func newCacheClearCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached caption",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.CacheStore == nil {
				return errors.New(ErrCacheStoreUnavailable)
			}
			if err := container.CacheStore.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", container.CacheStore.Location())
			return nil
		},
	}
}

func displayCacheEntries(out io.Writer, location string, entries []domain.CacheEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, MsgNoCachedResponses)
		return
	}
	fmt.Fprintf(out, "%s (%d entries)\n", location, len(entries))
	for _, entry := range entries {
		key := entry.Key
		if len(key) > 12 {
			key = key[:12]
		}
		fmt.Fprintf(out, "%s | %s | %s\n",
			key,
			entry.CreatedAt.Local().Format(domain.DisplayTimeFormat),
			entry.Caption)
	}
}
