package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/doeshing/recogaize/internal/app"
	"github.com/doeshing/recogaize/internal/domain"
	"github.com/doeshing/recogaize/internal/infrastructure/cli/helpers"
)

// NewHistoryCommand creates the history command with all subcommands
func NewHistoryCommand(container *app.Container) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the caption archive",
	}

	historyCmd.AddCommand(
		newHistoryListCommand(container),
		newHistorySearchCommand(container),
		newHistoryClearCommand(container),
		newHistoryExportCommand(container),
		newHistoryStatsCommand(container),
		newHistoryRetainCommand(container),
	)

	return historyCmd
}

func newHistoryListCommand(container *app.Container) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent archive entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHistoryEntries(cmd.OutOrStdout(), container, limit, "")
		},
	}

	cmd.Flags().IntVar(&limit, "limit", domain.DefaultHistoryLimit, "Max entries to show")
	return cmd
}

func newHistorySearchCommand(container *app.Container) *cobra.Command {
	var query string
	var searchLimit int

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search captions and file names for a keyword",
		RunE: func(cmd *cobra.Command, args []string) error {
			if query == "" {
				return errors.New(ErrQueryRequired)
			}
			return listHistoryEntries(cmd.OutOrStdout(), container, searchLimit, query)
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "Search keyword")
	cmd.Flags().IntVar(&searchLimit, "limit", domain.DefaultHistorySearchLimit, "Limit search results")
	return cmd
}

func newHistoryClearCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every archive entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.HistoryStore == nil {
				return errors.New(ErrHistoryStoreUnavailable)
			}
			if err := container.HistoryStore.Clear(); err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}
			return nil
		},
	}
}

func newHistoryExportCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "export <path>",
		Short: "Export the archive to a JSONL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.HistoryStore == nil {
				return errors.New(ErrHistoryStoreUnavailable)
			}
			if err := container.HistoryStore.ExportJSON(args[0]); err != nil {
				return fmt.Errorf("failed to export history to %s: %w", args[0], err)
			}
			return nil
		},
	}
}

func newHistoryStatsCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show success rate, latency and common caption terms",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showHistoryStats(cmd.OutOrStdout(), container)
		},
	}
}

func newHistoryRetainCommand(container *app.Container) *cobra.Command {
	var retainDays int

	cmd := &cobra.Command{
		Use:   "retain",
		Short: "Prune entries older than N days and update retention policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			if retainDays <= 0 {
				return errors.New(ErrInvalidRetainDays)
			}
			return updateHistoryRetention(cmd.Context(), cmd.OutOrStdout(), container, retainDays)
		},
	}

	cmd.Flags().IntVar(&retainDays, "days", domain.DefaultHistoryRetainDays, "Days to retain history")
	return cmd
}

func listHistoryEntries(out io.Writer, container *app.Container, limit int, query string) error {
	store := container.HistoryStore
	if store == nil {
		return errors.New(ErrHistoryStoreUnavailable)
	}

	records, err := store.Records(limit, query)
	if err != nil {
		return fmt.Errorf("failed to retrieve history records: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(out, MsgNoHistoryRecorded)
		return nil
	}

	for _, rec := range records {
		result := rec.Caption
		if !rec.Success {
			result = "error: " + rec.Error
		}
		fmt.Fprintf(out, "%s | %s | %dms | %s\n",
			rec.Timestamp.Local().Format(domain.DisplayTimeFormat),
			rec.FileName,
			rec.DurationMS,
			result)
	}
	return nil
}

func showHistoryStats(out io.Writer, container *app.Container) error {
	store := container.HistoryStore
	if store == nil {
		return errors.New(ErrHistoryStoreUnavailable)
	}

	records, err := store.Records(domain.MaxHistoryAnalysisRecords, "")
	if err != nil {
		return fmt.Errorf("failed to retrieve history for analysis: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(out, MsgNoHistoryRecorded)
		return nil
	}

	stats := helpers.AnalyzeHistoryRecords(records)
	displayHistoryStatistics(out, stats)
	return nil
}

func displayHistoryStatistics(out io.Writer, stats helpers.HistoryStatistics) {
	fmt.Fprintf(out, "Entries analyzed: %d\nSuccessful: %d\nSuccess rate: %.1f%%\nAverage duration: %s\n",
		stats.Total,
		stats.Successful,
		helpers.CalculateSuccessRate(stats.Successful, stats.Total),
		stats.AverageDuration)

	if len(stats.TermFrequency) > 0 {
		fmt.Fprintln(out, "Top caption terms:")
		for _, stat := range helpers.CalculateTopTerms(stats.TermFrequency, DefaultTopTerms) {
			fmt.Fprintf(out, "  %s (%d)\n", stat.Term, stat.Count)
		}
	}

	if len(stats.Formats) > 0 {
		fmt.Fprintln(out, "Formats:")
		formats := make([]string, 0, len(stats.Formats))
		for format := range stats.Formats {
			formats = append(formats, format)
		}
		sort.Strings(formats)
		for _, format := range formats {
			fmt.Fprintf(out, "  %s: %d\n", format, stats.Formats[format])
		}
	}
}

func updateHistoryRetention(ctx context.Context, out io.Writer, container *app.Container, days int) error {
	store := container.HistoryStore
	if store == nil {
		return errors.New(ErrHistoryStoreUnavailable)
	}

	if err := store.PruneOlderThan(days); err != nil {
		return fmt.Errorf("failed to prune old history: %w", err)
	}

	cfg, err := container.ConfigProvider.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.History.RetentionDays = days
	if err := helpers.SaveConfigWithValidation(container, cfg); err != nil {
		return err
	}

	fmt.Fprintf(out, "Retained last %d days of history.\n", days)
	return nil
}
