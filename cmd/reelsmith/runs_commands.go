package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"reelsmith/internal/api"
	"reelsmith/internal/logs"
	"reelsmith/internal/runs"
	"reelsmith/internal/workflow"
)

const promptColumnWidth = 40

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect and manage the run ledger",
	}

	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsShowCommand(ctx))
	runsCmd.AddCommand(newRunsRetryCommand(ctx))
	runsCmd.AddCommand(newRunsRemoveCommand(ctx))
	runsCmd.AddCommand(newRunsClearCommand(ctx))
	runsCmd.AddCommand(newRunsLogCommand(ctx))

	return runsCmd
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := parseStatuses(listStatuses)
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *runs.Store) error {
				list, err := store.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				dtos := make([]api.Run, 0, len(list))
				for _, run := range list {
					dtos = append(dtos, api.FromRun(run))
				}
				dtos = api.SortRunsNewestFirst(dtos)
				if asJSON {
					if dtos == nil {
						dtos = []api.Run{}
					}
					return printJSON(cmd, dtos)
				}

				out := cmd.OutOrStdout()
				if len(dtos) == 0 {
					fmt.Fprintln(out, "No runs")
					return nil
				}
				printTable(out, runColumns, buildRunRows(dtos))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&listStatuses, "status", "s", nil, "Filter by run status (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one run with its artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePositiveIDs(args)
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *runs.Store) error {
				run, err := store.GetByID(cmd.Context(), ids[0])
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %d not found", ids[0])
				}
				dto := api.FromRun(run)
				if asJSON {
					return printJSON(cmd, dto)
				}
				printRunDetail(cmd.OutOrStdout(), dto)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newRunsRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [id...]",
		Short: "Return failed or review runs to their last completed stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePositiveIDs(args)
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *runs.Store) error {
				updated, err := store.Retry(cmd.Context(), ids...)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if updated == 0 {
					fmt.Fprintln(out, "No failed or review runs to retry")
					return nil
				}
				fmt.Fprintf(out, "Retried %d runs; continue them with `reelsmith resume <id>`\n", updated)
				return nil
			})
		},
	}
}

func newRunsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id...>",
		Short: "Delete runs from the ledger",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePositiveIDs(args)
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *runs.Store) error {
				out := cmd.OutOrStdout()
				for _, id := range ids {
					removed, err := store.Remove(cmd.Context(), id)
					if err != nil {
						return err
					}
					if removed {
						fmt.Fprintf(out, "Run %d removed\n", id)
					} else {
						fmt.Fprintf(out, "Run %d not found\n", id)
					}
				}
				return nil
			})
		},
	}
}

func newRunsClearCommand(ctx *commandContext) *cobra.Command {
	var clearStatuses []string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete runs by status, or every run",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := parseStatuses(clearStatuses)
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *runs.Store) error {
				removed, err := store.Clear(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d runs\n", removed)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&clearStatuses, "status", "s", nil, "Only clear runs with this status (repeatable)")
	return cmd
}

func newRunsLogCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool

	cmd := &cobra.Command{
		Use:   "log <id>",
		Short: "Print a run's log, optionally following new records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePositiveIDs(args)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := workflow.RunLogPath(cfg.Paths.LogDir, ids[0])
			chunk, err := logs.Tail(path, lines)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, line := range chunk.Lines {
				fmt.Fprintln(out, line)
			}
			if !follow {
				if len(chunk.Lines) == 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "No log output for run %d at %s\n", ids[0], path)
				}
				return nil
			}
			err = logs.Follow(cmd.Context(), path, chunk.Offset, 0, func(line string) {
				fmt.Fprintln(out, line)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to print")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	return cmd
}

func parseStatuses(values []string) ([]runs.Status, error) {
	statuses := make([]runs.Status, 0, len(values))
	for _, value := range values {
		status, ok := runs.ParseStatus(value)
		if !ok {
			return nil, fmt.Errorf("unknown run status %q", value)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

var runColumns = []column{
	{title: "ID", numeric: true},
	{title: "Status"},
	{title: "Stage"},
	{title: "Created"},
	{title: "Prompt"},
}

func buildRunRows(items []api.Run) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			strconv.FormatInt(item.ID, 10),
			item.Status,
			item.Progress.Stage,
			item.CreatedAt,
			truncate(item.Prompt, promptColumnWidth),
		})
	}
	return rows
}

func printRunDetail(out io.Writer, run api.Run) {
	fields := []struct{ label, value string }{
		{"ID", strconv.FormatInt(run.ID, 10)},
		{"Status", run.Status},
		{"Progress", fmt.Sprintf("%s %.0f%% %s", run.Progress.Stage, run.Progress.Percent, run.Progress.Message)},
		{"Prompt", run.Prompt},
		{"Work dir", run.WorkDir},
		{"Script", run.ScriptPath},
		{"Audio", run.AudioPath},
		{"Transcript", run.TranscriptPath},
		{"Sentences", run.SentencesPath},
		{"Keywords", run.KeywordsPath},
		{"Timeline", run.TimelinePath},
		{"Video", run.VideoPath},
		{"Archive", run.ArchivePath},
		{"Error", run.ErrorMessage},
		{"Review reason", run.ReviewReason},
		{"Created", run.CreatedAt},
		{"Updated", run.UpdatedAt},
	}
	for _, f := range fields {
		value := strings.TrimSpace(f.value)
		if value == "" {
			continue
		}
		fmt.Fprintf(out, "%-14s %s\n", f.label+":", value)
	}
}

func truncate(value string, width int) string {
	value = strings.Join(strings.Fields(value), " ")
	runes := []rune(value)
	if len(runes) <= width {
		return value
	}
	return string(runes[:width-1]) + "…"
}
