package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"reelsmith/internal/alignment"
	"reelsmith/internal/keywords"
	"reelsmith/internal/transcript"
)

func newAlignCommand(ctx *commandContext) *cobra.Command {
	var keywordsPath string
	var transcriptPath string
	var outPath string
	var mediaRoot string

	cmd := &cobra.Command{
		Use:   "align",
		Short: "Build a gap-free timeline from keywords and word timestamps",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(keywordsPath) == "" || strings.TrimSpace(transcriptPath) == "" {
				return errors.New("--keywords and --transcript are required")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			tr, err := transcript.Load(transcriptPath)
			if err != nil {
				return err
			}
			tokens, err := keywords.Load(keywordsPath)
			if err != nil {
				return err
			}

			root := strings.TrimSpace(mediaRoot)
			if root == "" {
				root = cfg.Alignment.MediaRoot
			}
			segments, err := alignment.Build(tr.Words, tokens, root, logger)
			if err != nil {
				return err
			}

			if strings.TrimSpace(outPath) == "" {
				if segments == nil {
					segments = []alignment.Segment{}
				}
				return printJSON(cmd, segments)
			}
			if err := alignment.WriteTimeline(outPath, segments); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Aligned %d of %d keywords; timeline written to %s\n", len(segments), len(tokens), outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&keywordsPath, "keywords", "k", "", "Keyword token list (JSON)")
	cmd.Flags().StringVarP(&transcriptPath, "transcript", "t", "", "Transcript with word timestamps (JSON)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the timeline here instead of stdout")
	cmd.Flags().StringVar(&mediaRoot, "media-root", "", "Directory media paths are synthesized under (default from config)")
	return cmd
}

func newTimelineCommand() *cobra.Command {
	timelineCmd := &cobra.Command{
		Use:   "timeline",
		Short: "Inspect timeline files",
	}
	timelineCmd.AddCommand(newTimelineShowCommand())
	return timelineCmd
}

func newTimelineShowCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:         "show <file>",
		Short:       "Print a timeline as a table",
		Args:        cobra.ExactArgs(1),
		Annotations: standalone(),
		RunE: func(cmd *cobra.Command, args []string) error {
			segments, err := alignment.ReadTimeline(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				if segments == nil {
					segments = []alignment.Segment{}
				}
				return printJSON(cmd, segments)
			}
			out := cmd.OutOrStdout()
			if len(segments) == 0 {
				fmt.Fprintln(out, "Timeline is empty")
				return nil
			}
			printTable(out, timelineColumns, timelineRows(segments))
			last := segments[len(segments)-1]
			fmt.Fprintf(out, "%d segments, ending at %s\n", len(segments), formatMillis(last.End))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

var timelineColumns = []column{
	{title: "Order", numeric: true},
	{title: "Type"},
	{title: "Keyword"},
	{title: "Start", numeric: true},
	{title: "End", numeric: true},
	{title: "Duration", numeric: true},
	{title: "Path"},
}

func timelineRows(segments []alignment.Segment) [][]string {
	rows := make([][]string, 0, len(segments))
	for _, seg := range segments {
		rows = append(rows, []string{
			strconv.Itoa(seg.OrderID),
			string(seg.Type),
			seg.Keyword,
			strconv.FormatInt(seg.Start, 10),
			strconv.FormatInt(seg.End, 10),
			formatMillis(seg.Duration()),
			seg.Path,
		})
	}
	return rows
}

func formatMillis(ms int64) string {
	return fmt.Sprintf("%.3fs", float64(ms)/1000)
}
