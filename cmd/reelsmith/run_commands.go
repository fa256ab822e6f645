package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reelsmith/internal/config"
	"reelsmith/internal/fileutil"
	"reelsmith/internal/pipeline"
	"reelsmith/internal/runs"
	"reelsmith/internal/textutil"
	"reelsmith/internal/workflow"
)

const (
	slugMaxWords  = 6
	slugMaxLength = 40
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var promptFile string
	var transcriptPath string
	var keywordsPath string
	var audioPath string
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "run [prompt]",
		Short: "Generate a reel from a prompt, or from existing transcript and keyword files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			fromArtifacts := transcriptPath != "" || keywordsPath != "" || audioPath != ""
			var prompt string
			switch {
			case fromArtifacts:
				if transcriptPath == "" || keywordsPath == "" || audioPath == "" {
					return errors.New("--transcript, --keywords and --audio must be given together")
				}
				if len(args) > 0 || promptFile != "" {
					return errors.New("a prompt cannot be combined with existing artifacts")
				}
			case promptFile != "":
				data, err := os.ReadFile(promptFile)
				if err != nil {
					return fmt.Errorf("read prompt file: %w", err)
				}
				prompt = strings.TrimSpace(string(data))
			case len(args) == 1:
				prompt = strings.TrimSpace(args[0])
			}
			if !fromArtifacts && prompt == "" {
				return errors.New("a prompt is required (argument or --prompt-file)")
			}

			slug := prompt
			if fromArtifacts {
				slug = "import"
			}
			workDir := newWorkDir(cfg, slug, time.Now())

			return ctx.withStore(func(store *runs.Store) error {
				var run *runs.Run
				if fromArtifacts {
					paths, err := expandAll(transcriptPath, keywordsPath, audioPath)
					if err != nil {
						return err
					}
					paths, err = importArtifacts(workDir, paths[0], paths[1], paths[2])
					if err != nil {
						return err
					}
					run, err = store.NewFromArtifacts(cmd.Context(), workDir, paths[0], paths[1], paths[2])
					if err != nil {
						return err
					}
				} else {
					run, err = store.NewRun(cmd.Context(), prompt, workDir)
					if err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Run %d created in %s\n", run.ID, run.WorkDir)
				return executeRun(cmd, ctx, store, run, skipPreflight)
			})
		},
	}

	cmd.Flags().StringVarP(&promptFile, "prompt-file", "f", "", "Read the prompt from a file")
	cmd.Flags().StringVar(&transcriptPath, "transcript", "", "Start from an existing transcript (requires --keywords and --audio)")
	cmd.Flags().StringVar(&keywordsPath, "keywords", "", "Start from an existing keyword list")
	cmd.Flags().StringVar(&audioPath, "audio", "", "Narration audio matching the transcript")
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip credential and directory checks")
	return cmd
}

func newResumeCommand(ctx *commandContext) *cobra.Command {
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "resume <id>",
		Short: "Continue an interrupted run from its last completed stage",
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
				if run.IsTerminal() {
					return fmt.Errorf("run %d is %s; use `reelsmith runs retry %d` first", run.ID, run.Status, run.ID)
				}
				return executeRun(cmd, ctx, store, run, skipPreflight)
			})
		},
	}

	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip credential and directory checks")
	return cmd
}

func executeRun(cmd *cobra.Command, ctx *commandContext, store *runs.Store, run *runs.Run, skipPreflight bool) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}
	set, err := pipeline.Build(cfg, logger)
	if err != nil {
		return err
	}
	var opts []workflow.Option
	if skipPreflight {
		opts = append(opts, workflow.WithoutPreflight())
	}
	runner := workflow.NewRunner(cfg, store, set, logger, opts...)

	out := cmd.OutOrStdout()
	if err := runner.Execute(cmd.Context(), run); err != nil {
		if run.IsTerminal() {
			fmt.Fprintf(out, "Run %d %s: %s\n", run.ID, run.Status, run.ErrorMessage)
		}
		return err
	}
	fmt.Fprintf(out, "Run %d completed: %s\n", run.ID, run.VideoPath)
	if run.ArchivePath != "" {
		fmt.Fprintf(out, "Archive: %s\n", run.ArchivePath)
	}
	return nil
}

// newWorkDir names a run directory after its creation time and prompt.
func newWorkDir(cfg *config.Config, prompt string, now time.Time) string {
	return filepath.Join(cfg.Paths.WorkspaceDir, now.UTC().Format("20060102-150405")+"-"+textutil.Slug(prompt, slugMaxWords, slugMaxLength))
}

func expandAll(paths ...string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		expanded, err := config.ExpandPath(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(expanded); err != nil {
			return nil, fmt.Errorf("input %s: %w", expanded, err)
		}
		out = append(out, expanded)
	}
	return out, nil
}

// importArtifacts copies existing inputs into workDir under the names the
// pipeline writes, so retries never depend on the originals.
func importArtifacts(workDir, transcriptPath, keywordsPath, audioPath string) ([]string, error) {
	audioName := pipeline.AudioFile
	if ext := strings.ToLower(filepath.Ext(audioPath)); ext != "" && ext != filepath.Ext(pipeline.AudioFile) {
		audioName = strings.TrimSuffix(pipeline.AudioFile, filepath.Ext(pipeline.AudioFile)) + ext
	}
	sources := []string{transcriptPath, keywordsPath, audioPath}
	names := []string{pipeline.TranscriptFile, pipeline.KeywordsFile, audioName}
	out := make([]string, len(sources))
	for i, src := range sources {
		dst := filepath.Join(workDir, names[i])
		if err := fileutil.CopyFileVerified(src, dst); err != nil {
			return nil, fmt.Errorf("import %s: %w", src, err)
		}
		out[i] = dst
	}
	return out, nil
}

func parsePositiveIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid run id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
