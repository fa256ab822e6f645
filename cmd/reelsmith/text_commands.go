package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reelsmith/internal/generate"
	"reelsmith/internal/keywords"
	"reelsmith/internal/transcript"
)

func newSentencesCommand() *cobra.Command {
	var transcriptPath string
	var outPath string

	cmd := &cobra.Command{
		Use:         "sentences",
		Short:       "Split a transcript into timed sentences",
		Annotations: standalone(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(transcriptPath) == "" || strings.TrimSpace(outPath) == "" {
				return errors.New("--transcript and --out are required")
			}
			tr, err := transcript.Load(transcriptPath)
			if err != nil {
				return err
			}
			sentences := transcript.Sentences(*tr)
			if err := transcript.SaveSentences(outPath, sentences); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d sentences to %s\n", len(sentences), outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&transcriptPath, "transcript", "t", "", "Transcript with word timestamps (JSON)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Destination sentences file")
	return cmd
}

func newKeywordsCommand(ctx *commandContext) *cobra.Command {
	var sentencesPath string
	var outPath string

	cmd := &cobra.Command{
		Use:   "keywords",
		Short: "Extract keyword tokens from sentences with the configured LLM",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(sentencesPath) == "" || strings.TrimSpace(outPath) == "" {
				return errors.New("--sentences and --out are required")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			sentences, err := transcript.LoadSentences(sentencesPath)
			if err != nil {
				return err
			}
			client, err := generate.New(cfg)
			if err != nil {
				return err
			}
			delay := time.Duration(cfg.Keywords.RequestDelayMS) * time.Millisecond
			tokens, err := keywords.NewExtractor(client, delay, logger).Extract(cmd.Context(), sentences)
			if err != nil {
				return err
			}
			if tokens == nil {
				tokens = []keywords.Token{}
			}
			if err := keywords.Save(outPath, tokens); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Extracted %d keywords from %d sentences to %s\n", len(tokens), len(sentences), outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&sentencesPath, "sentences", "s", "", "Sentences file (JSON)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Destination keywords file")
	return cmd
}
