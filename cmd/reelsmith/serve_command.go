package main

import (
	"strings"

	"github.com/spf13/cobra"

	"reelsmith/internal/api"
	"reelsmith/internal/pipeline"
	"reelsmith/internal/runs"
	"reelsmith/internal/workflow"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the alignment and run ledger HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
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
			address := strings.TrimSpace(bind)
			if address == "" {
				address = cfg.Paths.APIBind
			}
			return ctx.withStore(func(store *runs.Store) error {
				runner := workflow.NewRunner(cfg, store, set, logger)
				server := api.NewServer(store, runner, logger)
				return server.ListenAndServe(cmd.Context(), address)
			})
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (default from config paths.api_bind)")
	return cmd
}
