package main

import "github.com/spf13/cobra"

func newRootCommand() *cobra.Command {
	var configFlag string
	ctx := newCommandContext(&configFlag)

	root := &cobra.Command{
		Use:           "reelsmith",
		Short:         "Turn a prompt into a narrated reel with keyword-timed media",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if isStandalone(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
	}
	root.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	root.AddGroup(
		&cobra.Group{ID: "pipeline", Title: "Pipeline:"},
		&cobra.Group{ID: "tools", Title: "Stage tools:"},
		&cobra.Group{ID: "admin", Title: "Setup and service:"},
	)
	for group, cmds := range map[string][]*cobra.Command{
		"pipeline": {newRunCommand(ctx), newResumeCommand(ctx), newRunsCommand(ctx)},
		"tools":    {newSentencesCommand(), newKeywordsCommand(ctx), newAlignCommand(ctx), newTimelineCommand()},
		"admin":    {newConfigCommand(ctx), newPreflightCommand(ctx), newNotifyCommand(ctx), newServeCommand(ctx)},
	} {
		for _, cmd := range cmds {
			cmd.GroupID = group
			root.AddCommand(cmd)
		}
	}
	return root
}
