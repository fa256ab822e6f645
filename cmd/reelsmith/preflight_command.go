package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reelsmith/internal/deps"
	"reelsmith/internal/preflight"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Check credentials, directories and external tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			list := newChecklist(out)

			results := preflight.RunAll(cmd.Context(), cfg)
			list.section("Services")
			for _, r := range results {
				v := verdictPass
				if !r.Passed {
					v = verdictFail
				}
				list.line(r.Name, v, r.Detail)
			}

			fmt.Fprintln(out)
			statuses := preflight.CheckSystemDeps(cfg)
			list.section("Dependencies")
			for _, s := range statuses {
				switch {
				case s.Available:
					list.line(s.Name, verdictPass, s.Path)
				case s.Optional:
					list.line(s.Name, verdictWarn, s.Detail)
				default:
					list.line(s.Name, verdictFail, s.Detail)
				}
			}

			failures := preflight.Failures(results)
			for _, missing := range deps.Missing(statuses) {
				failures = append(failures, fmt.Sprintf("%s: %s", missing.Name, missing.Detail))
			}
			if len(failures) > 0 {
				return fmt.Errorf("preflight failed: %s", strings.Join(failures, "; "))
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}
}
