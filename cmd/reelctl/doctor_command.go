package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"reelctl/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, binaries, and remote endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.effectiveConfig(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			results := preflight.RunAll(cmd.Context(), cfg)

			fmt.Fprintln(out, renderSectionHeader("Preflight", colorize))
			for _, r := range results {
				kind := statusOK
				switch {
				case r.Skipped:
					kind = statusWarn
				case !r.Passed:
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}
			if preflight.Failed(results) {
				return errors.New("preflight checks failed")
			}
			return nil
		},
	}
}
