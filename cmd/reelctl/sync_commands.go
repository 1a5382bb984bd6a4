package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Merge local collections with the remote copy",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "scripts",
		Short: "Sync scripts (newest update wins)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := ctx.clients(cmd.Context())
			if err != nil {
				return err
			}
			out, err := cl.syncEngine().SyncScripts(cmd.Context())
			if err != nil {
				cl.notifySyncFailed(cmd.Context(), "scripts", err)
				return err
			}
			printSyncOutcome(cmd, "scripts", len(out.Items), out.LocalCount, out.RemoteCount, out.Republished, out.RepublishErr)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "history",
		Short: "Sync generation history (union by id)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := ctx.clients(cmd.Context())
			if err != nil {
				return err
			}
			out, err := cl.syncEngine().SyncHistory(cmd.Context())
			if err != nil {
				cl.notifySyncFailed(cmd.Context(), "history", err)
				return err
			}
			printSyncOutcome(cmd, "history", len(out.Items), out.LocalCount, out.RemoteCount, out.Republished, out.RepublishErr)
			return nil
		},
	})
	return cmd
}

func printSyncOutcome(cmd *cobra.Command, what string, merged, local, remote int, republished bool, republishErr error) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Synced %s: %d merged (local %d, remote %d)\n", what, merged, local, remote)
	switch {
	case republishErr != nil:
		fmt.Fprintf(cmd.ErrOrStderr(), "warn: re-publish failed: %v\n", republishErr)
	case republished:
		fmt.Fprintln(out, "Remote copy updated")
	}
}
