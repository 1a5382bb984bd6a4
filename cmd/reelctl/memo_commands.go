package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newMemoCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memo",
		Short: "Read or replace the scratch memo",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the memo",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			memo, err := store.Memo(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), memo)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <text>...",
		Short: "Replace the memo",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			return store.SetMemo(cmd.Context(), strings.Join(args, " "))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the memo",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			return store.ClearMemo(cmd.Context())
		},
	})
	return cmd
}
