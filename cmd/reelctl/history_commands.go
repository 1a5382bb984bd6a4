package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reelctl/internal/reel"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect generation history",
	}
	cmd.AddCommand(newHistoryListCommand(ctx))
	cmd.AddCommand(newHistoryShowCommand(ctx))
	cmd.AddCommand(newHistoryDeleteCommand(ctx))
	return cmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var asJSON, offline bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List generated drafts, newest first",
		Long:  "List generated drafts, newest first. Local history is merged with the remote copy first when a webhook is configured.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := ctx.clients(cmd.Context())
			if err != nil {
				return err
			}
			var items []reel.HistoryItem
			if !offline && cl.webhook.Configured() {
				out, err := cl.syncEngine().SyncHistory(cmd.Context())
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warn: sync failed, showing local history: %v\n", err)
					cl.notifySyncFailed(cmd.Context(), "history", err)
				}
				items = out.Items
			}
			if items == nil {
				if items, err = cl.store.History(cmd.Context()); err != nil {
					return err
				}
			}
			if asJSON {
				if items == nil {
					items = []reel.HistoryItem{}
				}
				return writeJSON(cmd, items)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No history")
				return nil
			}
			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, []string{
					item.ID,
					item.Title,
					string(item.Template),
					joinTargets(item.Targets),
					item.CreatedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{
				{Header: "ID"},
				{Header: "Title", MaxWidth: 40},
				{Header: "Template"},
				{Header: "Targets"},
				{Header: "Created"},
			}, rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print history as JSON")
	cmd.Flags().BoolVar(&offline, "offline", false, "Show local history without syncing")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show the generated YAML of a history entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			item, err := store.GetHistory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if item == nil {
				return fmt.Errorf("history item %s not found", args[0])
			}
			if asJSON {
				return writeJSON(cmd, item)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  (%s, %s)\n\n", item.Title, item.Template, joinTargets(item.Targets))
			fmt.Fprintln(out, strings.TrimRight(item.Markup, "\n"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the entry as JSON")
	return cmd
}

func newHistoryDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a history entry locally and remotely",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := ctx.clients(cmd.Context())
			if err != nil {
				return err
			}
			remaining, removed, err := cl.store.DeleteHistory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("history item %s not found", args[0])
			}
			if cl.webhook.Configured() {
				if err := cl.webhook.SaveHistory(cmd.Context(), remaining); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warn: remote history update failed: %v\n", err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func joinTargets(targets reel.Targets) string {
	labels := make([]string, len(targets))
	for i, t := range targets {
		labels[i] = string(t)
	}
	return strings.Join(labels, ", ")
}
