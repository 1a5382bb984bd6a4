package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"reelctl/internal/reel"
)

func newBackendCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backend",
		Short: "Query the render backend catalogue",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "presets",
		Short: "List voice/style presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := ctx.clients(cmd.Context())
			if err != nil {
				return err
			}
			presets, err := cl.backend.Presets(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(presets))
			for _, p := range presets {
				rows = append(rows, []string{p.Name, p.Voice, strconv.FormatFloat(p.Speed, 'f', -1, 64), p.Description})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{
				{Header: "Name"},
				{Header: "Voice"},
				{Header: "Speed", Align: alignRight},
				{Header: "Description", MaxWidth: 50},
			}, rows))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "expressions",
		Short: "List character poses",
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := ctx.clients(cmd.Context())
			if err != nil {
				return err
			}
			items, err := cl.backend.Expressions(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(items))
			for _, e := range items {
				thumb := e.Thumbnail
				if thumb == "" {
					thumb = cl.backend.ExpressionThumbnailURL(reel.Expression(e.Name))
				}
				rows = append(rows, []string{e.Name, thumb})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{{Header: "Name"}, {Header: "Thumbnail"}}, rows))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "overlays",
		Short: "List overlay images",
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := ctx.clients(cmd.Context())
			if err != nil {
				return err
			}
			items, err := cl.backend.Overlays(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(items))
			for _, o := range items {
				url := o.URL
				if url == "" {
					url = cl.backend.OverlayURL(o.Path)
				}
				rows = append(rows, []string{o.Name, o.Path, url})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{{Header: "Name"}, {Header: "Path"}, {Header: "URL"}}, rows))
			return nil
		},
	})
	return cmd
}
