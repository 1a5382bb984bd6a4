package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reelctl/internal/logging"
	"reelctl/internal/media"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	var kind string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a background or overlay with the configured strategy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var mediaKind media.Kind
			switch strings.ToLower(strings.TrimSpace(kind)) {
			case "", string(media.KindBackground):
				mediaKind = media.KindBackground
			case string(media.KindOverlay):
				mediaKind = media.KindOverlay
			default:
				return fmt.Errorf("unknown kind %q (want background or overlay)", kind)
			}
			cl, err := ctx.clients(cmd.Context())
			if err != nil {
				return err
			}
			uploader, err := media.NewFromConfig(cmd.Context(), cl.cfg, cl.hosting, cl.backend, cl.logger)
			if err != nil {
				return err
			}
			res, err := uploader.Upload(cmd.Context(), args[0], mediaKind)
			if err != nil {
				return err
			}
			if err := cl.notifier().NotifyUploadCompleted(cmd.Context(), res.Name, res.Strategy, res.Size); err != nil {
				cl.logger.Debug("upload notification failed", logging.Error(err))
			}
			if asJSON {
				return writeJSON(cmd, res)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Uploaded %s via %s (%d bytes)\n", res.Name, res.Strategy, res.Size)
			fmt.Fprintln(out, res.Token)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "background", "Asset kind: background or overlay")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the upload result as JSON")
	return cmd
}
