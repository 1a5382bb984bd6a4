package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"reelctl/internal/api"
	"reelctl/internal/logging"
	"reelctl/internal/media"
	"reelctl/internal/merge"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cl, err := ctx.clients(signalCtx)
			if err != nil {
				return err
			}
			if bind != "" {
				cl.cfg.Server.Bind = bind
			}
			notifier := cl.notifier()
			deps := api.Deps{
				Config:   cl.cfg,
				Store:    cl.store,
				Remote:   cl.webhook,
				Generate: cl.generator(),
				Notifier: notifier,
				Logger:   cl.logger,
			}
			if cl.webhook.Configured() {
				deps.Sync = cl.syncEngine(merge.WithAsyncRepublish())
			}
			if svc, err := cl.renderService(); err != nil {
				logging.WarnWithContext(cl.logger, "render routes disabled", "render_unconfigured",
					"render endpoints answer with a configuration error", logging.Error(err))
			} else {
				deps.Render = svc
			}
			if uploader, err := media.NewFromConfig(signalCtx, cl.cfg, cl.hosting, cl.backend, cl.logger); err != nil {
				logging.WarnWithContext(cl.logger, "upload route disabled", "upload_unconfigured",
					"uploads answer with a configuration error", logging.Error(err))
			} else {
				deps.Uploader = uploader
			}

			server := api.New(deps)
			if err := server.Start(signalCtx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", server.Addr())
			<-signalCtx.Done()
			server.Stop()
			return nil
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Override server.bind")
	return cmd
}
