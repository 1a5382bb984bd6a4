package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"reelctl/internal/render"
	"reelctl/internal/services"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Dispatch and observe video renders",
	}
	cmd.AddCommand(newRenderDispatchCommand(ctx))
	cmd.AddCommand(newRenderStatusCommand(ctx))
	cmd.AddCommand(newRenderWatchCommand(ctx))
	cmd.AddCommand(newRenderDownloadCommand(ctx))
	return cmd
}

func newRenderDispatchCommand(ctx *commandContext) *cobra.Command {
	var background string
	var watch bool
	cmd := &cobra.Command{
		Use:   "dispatch <script-id>",
		Short: "Start rendering a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := loadScript(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			cl, err := ctx.clients(cmd.Context())
			if err != nil {
				return err
			}
			svc, err := cl.renderService()
			if err != nil {
				return err
			}
			runCtx := services.WithScriptID(cmd.Context(), script.ID)
			tracker, err := svc.Dispatch(runCtx, script, background)
			if err != nil {
				return err
			}
			job := tracker.Job()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Dispatched %s as job %s (%s)\n", script.Name, job.ID, tracker.Phase())
			if job.HTMLURL != "" {
				fmt.Fprintln(out, job.HTMLURL)
			}
			if !watch {
				return nil
			}
			return followJob(runCtx, out, svc, job.ID, tracker)
		},
	}
	cmd.Flags().StringVar(&background, "background", "", "Background asset token")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Follow the job until it finishes")
	return cmd
}

func newRenderStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status <job-id>",
		Short: "Print one status snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := ctx.clients(cmd.Context())
			if err != nil {
				return err
			}
			svc, err := cl.renderService()
			if err != nil {
				return err
			}
			job, err := svc.Status(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, job)
			}
			printJob(cmd.OutOrStdout(), job)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the snapshot as JSON")
	return cmd
}

func newRenderWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <job-id>",
		Short: "Poll a job until it finishes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := ctx.clients(cmd.Context())
			if err != nil {
				return err
			}
			svc, err := cl.renderService()
			if err != nil {
				return err
			}
			tracker := render.NewTracker(args[0], cl.notifier(), cl.logger)
			return followJob(cmd.Context(), cmd.OutOrStdout(), svc, args[0], tracker)
		},
	}
}

func newRenderDownloadCommand(ctx *commandContext) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "download <job-id>",
		Short: "Download the rendered video of a finished workflow run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := ctx.clients(cmd.Context())
			if err != nil {
				return err
			}
			svc, err := cl.renderService()
			if err != nil {
				return err
			}
			job, err := svc.Status(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if job.Status != render.StatusCompleted {
				return fmt.Errorf("job %s is %s; nothing to download", args[0], job.Status)
			}
			dest := outPath
			if dest == "" {
				dest = fmt.Sprintf("%s-%s.zip", cl.cfg.Hosting.ArtifactName, args[0])
			} else if info, err := os.Stat(dest); err == nil && info.IsDir() {
				dest = filepath.Join(dest, fmt.Sprintf("%s-%s.zip", cl.cfg.Hosting.ArtifactName, args[0]))
			}
			n, err := render.Download(cmd.Context(), cl.hosting, job.ArtifactURL, dest)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", dest, n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Destination file or directory")
	return cmd
}

// followJob prints every snapshot until the job is terminal. A failed or
// cancelled job is reported as an error.
func followJob(ctx context.Context, out io.Writer, svc *render.Service, id string, tracker *render.Tracker) error {
	task := svc.Watch(ctx, id, tracker)
	defer task.Stop()
	for job := range task.Updates() {
		printJob(out, job)
	}
	job, err := task.Wait()
	if err != nil {
		return err
	}
	switch job.Status {
	case render.StatusCompleted:
		return nil
	default:
		reason := job.Progress
		if reason == "" {
			reason = string(job.Status)
		}
		return fmt.Errorf("render %s: %s", id, reason)
	}
}

func printJob(out io.Writer, job render.Job) {
	line := fmt.Sprintf("%s  %s", job.ID, job.Status)
	if job.Progress != "" {
		line += "  " + job.Progress
	}
	fmt.Fprintln(out, line)
	if job.ArtifactURL != "" {
		fmt.Fprintf(out, "artifact: %s\n", job.ArtifactURL)
	}
}
