package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reelctl/internal/export"
	"reelctl/internal/reel"
)

func newScriptsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "scripts",
		Aliases: []string{"script"},
		Short:   "Manage locally stored scripts",
	}
	cmd.AddCommand(newScriptsListCommand(ctx))
	cmd.AddCommand(newScriptsShowCommand(ctx))
	cmd.AddCommand(newScriptsNewCommand(ctx))
	cmd.AddCommand(newScriptsEditCommand(ctx))
	cmd.AddCommand(newScriptsDeleteCommand(ctx))
	cmd.AddCommand(newScriptsExportCommand(ctx))
	return cmd
}

func newScriptsListCommand(ctx *commandContext) *cobra.Command {
	var asJSON, offline bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scripts, newest first",
		Long:  "List scripts, newest first. The local collection is merged with the remote copy first when a webhook is configured.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := ctx.clients(cmd.Context())
			if err != nil {
				return err
			}
			var scripts []reel.Script
			if !offline && cl.webhook.Configured() {
				out, err := cl.syncEngine().SyncScripts(cmd.Context())
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warn: sync failed, showing local scripts: %v\n", err)
					cl.notifySyncFailed(cmd.Context(), "scripts", err)
				}
				scripts = out.Items
			}
			if scripts == nil {
				if scripts, err = cl.store.Scripts(cmd.Context()); err != nil {
					return err
				}
			}
			if asJSON {
				if scripts == nil {
					scripts = []reel.Script{}
				}
				return writeJSON(cmd, scripts)
			}
			if len(scripts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No scripts")
				return nil
			}
			rows := make([][]string, 0, len(scripts))
			for _, s := range scripts {
				rows = append(rows, []string{s.ID, s.Name, strconv.Itoa(len(s.Scenes)), s.UpdatedAt.Local().Format("2006-01-02 15:04")})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{
				{Header: "ID"},
				{Header: "Name", MaxWidth: 40},
				{Header: "Scenes", Align: alignRight},
				{Header: "Updated"},
			}, rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print scripts as JSON")
	cmd.Flags().BoolVar(&offline, "offline", false, "Show the local collection without syncing")
	return cmd
}

func newScriptsShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON, asYAML bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := loadScript(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			switch {
			case asJSON:
				return writeJSON(cmd, script)
			case asYAML:
				block, err := export.MarshalYAML(script)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), block)
				return nil
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  (%s)\n", script.Name, script.ID)
			fmt.Fprintf(out, "Preset: %s\n", script.Preset)
			for i, scene := range script.Scenes {
				fmt.Fprintf(out, "%2d. [%s] %s\n", i+1, scene.Expression.Label(), scene.Text)
				if len(scene.Emphasis) > 0 {
					fmt.Fprintf(out, "    emphasis: %s\n", strings.Join(scene.Emphasis, ", "))
				}
				if scene.Overlay != "" {
					fmt.Fprintf(out, "    overlay: %s\n", scene.Overlay)
				}
			}
			if script.CTA != nil {
				fmt.Fprintf(out, "CTA: [%s] %s\n", script.CTA.Expression.Label(), script.CTA.Text)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the script as JSON")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print the render YAML block")
	return cmd
}

// scriptFlags are the editable fields shared by new and edit.
type scriptFlags struct {
	name   string
	preset string
	file   string
	scenes []string
	cta    string
}

func (f *scriptFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Script name")
	cmd.Flags().StringVar(&f.preset, "preset", "", "Voice/style preset")
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "Read the script from a JSON file")
	cmd.Flags().StringArrayVar(&f.scenes, "scene", nil, `Scene as "text|expression|emphasis,...|overlay" (repeatable, replaces all scenes)`)
	cmd.Flags().StringVar(&f.cta, "cta", "", `Call to action as "text|expression"`)
}

func (f *scriptFlags) apply(script *reel.Script) error {
	if f.file != "" {
		raw, err := os.ReadFile(f.file)
		if err != nil {
			return fmt.Errorf("read script file: %w", err)
		}
		var fromFile reel.Script
		if err := json.Unmarshal(raw, &fromFile); err != nil {
			return fmt.Errorf("parse script file: %w", err)
		}
		fromFile.ID, fromFile.CreatedAt = script.ID, script.CreatedAt
		*script = fromFile
	}
	if f.name != "" {
		script.Name = f.name
	}
	if f.preset != "" {
		script.Preset = f.preset
	}
	if len(f.scenes) > 0 {
		scenes := make([]reel.Scene, 0, len(f.scenes))
		for _, raw := range f.scenes {
			scene, err := parseScene(raw)
			if err != nil {
				return err
			}
			scenes = append(scenes, scene)
		}
		script.Scenes = scenes
	}
	if f.cta != "" {
		text, expr, _ := strings.Cut(f.cta, "|")
		expression, err := reel.ParseExpression(expr)
		if err != nil {
			return err
		}
		if strings.TrimSpace(expr) == "" {
			expression = reel.ExpressionBow
		}
		script.CTA = &reel.CallToAction{Text: strings.TrimSpace(text), Expression: expression}
	}
	return nil
}

func parseScene(raw string) (reel.Scene, error) {
	parts := strings.SplitN(raw, "|", 4)
	for len(parts) < 4 {
		parts = append(parts, "")
	}
	text := strings.TrimSpace(parts[0])
	if text == "" {
		return reel.Scene{}, fmt.Errorf("scene %q has no text", raw)
	}
	expression, err := reel.ParseExpression(parts[1])
	if err != nil {
		return reel.Scene{}, err
	}
	emphasis := []string{}
	for _, word := range strings.Split(parts[2], ",") {
		if word = strings.TrimSpace(word); word != "" {
			emphasis = append(emphasis, word)
		}
	}
	return reel.Scene{Text: text, Expression: expression, Emphasis: emphasis, Overlay: strings.TrimSpace(parts[3])}, nil
}

func newScriptsNewCommand(ctx *commandContext) *cobra.Command {
	var flags scriptFlags
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a script",
		RunE: func(cmd *cobra.Command, args []string) error {
			script := reel.NewScript("", "", time.Now())
			if err := flags.apply(&script); err != nil {
				return err
			}
			saved, err := saveScript(cmd, ctx, script)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", saved.ID, saved.Name)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newScriptsEditCommand(ctx *commandContext) *cobra.Command {
	var flags scriptFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Update a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := loadScript(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			if err := flags.apply(&script); err != nil {
				return err
			}
			saved, err := saveScript(cmd, ctx, script)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s (%s)\n", saved.ID, saved.Name)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newScriptsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a script locally and remotely",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := ctx.clients(cmd.Context())
			if err != nil {
				return err
			}
			removed, err := cl.store.DeleteScript(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("script %s not found", args[0])
			}
			if cl.webhook.Configured() {
				if err := cl.webhook.DeleteScript(cmd.Context(), args[0]); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warn: remote delete failed: %v\n", err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func newScriptsExportCommand(ctx *commandContext) *cobra.Command {
	var outPath string
	var publish bool
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Render a script as a markdown note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := loadScript(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			if publish {
				cl, err := ctx.clients(cmd.Context())
				if err != nil {
					return err
				}
				publisher, err := export.NewPublisher(cl.cfg, cl.hosting, export.WithLogger(cl.logger))
				if err != nil {
					return err
				}
				path, err := publisher.Publish(cmd.Context(), script)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Published %s to %s\n", path, cl.cfg.Export.Repo)
				return nil
			}
			now := time.Now()
			note, err := export.Render(script, now)
			if err != nil {
				return err
			}
			if outPath == "" {
				fmt.Fprint(cmd.OutOrStdout(), note)
				return nil
			}
			if info, err := os.Stat(outPath); err == nil && info.IsDir() {
				outPath = filepath.Join(outPath, export.FileName(script, now))
			}
			if err := os.WriteFile(outPath, []byte(note), 0o644); err != nil {
				return fmt.Errorf("write note: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the note to a file or directory")
	cmd.Flags().BoolVar(&publish, "publish", false, "Commit the note to the export repository")
	return cmd
}

func loadScript(cmd *cobra.Command, ctx *commandContext, id string) (reel.Script, error) {
	store, err := ctx.ensureStore()
	if err != nil {
		return reel.Script{}, err
	}
	script, err := store.GetScript(cmd.Context(), id)
	if err != nil {
		return reel.Script{}, err
	}
	if script == nil {
		return reel.Script{}, fmt.Errorf("script %s not found", id)
	}
	return *script, nil
}

// saveScript validates, stores, and pushes the collection when a webhook is
// configured. A failed push is reported but does not fail the command.
func saveScript(cmd *cobra.Command, ctx *commandContext, script reel.Script) (reel.Script, error) {
	cl, err := ctx.clients(cmd.Context())
	if err != nil {
		return reel.Script{}, err
	}
	script.Normalize()
	if err := script.Validate(); err != nil && !errors.Is(err, reel.ErrNoScenes) {
		return reel.Script{}, err
	}
	saved, err := cl.store.SaveScript(cmd.Context(), script)
	if err != nil {
		return reel.Script{}, err
	}
	if cl.webhook.Configured() {
		if _, err := cl.syncEngine().PushScripts(cmd.Context()); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warn: push failed: %v\n", err)
		}
	}
	return saved, nil
}
