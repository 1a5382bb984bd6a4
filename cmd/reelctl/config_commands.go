package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"reelctl/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigShowCommand(ctx))
	configCmd.AddCommand(newConfigSetCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			var err error
			if target == "" {
				target, err = config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
			} else if target, err = config.ExpandPath(target); err != nil {
				return fmt.Errorf("resolve config path: %w", err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set webhook.url (or REELCTL_WEBHOOK_URL) before generating scripts.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate the configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(strings.TrimSpace(*ctx.configFlag))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.effectiveConfig(cmd.Context())
			if err != nil {
				return err
			}
			settings := config.SettingsFromConfig(cfg).Redacted()
			if asJSON {
				return writeJSON(cmd, settings)
			}
			rows := [][]string{
				{"render.api_url", settings.APIURL},
				{"render.mode", cfg.Render.Mode},
				{"hosting.token", orDash(settings.GitHubToken)},
				{"hosting.render_repo", cfg.Hosting.RenderRepo},
				{"export.repo", settings.GitHubRepo},
				{"webhook.url", orDash(settings.WebhookURL)},
				{"upload.strategy", cfg.Upload.Strategy},
				{"upload.transcoder", cfg.Upload.Transcoder},
				{"paths.data_dir", cfg.Paths.DataDir},
				{"server.bind", cfg.Server.Bind},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{{Header: "Key"}, {Header: "Value", MaxWidth: 60}}, rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the settings record as JSON")
	return cmd
}

func newConfigSetCommand(ctx *commandContext) *cobra.Command {
	var patch config.Settings
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Persist settings that override the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if patch == (config.Settings{}) {
				return fmt.Errorf("nothing to set; pass at least one flag")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.Apply(patch).Validate(); err != nil {
				return fmt.Errorf("invalid setting: %w", err)
			}
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			saved, err := store.SaveSettings(cmd.Context(), patch)
			if err != nil {
				return err
			}
			return writeJSON(cmd, saved.Redacted())
		},
	}
	cmd.Flags().StringVar(&patch.APIURL, "api-url", "", "Render backend base URL")
	cmd.Flags().StringVar(&patch.GitHubToken, "github-token", "", "Hosting API token")
	cmd.Flags().StringVar(&patch.GitHubRepo, "github-repo", "", "Export repository (owner/name)")
	cmd.Flags().StringVar(&patch.WebhookURL, "webhook-url", "", "Generation and sync webhook URL")
	return cmd
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
