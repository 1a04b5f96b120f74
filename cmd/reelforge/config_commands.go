package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"reelforge/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage reelforge configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newConfigInitCommand(ctx))
	cmd.AddCommand(newConfigShowCommand(ctx))
	return cmd
}

func newConfigInitCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if ctx.configFlag != nil {
				path = *ctx.configFlag
			}
			if path == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return err
				}
				path = defaultPath
			} else {
				expanded, err := config.ExpandPath(path)
				if err != nil {
					return err
				}
				path = expanded
			}

			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
				}
			}

			if err := config.CreateSample(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config file: %s\n", ctx.cfgPath)
			fmt.Fprintln(out, renderTable(
				[]string{"Setting", "Value"},
				[][]string{
					{"paths.data_dir", cfg.Paths.DataDir},
					{"paths.scratch_dir", cfg.Paths.ScratchDir},
					{"paths.log_dir", cfg.Paths.LogDir},
					{"paths.output_dir", cfg.Paths.OutputDir},
					{"output.resolution", fmt.Sprintf("%dx%d @ %d fps", cfg.Output.Width, cfg.Output.Height, cfg.Output.FPS)},
					{"output.video_codec", fmt.Sprintf("%s (crf %d, %s)", cfg.Output.VideoCodec, cfg.Output.CRF, cfg.Output.Preset)},
					{"provider.base_url", cfg.Provider.BaseURL},
					{"provider.api_key", maskSecret(cfg.Provider.APIKey)},
					{"pipeline.resolver_workers", fmt.Sprintf("%d", cfg.Pipeline.ResolverWorkers)},
					{"notifications.webhook_url", cfg.Notifications.WebhookURL},
					{"logging", fmt.Sprintf("%s / %s", cfg.Logging.Level, cfg.Logging.Format)},
				},
			))
			return nil
		},
	}
}

func maskSecret(value string) string {
	if value == "" {
		return "(not set)"
	}
	if len(value) <= 4 {
		return "****"
	}
	return value[:4] + "****"
}
