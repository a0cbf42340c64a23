package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/clipscribe/app"
	"github.com/kbukum/clipscribe/bot"
	"github.com/kbukum/clipscribe/config"
	"github.com/kbukum/clipscribe/version"
)

type flags struct {
	configFile string
	envFile    string
}

func newRootCmd() *cobra.Command {
	var f flags
	root := &cobra.Command{
		Use:           app.ServiceName,
		Short:         "Telegram bot that turns videos into MP3 audio and timestamped transcripts",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), f)
		},
	}
	root.PersistentFlags().StringVarP(&f.configFile, "config", "c", "", "path to config.yml")
	root.PersistentFlags().StringVar(&f.envFile, "env-file", "", "path to a .env file")

	root.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Print build information",
			Run: func(cmd *cobra.Command, _ []string) {
				info := version.Get()
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s (commit %s, %s)\n", app.ServiceName, info.Short(), info.GitCommit, info.GoVersion)
			},
		},
		&cobra.Command{
			Use:   "check-config",
			Short: "Load and validate the configuration without starting",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := load(f)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "config ok: env=%s backend=%s chunk=%s max_video=%dMB\n",
					cfg.Environment, cfg.Transcription.Backend, cfg.Media.ChunkDuration, cfg.MaxVideoSizeMB)
				return nil
			},
		},
	)
	return root
}

func load(f flags) (*app.Config, error) {
	var opts []config.LoaderOption
	if f.configFile != "" {
		opts = append(opts, config.WithConfigFile(f.configFile))
	}
	if f.envFile != "" {
		opts = append(opts, config.WithEnvFile(f.envFile))
	}

	cfg := &app.Config{}
	if err := config.LoadConfig(app.ServiceName, cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, f flags) error {
	cfg, err := load(f)
	if err != nil {
		return err
	}
	api, err := bot.NewAPI(cfg.Telegram)
	if err != nil {
		return fmt.Errorf("connect to telegram: %w", err)
	}
	a, err := app.Build(cfg, api)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}
