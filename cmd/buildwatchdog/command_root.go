package main

import (
	"context"

	"github.com/spf13/cobra"

	"buildwatchdog/internal/config"
	"buildwatchdog/internal/models"
)

// flagValues holds raw flag input. Only flags the user actually set are
// applied over the file and environment configuration.
type flagValues struct {
	configPath string
	buildID    string
	interval   int
	notify     string
	profile    string
	region     string
	source     string
	feedAddr   string
	logLevel   string
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(run)
}

func newRootCmd(runFn func(context.Context, config.Config) error) *cobra.Command {
	defaults := config.DefaultConfig()
	var flags flagValues

	root := &cobra.Command{
		Use:   "buildwatchdog --build-id <id>",
		Short: "Monitor an AWS CodeBuild build from the command line",
		Example: `  buildwatchdog --build-id my-project:1234abcd-5678-90ef-ghij-klmnopqrstuv
  buildwatchdog --build-id my-project:1234 --interval 5
  buildwatchdog --build-id my-project:1234 --notify terminal
  buildwatchdog --build-id my-project:1234 --profile dev`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd, flags)
			if err != nil {
				return err
			}
			return runFn(cmd.Context(), cfg)
		},
	}

	f := root.Flags()
	f.StringVar(&flags.configPath, "config", "buildwatchdog.yaml", "path to configuration file (YAML)")
	f.StringVar(&flags.buildID, "build-id", "", "AWS CodeBuild build ID to monitor")
	f.IntVar(&flags.interval, "interval", defaults.IntervalSeconds, "polling interval in seconds")
	f.StringVar(&flags.notify, "notify", string(defaults.Notify), "notification mode: terminal, desktop or both")
	f.StringVar(&flags.profile, "profile", "", "AWS profile to use")
	f.StringVar(&flags.region, "region", "", "AWS region override")
	f.StringVar(&flags.source, "source", defaults.Source, "how to query CodeBuild: cli or sdk")
	f.StringVar(&flags.feedAddr, "feed-addr", "", "serve a local live feed on this address, e.g. 127.0.0.1:8787")
	f.StringVar(&flags.logLevel, "log-level", defaults.LogLevel, "log level: debug, info, warn, error")

	return root
}

// resolveConfig layers defaults, the YAML file, the environment and flags.
func resolveConfig(cmd *cobra.Command, flags flagValues) (config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return config.Config{}, err
	}
	cfg, err = config.LoadEnv(cfg)
	if err != nil {
		return config.Config{}, err
	}

	changed := cmd.Flags().Changed
	if changed("build-id") {
		cfg.BuildID = flags.buildID
	}
	if changed("interval") {
		cfg.IntervalSeconds = flags.interval
	}
	if changed("notify") {
		cfg.Notify = models.NotifyMode(flags.notify)
	}
	if changed("profile") {
		cfg.Profile = flags.profile
	}
	if changed("region") {
		cfg.Region = flags.region
	}
	if changed("source") {
		cfg.Source = flags.source
	}
	if changed("feed-addr") {
		cfg.FeedAddr = flags.feedAddr
	}
	if changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
