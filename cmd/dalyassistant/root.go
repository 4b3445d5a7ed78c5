package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AKH-221/Daly-College-AI-Assistant/internal/config"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/platform/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type rootOptions struct {
	configPath string
	logMode    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "dalyassistant",
		Short:         "Daly College AI assistant",
		Long:          "Serve the Daly College chat gateway, chat with it from a terminal, or inspect the knowledge document.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: $DALY_CONFIG_PATH or ./config/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logMode, "log-mode", "", "log mode: development or production (overrides config)")

	cmd.AddCommand(
		newServeCmd(opts),
		newChatCmd(),
		newAskCmd(opts),
		newSearchCmd(opts),
	)
	return cmd
}

func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.LoadPath(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.logMode != "" {
		cfg.Env = o.logMode
	}
	return cfg, nil
}

func (o *rootOptions) logger(cfg *config.Config) (*logger.Logger, error) {
	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}
