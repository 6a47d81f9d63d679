package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dholab/gitmilk/internal/configloader"
	"github.com/dholab/gitmilk/internal/logging"
	"github.com/dholab/gitmilk/pkg/config"
)

// loadConfig resolves the effective configuration for cmd, layering cliCfg
// over files and environment. It returns a context carrying a logger at the
// configured level, writing to the command's stderr.
func loadConfig(cmd *cobra.Command, cliCfg *config.Config) (context.Context, *config.Config, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, nil, fmt.Errorf("get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, nil, fmt.Errorf("get working directory: %w", err)
	}

	result, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    cliCfg,
	})
	if err != nil {
		return nil, nil, err
	}
	cfg := result.Config

	level := cfg.LogLevel
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = "debug"
	}
	logger := logging.NewWriter(cmd.ErrOrStderr(), level)

	for _, warning := range result.Warnings {
		logger.Warn(warning)
	}
	if len(result.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", logging.FieldFiles, result.LoadedFrom)
	}
	logger.Debug("configuration loaded",
		logging.FieldWorkingDir, workDir,
		logging.FieldPolicy, cfg.CountPolicy,
		logging.FieldAnchor, cfg.JoinAnchor,
		logging.FieldFormat, cfg.Format,
	)

	return logging.WithLogger(ctx, logger), cfg, nil
}

// colorMode returns the --color flag value, defaulting to auto.
func colorMode(cmd *cobra.Command) string {
	mode, err := cmd.Flags().GetString("color")
	if err != nil || mode == "" {
		return "auto"
	}
	return mode
}

// interactiveLogger returns a logger for commands that run without loading
// configuration.
func interactiveLogger(cmd *cobra.Command) *log.Logger {
	logger := logging.NewInteractive(cmd.ErrOrStderr())
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}
