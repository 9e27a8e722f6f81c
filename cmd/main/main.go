package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// cli carries the state shared by all commands once the root command's
// pre-run hook has loaded the configuration.
type cli struct {
	configPath string
	logLevel   string
	config     *Config
	logger     *slog.Logger
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "titleforge",
		Short: "Generate novel episode titles from a corpus of real ones",
		Long: `titleforge mixes an n-gram model fitted on real episode titles with a
pun template generator, and keeps only candidates that are new to the batch
and not too close to any real title.

Examples:
  titleforge clean --csv episodes.csv --json episodes.json --out clean_titles.csv
  titleforge generate --in clean_titles.csv --num 20 --random-seed 7
  titleforge model save episodes --in clean_titles.csv
  titleforge generate --in clean_titles.csv --model-name episodes`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.initialize(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "./config.json", "Path to the JSON config file")
	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")

	rootCmd.AddCommand(newGenerateCommand(c))
	rootCmd.AddCommand(newCleanCommand(c))
	rootCmd.AddCommand(newModelCommand(c))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func (c *cli) initialize(cmd *cobra.Command) error {
	config, err := LoadConfig(c.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if c.logLevel != "" {
		config.LogLevel = c.logLevel
	}
	c.config = config
	c.logger = newLogger(cmd.ErrOrStderr(), config.LogLevel)
	c.logger.Debug("Configuration loaded", "path", c.configPath)
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// The version needs no configuration file.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "titleforge %s (commit %s, built %s)\n", Version, Commit, BuildDate)
		},
	}
}
