package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/copyleftdev/trialcore/internal/config"
	"github.com/copyleftdev/trialcore/internal/logging"
)

// newRootCmd builds the trialcheck command. Settings come from the
// environment, optionally seeded from a .env file. Flags given on the command
// line override them.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "trialcheck [flags] FILE...",
		Short:         "Inspect trial records stored as JSON or YAML",
		Long:          "Load trial documents, report status, completion, infeasibility and duration of every trial, optionally complete open trials and write all of them back out.",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadDotEnv(); err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if err := applyFlags(cmd, cfg); err != nil {
				return err
			}

			logger, err := logging.NewLogger(&logging.Config{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
				Output: cfg.Logging.Output,
			})
			if err != nil {
				return fmt.Errorf("initializing logger: %w", err)
			}
			logger = logger.WithFields(map[string]interface{}{
				"service": "trialcheck",
				"env":     cfg.Environment,
			})

			c, err := newChecker(cfg, logger)
			if err != nil {
				return fmt.Errorf("setting up checker: %w", err)
			}
			if err := c.run(args); err != nil {
				logger.Error("Trial check failed", map[string]interface{}{"error": err})
				return err
			}
			return nil
		},
	}

	flags := root.Flags()
	flags.String("format", "", "document format: json, yaml or auto (TRIALCHECK_FORMAT)")
	flags.Bool("complete-open", false, "complete trials that are not completed yet (TRIALCHECK_COMPLETE_OPEN)")
	flags.StringP("output", "o", "", "write all trials to this file (TRIALCHECK_OUTPUT)")
	flags.Bool("metrics", false, "log diagnostic and status metrics at exit (TRIALCHECK_METRICS)")
	flags.String("log-level", "", "minimum log level (LOG_LEVEL)")
	return root
}

// applyFlags copies every flag set on the command line into cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error
	if flags.Changed("format") {
		if cfg.Check.Format, err = flags.GetString("format"); err != nil {
			return err
		}
	}
	if flags.Changed("complete-open") {
		if cfg.Check.CompleteOpen, err = flags.GetBool("complete-open"); err != nil {
			return err
		}
	}
	if flags.Changed("output") {
		if cfg.Check.Output, err = flags.GetString("output"); err != nil {
			return err
		}
	}
	if flags.Changed("metrics") {
		if cfg.Check.Metrics, err = flags.GetBool("metrics"); err != nil {
			return err
		}
	}
	if flags.Changed("log-level") {
		if cfg.Logging.Level, err = flags.GetString("log-level"); err != nil {
			return err
		}
	}
	return nil
}

// loadDotEnv seeds the environment from filenames, or from .env when none
// are given. Missing files are skipped; a file that cannot be parsed is an
// error.
func loadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, name := range filenames {
		if err := godotenv.Load(name); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", name, err)
		}
	}
	return nil
}
