package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/stepwise/internal/cli"
	"github.com/aretw0/stepwise/internal/config"
	"github.com/aretw0/stepwise/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "stepwise",
	Short:         "Stepwise is a login and onboarding flow engine",
	Long:          `Stepwise walks a user through choosing a sign-in method, entering credentials and accepting terms, in the terminal or over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "Configuration file (default ./"+config.DefaultFile+" when present)")
	flags.Bool("debug", false, "Enable debug logging on stderr")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("store", "", "Session store driver (memory, file, redis, sqlite)")
	flags.String("store-path", "", "Directory (file) or database file (sqlite)")
	flags.String("redis-addr", "", "Redis address for the redis store")
	flags.String("terms-url", "", "Ask users to accept the terms at this URL")
	flags.Int("min-age", 0, "Ask users to confirm they are at least this old (0 disables)")
}

// flagOverrides maps the persistent flags the user set to config keys.
var flagOverrides = map[string]string{
	"log-level":  "log_level",
	"store":      "store.driver",
	"store-path": "store.path",
	"redis-addr": "store.redis_addr",
	"terms-url":  "terms_url",
	"min-age":    "min_age",
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		if _, err := os.Stat(config.DefaultFile); err == nil {
			path = config.DefaultFile
		} else if !errors.Is(err, os.ErrNotExist) {
			return config.Config{}, err
		}
	}

	overrides := make(map[string]any)
	for flag, key := range flagOverrides {
		if cmd.Flags().Changed(flag) {
			// Decoded with weak typing, so the string form suits every flag type.
			overrides[key] = cmd.Flags().Lookup(flag).Value.String()
		}
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		overrides["log_level"] = "debug"
	}
	return config.Load(path, overrides)
}

// openApp loads the configuration and opens the store. Interactive
// commands stay silent unless a log level was asked for, so logs never
// interleave with the prompts.
func openApp(cmd *cobra.Command, interactive bool) (*cli.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger := logging.NewNop()
	explicit := cmd.Flags().Changed("log-level") || cmd.Flags().Changed("debug")
	if !interactive || explicit {
		level, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		logger = logging.New(level)
	}
	return cli.NewApp(cfg, logger.With(slog.String("cmd", cmd.Name())))
}
