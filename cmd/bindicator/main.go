package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bindicator/internal/config"
	appLog "bindicator/internal/log"
)

const version = "0.1.0"

// rootFlags holds flags shared by every subcommand.
type rootFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func main() {
	var flags rootFlags

	rootCmd := &cobra.Command{
		Use:           "bindicator",
		Short:         "Show tomorrow's bin collection from an iCalendar feed",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "/etc/bindicator/config.yaml", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "log format, plain or json (overrides config)")

	rootCmd.AddCommand(
		newRunCmd(&flags),
		newParseCmd(&flags),
		newBinsCmd(&flags),
		newScheduleCmd(&flags),
	)

	if err := rootCmd.Execute(); err != nil {
		appLog.Error("bindicator failed", err)
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies it (and any flag
// overrides) to the logger.
func loadConfig(flags *rootFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", flags.configPath, err)
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.Log.Format = flags.logFormat
	}
	if err := appLog.Configure(os.Stderr, cfg.Log.Format, cfg.Log.Level); err != nil {
		return nil, err
	}
	return cfg, nil
}
