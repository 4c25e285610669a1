package main

import (
	"fmt"
	"io"
	"os"

	"github.com/kavach/kavach/internal/config"
	"github.com/kavach/kavach/internal/version"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	configDir string
	logLevel  string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "kavach",
		Short: "Kavach - border situational awareness core",
		Long: `Kavach holds the alert lifecycle, the tactical map markers and the
projection used by the border surveillance dashboard.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&configDir, "config", "/config", "directory holding dashboard.yaml and seed.yaml")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(newRunCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newProjectCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger builds the process logger. Every line is also written as JSON to
// extra, so the audit buffer can parse it whatever the console format is.
func newLogger(cfg config.LoggingConfig, extra io.Writer) zerolog.Logger {
	level := cfg.Level
	if logLevel != "" {
		level = logLevel
	}
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stdout}
	}
	if extra != nil {
		out = io.MultiWriter(out, extra)
	}

	info := version.Get()
	return zerolog.New(out).Level(parsed).With().
		Timestamp().
		Str("version", info.Version).
		Str("commit", info.Commit).
		Logger()
}
