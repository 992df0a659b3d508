package main

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// Version is set at build time.
	Version = "dev"

	// Configuration flags.
	configFile string
	verbose    bool
	quiet      bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "restic-backup",
	Short: "A declarative restic backup pipeline",
	Long: `restic-backup drives a restic backup run from a YAML configuration:
  - back up the configured directories
  - forget old snapshots per the retention policy (optional)
  - check repository integrity
  - report the outcome by email or Telegram

Each run is one-shot; scheduling and overlap prevention belong to an
external scheduler (cron, systemd timer, etc.)`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
	Version: Version,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (falls back to $RESTIC_BACKUP_CONF)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose (debug) output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "enable quiet mode (errors only)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output logs in JSON format")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
}

func setupLogging() {
	// Set output format
	if jsonOutput {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
		output.FormatLevel = func(i interface{}) string {
			if s, ok := i.(string); ok {
				return strings.ToUpper(s)
			}
			return ""
		}
		log.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	// Set log level
	switch {
	case quiet:
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case verbose:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// attachLogfile tees log output into a rotating file once the configured
// logfile path is known. Called after config load, so startup messages
// before that point go to the console only.
func attachLogfile(path string) {
	if path == "" {
		return
	}

	fileWriter := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    50, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	var console zerolog.LevelWriter
	if jsonOutput {
		console = zerolog.MultiLevelWriter(os.Stdout)
	} else {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
		console = zerolog.MultiLevelWriter(output)
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(console, fileWriter)).With().Timestamp().Logger()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
