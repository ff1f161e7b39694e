// Package root contains the root command for the application
package root

import (
	"fmt"

	"fjacquet/finance-analyzer/internal/config"
	"fjacquet/finance-analyzer/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CommonFlags represents the flags shared by every command
type CommonFlags struct {
	ConfigFile string
	LogLevel   string
}

var (
	// Log is the shared logger instance for commands
	Log = logrus.New()

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "finance-analyzer",
		Short: "Import bank statement CSVs and analyze personal spending.",
		Long: `finance-analyzer imports bank statement CSV exports, suggests categories
for each transaction and serves budgets, insights and chat over an HTTP API.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to finance-analyzer!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if envFile := config.LoadEnv(); envFile != "" {
				Log.WithField("file", envFile).Debug("Loaded environment file")
			}
			if SharedFlags.LogLevel != "" {
				Log.SetLevel(config.ParseLogLevel(SharedFlags.LogLevel))
			}
		},
	}

	// SharedFlags holds the persistent flag values
	SharedFlags = CommonFlags{}
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVar(&SharedFlags.ConfigFile, "config", "", "Config file (default: config.yaml in ., .finance-analyzer or $HOME/.finance-analyzer)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogLevel, "log-level", "", "Log level override (trace, debug, info, warn, error)")
}

// LoadConfig reads the configuration, applying the --log-level override.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.InitializeConfig(SharedFlags.ConfigFile)
	if err != nil {
		return nil, err
	}
	if SharedFlags.LogLevel != "" {
		if _, err := logrus.ParseLevel(SharedFlags.LogLevel); err != nil {
			return nil, fmt.Errorf("invalid --log-level: %s", SharedFlags.LogLevel)
		}
		cfg.Log.Level = SharedFlags.LogLevel
	}
	Log.SetLevel(config.ParseLogLevel(cfg.Log.Level))
	return cfg, nil
}

// Logger adapts Log for packages that take a logging.Logger.
func Logger() logging.Logger {
	return logging.NewLogrusAdapterFromLogger(Log)
}
