package cmd

import (
	"fmt"
	"os"

	"github.com/fwtools/fgt-export/internal/config"
	"github.com/fwtools/fgt-export/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile       string
	verbose       bool
	inputFile     string
	inputEncoding string

	appConfig *config.Config
	logger    = zap.NewNop()
)

// rootCmd exports service objects when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "fgt-export",
	Short: "Export FortiGate custom services to a table",
	Long: `fgt-export converts a FortiGate configuration backup into a table with
one row per object of "config firewall service custom".

Columns are discovered from the backup itself: the first two are always
context (the vdom) and object-name, followed by every attribute set on any
service, in first-seen order. The backup is read twice, once to learn the
columns and once to write the rows.`,
	Example: `  fgt-export -i backup-config.conf -o results.csv
  fgt-export -i backup-config.conf -o services.db --format sqlite
  fgt-export vdoms -i backup-config.conf`,
	Args: cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfgFile != "" {
			appConfig, err = config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
		} else {
			appConfig = config.Default()
		}

		level := appConfig.Logging.Level
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(level, appConfig.Logging.JSON)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: runExport,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (default: built-in settings)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&inputFile, "ifile", "i", "", `FortiGate backup config to read ("-" for stdin)`)
	rootCmd.PersistentFlags().StringVar(&inputEncoding, "encoding", "", "input charset, e.g. windows-1252 (default: from config)")
}

// GetConfigPath returns the configured config file path.
func GetConfigPath() string {
	return cfgFile
}

// commandConfig applies flags set on cmd to the loaded configuration.
func commandConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := appConfig
	if cfg == nil {
		cfg = config.Default()
	}

	flags := cmd.Flags()
	if flags.Changed("encoding") {
		cfg.Input.Encoding = inputEncoding
	}
	if flags.Changed("format") {
		cfg.Output.Format = outputFormat
	}
	if flags.Changed("strict") {
		cfg.Strict = strict
	}
	if flags.Changed("metrics-file") {
		cfg.Metrics.File = metricsFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
