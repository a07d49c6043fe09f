package cmd

import (
	"fmt"

	"github.com/fwtools/fgt-export/internal/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long:  "Validate configuration files.",
}

var validateConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Validate a config file",
	Long:  "Validate the file given with --config for required fields and correct format.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if GetConfigPath() == "" {
			return fmt.Errorf("no config file given (use --config)")
		}

		// Load() calls Validate() itself
		if _, err := config.Load(GetConfigPath()); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "✅ Config is valid")
		return nil
	},
}

func init() {
	validateCmd.AddCommand(validateConfigCmd)
	rootCmd.AddCommand(validateCmd)
}
