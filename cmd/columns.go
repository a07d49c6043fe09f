package cmd

import (
	"fmt"
	"io"

	"github.com/fwtools/fgt-export/internal/parser"
	"github.com/spf13/cobra"
)

var columnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "Print the columns an export would have",
	Long: `Run only the column scan and print the discovered columns, one per line,
in the order the export writes them.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := commandConfig(cmd)
		if err != nil {
			return err
		}

		src, err := openSource(cfg)
		if err != nil {
			return err
		}

		opts := cfg.ParserOptions()
		opts.Logger = logger

		var schema *parser.Schema
		err = src.Read(func(r io.Reader) error {
			var derr error
			schema, derr = parser.DiscoverSchema(r, opts)
			return derr
		})
		if err != nil {
			return fmt.Errorf("scanning columns: %w", err)
		}

		for _, column := range schema.Columns() {
			fmt.Fprintln(cmd.OutOrStdout(), column)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(columnsCmd)
}
