package cmd

import (
	"fmt"
	"io"

	"github.com/fwtools/fgt-export/internal/parser"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var vdomsYAML bool

var vdomsCmd = &cobra.Command{
	Use:   "vdoms",
	Short: "List the vdoms declared in a backup",
	Long: `List the vdoms declared in the first "config vdom" block of a backup.

The default context (root) is always listed first, even for backups of
firewalls without vdoms.`,
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

		var contexts []string
		err = src.Read(func(r io.Reader) error {
			var derr error
			contexts, derr = parser.DiscoverContexts(r, opts)
			return derr
		})
		if err != nil {
			return fmt.Errorf("scanning vdoms: %w", err)
		}

		out := cmd.OutOrStdout()
		if vdomsYAML {
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(map[string][]string{"vdoms": contexts}); err != nil {
				return err
			}
			return enc.Close()
		}

		for _, name := range contexts {
			fmt.Fprintln(out, name)
		}
		return nil
	},
}

func init() {
	vdomsCmd.Flags().BoolVar(&vdomsYAML, "yaml", false, "print the list as YAML")
	rootCmd.AddCommand(vdomsCmd)
}
