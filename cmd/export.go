package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fwtools/fgt-export/internal/config"
	"github.com/fwtools/fgt-export/internal/export"
	"github.com/fwtools/fgt-export/internal/github"
	"github.com/fwtools/fgt-export/internal/metrics"
	"github.com/fwtools/fgt-export/internal/parser"
	"github.com/fwtools/fgt-export/internal/source"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultOutputFile = "vdom-services-output.csv"

var (
	outputFile   string
	outputFormat string
	strict       bool
	metricsFile  string
)

func init() {
	rootCmd.Flags().StringVarP(&outputFile, "ofile", "o", defaultOutputFile, `output file ("-" for stdout)`)
	rootCmd.Flags().StringVar(&outputFormat, "format", "",
		fmt.Sprintf("output format: %s (default: from config, csv)", strings.Join(export.Formats(), ", ")))
	rootCmd.Flags().BoolVar(&strict, "strict", false, "fail when the row pass finds an attribute the column scan missed")
	rootCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file after the run")
}

// runExport converts the input backup into the output table.
func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}

	src, err := openSource(cfg)
	if err != nil {
		return err
	}

	// Keep stdout clean when rows go there
	status := cmd.OutOrStdout()
	if outputFile == export.Stdout {
		status = cmd.ErrOrStderr()
	}

	fmt.Fprintf(status, "Please wait! Working on %s\n", src.Path())
	fmt.Fprintln(status, strings.Repeat("*", 60))

	start := time.Now()
	stats, err := convert(src, cfg)

	if cfg.Metrics.File != "" {
		run := metrics.Run{
			Input:    src.Path(),
			Format:   cfg.Output.Format,
			Stats:    stats,
			Duration: time.Since(start),
			Success:  err == nil,
		}
		if merr := metrics.WriteTextfile(cfg.Metrics.File, run); merr != nil {
			logger.Warn("Writing metrics failed", zap.String("path", cfg.Metrics.File), zap.Error(merr))
		}
	}

	summary := &github.ExportSummary{
		Input:  src.Path(),
		Output: outputFile,
		Format: cfg.Output.Format,
		Stats:  stats,
	}
	if err != nil {
		summary.Error = err.Error()
	}
	if serr := summary.WriteGitHubSummary(); serr != nil {
		logger.Warn("Writing step summary failed", zap.Error(serr))
	}

	if err != nil {
		return err
	}

	logger.Info("Export finished",
		zap.String("input", src.Path()),
		zap.String("output", outputFile),
		zap.Int("rows", stats.Rows),
		zap.Int("columns", stats.Columns),
		zap.Duration("elapsed", time.Since(start)))

	if stats.Objects > 0 {
		fmt.Fprintf(status, "Results: %d services exported to %s\n", stats.Objects, outputFile)
	} else {
		fmt.Fprintf(status, "There is no service in the input file %s\n", src.Path())
	}
	return nil
}

// openSource opens the input named by -i.
func openSource(cfg *config.Config) (*source.Source, error) {
	if inputFile == "" {
		return nil, fmt.Errorf("no input file given (use -i/--ifile)")
	}
	return source.New(inputFile, cfg.Input.Encoding)
}

// convert runs the column scan and the row pass. The output is closed on
// every path; a failed close is reported when nothing else failed.
func convert(src *source.Source, cfg *config.Config) (stats parser.Stats, err error) {
	opts := cfg.ParserOptions()
	opts.Logger = logger

	var schema *parser.Schema
	err = src.Read(func(r io.Reader) error {
		var derr error
		schema, derr = parser.DiscoverSchema(r, opts)
		return derr
	})
	if err != nil {
		return stats, fmt.Errorf("scanning columns: %w", err)
	}

	w, err := export.Create(outputFile, cfg.ExportOptions())
	if err != nil {
		return stats, err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing output %s: %w", outputFile, cerr)
		}
	}()

	if err := w.WriteHeader(schema.Columns()); err != nil {
		return stats, fmt.Errorf("writing header: %w", err)
	}

	m := parser.NewMaterializer(schema, w, opts)
	err = src.Read(m.Run)
	stats = m.Stats()
	if err != nil {
		return stats, fmt.Errorf("exporting rows: %w", err)
	}
	return stats, nil
}
