// Package metrics exposes export run statistics in Prometheus format.
package metrics

import (
	"sort"
	"time"

	"github.com/fwtools/fgt-export/internal/parser"
	"github.com/prometheus/client_golang/prometheus"
)

// Run describes one completed export.
type Run struct {
	Input    string
	Format   string
	Stats    parser.Stats
	Duration time.Duration
	Success  bool
}

// runCollector implements prometheus.Collector over a finished run.
type runCollector struct {
	run Run

	objectsTotal     *prometheus.Desc
	rowsTotal        *prometheus.Desc
	contextRowsTotal *prometheus.Desc
	columns          *prometheus.Desc
	lateColumns      *prometheus.Desc
	contexts         *prometheus.Desc
	targetBlocks     *prometheus.Desc
	linesTotal       *prometheus.Desc
	duration         *prometheus.Desc
	lastSuccess      *prometheus.Desc
}

// NewCollector returns a collector reporting run.
func NewCollector(run Run) prometheus.Collector {
	labels := []string{"input", "format"}

	return &runCollector{
		run: run,

		objectsTotal: prometheus.NewDesc(
			"fgt_export_objects_total",
			"Service objects found in the target block.",
			labels, nil,
		),
		rowsTotal: prometheus.NewDesc(
			"fgt_export_rows_written_total",
			"Rows written to the output.",
			labels, nil,
		),
		contextRowsTotal: prometheus.NewDesc(
			"fgt_export_context_rows_written_total",
			"Rows written per vdom.",
			append(labels, "context"), nil,
		),
		columns: prometheus.NewDesc(
			"fgt_export_columns",
			"Columns in the output schema.",
			labels, nil,
		),
		lateColumns: prometheus.NewDesc(
			"fgt_export_late_columns",
			"Columns discovered after the header was written.",
			labels, nil,
		),
		contexts: prometheus.NewDesc(
			"fgt_export_contexts",
			"Distinct vdoms seen in the input.",
			labels, nil,
		),
		targetBlocks: prometheus.NewDesc(
			"fgt_export_target_blocks",
			"Occurrences of the target block.",
			labels, nil,
		),
		linesTotal: prometheus.NewDesc(
			"fgt_export_lines_scanned_total",
			"Input lines scanned by the row pass.",
			labels, nil,
		),
		duration: prometheus.NewDesc(
			"fgt_export_duration_seconds",
			"Wall time of the export, both passes included.",
			labels, nil,
		),
		lastSuccess: prometheus.NewDesc(
			"fgt_export_success",
			"1 if the export completed, 0 otherwise.",
			labels, nil,
		),
	}
}

func (c *runCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.objectsTotal
	ch <- c.rowsTotal
	ch <- c.contextRowsTotal
	ch <- c.columns
	ch <- c.lateColumns
	ch <- c.contexts
	ch <- c.targetBlocks
	ch <- c.linesTotal
	ch <- c.duration
	ch <- c.lastSuccess
}

func (c *runCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.run.Stats
	lv := []string{c.run.Input, c.run.Format}

	ch <- prometheus.MustNewConstMetric(c.objectsTotal, prometheus.CounterValue, float64(s.Objects), lv...)
	ch <- prometheus.MustNewConstMetric(c.rowsTotal, prometheus.CounterValue, float64(s.Rows), lv...)
	ch <- prometheus.MustNewConstMetric(c.columns, prometheus.GaugeValue, float64(s.Columns), lv...)
	ch <- prometheus.MustNewConstMetric(c.lateColumns, prometheus.GaugeValue, float64(len(s.LateColumns)), lv...)
	ch <- prometheus.MustNewConstMetric(c.contexts, prometheus.GaugeValue, float64(len(s.Contexts)), lv...)
	ch <- prometheus.MustNewConstMetric(c.targetBlocks, prometheus.GaugeValue, float64(s.TargetBlocks), lv...)
	ch <- prometheus.MustNewConstMetric(c.linesTotal, prometheus.CounterValue, float64(s.Lines), lv...)
	ch <- prometheus.MustNewConstMetric(c.duration, prometheus.GaugeValue, c.run.Duration.Seconds(), lv...)

	success := 0.0
	if c.run.Success {
		success = 1
	}
	ch <- prometheus.MustNewConstMetric(c.lastSuccess, prometheus.GaugeValue, success, lv...)

	// Sorted for stable textfile output
	contexts := make([]string, 0, len(s.ContextRows))
	for name := range s.ContextRows {
		contexts = append(contexts, name)
	}
	sort.Strings(contexts)
	for _, name := range contexts {
		ch <- prometheus.MustNewConstMetric(c.contextRowsTotal, prometheus.CounterValue,
			float64(s.ContextRows[name]), c.run.Input, c.run.Format, name)
	}
}

// WriteTextfile writes the run in the text exposition format to path,
// for the node_exporter textfile collector. The file is replaced atomically.
func WriteTextfile(path string, run Run) error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(NewCollector(run)); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, reg)
}
