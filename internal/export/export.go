// Package export writes materialized rows in tabular formats.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"unicode/utf8"

	"github.com/fwtools/fgt-export/internal/parser"
)

// Output formats.
const (
	FormatCSV     = "csv"     // Raw delimited text, trailing delimiter, space for unset cells, no escaping
	FormatRFC4180 = "rfc4180" // Quoted CSV via encoding/csv
	FormatYAML    = "yaml"    // One YAML document per object
	FormatSQLite  = "sqlite"  // Table in a SQLite database file
)

// CSVBlank fills cells of unset attributes in the csv format.
const CSVBlank = " "

// Stdout is the output path that selects standard output.
const Stdout = "-"

// Formats lists the supported output formats.
func Formats() []string {
	return []string{FormatCSV, FormatRFC4180, FormatYAML, FormatSQLite}
}

// Writer is a row sink owning an output resource.
type Writer interface {
	parser.RowWriter
	Close() error
}

// Options configures the writer built by Create.
type Options struct {
	Format            string
	Delimiter         string
	TrailingDelimiter bool
	Table             string // SQLite table name
}

// DefaultOptions returns comma separated output with a trailing delimiter.
func DefaultOptions() Options {
	return Options{
		Format:            FormatCSV,
		Delimiter:         ",",
		TrailingDelimiter: true,
		Table:             "services",
	}
}

// Validate checks that the options describe a writer Create can build.
func (o Options) Validate() error {
	if !slices.Contains(Formats(), o.Format) {
		return fmt.Errorf("unknown output format %q (supported: %v)", o.Format, Formats())
	}
	switch o.Format {
	case FormatCSV:
		if o.Delimiter == "" {
			return fmt.Errorf("delimiter must not be empty")
		}
	case FormatRFC4180:
		if utf8.RuneCountInString(o.Delimiter) != 1 {
			return fmt.Errorf("rfc4180 output needs a single character delimiter, got %q", o.Delimiter)
		}
	case FormatSQLite:
		if o.Table == "" {
			return fmt.Errorf("sqlite output needs a table name")
		}
	}
	return nil
}

// Create opens path and returns a writer for the configured format.
// The caller must Close the writer on every path.
func Create(path string, opts Options) (Writer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if opts.Format == FormatSQLite {
		if path == Stdout {
			return nil, fmt.Errorf("sqlite output cannot be written to stdout")
		}
		return NewSQLiteWriter(path, opts.Table)
	}

	out, err := openText(path)
	if err != nil {
		return nil, err
	}

	switch opts.Format {
	case FormatRFC4180:
		r, _ := utf8.DecodeRuneInString(opts.Delimiter)
		return NewRFC4180Writer(out, r), nil
	case FormatYAML:
		return NewYAMLWriter(out), nil
	default:
		return NewDelimitedWriter(out, opts.Delimiter, opts.TrailingDelimiter), nil
	}
}

// openText opens a text destination. Stdout is never closed.
func openText(path string) (io.WriteCloser, error) {
	if path == Stdout {
		return nopWriteCloser{os.Stdout}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating output: %w", err)
	}
	return f, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// bufferedFile flushes a buffer before closing the underlying destination.
type bufferedFile struct {
	*bufio.Writer
	dst io.Closer
}

func newBufferedFile(w io.WriteCloser) *bufferedFile {
	return &bufferedFile{Writer: bufio.NewWriter(w), dst: w}
}

func (b *bufferedFile) Close() error {
	flushErr := b.Flush()
	closeErr := b.dst.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
