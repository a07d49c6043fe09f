package export

import (
	"encoding/csv"
	"io"
	"strings"
)

// DelimitedWriter joins cells with a delimiter and performs no escaping.
// A cell containing the delimiter or a newline corrupts the line; the
// rfc4180 format exists for such data.
type DelimitedWriter struct {
	out       *bufferedFile
	delimiter string
	trailing  bool
}

// NewDelimitedWriter writes to w. With trailing set every line ends with an
// extra delimiter.
func NewDelimitedWriter(w io.WriteCloser, delimiter string, trailing bool) *DelimitedWriter {
	return &DelimitedWriter{
		out:       newBufferedFile(w),
		delimiter: delimiter,
		trailing:  trailing,
	}
}

// WriteHeader writes the column names as the first line.
func (d *DelimitedWriter) WriteHeader(columns []string) error {
	return d.writeLine(columns)
}

// WriteRow writes one object.
func (d *DelimitedWriter) WriteRow(row []string) error {
	return d.writeLine(row)
}

// Close flushes buffered lines and closes the destination.
func (d *DelimitedWriter) Close() error {
	return d.out.Close()
}

func (d *DelimitedWriter) writeLine(cells []string) error {
	d.out.WriteString(strings.Join(cells, d.delimiter))
	if d.trailing {
		d.out.WriteString(d.delimiter)
	}
	// bufio errors are sticky, the last write reports any earlier failure
	return d.out.WriteByte('\n')
}

// RFC4180Writer writes quoted CSV.
type RFC4180Writer struct {
	out *bufferedFile
	csv *csv.Writer
}

// NewRFC4180Writer writes to w using comma as the field separator.
func NewRFC4180Writer(w io.WriteCloser, comma rune) *RFC4180Writer {
	out := newBufferedFile(w)
	cw := csv.NewWriter(out)
	cw.Comma = comma
	return &RFC4180Writer{out: out, csv: cw}
}

// WriteHeader writes the column names as the first record.
func (c *RFC4180Writer) WriteHeader(columns []string) error {
	return c.csv.Write(columns)
}

// WriteRow writes one object.
func (c *RFC4180Writer) WriteRow(row []string) error {
	return c.csv.Write(row)
}

// Close flushes pending records and closes the destination.
func (c *RFC4180Writer) Close() error {
	c.csv.Flush()
	csvErr := c.csv.Error()
	closeErr := c.out.Close()
	if csvErr != nil {
		return csvErr
	}
	return closeErr
}
