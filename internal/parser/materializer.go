package parser

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// ErrLateColumn is returned in strict mode when the row pass meets an
// attribute the discovery pass did not record.
var ErrLateColumn = errors.New("attribute not present in discovered schema")

// RowWriter receives the header once and then each completed row.
type RowWriter interface {
	WriteHeader(columns []string) error
	WriteRow(row []string) error
}

// ColumnAdder is implemented by writers that can widen their output after
// the header was written. Writers without it keep the header as written;
// rows emitted before the widening stay at their original width.
type ColumnAdder interface {
	AddColumn(name string) error
}

// Materializer turns the target block of a config into rows.
type Materializer struct {
	schema *Schema
	w      RowWriter
	opts   Options
	log    *zap.Logger
	state  materializerState
	stats  Stats
}

// NewMaterializer creates a row pass over schema writing to w.
// The schema must start with the identity columns; a nil schema is
// replaced by IdentitySchema. The caller writes the header before running it.
func NewMaterializer(schema *Schema, w RowWriter, opts Options) *Materializer {
	if schema == nil {
		schema = IdentitySchema()
	}
	m := &Materializer{
		schema: schema,
		w:      w,
		opts:   opts,
		log:    opts.logger(),
	}
	m.state.currentContext = opts.defaultContext()
	m.state.row = m.blankRow()
	m.stats.Contexts = []string{m.state.currentContext}
	m.stats.ContextRows = make(map[string]int)
	return m
}

// Run processes every line of r.
func (m *Materializer) Run(r io.Reader) error {
	_, err := scanEvents(r, m.handle)
	if err != nil {
		return err
	}

	m.log.Debug("Rows materialized",
		zap.Int("lines", m.state.line),
		zap.Int("objects", m.stats.Objects),
		zap.Int("rows", m.stats.Rows))
	return nil
}

// Process handles a single raw line.
func (m *Materializer) Process(line string) error {
	return m.handle(Classify(line))
}

// Stats returns a snapshot of the pass so far.
func (m *Materializer) Stats() Stats {
	s := m.stats
	s.Columns = m.schema.Len()
	s.Lines = m.state.line
	s.LateColumns = slices.Clone(m.stats.LateColumns)
	s.Contexts = slices.Clone(m.stats.Contexts)
	s.ContextRows = maps.Clone(m.stats.ContextRows)
	return s
}

func (m *Materializer) handle(ev Event) error {
	m.state.line++

	// A top-level edit outside the target block switches vdom. This also
	// fires for the first "edit root", which is a no-op.
	if ev.Kind == ObjectEnter && ev.TopLevel && !m.state.inTargetBlock {
		m.switchContext(ev.Name)
		return nil
	}

	switch {
	case ev.Kind == BlockEnter && sameHeader(ev.Header, m.opts.TargetHeader):
		m.state.inTargetBlock = true
		m.stats.TargetBlocks++
	case ev.Kind == BlockExit && m.state.inTargetBlock:
		m.state.inTargetBlock = false
	case m.state.inTargetBlock:
		switch ev.Kind {
		case ObjectEnter:
			m.state.row = m.blankRow()
			m.state.row[1] = strings.Trim(ev.Name, `"`)
			m.stats.Objects++
		case FieldAssignment:
			return m.assign(ev.Key, ev.Value)
		case ObjectExit:
			return m.emit()
		}
	}

	return nil
}

func (m *Materializer) switchContext(name string) {
	if name != m.state.currentContext {
		m.log.Debug("Context switch",
			zap.String("from", m.state.currentContext),
			zap.String("to", name),
			zap.Int("line", m.state.line))
	}
	m.state.currentContext = name
	m.state.row[0] = name
	if !slices.Contains(m.stats.Contexts, name) {
		m.stats.Contexts = append(m.stats.Contexts, name)
	}
}

func (m *Materializer) assign(key, value string) error {
	if isIdentityColumn(key) {
		m.log.Warn("Attribute named like an identity column ignored",
			zap.String("attribute", key),
			zap.Int("line", m.state.line))
		return nil
	}

	idx, ok := m.schema.Index(key)
	if !ok {
		if m.opts.Strict {
			return fmt.Errorf("line %d: %w: %q", m.state.line, ErrLateColumn, key)
		}

		idx, _ = m.schema.Add(key)
		m.state.row = append(m.state.row, m.opts.BlankCell)
		m.stats.LateColumns = append(m.stats.LateColumns, key)
		m.log.Warn("Column added after header was written",
			zap.String("column", key),
			zap.Int("line", m.state.line))

		if adder, ok := m.w.(ColumnAdder); ok {
			if err := adder.AddColumn(key); err != nil {
				return fmt.Errorf("adding column %q: %w", key, err)
			}
		}
	}

	m.state.row[idx] = strings.TrimRight(value, " \t")
	return nil
}

func (m *Materializer) emit() error {
	if err := m.w.WriteRow(m.state.row); err != nil {
		return fmt.Errorf("writing row %d: %w", m.stats.Rows+1, err)
	}
	m.stats.Rows++
	m.stats.ContextRows[m.state.row[0]]++
	m.state.row = m.blankRow()
	return nil
}

// blankRow allocates a row of blank cells tagged with the current context.
func (m *Materializer) blankRow() []string {
	row := make([]string, m.schema.Len())
	if m.opts.BlankCell != "" {
		for i := range row {
			row[i] = m.opts.BlankCell
		}
	}
	row[0] = m.state.currentContext
	return row
}
