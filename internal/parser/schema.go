package parser

import (
	"io"
	"strings"

	"go.uber.org/zap"
)

// Schema is an ordered, append-only set of column names.
type Schema struct {
	columns []string
	index   map[string]int
}

// NewSchema creates a schema seeded with the given columns. Duplicates are dropped.
func NewSchema(columns ...string) *Schema {
	s := &Schema{index: make(map[string]int)}
	for _, c := range columns {
		s.Add(c)
	}
	return s
}

// IdentitySchema returns a schema holding only the context and object-name columns.
func IdentitySchema() *Schema {
	return NewSchema(ContextColumn, ObjectNameColumn)
}

// Add appends name if it is not present yet and returns its index.
// The second return value reports whether the schema grew.
func (s *Schema) Add(name string) (int, bool) {
	if idx, ok := s.index[name]; ok {
		return idx, false
	}
	s.index[name] = len(s.columns)
	s.columns = append(s.columns, name)
	return len(s.columns) - 1, true
}

// Index returns the position of name.
func (s *Schema) Index(name string) (int, bool) {
	idx, ok := s.index[name]
	return idx, ok
}

// Columns returns a copy of the column list.
func (s *Schema) Columns() []string {
	out := make([]string, len(s.columns))
	copy(out, s.columns)
	return out
}

// Len returns the number of columns.
func (s *Schema) Len() int {
	return len(s.columns)
}

// blockState is shared by the discovery state machines.
type blockState int

const (
	searching blockState = iota
	inBlock
)

// sameHeader compares a classified header with a configured one, ignoring
// runs of whitespace. Prefixes never match: "config firewall service custom"
// is not "config firewall service custom-group".
func sameHeader(got, want string) bool {
	return got == strings.Join(strings.Fields(want), " ")
}

// DiscoverSchema scans r once and returns the identity columns followed by
// every attribute set inside the target block, in first-seen order.
// The target block may appear several times (once per vdom).
func DiscoverSchema(r io.Reader, opts Options) (*Schema, error) {
	schema := IdentitySchema()
	state := searching
	blocks := 0

	lines, err := scanEvents(r, func(ev Event) error {
		switch {
		case ev.Kind == BlockEnter && sameHeader(ev.Header, opts.TargetHeader):
			state = inBlock
			blocks++
		case ev.Kind == BlockExit:
			if state == inBlock {
				state = searching
			}
		case state == inBlock && ev.Kind == FieldAssignment && !isIdentityColumn(ev.Key):
			schema.Add(ev.Key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	opts.logger().Debug("Schema discovered",
		zap.Int("lines", lines),
		zap.Int("target_blocks", blocks),
		zap.Strings("columns", schema.columns))

	return schema, nil
}
