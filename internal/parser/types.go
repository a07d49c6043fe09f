package parser

import "go.uber.org/zap"

// Identity columns that start every schema.
const (
	ContextColumn    = "context"
	ObjectNameColumn = "object-name"
)

// Defaults for a FortiGate multi-vdom backup.
const (
	DefaultPartitionHeader = "config vdom"
	DefaultTargetHeader    = "config firewall service custom"
	DefaultContext         = "root"
)

// EventKind classifies a single configuration line.
type EventKind int

const (
	Other EventKind = iota
	BlockEnter
	BlockExit
	ObjectEnter
	FieldAssignment
	ObjectExit
)

// String returns the kind name used in logs and test output.
func (k EventKind) String() string {
	switch k {
	case BlockEnter:
		return "BlockEnter"
	case BlockExit:
		return "BlockExit"
	case ObjectEnter:
		return "ObjectEnter"
	case FieldAssignment:
		return "FieldAssignment"
	case ObjectExit:
		return "ObjectExit"
	default:
		return "Other"
	}
}

// Event is the classified form of one input line.
type Event struct {
	Kind     EventKind
	Header   string // BlockEnter: trimmed header line (e.g. "config firewall service custom")
	Name     string // ObjectEnter: everything after "edit", quotes kept
	Key      string // FieldAssignment: attribute name
	Value    string // FieldAssignment: rest of the line after the key, as written
	TopLevel bool   // Line starts at column 0
}

// Options controls which blocks the passes look at.
type Options struct {
	PartitionHeader string // Block listing the vdoms (e.g. "config vdom")
	TargetHeader    string // Block whose objects become rows
	DefaultContext  string // Context used before any explicit vdom switch
	Strict          bool   // Fail instead of widening the schema during the row pass
	BlankCell       string // Cell value for attributes an object does not set
	Logger          *zap.Logger
}

// DefaultOptions returns options for exporting custom firewall services.
func DefaultOptions() Options {
	return Options{
		PartitionHeader: DefaultPartitionHeader,
		TargetHeader:    DefaultTargetHeader,
		DefaultContext:  DefaultContext,
	}
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// isIdentityColumn reports whether name is one of the two leading columns.
// Attributes with these names are never looked up in the schema.
func isIdentityColumn(name string) bool {
	return name == ContextColumn || name == ObjectNameColumn
}

func (o Options) defaultContext() string {
	if o.DefaultContext == "" {
		return DefaultContext
	}
	return o.DefaultContext
}

// Stats summarizes a row materialization pass.
type Stats struct {
	Objects      int            // Objects entered inside the target block
	Rows         int            // Rows handed to the writer
	ContextRows  map[string]int // Rows per context
	Columns      int            // Final schema width
	LateColumns  []string       // Columns added during the row pass
	Contexts     []string       // Contexts seen, default first
	Lines        int            // Lines scanned
	TargetBlocks int            // Target block occurrences
}

// materializerState tracks the ambient context of the row pass.
type materializerState struct {
	currentContext string
	inTargetBlock  bool
	row            []string
	line           int
}
