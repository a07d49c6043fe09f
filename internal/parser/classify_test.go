package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Event
	}{
		{
			name: "target block header",
			line: "config firewall service custom\n",
			want: Event{Kind: BlockEnter, Header: "config firewall service custom", TopLevel: true},
		},
		{
			name: "header with crlf and extra spaces",
			line: "config  firewall service   custom\r\n",
			want: Event{Kind: BlockEnter, Header: "config firewall service custom", TopLevel: true},
		},
		{
			name: "nested header",
			line: "        config entries",
			want: Event{Kind: BlockEnter, Header: "config entries"},
		},
		{
			name: "top level end",
			line: "end",
			want: Event{Kind: BlockExit, TopLevel: true},
		},
		{
			name: "indented end closes a sub-block",
			line: "    end",
			want: Event{Kind: Other},
		},
		{
			name: "word starting with end",
			line: "endpoint",
			want: Event{Kind: Other, TopLevel: true},
		},
		{
			name: "quoted object",
			line: `    edit "HTTPS"`,
			want: Event{Kind: ObjectEnter, Name: `"HTTPS"`},
		},
		{
			name: "object name with spaces",
			line: `    edit "Web Access 8080"`,
			want: Event{Kind: ObjectEnter, Name: `"Web Access 8080"`},
		},
		{
			name: "vdom switch",
			line: "edit DMZ",
			want: Event{Kind: ObjectEnter, Name: "DMZ", TopLevel: true},
		},
		{
			name: "single token value",
			line: "        set protocol IP",
			want: Event{Kind: FieldAssignment, Key: "protocol", Value: "IP"},
		},
		{
			name: "multi token value keeps quotes and inner spacing",
			line: `        set category   "Web   Access"  `,
			want: Event{Kind: FieldAssignment, Key: "category", Value: `"Web   Access"`},
		},
		{
			name: "inner tab is kept",
			line: "        set comment \"a\tb\"\r\n",
			want: Event{Kind: FieldAssignment, Key: "comment", Value: "\"a\tb\""},
		},
		{
			name: "port list",
			line: "        set tcp-portrange 80 443 8080-8090",
			want: Event{Kind: FieldAssignment, Key: "tcp-portrange", Value: "80 443 8080-8090"},
		},
		{
			name: "set without value",
			line: "        set visibility",
			want: Event{Kind: FieldAssignment, Key: "visibility"},
		},
		{
			name: "set without key",
			line: "        set",
			want: Event{Kind: Other},
		},
		{
			name: "next",
			line: "    next\r\n",
			want: Event{Kind: ObjectExit},
		},
		{
			name: "next with trailing text is not an exit",
			line: "    nexthop 1",
			want: Event{Kind: Other},
		},
		{
			name: "unset is other",
			line: "        unset comment",
			want: Event{Kind: Other},
		},
		{
			name: "comment line",
			line: "#config-version=FGVMK6-7.0.5",
			want: Event{Kind: Other, TopLevel: true},
		},
		{
			name: "blank line",
			line: "",
			want: Event{Kind: Other},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.line)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Classify(%q) mismatch (-want +got):\n%s", tt.line, diff)
			}
		})
	}
}

func TestEventKindString(t *testing.T) {
	kinds := map[EventKind]string{
		Other:           "Other",
		BlockEnter:      "BlockEnter",
		BlockExit:       "BlockExit",
		ObjectEnter:     "ObjectEnter",
		FieldAssignment: "FieldAssignment",
		ObjectExit:      "ObjectExit",
	}
	for kind, want := range kinds {
		if got := kind.String(); got != want {
			t.Errorf("EventKind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}
