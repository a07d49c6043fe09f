package export

import (
	"io"
	"slices"

	"gopkg.in/yaml.v3"
)

// YAMLWriter writes every object as its own YAML document with keys in
// column order. Late columns are picked up by later documents.
type YAMLWriter struct {
	out     *bufferedFile
	enc     *yaml.Encoder
	columns []string
}

// NewYAMLWriter writes documents to w.
func NewYAMLWriter(w io.WriteCloser) *YAMLWriter {
	out := newBufferedFile(w)
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	return &YAMLWriter{out: out, enc: enc}
}

// WriteHeader records the keys; nothing is written until the first row.
func (y *YAMLWriter) WriteHeader(columns []string) error {
	y.columns = slices.Clone(columns)
	return nil
}

// AddColumn appends a key for subsequent rows.
func (y *YAMLWriter) AddColumn(name string) error {
	y.columns = append(y.columns, name)
	return nil
}

// WriteRow encodes one object as a mapping.
func (y *YAMLWriter) WriteRow(row []string) error {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for i, col := range y.columns {
		value := ""
		if i < len(row) {
			value = row[i]
		}
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: col},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value},
		)
	}
	return y.enc.Encode(doc)
}

// Close finishes the stream and closes the destination.
func (y *YAMLWriter) Close() error {
	encErr := y.enc.Close()
	closeErr := y.out.Close()
	if encErr != nil {
		return encErr
	}
	return closeErr
}
