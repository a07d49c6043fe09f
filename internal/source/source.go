// Package source provides a configuration input that can be read more than once.
package source

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// Stdin is the path that selects standard input.
const Stdin = "-"

// Source is a config file that each parser pass opens afresh.
// Standard input is buffered in memory so it can be replayed.
type Source struct {
	path     string
	enc      encoding.Encoding
	data     []byte
	inMemory bool
}

// New creates a source for path. charset names the input encoding
// (e.g. "windows-1252"); empty means the bytes are used as-is.
func New(path, charset string) (*Source, error) {
	if path == Stdin {
		return NewReader(path, os.Stdin, charset)
	}

	enc, err := LookupEncoding(charset)
	if err != nil {
		return nil, err
	}

	// Surface open errors before any output is created.
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	f.Close()

	return &Source{path: path, enc: enc}, nil
}

// NewReader buffers r fully and returns a source replaying it.
func NewReader(name string, r io.Reader, charset string) (*Source, error) {
	enc, err := LookupEncoding(charset)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input %s: %w", name, err)
	}

	return &Source{path: name, enc: enc, data: data, inMemory: true}, nil
}

// LookupEncoding resolves a charset name. An empty name returns nil.
func LookupEncoding(charset string) (encoding.Encoding, error) {
	charset = strings.TrimSpace(charset)
	if charset == "" {
		return nil, nil
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unknown input encoding %q: %w", charset, err)
	}
	return enc, nil
}

// Path returns the path or name the source was created with.
func (s *Source) Path() string {
	return s.path
}

// Open returns a new reader positioned at the start of the input.
func (s *Source) Open() (io.ReadCloser, error) {
	var rc io.ReadCloser
	if s.inMemory {
		rc = io.NopCloser(bytes.NewReader(s.data))
	} else {
		f, err := os.Open(s.path)
		if err != nil {
			return nil, fmt.Errorf("opening input: %w", err)
		}
		rc = f
	}

	if s.enc == nil {
		return rc, nil
	}

	return struct {
		io.Reader
		io.Closer
	}{transform.NewReader(rc, s.enc.NewDecoder()), rc}, nil
}

// Read opens the source, passes it to fn and closes it again.
func (s *Source) Read(fn func(io.Reader) error) error {
	rc, err := s.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	return fn(rc)
}
