package parser

import (
	"bufio"
	"errors"
	"io"
	"regexp"
	"strings"
)

var (
	// Block header: config <path...>
	configRe = regexp.MustCompile(`^config\s+\S`)

	// Block terminator, only at column 0. Indented "end" closes nested sub-blocks.
	endRe = regexp.MustCompile(`^end(\s|$)`)

	// Object entry: edit <name>
	editRe = regexp.MustCompile(`^edit\s+(.+)$`)

	// Attribute: set <key> [value...]. The value keeps its inner whitespace.
	setRe = regexp.MustCompile(`^set\s+(\S+)(?:\s+(.*))?$`)
)

// maxLineSize bounds a single config line. Certificates and scripts can be long.
const maxLineSize = 4 * 1024 * 1024

// Classify maps one raw line to an event. It never fails; unknown lines are Other.
func Classify(line string) Event {
	line = strings.TrimRight(line, "\r\n")
	trimmed := strings.TrimSpace(line)

	ev := Event{
		Kind:     Other,
		TopLevel: line != "" && line[0] != ' ' && line[0] != '\t',
	}

	switch {
	case configRe.MatchString(trimmed):
		ev.Kind = BlockEnter
		ev.Header = strings.Join(strings.Fields(trimmed), " ")
	case endRe.MatchString(line):
		ev.Kind = BlockExit
	case trimmed == "next":
		ev.Kind = ObjectExit
	default:
		if matches := editRe.FindStringSubmatch(trimmed); matches != nil {
			ev.Kind = ObjectEnter
			ev.Name = matches[1]
		} else if matches := setRe.FindStringSubmatch(trimmed); matches != nil {
			ev.Kind = FieldAssignment
			ev.Key = matches[1]
			ev.Value = matches[2]
		}
	}

	return ev
}

// errStopScan ends scanEvents early without reporting an error.
var errStopScan = errors.New("stop scan")

// scanEvents classifies every line of r and passes it to fn.
// It returns the number of lines read.
func scanEvents(r io.Reader, fn func(Event) error) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lines := 0
	for scanner.Scan() {
		lines++
		if err := fn(Classify(scanner.Text())); err != nil {
			if errors.Is(err, errStopScan) {
				return lines, nil
			}
			return lines, err
		}
	}

	return lines, scanner.Err()
}
