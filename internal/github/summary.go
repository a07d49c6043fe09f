package github

import (
	"fmt"
	"os"
	"strings"

	"github.com/fwtools/fgt-export/internal/parser"
)

// ExportSummary describes one export run for the workflow step summary.
type ExportSummary struct {
	Input  string
	Output string
	Format string
	Stats  parser.Stats
	Error  string // error message if the run failed
}

// Enabled reports whether a step summary file is available.
func Enabled() bool {
	return os.Getenv("GITHUB_ACTIONS") == "true" && os.Getenv("GITHUB_STEP_SUMMARY") != ""
}

// WriteGitHubSummary appends the summary to GITHUB_STEP_SUMMARY if running in GitHub Actions.
func (s *ExportSummary) WriteGitHubSummary() error {
	if !Enabled() {
		return nil
	}

	f, err := os.OpenFile(os.Getenv("GITHUB_STEP_SUMMARY"), os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("opening summary file: %w", err)
	}
	defer f.Close()

	_, err = f.WriteString(s.Markdown())
	return err
}

// Markdown renders the summary as GitHub flavored markdown.
func (s *ExportSummary) Markdown() string {
	var sb strings.Builder

	sb.WriteString("## 🔥 FortiGate Service Export\n\n")
	sb.WriteString(fmt.Sprintf("`%s` → `%s` (%s)\n\n", s.Input, s.Output, s.Format))

	sb.WriteString("### Statistics\n\n")
	sb.WriteString("| Metric | Count |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Services | %d |\n", s.Stats.Objects))
	sb.WriteString(fmt.Sprintf("| Rows Written | %d |\n", s.Stats.Rows))
	sb.WriteString(fmt.Sprintf("| Columns | %d |\n", s.Stats.Columns))
	sb.WriteString(fmt.Sprintf("| Vdoms | %d |\n", len(s.Stats.Contexts)))
	sb.WriteString(fmt.Sprintf("| Lines Scanned | %d |\n", s.Stats.Lines))
	sb.WriteString("\n")

	if s.Stats.Rows > 0 {
		// Collapse long vdom lists
		collapse := len(s.Stats.Contexts) > 10
		if collapse {
			sb.WriteString("<details>\n")
			sb.WriteString(fmt.Sprintf("<summary><strong>Services per Vdom (%d vdoms)</strong></summary>\n\n", len(s.Stats.Contexts)))
		} else {
			sb.WriteString("### Services per Vdom\n\n")
		}

		sb.WriteString("| Vdom | Services |\n")
		sb.WriteString("|------|----------|\n")
		for _, name := range s.Stats.Contexts {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", escapeCell(name), s.Stats.ContextRows[name]))
		}
		sb.WriteString("\n")

		if collapse {
			sb.WriteString("</details>\n\n")
		}
	}

	if len(s.Stats.LateColumns) > 0 {
		sb.WriteString(fmt.Sprintf("**Columns added during the row pass:** %d\n", len(s.Stats.LateColumns)))
		sb.WriteString("<details>\n<summary>Show columns</summary>\n\n")
		for _, column := range s.Stats.LateColumns {
			sb.WriteString(fmt.Sprintf("- `%s`\n", column))
		}
		sb.WriteString("\n</details>\n\n")
	}

	if s.Error != "" {
		sb.WriteString("### ❌ Error\n\n")
		sb.WriteString(fmt.Sprintf("```\n%s\n```\n\n", s.Error))
	}

	return sb.String()
}

// escapeCell escapes pipe characters in table cells.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
