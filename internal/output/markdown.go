package output

import (
	"io"
	"strings"
)

// MarkdownWriter renders a report suitable for pasting into a pull
// request or saving alongside the change.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *Report) error {
	ew := &errWriter{w: w}

	ew.printf("# Code Review (%s)\n\n", report.Kind)
	if report.RepoRoot != "" {
		ew.printf("- **Repository:** %s (branch: %s)\n", report.RepoRoot, report.Branch)
	}
	ew.printf("- **Backend:** %s\n", report.Backend)
	ew.printf("- **Language:** %s\n", report.Language)
	if len(report.Files) > 0 {
		ew.printf("- **Files:** %s\n", strings.Join(report.Files, ", "))
	}
	if report.Cached {
		ew.println("- **Source:** cache")
	}
	ew.printf("- **Generated:** %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	ew.println(strings.TrimSpace(report.Review))
	return ew.err
}
