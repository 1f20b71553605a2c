package output

import (
	"io"
	"strings"
	"time"
)

// TextWriter renders a human-readable terminal report.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, report *Report) error {
	ew := &errWriter{w: w}

	ew.printf("Revu Code Review — %s\n", report.Kind)
	if report.RepoRoot != "" {
		ew.printf("Repository: %s (branch: %s)\n", report.RepoRoot, report.Branch)
	}
	if len(report.Files) > 0 {
		ew.printf("Files: %s\n", strings.Join(report.Files, ", "))
	}
	ew.printf("Backend: %s", report.Backend)
	if report.Cached {
		ew.printf(" (cached)")
	} else {
		ew.printf(" (%s)", (time.Duration(report.DurationMS) * time.Millisecond).String())
	}
	ew.println("")
	ew.println(strings.Repeat("─", 60))
	ew.println(strings.TrimSpace(report.Review))
	ew.println(strings.Repeat("─", 60))
	return ew.err
}
