package gitctx

import (
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes git commands in a fixed working directory and returns
// their output as review material.
type Runner struct {
	dir string
	run func(dir string, args ...string) (string, error)
}

// Option configures a Runner.
type Option func(*Runner)

// WithRun replaces the git subprocess call, for tests.
func WithRun(fn func(dir string, args ...string) (string, error)) Option {
	return func(r *Runner) { r.run = fn }
}

// New returns a Runner operating in dir. An empty dir means the process
// working directory.
func New(dir string, opts ...Option) *Runner {
	r := &Runner{dir: dir, run: gitOutput}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// InRepo reports whether the directory is inside a git work tree.
func (r *Runner) InRepo() bool {
	out, err := r.run(r.dir, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// Root returns the repository root path.
func (r *Runner) Root() (string, error) {
	out, err := r.run(r.dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("not a git repository: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Branch returns the current branch name, or "" in a detached or empty repo.
func (r *Runner) Branch() string {
	out, err := r.run(r.dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// Unstaged returns the diff of the working tree against the index.
func (r *Runner) Unstaged() (string, error) {
	out, err := r.run(r.dir, "diff")
	if err != nil {
		return "", fmt.Errorf("git diff: %w", err)
	}
	return out, nil
}

// Staged returns the diff of the index against HEAD.
func (r *Runner) Staged() (string, error) {
	out, err := r.run(r.dir, "diff", "--cached")
	if err != nil {
		return "", fmt.Errorf("git diff --cached: %w", err)
	}
	return out, nil
}

// Commit returns the diff introduced by a single commit. The root commit
// has no parent, so a failed parent diff falls back to git show.
func (r *Runner) Commit(sha string) (string, error) {
	out, err := r.run(r.dir, "diff", sha+"~1", sha)
	if err != nil {
		out, err = r.run(r.dir, "show", "--format=", sha)
		if err != nil {
			return "", fmt.Errorf("git show %s: %w", sha, err)
		}
	}
	return out, nil
}

// CommitMessage returns the full commit message for a revision.
func (r *Runner) CommitMessage(sha string) (string, error) {
	out, err := r.run(r.dir, "log", "-1", "--format=%B", sha)
	if err != nil {
		return "", fmt.Errorf("git log %s: %w", sha, err)
	}
	return strings.TrimSpace(out), nil
}

// ChangedFiles lists the distinct paths named in a unified diff.
func ChangedFiles(diff string) []string {
	var files []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(diff, "\n") {
		if !strings.HasPrefix(line, "+++ b/") {
			continue
		}
		f := strings.TrimPrefix(line, "+++ b/")
		if !seen[f] {
			seen[f] = true
			files = append(files, f)
		}
	}
	return files
}

func gitOutput(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return string(out), fmt.Errorf("%s: %s", err, string(exitErr.Stderr))
		}
		return "", err
	}
	return string(out), nil
}
