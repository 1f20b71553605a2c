package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/revu-ai/revu/internal/gitctx"
	"github.com/revu-ai/revu/internal/orchestrator"
	"github.com/revu-ai/revu/internal/output"
	"github.com/revu-ai/revu/internal/review"
)

// Shared review flags
var (
	flagBackend  string
	flagLanguage string
	flagPrompt   string
	flagFormat   string
	flagOut      string
	flagNoCache  bool
	flagNoRedact bool
)

func addReviewFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagBackend, "backend", "", "AI backend (gemini, claude, openai, ollama)")
	cmd.Flags().StringVar(&flagLanguage, "language", "", "Response language code (e.g. en, ja)")
	cmd.Flags().StringVar(&flagPrompt, "prompt", "", "Custom review instructions replacing the built-in template; {content} marks where the reviewed content goes")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format (text, markdown, json)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Bypass the response cache")
	cmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
}

// repoInfo carries the repository metadata a git-backed review prints in
// its report header.
type repoInfo struct {
	root   string
	branch string
	files  []string
}

// repoMeta returns the repository root and branch for the report header,
// or empty strings outside a repository.
func repoMeta(git *gitctx.Runner) (root, branch string) {
	root, err := git.Root()
	if err != nil {
		return "", ""
	}
	return root, git.Branch()
}

// requireRepo reports whether the working directory is inside a git
// repository, setting the runtime exit code when it is not.
func requireRepo(git *gitctx.Runner) bool {
	if git.InRepo() {
		return true
	}
	fmt.Fprintln(os.Stderr, "Error: not a git repository")
	exitCode = ExitRuntimeError
	return false
}

func runReview(req review.Request, repo repoInfo) {
	if flagNoRedact {
		fmt.Fprintln(os.Stderr, "WARNING: secret redaction is disabled")
	}
	req.Backend = flagBackend
	req.Language = flagLanguage
	req.Instructions = flagPrompt
	req.NoCache = flagNoCache
	req.NoRedact = flagNoRedact

	svcs, err := buildServices()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}
	defer svcs.close()

	res, err := svcs.svc.Run(context.Background(), req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var exhausted *orchestrator.ExhaustedError
		if errors.As(err, &exhausted) && exhausted.AuthOnly() {
			exitCode = ExitAuthError
			return
		}
		exitCode = ExitRuntimeError
		return
	}

	lang := req.Language
	if lang == "" {
		lang, _ = svcs.cfg.Language()
	}
	report := &output.Report{
		Kind:        string(req.Kind),
		Backend:     res.Backend,
		Language:    lang,
		RepoRoot:    repo.root,
		Branch:      repo.branch,
		Files:       repo.files,
		Cached:      res.Cached,
		DurationMS:  res.Duration.Milliseconds(),
		Review:      res.Text,
		GeneratedAt: time.Now(),
	}
	if err := output.WriteReport(report, flagFormat, flagOut); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		exitCode = ExitRuntimeError
	}
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review code changes",
	Long:  "Review code changes with an AI backend. Use subcommands to specify what to review.",
}

var reviewDiffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Review unstaged changes (working tree vs index)",
	RunE: func(cmd *cobra.Command, args []string) error {
		git := gitctx.New("")
		if !requireRepo(git) {
			return nil
		}
		diff, err := git.Unstaged()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		root, branch := repoMeta(git)
		repo := repoInfo{root: root, branch: branch, files: gitctx.ChangedFiles(diff)}
		runReview(review.Request{Kind: review.KindDiff, Content: diff}, repo)
		return nil
	},
}

var reviewStagedCmd = &cobra.Command{
	Use:   "staged",
	Short: "Review staged changes (index vs HEAD)",
	RunE: func(cmd *cobra.Command, args []string) error {
		git := gitctx.New("")
		if !requireRepo(git) {
			return nil
		}
		diff, err := git.Staged()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		root, branch := repoMeta(git)
		repo := repoInfo{root: root, branch: branch, files: gitctx.ChangedFiles(diff)}
		runReview(review.Request{Kind: review.KindDiff, Content: diff}, repo)
		return nil
	},
}

var reviewCommitCmd = &cobra.Command{
	Use:   "commit <sha>",
	Short: "Review a specific commit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		git := gitctx.New("")
		if !requireRepo(git) {
			return nil
		}
		diff, err := git.Commit(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		content := diff
		if msg, err := git.CommitMessage(args[0]); err == nil && msg != "" {
			content = "Commit message:\n" + msg + "\n\n" + diff
		}
		root, branch := repoMeta(git)
		repo := repoInfo{root: root, branch: branch, files: gitctx.ChangedFiles(diff)}
		runReview(review.Request{Kind: review.KindCommit, Content: content}, repo)
		return nil
	},
}

var reviewFilesCmd = &cobra.Command{
	Use:   "files <path>...",
	Short: "Review one or more whole files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var files []review.File
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", path, err)
				exitCode = ExitRuntimeError
				return nil
			}
			files = append(files, review.File{Path: path, Content: string(data)})
		}
		runReview(review.Request{Kind: review.KindFiles, Files: files}, repoInfo{})
		return nil
	},
}

var reviewCodeCmd = &cobra.Command{
	Use:   "code [file]",
	Short: "Review a code snippet from a file or stdin",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if len(args) == 1 {
			data, err = os.ReadFile(args[0])
		} else {
			data, err = io.ReadAll(os.Stdin)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		runReview(review.Request{Kind: review.KindCode, Content: string(data)}, repoInfo{})
		return nil
	},
}

func init() {
	reviewCmd.AddCommand(reviewDiffCmd)
	reviewCmd.AddCommand(reviewStagedCmd)
	reviewCmd.AddCommand(reviewCommitCmd)
	reviewCmd.AddCommand(reviewFilesCmd)
	reviewCmd.AddCommand(reviewCodeCmd)

	for _, cmd := range []*cobra.Command{
		reviewDiffCmd,
		reviewStagedCmd,
		reviewCommitCmd,
		reviewFilesCmd,
		reviewCodeCmd,
	} {
		addReviewFlags(cmd)
	}
}
