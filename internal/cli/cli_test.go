package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/revu-ai/revu/internal/config"
	"github.com/revu-ai/revu/internal/gitctx"
)

// resetFlags resets all package-level flag variables to their zero values.
func resetFlags() {
	flagBackend = ""
	flagLanguage = ""
	flagPrompt = ""
	flagFormat = "text"
	flagOut = ""
	flagNoCache = false
	flagNoRedact = false
	flagGlobal = false
	flagDebug = false
}

// --- command structure tests ---

func TestReviewCmdHasSubcommands(t *testing.T) {
	expected := map[string]bool{
		"diff":   false,
		"staged": false,
		"commit": false,
		"files":  false,
		"code":   false,
	}

	for _, sub := range reviewCmd.Commands() {
		if _, ok := expected[sub.Name()]; ok {
			expected[sub.Name()] = true
		}
	}

	for name, found := range expected {
		if !found {
			t.Errorf("review subcommand %q not found", name)
		}
	}
}

func TestReviewCommitCmdMissingArg(t *testing.T) {
	resetFlags()

	reviewCmd.SetArgs([]string{"commit"})
	if err := reviewCmd.Execute(); err == nil {
		t.Error("review commit without SHA arg should return error")
	}
}

func TestReviewFilesCmdMissingArg(t *testing.T) {
	resetFlags()

	reviewCmd.SetArgs([]string{"files"})
	if err := reviewCmd.Execute(); err == nil {
		t.Error("review files without paths should return error")
	}
}

// --- repo metadata tests ---

func TestRepoMeta(t *testing.T) {
	git := gitctx.New("", gitctx.WithRun(func(dir string, args ...string) (string, error) {
		switch strings.Join(args, " ") {
		case "rev-parse --show-toplevel":
			return "/home/u/project\n", nil
		case "rev-parse --abbrev-ref HEAD":
			return "main\n", nil
		}
		return "", errors.New("unexpected git invocation")
	}))

	root, branch := repoMeta(git)
	if root != "/home/u/project" {
		t.Errorf("root = %q, want /home/u/project", root)
	}
	if branch != "main" {
		t.Errorf("branch = %q, want main", branch)
	}
}

func TestRepoMetaOutsideRepo(t *testing.T) {
	git := gitctx.New("", gitctx.WithRun(func(dir string, args ...string) (string, error) {
		return "", errors.New("fatal: not a git repository")
	}))

	root, branch := repoMeta(git)
	if root != "" || branch != "" {
		t.Errorf("repoMeta outside repo = %q, %q, want empty", root, branch)
	}
}

func TestRequireRepoOutsideRepo(t *testing.T) {
	saved := exitCode
	defer func() { exitCode = saved }()
	exitCode = ExitSuccess

	git := gitctx.New("", gitctx.WithRun(func(dir string, args ...string) (string, error) {
		return "", errors.New("fatal: not a git repository")
	}))
	if requireRepo(git) {
		t.Error("requireRepo = true outside a repository")
	}
	if exitCode != ExitRuntimeError {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitRuntimeError)
	}
}

func TestRequireRepoInsideRepo(t *testing.T) {
	git := gitctx.New("", gitctx.WithRun(func(dir string, args ...string) (string, error) {
		if strings.Join(args, " ") == "rev-parse --is-inside-work-tree" {
			return "true\n", nil
		}
		return "", errors.New("unexpected git invocation")
	}))
	if !requireRepo(git) {
		t.Error("requireRepo = false inside a repository")
	}
}

// --- config command tests ---

func TestConfigInitCreatesGlobalFile(t *testing.T) {
	resetFlags()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	configCmd.SetArgs([]string{"init", "--global"})
	if err := configCmd.Execute(); err != nil {
		t.Fatalf("config init returned error: %v", err)
	}

	path := filepath.Join(tmpDir, "revu", ".env")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config init did not create %s: %v", path, err)
	}
	for _, want := range []string{"#AI_SERVICE=gemini", "#ANTHROPIC_API_KEY=", "#REVIEW_LANGUAGE=en"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("settings template missing %q", want)
		}
	}
}

func TestConfigInitDoesNotOverwrite(t *testing.T) {
	resetFlags()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	dir := filepath.Join(tmpDir, "revu")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	existing := "AI_SERVICE=openai\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(existing), 0o644); err != nil {
		t.Fatal(err)
	}

	configCmd.SetArgs([]string{"init", "--global"})
	if err := configCmd.Execute(); err != nil {
		t.Fatalf("config init with existing file returned error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, ".env"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != existing {
		t.Errorf("config init overwrote existing file: %q", string(data))
	}
}

func TestConfigSetWritesFile(t *testing.T) {
	resetFlags()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	configCmd.SetArgs([]string{"set", "AI_SERVICE", "claude", "--global"})
	if err := configCmd.Execute(); err != nil {
		t.Fatalf("config set returned error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, "revu", ".env"))
	if err != nil {
		t.Fatalf("cannot read settings file: %v", err)
	}
	if !strings.Contains(string(data), "AI_SERVICE=claude") {
		t.Errorf("settings file = %q, missing AI_SERVICE=claude", string(data))
	}
}

func TestConfigSetMissingArgs(t *testing.T) {
	resetFlags()

	configCmd.SetArgs([]string{"set", "AI_SERVICE"})
	if err := configCmd.Execute(); err == nil {
		t.Error("config set with 1 arg should return error (requires 2)")
	}
}

func TestConfigPathScopes(t *testing.T) {
	resetFlags()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	cfg := config.New()
	projectPath, err := cfg.Path(config.ScopeProject)
	if err != nil {
		t.Fatal(err)
	}
	globalPath, err := cfg.Path(config.ScopeGlobal)
	if err != nil {
		t.Fatal(err)
	}

	if projectPath != filepath.Join(".revu", ".env") {
		t.Errorf("project path = %q", projectPath)
	}
	if globalPath != filepath.Join(tmpDir, "revu", ".env") {
		t.Errorf("global path = %q", globalPath)
	}
}

// --- version command tests ---

func TestVersionCmdExecute(t *testing.T) {
	if err := versionCmd.Execute(); err != nil {
		t.Errorf("version command returned error: %v", err)
	}
}

func TestVersionConstant(t *testing.T) {
	if version == "" {
		t.Error("version constant is empty")
	}
}

// --- prompts command tests ---

func TestPromptsListExecute(t *testing.T) {
	resetFlags()

	promptsCmd.SetArgs([]string{"list"})
	if err := promptsCmd.Execute(); err != nil {
		t.Errorf("prompts list returned error: %v", err)
	}
}

// --- exit code behavior tests ---

func TestHandlerFailureSetsRuntimeExitCode(t *testing.T) {
	resetFlags()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Setenv("XDG_CACHE_HOME", tmpDir)

	savedExitCode := exitCode
	t.Cleanup(func() { exitCode = savedExitCode })
	exitCode = ExitSuccess

	// An unknown template key is a runtime failure, not a usage error:
	// the command line itself is well formed.
	promptsCmd.SetArgs([]string{"show", "no_such_template"})
	if err := promptsCmd.Execute(); err != nil {
		t.Fatalf("handler failure leaked into cobra's error path: %v", err)
	}
	if exitCode != ExitRuntimeError {
		t.Errorf("exitCode = %d, want %d (ExitRuntimeError)", exitCode, ExitRuntimeError)
	}
}

// --- exit code constants tests ---

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name string
		code int
		want int
	}{
		{"ExitSuccess", ExitSuccess, 0},
		{"ExitUsageError", ExitUsageError, 2},
		{"ExitAuthError", ExitAuthError, 3},
		{"ExitRuntimeError", ExitRuntimeError, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code != tt.want {
				t.Errorf("%s = %d, want %d", tt.name, tt.code, tt.want)
			}
		})
	}
}
