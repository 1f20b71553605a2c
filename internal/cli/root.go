package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/revu-ai/revu/internal/backends"
	"github.com/revu-ai/revu/internal/cache"
	"github.com/revu-ai/revu/internal/config"
	"github.com/revu-ai/revu/internal/orchestrator"
	"github.com/revu-ai/revu/internal/prompt"
	"github.com/revu-ai/revu/internal/review"
)

const version = "0.1.0"

// Exit codes for CI gating.
const (
	ExitSuccess      = 0
	ExitUsageError   = 2
	ExitAuthError    = 3
	ExitRuntimeError = 4
)

var flagDebug bool

var rootCmd = &cobra.Command{
	Use:   "revu",
	Short: "AI code review from the command line",
	Long:  "Revu reviews diffs, commits, and files with AI backends, failing over between services until one answers.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if flagDebug {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(promptsCmd)
	rootCmd.AddCommand(backendsCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

// fail reports a handler failure on stderr and sets the runtime exit code.
// Returning nil keeps cobra's error path, and with it exit code 2, for
// usage errors only.
func fail(err error) error {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	exitCode = ExitRuntimeError
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print revu version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "revu version %s\n", version)
	},
}

// services holds the wired collaborators behind every review command.
type services struct {
	cfg     *config.Store
	prompts *prompt.Store
	store   *cache.Cache
	svc     *review.Service
}

// buildServices initializes configuration and wires the review pipeline.
func buildServices() (*services, error) {
	cfg := config.New()
	if err := cfg.Initialize(); err != nil {
		return nil, err
	}

	var promptOpts []prompt.Option
	if globalDir, err := cfg.Dir(config.ScopeGlobal); err == nil {
		promptOpts = append(promptOpts, prompt.WithGlobalDir(filepath.Join(globalDir, "prompts")))
	}
	prompts := prompt.New(promptOpts...)

	reg := backends.NewRegistry(cfg)
	orch := orchestrator.New(cfg, reg)

	enabled, err := cfg.CacheEnabled()
	if err != nil {
		return nil, err
	}
	ttl, err := cfg.CacheTTLSeconds()
	if err != nil {
		return nil, err
	}
	store, err := cache.Open(enabled, "", ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cache unavailable: %v\n", err)
		store, _ = cache.Open(false, "", 0)
	}

	return &services{
		cfg:     cfg,
		prompts: prompts,
		store:   store,
		svc:     review.NewService(cfg, prompts, orch, store),
	}, nil
}

func (s *services) close() {
	if s.store != nil {
		s.store.Close()
	}
}
