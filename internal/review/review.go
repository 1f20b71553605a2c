package review

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/revu-ai/revu/internal/cache"
	"github.com/revu-ai/revu/internal/config"
	"github.com/revu-ai/revu/internal/orchestrator"
	"github.com/revu-ai/revu/internal/prompt"
	"github.com/revu-ai/revu/internal/redact"
)

// Kind selects the review template and how the request content is treated.
type Kind string

const (
	KindCode   Kind = "code"
	KindDiff   Kind = "diff"
	KindCommit Kind = "commit"
	KindFiles  Kind = "files"
)

func (k Kind) promptKey() (string, error) {
	switch k {
	case KindCode:
		return prompt.KeyReviewCode, nil
	case KindDiff:
		return prompt.KeyReviewDiff, nil
	case KindCommit:
		return prompt.KeyReviewCommit, nil
	case KindFiles:
		return prompt.KeyReviewFiles, nil
	}
	return "", fmt.Errorf("unknown review kind %q", string(k))
}

// File is one file submitted for a whole-file review.
type File struct {
	Path    string
	Content string
}

// Request describes one review to perform.
type Request struct {
	Kind         Kind
	Content      string // diff, snippet, or commit material; unused for KindFiles
	Files        []File // KindFiles only
	Instructions string // custom prompt replacing the resolved template
	Backend      string // preferred backend, "" uses AI_SERVICE
	Language     string // response language, "" uses REVIEW_LANGUAGE
	NoCache      bool
	NoRedact     bool
}

// Result is a completed review.
type Result struct {
	Text     string
	Backend  string
	Cached   bool
	Duration time.Duration
}

// Invoker is the orchestrated backend call. Satisfied by
// *orchestrator.Orchestrator.
type Invoker interface {
	Invoke(ctx context.Context, preferred, prompt string) (orchestrator.Result, error)
}

// Service runs reviews end to end: redaction, prompt composition, cache
// lookup, orchestrated invocation, cache store.
type Service struct {
	cfg     *config.Store
	prompts *prompt.Store
	orch    Invoker
	store   *cache.Cache
	log     *slog.Logger
	now     func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithNow overrides the clock, for tests.
func WithNow(fn func() time.Time) Option {
	return func(s *Service) { s.now = fn }
}

// WithLogger sets the diagnostic logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// NewService wires a review Service from its collaborators.
func NewService(cfg *config.Store, prompts *prompt.Store, orch Invoker, store *cache.Cache, opts ...Option) *Service {
	s := &Service{
		cfg:     cfg,
		prompts: prompts,
		orch:    orch,
		store:   store,
		log:     slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run performs the review described by req.
func (s *Service) Run(ctx context.Context, req Request) (Result, error) {
	start := s.now()

	key, err := req.Kind.promptKey()
	if err != nil {
		return Result{}, err
	}

	backend := req.Backend
	if backend == "" {
		backend, err = s.cfg.Backend()
		if err != nil {
			return Result{}, err
		}
	}
	backend = config.NormalizeBackend(backend)

	lang := req.Language
	if lang == "" {
		lang, err = s.cfg.Language()
		if err != nil {
			return Result{}, err
		}
	}

	content, err := s.assembleContent(req)
	if err != nil {
		return Result{}, err
	}

	composed, err := s.prompts.Build(key, content, req.Instructions, lang)
	if err != nil {
		return Result{}, err
	}

	useCache, err := s.cacheable(req)
	if err != nil {
		return Result{}, err
	}
	model, err := s.cfg.Model(backend)
	if err != nil {
		return Result{}, err
	}
	cacheKey := cache.Key(backend+"/"+model, composed)

	if useCache {
		if text, cachedBackend, ok := s.store.Get(cacheKey); ok {
			return Result{
				Text:     text,
				Backend:  cachedBackend,
				Cached:   true,
				Duration: s.now().Sub(start),
			}, nil
		}
	}

	out, err := s.orch.Invoke(ctx, backend, composed)
	if err != nil {
		return Result{}, err
	}

	// A cache write failure must not cost the caller the review they
	// already paid a backend call for.
	if useCache {
		if err := s.store.Put(cacheKey, out.Backend, out.Text); err != nil {
			s.log.Warn("failed to cache review", "error", err)
		}
	}

	return Result{
		Text:     out.Text,
		Backend:  out.Backend,
		Duration: s.now().Sub(start),
	}, nil
}

// assembleContent produces the reviewed text, applying redaction unless it
// is disabled by the request or by REVIEW_REDACT.
func (s *Service) assembleContent(req Request) (string, error) {
	scrub, err := s.redacting(req)
	if err != nil {
		return "", err
	}

	if req.Kind == KindFiles {
		if len(req.Files) == 0 {
			return "", fmt.Errorf("no files to review")
		}
		var b strings.Builder
		for i, f := range req.Files {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "=== %s ===\n", f.Path)
			text := f.Content
			if scrub {
				text = redact.File(f.Path, f.Content)
			}
			b.WriteString(text)
			if !strings.HasSuffix(text, "\n") {
				b.WriteString("\n")
			}
		}
		return b.String(), nil
	}

	if strings.TrimSpace(req.Content) == "" {
		return "", fmt.Errorf("nothing to review")
	}
	if scrub {
		return redact.Scrub(req.Content), nil
	}
	return req.Content, nil
}

func (s *Service) redacting(req Request) (bool, error) {
	if req.NoRedact {
		return false, nil
	}
	return s.cfg.RedactSecrets()
}

func (s *Service) cacheable(req Request) (bool, error) {
	if req.NoCache || s.store == nil || !s.store.Enabled() {
		return false, nil
	}
	return s.cfg.CacheEnabled()
}
