package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ContentPlaceholder marks the substitution point for reviewed content in a
// custom override template.
const ContentPlaceholder = "{content}"

// ErrUnknownPrompt is returned when a key resolves nowhere, including the
// built-in literals.
var ErrUnknownPrompt = fmt.Errorf("prompt: no template found for key")

// Store resolves named instruction templates with layered fallback and a
// per-key cache. Resolution order: project prompts directory, machine-wide
// prompts directory, built-in literal. The first source that has the key
// wins entirely; sources are never merged.
type Store struct {
	mu    sync.RWMutex
	cache map[string]string

	projectDir string
	globalDir  string
	readFile   func(string) ([]byte, error)
}

// Option customizes a Store.
type Option func(*Store)

// WithProjectDir sets the project-local prompts directory.
func WithProjectDir(dir string) Option {
	return func(s *Store) { s.projectDir = dir }
}

// WithGlobalDir sets the machine-wide prompts directory.
func WithGlobalDir(dir string) Option {
	return func(s *Store) { s.globalDir = dir }
}

// WithReadFile overrides file reads, so tests can count or fake them.
func WithReadFile(fn func(string) ([]byte, error)) Option {
	return func(s *Store) { s.readFile = fn }
}

// New creates a Store. With no options, prompts resolve from
// .revu/prompts under the working directory, then the global prompts
// directory, then the built-in literals.
func New(opts ...Option) *Store {
	s := &Store{
		cache:      make(map[string]string),
		projectDir: filepath.Join(".revu", "prompts"),
		readFile:   os.ReadFile,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load resolves the template for key and caches the winner for the process
// lifetime. A missing project or global file is a fallthrough, not an error.
func (s *Store) Load(key string) (string, error) {
	s.mu.RLock()
	if cached, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		return cached, nil
	}
	s.mu.RUnlock()

	content, err := s.resolve(key)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.cache[key] = content
	s.mu.Unlock()
	return content, nil
}

// resolve walks the ordered source list, short-circuiting on first success.
func (s *Store) resolve(key string) (string, error) {
	for _, dir := range []string{s.projectDir, s.globalDir} {
		if dir == "" {
			continue
		}
		data, err := s.readFile(filepath.Join(dir, key+".md"))
		if err != nil {
			continue
		}
		return strings.TrimSpace(string(data)), nil
	}
	if text, ok := builtins[key]; ok {
		return strings.TrimSpace(text), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPrompt, key)
}

// Build composes the full prompt sent to a backend.
//
// With a custom override the override replaces the resolved template
// outright; its {content} placeholder is substituted, or the content is
// appended when the placeholder is absent. Otherwise the result is, in
// fixed order: the base role template, the key template, the response
// language directive, and the delimited content block. Consumers rely on
// instructions always preceding the reviewed content.
func (s *Store) Build(key, content, customOverride, languageCode string) (string, error) {
	if customOverride != "" {
		if strings.Contains(customOverride, ContentPlaceholder) {
			return strings.ReplaceAll(customOverride, ContentPlaceholder, content), nil
		}
		return customOverride + "\n\n" + content, nil
	}

	base, err := s.Load(KeyBase)
	if err != nil {
		return "", err
	}
	tmpl, err := s.Load(key)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(base)
	b.WriteString("\n\n")
	b.WriteString(tmpl)
	b.WriteString("\n\n")
	b.WriteString(languageDirective(languageCode))
	b.WriteString("\n\n--- BEGIN CONTENT ---\n")
	b.WriteString(content)
	b.WriteString("\n--- END CONTENT ---\n")
	return b.String(), nil
}

// Set writes content directly into the cache, bypassing file resolution
// until the next ClearCache.
func (s *Store) Set(key, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = content
}

// ClearCache discards all cached templates so the next Load re-resolves.
func (s *Store) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]string)
}

// Keys returns the logical template keys that ship built-in literals.
func Keys() []string {
	return []string{KeyBase, KeyReviewCode, KeyReviewDiff, KeyReviewCommit, KeyReviewFiles}
}

// languageNames maps common ISO 639-1 codes to display names for the
// response-language directive. Unlisted codes pass through verbatim.
var languageNames = map[string]string{
	"en": "English",
	"ja": "Japanese",
	"ko": "Korean",
	"zh": "Chinese",
	"de": "German",
	"fr": "French",
	"es": "Spanish",
	"pt": "Portuguese",
	"it": "Italian",
	"ru": "Russian",
}

func languageDirective(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		code = "en"
	}
	name, ok := languageNames[code]
	if !ok {
		name = code
	}
	return fmt.Sprintf("Write the entire review in %s.", name)
}
