package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
)

// ErrNotInitialized is returned when a value is read before Initialize.
// Reading an empty store silently would hide misconfiguration, so this is
// treated as a programming error rather than a recoverable condition.
var ErrNotInitialized = errors.New("config: store not initialized")

// KnownBackends lists every supported backend name in priority order.
// The first entry is the default when AI_SERVICE is unset or unrecognized.
var KnownBackends = []string{"gemini", "claude", "openai", "ollama"}

// Recognized configuration keys.
const (
	KeyService    = "AI_SERVICE"
	KeyAutoSwitch = "AI_AUTO_SWITCH"
	KeyTimeout    = "AI_TIMEOUT"
	KeyMaxRetries = "AI_MAX_RETRIES"
	KeyLanguage   = "REVIEW_LANGUAGE"
	KeyCache      = "REVIEW_CACHE"
	KeyCacheTTL   = "REVIEW_CACHE_TTL"
	KeyRedact     = "REVIEW_REDACT"
)

// Built-in defaults for recognized keys.
const (
	DefaultTimeoutSeconds  = 30
	DefaultMaxRetries      = 3
	DefaultLanguage        = "en"
	DefaultCacheTTLSeconds = 86400
)

// credentialKeys maps each backend to the variable holding its credential.
// A backend with no resolved credential is considered not configured.
var credentialKeys = map[string]string{
	"gemini": "GEMINI_API_KEY",
	"claude": "ANTHROPIC_API_KEY",
	"openai": "OPENAI_API_KEY",
	"ollama": "OLLAMA_HOST",
}

// modelKeys maps each backend to the variable overriding its model.
var modelKeys = map[string]string{
	"gemini": "GEMINI_MODEL",
	"claude": "CLAUDE_MODEL",
	"openai": "OPENAI_MODEL",
	"ollama": "OLLAMA_MODEL",
}

var defaultModels = map[string]string{
	"gemini": "gemini-2.0-flash",
	"claude": "claude-sonnet-4-20250514",
	"openai": "gpt-4o",
	"ollama": "qwen2.5-coder",
}

// Scope selects which settings file a path or write refers to.
type Scope string

const (
	ScopeProject Scope = "project"
	ScopeGlobal  Scope = "global"
)

// Store resolves configuration from four layered sources and serves typed
// reads. Priority, highest first: environment, project file, global file,
// built-in default. Resolved once; Reload rebuilds the merged view.
type Store struct {
	mu          sync.RWMutex
	values      map[string]string
	initialized bool

	workDir   string
	globalDir string
	lookupEnv func(string) (string, bool)
}

// Option customizes a Store, mainly for tests.
type Option func(*Store)

// WithWorkDir sets the project root used to locate the project settings file.
func WithWorkDir(dir string) Option {
	return func(s *Store) { s.workDir = dir }
}

// WithGlobalDir overrides the machine-wide config directory.
func WithGlobalDir(dir string) Option {
	return func(s *Store) { s.globalDir = dir }
}

// WithLookupEnv overrides environment lookup.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(s *Store) { s.lookupEnv = fn }
}

// New creates an unresolved Store. Call Initialize before reading.
func New(opts ...Option) *Store {
	s := &Store{
		workDir:   ".",
		lookupEnv: os.LookupEnv,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Initialize performs the four-stage merge. Calling it again on an already
// initialized store is a no-op; use Reload to force a re-merge.
func (s *Store) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return nil
	}
	return s.resolve()
}

// Reload rebuilds the merged view from all sources.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolve()
}

// resolve merges defaults, the global file, the project file, and the
// environment, in that order. Caller holds the write lock.
func (s *Store) resolve() error {
	vals := defaults()

	if path, err := s.path(ScopeGlobal); err == nil {
		mergeFile(vals, path)
	}
	if path, err := s.path(ScopeProject); err == nil {
		mergeFile(vals, path)
	}
	for _, key := range recognizedKeys() {
		if v, ok := s.lookupEnv(key); ok && v != "" {
			vals[key] = v
		}
	}

	s.values = vals
	s.initialized = true
	return nil
}

func defaults() map[string]string {
	vals := map[string]string{
		KeyService:    KnownBackends[0],
		KeyAutoSwitch: "true",
		KeyTimeout:    strconv.Itoa(DefaultTimeoutSeconds),
		KeyMaxRetries: strconv.Itoa(DefaultMaxRetries),
		KeyLanguage:   DefaultLanguage,
		KeyCache:      "true",
		KeyCacheTTL:   strconv.Itoa(DefaultCacheTTLSeconds),
		KeyRedact:     "true",
	}
	for backend, key := range modelKeys {
		vals[key] = defaultModels[backend]
	}
	return vals
}

// recognizedKeys returns every key the environment stage consults.
func recognizedKeys() []string {
	keys := []string{
		KeyService, KeyAutoSwitch, KeyTimeout, KeyMaxRetries,
		KeyLanguage, KeyCache, KeyCacheTTL, KeyRedact,
	}
	for _, backend := range KnownBackends {
		keys = append(keys, credentialKeys[backend], modelKeys[backend])
	}
	return keys
}

// mergeFile reads a settings file into vals. A missing file is skipped;
// malformed lines are skipped individually.
func mergeFile(vals map[string]string, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	parseSettings(string(data), vals)
}

// parseSettings parses KEY=VALUE lines. Blank lines and #-comments are
// ignored. Lines are split at the first '=' only, so values may contain
// '='. Surrounding single or double quotes are stripped.
func parseSettings(data string, vals map[string]string) {
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.Index(line, "=")
		if idx <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.TrimSpace(line[idx+1:])
		vals[key] = unquote(val)
	}
}

func unquote(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}

// Get returns the resolved value for key, or def if the key is absent.
func (s *Store) Get(key, def string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return "", ErrNotInitialized
	}
	if v, ok := s.values[key]; ok && v != "" {
		return v, nil
	}
	return def, nil
}

// TimeoutSeconds returns the per-attempt timeout. Non-numeric or
// non-positive values fall back to the default.
func (s *Store) TimeoutSeconds() (int, error) {
	return s.positiveInt(KeyTimeout, DefaultTimeoutSeconds)
}

// MaxRetries returns the attempt count per backend. Non-numeric or
// non-positive values fall back to the default.
func (s *Store) MaxRetries() (int, error) {
	return s.positiveInt(KeyMaxRetries, DefaultMaxRetries)
}

func (s *Store) positiveInt(key string, def int) (int, error) {
	v, err := s.Get(key, strconv.Itoa(def))
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def, nil
	}
	return n, nil
}

// AutoSwitch reports whether failover to alternate backends is permitted.
// Anything other than the literals "true" and "false" falls back to true.
func (s *Store) AutoSwitch() (bool, error) {
	return s.boolKey(KeyAutoSwitch, true)
}

// Backend returns the preferred backend name. Unknown names normalize to
// the first known backend rather than failing.
func (s *Store) Backend() (string, error) {
	v, err := s.Get(KeyService, KnownBackends[0])
	if err != nil {
		return "", err
	}
	return NormalizeBackend(v), nil
}

// NormalizeBackend maps any string onto the closed backend set.
func NormalizeBackend(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, known := range KnownBackends {
		if name == known {
			return known
		}
	}
	return KnownBackends[0]
}

// Credential returns the credential for a backend, or "" when unset.
func (s *Store) Credential(backend string) (string, error) {
	key, ok := credentialKeys[backend]
	if !ok {
		return "", nil
	}
	return s.Get(key, "")
}

// CredentialKey returns the variable name holding a backend's credential.
func CredentialKey(backend string) string {
	return credentialKeys[backend]
}

// Model returns the model identifier for a backend.
func (s *Store) Model(backend string) (string, error) {
	key, ok := modelKeys[backend]
	if !ok {
		return "", nil
	}
	return s.Get(key, defaultModels[backend])
}

// Language returns the response language code for generated reviews.
func (s *Store) Language() (string, error) {
	return s.Get(KeyLanguage, DefaultLanguage)
}

// CacheEnabled reports whether the response cache is active.
func (s *Store) CacheEnabled() (bool, error) {
	return s.boolKey(KeyCache, true)
}

// CacheTTLSeconds returns the cache entry lifetime.
func (s *Store) CacheTTLSeconds() (int, error) {
	return s.positiveInt(KeyCacheTTL, DefaultCacheTTLSeconds)
}

// RedactSecrets reports whether content is scrubbed before leaving the
// machine.
func (s *Store) RedactSecrets() (bool, error) {
	return s.boolKey(KeyRedact, true)
}

func (s *Store) boolKey(key string, def bool) (bool, error) {
	v, err := s.Get(key, strconv.FormatBool(def))
	if err != nil {
		return false, err
	}
	switch v {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return def, nil
}

// Dir returns the settings directory for a scope.
func (s *Store) Dir(scope Scope) (string, error) {
	switch scope {
	case ScopeProject:
		return filepath.Join(s.workDir, ".revu"), nil
	case ScopeGlobal:
		if s.globalDir != "" {
			return s.globalDir, nil
		}
		return globalConfigDir()
	}
	return "", fmt.Errorf("unknown config scope: %s", scope)
}

// Path returns the settings file path for a scope.
func (s *Store) Path(scope Scope) (string, error) {
	return s.path(scope)
}

func (s *Store) path(scope Scope) (string, error) {
	dir, err := s.Dir(scope)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ".env"), nil
}

// Set writes key=value into the persisted settings file for the scope.
// The live merged view is unchanged until the next Reload.
func (s *Store) Set(scope Scope, key, value string) error {
	path, err := s.path(scope)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}

	var lines []string
	if data, err := os.ReadFile(path); err == nil {
		lines = strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	}

	replaced := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		idx := strings.Index(trimmed, "=")
		if idx <= 0 {
			continue
		}
		if strings.TrimSpace(trimmed[:idx]) == key {
			lines[i] = key + "=" + value
			replaced = true
		}
	}
	if !replaced {
		lines = append(lines, key+"="+value)
	}

	out := strings.TrimLeft(strings.Join(lines, "\n"), "\n") + "\n"
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	return nil
}

// settingsTemplate is the file written by `revu config init`. Every line is
// commented out so the file documents the defaults without overriding them.
const settingsTemplate = `# revu settings
# Uncomment a line to override the default. Environment variables with the
# same names take priority over this file.

#AI_SERVICE=gemini
#AI_AUTO_SWITCH=true
#AI_TIMEOUT=30
#AI_MAX_RETRIES=3
#REVIEW_LANGUAGE=en
#REVIEW_CACHE=true
#REVIEW_CACHE_TTL=86400
#REVIEW_REDACT=true

# Backend credentials. A backend without a credential is skipped.
#GEMINI_API_KEY=
#ANTHROPIC_API_KEY=
#OPENAI_API_KEY=
#OLLAMA_HOST=http://localhost:11434

# Model overrides.
#GEMINI_MODEL=gemini-2.0-flash
#CLAUDE_MODEL=claude-sonnet-4-20250514
#OPENAI_MODEL=gpt-4o
#OLLAMA_MODEL=qwen2.5-coder
`

// WriteTemplate writes a commented settings template to path.
func WriteTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}
	return os.WriteFile(path, []byte(settingsTemplate), 0o644)
}

// All returns a copy of the resolved key/value map.
func (s *Store) All() (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return nil, ErrNotInitialized
	}
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out, nil
}

// globalConfigDir returns the platform-appropriate config directory for revu.
func globalConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "revu"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "revu"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "revu"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "revu"), nil
	default:
		return filepath.Join(home, ".config", "revu"), nil
	}
}
