package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// newTestStore builds a Store rooted in temp directories with a controlled
// environment. env may be nil for an empty environment.
func newTestStore(t *testing.T, env map[string]string) (*Store, string, string) {
	t.Helper()
	work := t.TempDir()
	global := t.TempDir()
	s := New(
		WithWorkDir(work),
		WithGlobalDir(global),
		WithLookupEnv(func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		}),
	)
	return s, work, global
}

func writeSettings(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeProjectSettings(t *testing.T, work, content string) {
	t.Helper()
	dir := filepath.Join(work, ".revu")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeSettings(t, dir, content)
}

func TestGetBeforeInitialize(t *testing.T) {
	s, _, _ := newTestStore(t, nil)
	if _, err := s.Get(KeyTimeout, "30"); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("Get before Initialize: err = %v, want ErrNotInitialized", err)
	}
	if _, err := s.TimeoutSeconds(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("TimeoutSeconds before Initialize: err = %v, want ErrNotInitialized", err)
	}
}

func TestDefaults(t *testing.T) {
	s, _, _ := newTestStore(t, nil)
	if err := s.Initialize(); err != nil {
		t.Fatal(err)
	}

	if n, _ := s.TimeoutSeconds(); n != DefaultTimeoutSeconds {
		t.Errorf("TimeoutSeconds = %d, want %d", n, DefaultTimeoutSeconds)
	}
	if n, _ := s.MaxRetries(); n != DefaultMaxRetries {
		t.Errorf("MaxRetries = %d, want %d", n, DefaultMaxRetries)
	}
	if on, _ := s.AutoSwitch(); !on {
		t.Error("AutoSwitch default should be true")
	}
	if b, _ := s.Backend(); b != "gemini" {
		t.Errorf("Backend = %q, want %q", b, "gemini")
	}
	if lang, _ := s.Language(); lang != "en" {
		t.Errorf("Language = %q, want %q", lang, "en")
	}
	if cred, _ := s.Credential("gemini"); cred != "" {
		t.Errorf("Credential with no sources = %q, want empty", cred)
	}
}

func TestProjectOverridesGlobal(t *testing.T) {
	s, work, global := newTestStore(t, nil)
	writeSettings(t, global, "AI_TIMEOUT=60\nAI_SERVICE=openai\n")
	writeProjectSettings(t, work, "AI_TIMEOUT=45\n")
	if err := s.Initialize(); err != nil {
		t.Fatal(err)
	}

	// Project wins where both define the key.
	if n, _ := s.TimeoutSeconds(); n != 45 {
		t.Errorf("TimeoutSeconds = %d, want 45", n)
	}
	// Global still supplies keys the project omits.
	if b, _ := s.Backend(); b != "openai" {
		t.Errorf("Backend = %q, want %q", b, "openai")
	}
}

func TestEnvOverridesFiles(t *testing.T) {
	env := map[string]string{"AI_TIMEOUT": "90"}
	s, work, global := newTestStore(t, env)
	writeSettings(t, global, "AI_TIMEOUT=60\n")
	writeProjectSettings(t, work, "AI_TIMEOUT=45\n")
	if err := s.Initialize(); err != nil {
		t.Fatal(err)
	}

	if n, _ := s.TimeoutSeconds(); n != 90 {
		t.Errorf("TimeoutSeconds = %d, want 90", n)
	}
}

func TestProjectEnvFileTimeout(t *testing.T) {
	s, work, _ := newTestStore(t, nil)
	writeProjectSettings(t, work, "AI_TIMEOUT=45\n")
	if err := s.Initialize(); err != nil {
		t.Fatal(err)
	}

	if n, _ := s.TimeoutSeconds(); n != 45 {
		t.Errorf("TimeoutSeconds = %d, want 45", n)
	}
}

func TestParseSettings(t *testing.T) {
	tests := []struct {
		name string
		line string
		key  string
		want string
	}{
		{"plain", "AI_SERVICE=claude", "AI_SERVICE", "claude"},
		{"double quoted", `GEMINI_API_KEY="abc123"`, "GEMINI_API_KEY", "abc123"},
		{"single quoted", "GEMINI_API_KEY='abc123'", "GEMINI_API_KEY", "abc123"},
		{"value with equals", "OLLAMA_HOST=http://host:1?a=b=c", "OLLAMA_HOST", "http://host:1?a=b=c"},
		{"surrounding space", "  AI_TIMEOUT = 45  ", "AI_TIMEOUT", "45"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vals := map[string]string{}
			parseSettings(tt.line, vals)
			if got := vals[tt.key]; got != tt.want {
				t.Errorf("parseSettings(%q)[%s] = %q, want %q", tt.line, tt.key, got, tt.want)
			}
		})
	}
}

func TestParseSettingsSkipsMalformed(t *testing.T) {
	vals := map[string]string{}
	parseSettings("# comment\n\nno-delimiter\n=leading\nAI_TIMEOUT=45\n", vals)
	if len(vals) != 1 || vals["AI_TIMEOUT"] != "45" {
		t.Errorf("vals = %v, want only AI_TIMEOUT=45", vals)
	}
}

func TestTypedAccessorsFailClosed(t *testing.T) {
	s, work, _ := newTestStore(t, nil)
	writeProjectSettings(t, work, "AI_TIMEOUT=soon\nAI_MAX_RETRIES=-2\nAI_AUTO_SWITCH=maybe\n")
	if err := s.Initialize(); err != nil {
		t.Fatal(err)
	}

	if n, _ := s.TimeoutSeconds(); n != DefaultTimeoutSeconds {
		t.Errorf("TimeoutSeconds with garbage value = %d, want default %d", n, DefaultTimeoutSeconds)
	}
	if n, _ := s.MaxRetries(); n != DefaultMaxRetries {
		t.Errorf("MaxRetries with negative value = %d, want default %d", n, DefaultMaxRetries)
	}
	if on, _ := s.AutoSwitch(); !on {
		t.Error("AutoSwitch with garbage value should fall back to true")
	}
}

func TestBackendNormalization(t *testing.T) {
	s, work, _ := newTestStore(t, nil)
	writeProjectSettings(t, work, "AI_SERVICE=skynet\n")
	if err := s.Initialize(); err != nil {
		t.Fatal(err)
	}
	if b, _ := s.Backend(); b != "gemini" {
		t.Errorf("Backend with unknown name = %q, want %q", b, "gemini")
	}
}

func TestInitializeIdempotent(t *testing.T) {
	s, work, _ := newTestStore(t, nil)
	if err := s.Initialize(); err != nil {
		t.Fatal(err)
	}
	// A file written after Initialize must not leak into the live view.
	writeProjectSettings(t, work, "AI_TIMEOUT=45\n")
	if err := s.Initialize(); err != nil {
		t.Fatal(err)
	}
	if n, _ := s.TimeoutSeconds(); n != DefaultTimeoutSeconds {
		t.Errorf("TimeoutSeconds after second Initialize = %d, want %d", n, DefaultTimeoutSeconds)
	}

	if err := s.Reload(); err != nil {
		t.Fatal(err)
	}
	if n, _ := s.TimeoutSeconds(); n != 45 {
		t.Errorf("TimeoutSeconds after Reload = %d, want 45", n)
	}
}

func TestSetWritesFileNotLiveView(t *testing.T) {
	s, _, _ := newTestStore(t, nil)
	if err := s.Initialize(); err != nil {
		t.Fatal(err)
	}

	if err := s.Set(ScopeProject, "AI_SERVICE", "claude"); err != nil {
		t.Fatal(err)
	}
	if b, _ := s.Backend(); b != "gemini" {
		t.Errorf("Backend before Reload = %q, want %q", b, "gemini")
	}

	if err := s.Reload(); err != nil {
		t.Fatal(err)
	}
	if b, _ := s.Backend(); b != "claude" {
		t.Errorf("Backend after Reload = %q, want %q", b, "claude")
	}
}

func TestSetReplacesExistingKey(t *testing.T) {
	s, work, _ := newTestStore(t, nil)
	writeProjectSettings(t, work, "# local settings\nAI_SERVICE=openai\nAI_TIMEOUT=45\n")
	if err := s.Initialize(); err != nil {
		t.Fatal(err)
	}

	if err := s.Set(ScopeProject, "AI_SERVICE", "claude"); err != nil {
		t.Fatal(err)
	}

	path, _ := s.Path(ScopeProject)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "# local settings\nAI_SERVICE=claude\nAI_TIMEOUT=45\n"
	if string(data) != want {
		t.Errorf("settings file = %q, want %q", data, want)
	}
}

func TestCredentialLookup(t *testing.T) {
	env := map[string]string{"ANTHROPIC_API_KEY": "sk-test"}
	s, _, _ := newTestStore(t, env)
	if err := s.Initialize(); err != nil {
		t.Fatal(err)
	}

	if cred, _ := s.Credential("claude"); cred != "sk-test" {
		t.Errorf("Credential(claude) = %q, want %q", cred, "sk-test")
	}
	if cred, _ := s.Credential("gemini"); cred != "" {
		t.Errorf("Credential(gemini) = %q, want empty", cred)
	}
	if cred, _ := s.Credential("not-a-backend"); cred != "" {
		t.Errorf("Credential(unknown) = %q, want empty", cred)
	}
}

func TestPathMapping(t *testing.T) {
	s, work, global := newTestStore(t, nil)

	p, err := s.Path(ScopeProject)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(work, ".revu", ".env"); p != want {
		t.Errorf("Path(project) = %q, want %q", p, want)
	}

	p, err = s.Path(ScopeGlobal)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(global, ".env"); p != want {
		t.Errorf("Path(global) = %q, want %q", p, want)
	}

	if _, err := s.Path(Scope("nope")); err == nil {
		t.Error("Path with unknown scope should error")
	}
}
