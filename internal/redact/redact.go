package redact

import (
	"path/filepath"
	"regexp"
)

const mask = "[REDACTED]"

type rule struct {
	name string
	re   *regexp.Regexp
}

// rules are heuristics for credential material that must never reach a
// remote backend. Ordering matters: provider-specific shapes run before
// the generic assignment catch-alls.
var rules = []rule{
	{"aws-access-key", regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`)},
	{"aws-secret-key", regexp.MustCompile(`(?i)aws[_-]?secret[_-]?access[_-]?key\s*[:=]\s*["']?[A-Za-z0-9/+=]{40}["']?`)},
	{"github-token", regexp.MustCompile(`\bgh[pousr]_[A-Za-z0-9_]{36,}\b`)},
	{"slack-token", regexp.MustCompile(`\bxox[bporas]-[A-Za-z0-9-]{10,}\b`)},
	{"anthropic-key", regexp.MustCompile(`\bsk-ant-[A-Za-z0-9_-]{20,}\b`)},
	{"openai-key", regexp.MustCompile(`\bsk-[A-Za-z0-9]{20,}\b`)},
	{"google-key", regexp.MustCompile(`\bAIza[A-Za-z0-9_-]{35}\b`)},
	{"jwt", regexp.MustCompile(`\beyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}\b`)},
	{"bearer-token", regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`)},
	{"private-key-block", regexp.MustCompile(`-----BEGIN\s+(?:RSA\s+|EC\s+|OPENSSH\s+)?PRIVATE KEY-----`)},
	{"api-key-assignment", regexp.MustCompile(`(?i)(?:api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?[A-Za-z0-9/+=_-]{20,}["']?`)},
	{"secret-assignment", regexp.MustCompile(`(?i)(?:secret|token|password|passwd|credential)\s*[:=]\s*["'][^"']{8,}["']`)},
	{"hex-assignment", regexp.MustCompile(`(?i)(?:key|secret|token)\s*[:=]\s*["']?[0-9a-f]{32,}["']?`)},
}

// Scrub replaces anything matching a secret heuristic with [REDACTED].
func Scrub(text string) string {
	for _, r := range rules {
		text = r.re.ReplaceAllString(text, mask)
	}
	return text
}

// sensitiveNames are file basenames whose entire content is withheld
// rather than scrubbed pattern by pattern.
var sensitiveNames = []string{
	".env", ".env.*", "*.pem", "*.key", "*.p12", "*.pfx",
	"id_rsa", "id_ed25519", "id_dsa", "credentials", ".netrc", ".npmrc", ".pypirc",
}

// SensitiveFile reports whether a path names a file that should be
// withheld wholesale.
func SensitiveFile(path string) bool {
	base := filepath.Base(path)
	for _, pat := range sensitiveNames {
		if ok, err := filepath.Match(pat, base); err == nil && ok {
			return true
		}
	}
	return false
}

// File scrubs content, or withholds it entirely when the path names a
// sensitive file.
func File(path, content string) string {
	if SensitiveFile(path) {
		return mask + " (content withheld: " + filepath.Base(path) + ")\n"
	}
	return Scrub(content)
}
