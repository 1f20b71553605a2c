// Package backends implements the Backend interface for each supported AI
// service: Google (Gemini), Anthropic (Claude), OpenAI, and Ollama / LM
// Studio for local models.
//
// The backend set is closed and enumerable; [NewRegistry] wires all of them
// to a config store, from which credentials and model names are read on
// every call so that reconfiguration takes effect without rebuilding the
// registry. A backend with no credential reports itself not configured and
// is skipped by the orchestrator.
//
// All backends speak raw HTTP with hand-written wire structs. Base URLs are
// struct fields so tests can point them at local httptest servers. Retry,
// backoff, and timeouts live in the orchestrator, not here: Invoke performs
// exactly one call.
package backends
