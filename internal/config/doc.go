// Package config resolves revu configuration from layered sources into one
// read-mostly store.
//
// Precedence (highest to lowest):
//  1. Environment variables (AI_SERVICE, AI_TIMEOUT, GEMINI_API_KEY, etc.)
//  2. Project settings file (.revu/.env in the working tree)
//  3. Machine-wide settings file ($XDG_CONFIG_HOME/revu/.env)
//  4. Built-in defaults
//
// Settings files are plain KEY=VALUE lines with #-comments; values are split
// at the first '=' and may be quoted. Construct a [Store] with [New], call
// [Store.Initialize] once at startup, then read through the typed accessors.
// Reads before Initialize fail with [ErrNotInitialized]. [Store.Set] writes
// a key back to a settings file without touching the live view; the change
// is picked up on the next [Store.Reload].
package config
