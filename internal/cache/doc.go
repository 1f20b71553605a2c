// Package cache persists AI backend responses in a local SQLite database
// keyed by a hash of the backend and prompt, with TTL-based expiry.
package cache
