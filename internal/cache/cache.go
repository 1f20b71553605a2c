package cache

import (
	"crypto/sha256"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "modernc.org/sqlite"
)

// Cache stores backend responses in SQLite so identical review requests
// skip the network within the TTL window. A disabled cache is a valid
// no-op object.
type Cache struct {
	db      *sql.DB
	ttl     time.Duration
	enabled bool
	path    string
}

const schema = `
CREATE TABLE IF NOT EXISTS responses (
	key        TEXT PRIMARY KEY,
	backend    TEXT NOT NULL,
	response   TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
`

// Open creates or opens the cache database. An empty path uses the default
// cache location for the platform.
func Open(enabled bool, path string, ttlSeconds int) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false}, nil
	}
	if path == "" {
		dir, err := defaultCacheDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "cache.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	connStr := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing cache schema: %w", err)
	}

	return &Cache{
		db:      db,
		ttl:     time.Duration(ttlSeconds) * time.Second,
		enabled: true,
		path:    path,
	}, nil
}

// OpenMemory creates an in-memory cache for tests.
func OpenMemory(ttlSeconds int) (*Cache, error) {
	db, err := sql.Open("sqlite", "file::memory:?mode=memory&cache=shared")
	if err != nil {
		return nil, fmt.Errorf("opening memory database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing cache schema: %w", err)
	}
	return &Cache{
		db:      db,
		ttl:     time.Duration(ttlSeconds) * time.Second,
		enabled: true,
	}, nil
}

// Get returns the cached response and the backend that produced it.
// Expired entries are removed on access.
func (c *Cache) Get(key string) (response, backend string, ok bool) {
	if !c.enabled {
		return "", "", false
	}
	var createdAt int64
	row := c.db.QueryRow(`SELECT response, backend, created_at FROM responses WHERE key = ?`, key)
	if err := row.Scan(&response, &backend, &createdAt); err != nil {
		return "", "", false
	}
	if c.ttl > 0 && time.Since(time.Unix(createdAt, 0)) > c.ttl {
		c.db.Exec(`DELETE FROM responses WHERE key = ?`, key)
		return "", "", false
	}
	return response, backend, true
}

// Put stores a response under key, replacing any previous entry.
func (c *Cache) Put(key, backend, response string) error {
	if !c.enabled {
		return nil
	}
	_, err := c.db.Exec(
		`INSERT INTO responses (key, backend, response, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET backend = excluded.backend, response = excluded.response, created_at = excluded.created_at`,
		key, backend, response, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("storing cache entry: %w", err)
	}
	return nil
}

// Clear removes all cache entries.
func (c *Cache) Clear() error {
	if !c.enabled {
		return nil
	}
	if _, err := c.db.Exec(`DELETE FROM responses`); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}

// Stats describes the cache contents.
type Stats struct {
	Path    string `json:"path"`
	Entries int    `json:"entries"`
	Expired int    `json:"expired"`
}

// GetStats returns information about the cache.
func (c *Cache) GetStats() (Stats, error) {
	stats := Stats{Path: c.path}
	if !c.enabled {
		return stats, nil
	}
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM responses`).Scan(&stats.Entries); err != nil {
		return stats, fmt.Errorf("counting cache entries: %w", err)
	}
	if c.ttl > 0 {
		cutoff := time.Now().Add(-c.ttl).Unix()
		if err := c.db.QueryRow(`SELECT COUNT(*) FROM responses WHERE created_at < ?`, cutoff).Scan(&stats.Expired); err != nil {
			return stats, fmt.Errorf("counting expired entries: %w", err)
		}
	}
	return stats, nil
}

// Enabled reports whether caching is active.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// Close releases the database handle.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Key builds a cache key from the serving inputs.
func Key(backend, prompt string) string {
	h := sha256.Sum256([]byte(backend + ":" + prompt))
	return fmt.Sprintf("%x", h)
}

func defaultCacheDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "revu"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Caches", "revu"), nil
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "revu", "cache"), nil
		}
		return filepath.Join(home, "AppData", "Local", "revu", "cache"), nil
	default:
		return filepath.Join(home, ".cache", "revu"), nil
	}
}
