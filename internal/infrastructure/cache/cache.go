package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CachedResponse is an HTTP response body stored on disk.
type CachedResponse struct {
	Hash        string    `json:"hash"`
	URL         string    `json:"url"`
	StatusCode  int       `json:"status_code"`
	ContentType string    `json:"content_type,omitempty"`
	Body        []byte    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}

// Cache keeps HTTP responses in a directory, one JSON file per request.
// A zero ttl means entries never expire.
type Cache struct {
	cacheDir string
	ttl      time.Duration
}

// DefaultDir returns $XDG_CACHE_HOME/dbts.
func DefaultDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("error getting cache directory: %w", err)
	}
	return filepath.Join(dir, "dbts"), nil
}

// NewCache opens the cache in dir, creating it if needed. An empty dir
// selects DefaultDir.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("error creating cache directory: %w", err)
	}

	cache := &Cache{
		cacheDir: dir,
		ttl:      ttl,
	}

	_ = cache.CleanExpired()

	return cache, nil
}

// GenerateHash returns the SHA-256 of the request parts.
func (c *Cache) GenerateHash(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(hash[:])
}

// Get returns the response stored under hash.
func (c *Cache) Get(hash string) (*CachedResponse, bool, error) {
	filePath := c.path(hash)

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("error reading cache: %w", err)
	}

	var cached CachedResponse
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false, fmt.Errorf("error decoding cache entry: %w", err)
	}

	if c.expired(cached.CreatedAt) {
		_ = os.Remove(filePath)
		return nil, false, nil
	}

	return &cached, true, nil
}

// Set stores response under hash.
func (c *Cache) Set(hash string, response *CachedResponse) error {
	cached := *response
	cached.Hash = hash
	if cached.CreatedAt.IsZero() {
		cached.CreatedAt = time.Now()
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("error encoding cache entry: %w", err)
	}

	if err := os.WriteFile(c.path(hash), data, 0600); err != nil {
		return fmt.Errorf("error writing cache: %w", err)
	}

	return nil
}

// CleanExpired removes expired entries.
func (c *Cache) CleanExpired() error {
	if c.ttl <= 0 {
		return nil
	}

	entries, err := os.ReadDir(c.cacheDir)
	if err != nil {
		return fmt.Errorf("error reading cache directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if c.expired(info.ModTime()) {
			_ = os.Remove(filepath.Join(c.cacheDir, entry.Name()))
		}
	}

	return nil
}

func (c *Cache) path(hash string) string {
	return filepath.Join(c.cacheDir, hash+".json")
}

func (c *Cache) expired(created time.Time) bool {
	return c.ttl > 0 && time.Since(created) > c.ttl
}
