package cache

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DiskCache persists cache entries as one file per key under a directory.
// An entry is an 8-byte big-endian expiry (unix nanoseconds) followed by the
// raw payload; expired entries are removed on read.
type DiskCache struct {
	dir string
	ttl time.Duration
}

// NewDiskCache creates a disk cache rooted at dir. The directory is created
// lazily on first write.
func NewDiskCache(dir string, defaultTTL time.Duration) *DiskCache {
	return &DiskCache{dir: dir, ttl: defaultTTL}
}

const diskHeaderLen = 8

// Get retrieves a value. Unreadable, truncated or expired entries read as
// misses.
func (c *DiskCache) Get(key string) ([]byte, bool) {
	data, err := os.ReadFile(c.path(key))
	if err != nil || len(data) < diskHeaderLen {
		return nil, false
	}

	expiresAt := int64(binary.BigEndian.Uint64(data[:diskHeaderLen]))
	if time.Now().UnixNano() >= expiresAt {
		_ = os.Remove(c.path(key))
		return nil, false
	}
	return data[diskHeaderLen:], true
}

// Set stores a value. A ttl of 0 uses the cache default.
func (c *DiskCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	buf := make([]byte, diskHeaderLen+len(value))
	binary.BigEndian.PutUint64(buf, uint64(time.Now().Add(ttl).UnixNano()))
	copy(buf[diskHeaderLen:], value)

	if err := os.WriteFile(c.path(key), buf, 0644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// Delete removes a value from the disk cache
func (c *DiskCache) Delete(key string) error {
	return os.Remove(c.path(key))
}

// Clear removes the whole cache directory
func (c *DiskCache) Clear() error {
	return os.RemoveAll(c.dir)
}

// path maps a key to its entry file. Colons in key prefixes are not portable
// filename characters, so they are flattened.
func (c *DiskCache) path(key string) string {
	return filepath.Join(c.dir, strings.ReplaceAll(key, ":", "_")+".cache")
}
