package cache

import "time"

// memoryFrontTTL bounds how long a disk-backed entry stays promoted in memory
const memoryFrontTTL = 1 * time.Hour

// LayeredCache is a memory cache in front of a disk cache. Reads check memory
// first and promote disk hits; writes go through to both layers. The memory
// layer expires sooner than the disk layer because it only exists to absorb
// repeat lookups within a run.
type LayeredCache struct {
	memory Cache
	disk   Cache
}

// NewLayeredCache creates the two-layer cache under diskDir
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	if memoryTTL <= 0 || memoryTTL > memoryFrontTTL {
		memoryTTL = memoryFrontTTL
	}
	return &LayeredCache{
		memory: NewMemoryCache(memoryTTL, 0),
		disk:   NewDiskCache(diskDir, diskTTL),
	}
}

// Get checks memory, then disk. Disk hits are promoted into memory at the
// memory layer's default TTL.
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, found := c.memory.Get(key); found {
		return val, true
	}

	val, found := c.disk.Get(key)
	if !found {
		return nil, false
	}
	_ = c.memory.Set(key, val, 0)
	return val, true
}

// Set writes through both layers. A disk write failure surfaces even though
// the memory layer already holds the value, so callers learn the entry will
// not survive the process.
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	if err := c.memory.Set(key, value, 0); err != nil {
		return err
	}
	return c.disk.Set(key, value, ttl)
}

// Delete removes a value from both layers
func (c *LayeredCache) Delete(key string) error {
	_ = c.memory.Delete(key)
	return c.disk.Delete(key)
}

// Clear empties both layers
func (c *LayeredCache) Clear() error {
	_ = c.memory.Clear()
	return c.disk.Clear()
}
