// Package cache provides the byte cache backing embedding reuse: identical
// text embedded with the same model never hits the API twice.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// EmbeddingKey generates a cache key for a (model, text) pair. The model
// name is part of the key because vectors from different models are not
// interchangeable.
func EmbeddingKey(model, text string) string {
	hash := sha256.Sum256([]byte(model + "\x00" + text))
	return "mediamind:v1:emb:" + hex.EncodeToString(hash[:])
}
