package message_cache

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/zeebo/xxh3"
)

const (
	DefaultMaxAge = 7 * 24 * time.Hour
	dirName       = "commitgpt"
	fileSuffix    = ".cache"
)

// DefaultDir is the per-user cache directory. It lives outside the work tree so
// "git add -A" never stages it.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user cache directory: %w", err)
	}
	return filepath.Join(base, dirName), nil
}

// CacheEntry represents a cached commit message with metadata
type CacheEntry struct {
	Message   string
	Model     string
	Timestamp time.Time
}

// MessageCache stores generated messages on disk, one gob file per key.
type MessageCache struct {
	cacheDir string
	maxAge   time.Duration
	mutex    sync.RWMutex
	now      func() time.Time
}

// NewMessageCache creates the cache directory if needed.
func NewMessageCache(cacheDir string, maxAge time.Duration) (*MessageCache, error) {
	if cacheDir == "" {
		return nil, fmt.Errorf("cache directory must not be empty")
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &MessageCache{
		cacheDir: cacheDir,
		maxAge:   maxAge,
		now:      time.Now,
	}, nil
}

// Key hashes everything that influences the generated message.
func Key(parts ...string) string {
	return fmt.Sprintf("%016x", xxh3.HashString(strings.Join(parts, "\x00")))
}

func (mc *MessageCache) path(key string) string {
	return filepath.Join(mc.cacheDir, key+fileSuffix)
}

// Get returns the cached message for key. Expired or unreadable entries are removed and reported as misses.
func (mc *MessageCache) Get(key string) (string, bool) {
	mc.mutex.RLock()
	data, err := os.ReadFile(mc.path(key))
	mc.mutex.RUnlock()
	if err != nil {
		return "", false
	}

	var entry CacheEntry
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&entry); err != nil {
		_ = mc.Delete(key)
		return "", false
	}

	if mc.now().Sub(entry.Timestamp) > mc.maxAge || entry.Message == "" {
		_ = mc.Delete(key)
		return "", false
	}

	return entry.Message, true
}

func (mc *MessageCache) Set(key string, message string, model string) error {
	entry := CacheEntry{
		Message:   message,
		Model:     model,
		Timestamp: mc.now(),
	}

	var buffer bytes.Buffer
	if err := gob.NewEncoder(&buffer).Encode(entry); err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	if err := os.WriteFile(mc.path(key), buffer.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}

func (mc *MessageCache) Delete(key string) error {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	if err := os.Remove(mc.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cache file: %w", err)
	}
	return nil
}

// Clear removes all cache files
func (mc *MessageCache) Clear() error {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	if err := os.RemoveAll(mc.cacheDir); err != nil {
		return fmt.Errorf("failed to remove cache directory: %w", err)
	}
	return os.MkdirAll(mc.cacheDir, 0755)
}

// GetCacheStats returns cache statistics
func (mc *MessageCache) GetCacheStats() (map[string]interface{}, error) {
	mc.mutex.RLock()
	defer mc.mutex.RUnlock()

	entries, err := os.ReadDir(mc.cacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	var totalSize int64
	files := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files++
		totalSize += info.Size()
	}

	stats := make(map[string]interface{})
	stats["cache_enabled"] = true
	stats["cache_dir"] = mc.cacheDir
	stats["cache_files"] = files
	stats["total_size"] = totalSize

	return stats, nil
}
