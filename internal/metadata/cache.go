package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	appErr "leetbridge/pkg/errors"
)

const (
	metaFileName = "meta.json"
	dataFileName = "snapshot.zst"
	tempFileName = "snapshot.tmp"
)

type cacheEntry struct {
	key       string
	sizeBytes int64
	expiresAt time.Time
}

type snapshotMeta struct {
	SHA256    string    `json:"sha256"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// SnapshotCache keeps zstd-compressed metadata snapshots on disk with a
// TTL and a byte-budget LRU.
type SnapshotCache struct {
	rootDir  string
	ttl      time.Duration
	maxBytes int64

	mu        sync.Mutex
	entries   map[string]*cacheEntry
	lruKeys   []string
	totalSize int64
}

// NewSnapshotCache creates a cache rooted at rootDir.
func NewSnapshotCache(rootDir string, ttl time.Duration, maxBytes int64) *SnapshotCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if maxBytes <= 0 {
		maxBytes = 64 << 20
	}
	c := &SnapshotCache{
		rootDir:  rootDir,
		ttl:      ttl,
		maxBytes: maxBytes,
		entries:  make(map[string]*cacheEntry),
	}
	c.loadExisting()
	return c
}

// loadExisting seeds the in-memory index from snapshots left by earlier
// runs, oldest first, so the TTL and the byte budget hold across
// restarts.
func (c *SnapshotCache) loadExisting() {
	if c.rootDir == "" {
		return
	}
	dirs, err := os.ReadDir(c.rootDir)
	if err != nil {
		return
	}
	type stored struct {
		key  string
		meta snapshotMeta
	}
	var found []stored
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(c.rootDir, d.Name(), metaFileName))
		if err != nil {
			continue
		}
		var meta snapshotMeta
		if json.Unmarshal(data, &meta) != nil {
			continue
		}
		found = append(found, stored{key: d.Name(), meta: meta})
	}
	sort.Slice(found, func(i, j int) bool {
		return found[i].meta.CreatedAt.Before(found[j].meta.CreatedAt)
	})

	c.mu.Lock()
	for _, s := range found {
		c.entries[s.key] = &cacheEntry{
			key:       s.key,
			sizeBytes: s.meta.SizeBytes,
			expiresAt: s.meta.CreatedAt.Add(c.ttl),
		}
		c.lruKeys = append(c.lruKeys, s.key)
		c.totalSize += s.meta.SizeBytes
	}
	c.evictLocked()
	c.mu.Unlock()
}

// Get returns the decompressed snapshot payload for key, if present,
// fresh and intact.
func (c *SnapshotCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	if ok && time.Now().After(entry.expiresAt) {
		c.removeLocked(key)
		ok = false
	}
	if ok {
		entry.expiresAt = time.Now().Add(c.ttl)
		c.touchLocked(key)
	}
	c.mu.Unlock()

	payload, err := c.readSnapshot(key)
	if err != nil {
		c.Remove(key)
		return nil, false
	}
	if !ok {
		c.mu.Lock()
		c.addLocked(key, int64(len(payload)))
		c.mu.Unlock()
	}
	return payload, true
}

// Put stores a snapshot payload under key, evicting old entries past the
// byte budget.
func (c *SnapshotCache) Put(key string, payload []byte) error {
	if c.rootDir == "" {
		return appErr.New(appErr.CacheError).WithMessage("cache root is not configured")
	}
	dir := filepath.Join(c.rootDir, key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return appErr.Wrap(err, appErr.CacheError)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return appErr.Wrap(err, appErr.CacheError)
	}
	compressed := enc.EncodeAll(payload, nil)
	_ = enc.Close()

	tempPath := filepath.Join(dir, tempFileName)
	if err := os.WriteFile(tempPath, compressed, 0o644); err != nil {
		return appErr.Wrap(err, appErr.CacheError)
	}
	if err := os.Rename(tempPath, filepath.Join(dir, dataFileName)); err != nil {
		return appErr.Wrap(err, appErr.CacheError)
	}

	sum := sha256.Sum256(payload)
	meta := snapshotMeta{
		SHA256:    hex.EncodeToString(sum[:]),
		SizeBytes: int64(len(payload)),
		CreatedAt: time.Now(),
	}
	metaData, err := json.Marshal(meta)
	if err != nil {
		return appErr.Wrap(err, appErr.CacheError)
	}
	if err := os.WriteFile(filepath.Join(dir, metaFileName), metaData, 0o644); err != nil {
		return appErr.Wrap(err, appErr.CacheError)
	}

	c.mu.Lock()
	c.addLocked(key, int64(len(payload)))
	c.evictLocked()
	c.mu.Unlock()
	return nil
}

// Remove drops the entry and its files.
func (c *SnapshotCache) Remove(key string) {
	c.mu.Lock()
	c.removeLocked(key)
	c.mu.Unlock()
}

// readSnapshot loads and verifies one snapshot from disk.
func (c *SnapshotCache) readSnapshot(key string) ([]byte, error) {
	dir := filepath.Join(c.rootDir, key)
	metaData, err := os.ReadFile(filepath.Join(dir, metaFileName))
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CacheError)
	}
	var meta snapshotMeta
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return nil, appErr.Wrap(err, appErr.CacheCorrupted)
	}
	// the age check holds on a cold start too, where the in-memory
	// expiry was never seeded
	if time.Since(meta.CreatedAt) > c.ttl {
		return nil, appErr.New(appErr.CacheError).WithMessage("snapshot expired")
	}
	compressed, err := os.ReadFile(filepath.Join(dir, dataFileName))
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CacheError)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CacheError)
	}
	defer dec.Close()
	payload, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CacheCorrupted)
	}

	sum := sha256.Sum256(payload)
	if hex.EncodeToString(sum[:]) != meta.SHA256 {
		return nil, appErr.New(appErr.CacheCorrupted).WithMessage("snapshot digest mismatch")
	}
	return payload, nil
}

func (c *SnapshotCache) addLocked(key string, size int64) {
	if old, ok := c.entries[key]; ok {
		c.totalSize -= old.sizeBytes
		old.sizeBytes = size
		old.expiresAt = time.Now().Add(c.ttl)
		c.totalSize += size
		c.touchLocked(key)
		return
	}
	c.entries[key] = &cacheEntry{
		key:       key,
		sizeBytes: size,
		expiresAt: time.Now().Add(c.ttl),
	}
	c.lruKeys = append(c.lruKeys, key)
	c.totalSize += size
}

func (c *SnapshotCache) removeLocked(key string) {
	entry, ok := c.entries[key]
	if !ok {
		return
	}
	delete(c.entries, key)
	c.totalSize -= entry.sizeBytes
	for i, k := range c.lruKeys {
		if k == key {
			c.lruKeys = append(c.lruKeys[:i], c.lruKeys[i+1:]...)
			break
		}
	}
	_ = os.RemoveAll(filepath.Join(c.rootDir, key))
}

func (c *SnapshotCache) touchLocked(key string) {
	for i, k := range c.lruKeys {
		if k == key {
			c.lruKeys = append(c.lruKeys[:i], c.lruKeys[i+1:]...)
			c.lruKeys = append(c.lruKeys, key)
			return
		}
	}
}

func (c *SnapshotCache) evictLocked() {
	for c.totalSize > c.maxBytes && len(c.lruKeys) > 0 {
		c.removeLocked(c.lruKeys[0])
	}
}
