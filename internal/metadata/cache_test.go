package metadata

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSnapshotCacheRoundtrip(t *testing.T) {
	c := NewSnapshotCache(t.TempDir(), time.Hour, 1<<20)
	payload := []byte(`{"companies":{},"tags":{}}`)

	if err := c.Put("abc123", payload); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	got, ok := c.Get("abc123")
	if !ok {
		t.Fatal("expected a hit")
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload = %q", got)
	}
}

func TestSnapshotCacheMissingKey(t *testing.T) {
	c := NewSnapshotCache(t.TempDir(), time.Hour, 1<<20)
	if _, ok := c.Get("nothing"); ok {
		t.Fatal("expected a miss")
	}
}

func TestSnapshotCachePutWithoutRoot(t *testing.T) {
	c := NewSnapshotCache("", time.Hour, 1<<20)
	if err := c.Put("abc", []byte("x")); err == nil {
		t.Fatal("expected an error without a root dir")
	}
}

func TestSnapshotCacheDigestMismatch(t *testing.T) {
	root := t.TempDir()
	c := NewSnapshotCache(root, time.Hour, 1<<20)
	if err := c.Put("abc123", []byte("payload")); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	// swap the snapshot body for something that still decompresses:
	// reuse another key's compressed file so only the digest disagrees
	if err := c.Put("other", []byte("different payload")); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	src := filepath.Join(root, "other", dataFileName)
	dst := filepath.Join(root, "abc123", dataFileName)
	data, err := os.ReadFile(src)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if _, ok := c.Get("abc123"); ok {
		t.Fatal("digest mismatch should read as a miss")
	}
	// the corrupt entry is dropped from disk as well
	if _, err := os.Stat(filepath.Join(root, "abc123")); !os.IsNotExist(err) {
		t.Fatal("corrupt entry dir should be removed")
	}
}

func TestSnapshotCacheExpiry(t *testing.T) {
	c := NewSnapshotCache(t.TempDir(), 10*time.Millisecond, 1<<20)
	if err := c.Put("abc123", []byte("payload")); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get("abc123"); ok {
		t.Fatal("expired entry should read as a miss")
	}
}

// rewriteCreatedAt patches a stored snapshot's meta file to a given age.
func rewriteCreatedAt(t *testing.T, root, key string, createdAt time.Time) {
	t.Helper()
	metaPath := filepath.Join(root, key, "meta.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		t.Fatalf("read meta failed: %v", err)
	}
	var meta snapshotMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		t.Fatalf("unmarshal meta failed: %v", err)
	}
	meta.CreatedAt = createdAt
	data, err = json.Marshal(meta)
	if err != nil {
		t.Fatalf("marshal meta failed: %v", err)
	}
	if err := os.WriteFile(metaPath, data, 0o644); err != nil {
		t.Fatalf("write meta failed: %v", err)
	}
}

func TestSnapshotCacheColdStartHit(t *testing.T) {
	root := t.TempDir()
	payload := []byte(`{"companies":{},"tags":{}}`)
	if err := NewSnapshotCache(root, time.Hour, 1<<20).Put("abc123", payload); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	reopened := NewSnapshotCache(root, time.Hour, 1<<20)
	got, ok := reopened.Get("abc123")
	if !ok {
		t.Fatal("snapshot from an earlier run should be served")
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload = %q", got)
	}
}

func TestSnapshotCacheColdStartExpiry(t *testing.T) {
	root := t.TempDir()
	if err := NewSnapshotCache(root, time.Hour, 1<<20).Put("abc123", []byte("payload")); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	rewriteCreatedAt(t, root, "abc123", time.Now().Add(-2*time.Hour))

	reopened := NewSnapshotCache(root, time.Hour, 1<<20)
	if _, ok := reopened.Get("abc123"); ok {
		t.Fatal("snapshot past its TTL should read as a miss after restart")
	}
}

func TestSnapshotCacheColdStartBudget(t *testing.T) {
	root := t.TempDir()
	warm := NewSnapshotCache(root, time.Hour, 1<<20)
	big := bytes.Repeat([]byte("a"), 80)
	if err := warm.Put("first", big); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := warm.Put("second", big); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	// make the eviction order unambiguous
	rewriteCreatedAt(t, root, "first", time.Now().Add(-time.Minute))

	reopened := NewSnapshotCache(root, time.Hour, 100)
	if _, err := os.Stat(filepath.Join(root, "first")); !os.IsNotExist(err) {
		t.Fatal("oldest pre-existing entry should be evicted at construction")
	}
	if _, ok := reopened.Get("second"); !ok {
		t.Fatal("newest entry should survive the budget")
	}
}

func TestSnapshotCacheEviction(t *testing.T) {
	root := t.TempDir()
	c := NewSnapshotCache(root, time.Hour, 100)

	big := bytes.Repeat([]byte("a"), 80)
	if err := c.Put("first", big); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := c.Put("second", big); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "first")); !os.IsNotExist(err) {
		t.Fatal("first entry should have been evicted")
	}
	if _, ok := c.Get("second"); !ok {
		t.Fatal("second entry should survive eviction")
	}
}
