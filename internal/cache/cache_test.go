package cache

import (
	"bytes"
	"testing"
	"time"

	"github.com/tkordic/anamnesis/internal/model"
)

func TestKey(t *testing.T) {
	a := Key("classify", "digest-1", "Lung")
	b := Key("classify", "digest-1", "Lung")
	if a != b {
		t.Errorf("same parts produced different keys: %s vs %s", a, b)
	}

	c := Key("classify", "digest-2", "Lung")
	if a == c {
		t.Error("different digests produced the same key")
	}

	d := Key("probe", "digest-1", "Lung")
	if a == d {
		t.Error("different namespaces produced the same key")
	}

	// Boundary shifts between parts must not collide.
	if Key("classify", "ab", "c") == Key("classify", "a", "bc") {
		t.Error("part boundaries are ambiguous")
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()

	writer := NewLayeredCache(time.Minute, dir, time.Hour)
	key := Key("classify", "digest-1")
	if err := writer.Set(key, []byte("Lung"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// A fresh layered cache has a cold memory layer; the value must
	// come back from disk.
	reader := NewLayeredCache(time.Minute, dir, time.Hour)
	got, found := reader.Get(key)
	if !found {
		t.Fatal("Get() found = false, want disk hit")
	}
	if !bytes.Equal(got, []byte("Lung")) {
		t.Errorf("Get() = %q, want %q", got, "Lung")
	}
}

func TestDiskCache_ExpiresEntries(t *testing.T) {
	disk := NewDiskCache(t.TempDir(), time.Hour)
	key := Key("probe", "nodes")

	if err := disk.Set(key, []byte("ok"), -time.Second); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, found := disk.Get(key); found {
		t.Error("Get() found = true, want expired entry dropped")
	}
}

func TestFromConfig(t *testing.T) {
	if got := FromConfig(model.CacheConfig{Enabled: false}); got != nil {
		t.Errorf("FromConfig(disabled) = %T, want nil", got)
	}

	memOnly := FromConfig(model.CacheConfig{Enabled: true, MemoryTTL: time.Minute})
	if _, ok := memOnly.(*MemoryCache); !ok {
		t.Errorf("FromConfig(no dir) = %T, want *MemoryCache", memOnly)
	}

	layered := FromConfig(model.CacheConfig{
		Enabled:   true,
		Dir:       t.TempDir(),
		MemoryTTL: time.Minute,
		DiskTTL:   time.Hour,
	})
	if _, ok := layered.(*LayeredCache); !ok {
		t.Errorf("FromConfig(with dir) = %T, want *LayeredCache", layered)
	}
}
