package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/infofact/internal/model"
)

func TestKey(t *testing.T) {
	a := Key("factcheck", "The sky is green", "en-US")
	b := Key("factcheck", "  the SKY is green ", "EN-us")
	if a != b {
		t.Errorf("Expected normalized keys to match: %s vs %s", a, b)
	}
	if !strings.HasPrefix(a, "infofact:factcheck:v1:") {
		t.Errorf("Unexpected key prefix: %s", a)
	}

	// Part boundaries matter
	if Key("factcheck", "ab", "c") == Key("factcheck", "a", "bc") {
		t.Error("Expected distinct keys for different part boundaries")
	}
	if Key("factcheck", "x") == Key("other", "x") {
		t.Error("Expected namespaces to separate keys")
	}
}

func TestNew(t *testing.T) {
	if c := New(model.CacheConfig{Enabled: false}); c != nil {
		t.Errorf("Expected nil cache when disabled, got %T", c)
	}
	if _, ok := New(model.CacheConfig{Enabled: true, MemoryTTL: time.Minute}).(*MemoryCache); !ok {
		t.Error("Expected memory cache without a directory")
	}
	cfg := model.CacheConfig{Enabled: true, MemoryTTL: time.Minute, Dir: t.TempDir(), DiskTTL: time.Hour}
	if _, ok := New(cfg).(*Tiered); !ok {
		t.Error("Expected layered cache with a directory")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Expected miss for unknown key")
	}

	_ = c.Set("k", []byte("v"), 0)
	if got, ok := c.Get("k"); !ok || string(got) != "v" {
		t.Errorf("Get() = %q, %v", got, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", c.Len())
	}

	_ = c.Set("short", []byte("v"), time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get("short"); ok {
		t.Error("Expected expired entry to miss")
	}

	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("Expected miss after delete")
	}
}

func TestDiskCache(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	key := Key("factcheck", "claim")

	if err := c.Set(key, []byte(`{"x":1}`), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, ok := c.Get(key)
	if !ok || string(got) != `{"x":1}` {
		t.Errorf("Get() = %q, %v", got, ok)
	}

	files, _ := filepath.Glob(filepath.Join(dir, "*.cache"))
	if len(files) != 1 {
		t.Fatalf("Expected 1 cache file, got %v", files)
	}
	if strings.Contains(filepath.Base(files[0]), ":") {
		t.Errorf("Cache file name should not contain ':': %s", files[0])
	}

	if err := c.Set(key, []byte("old"), -time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, ok := c.Get(key); ok {
		t.Error("Expected expired entry to miss")
	}
	if _, err := os.Stat(files[0]); !os.IsNotExist(err) {
		t.Error("Expected expired file to be removed")
	}

	if err := c.Delete("never-set"); err != nil {
		t.Errorf("Delete of missing key should succeed, got %v", err)
	}
}

func TestDiskCache_CorruptEntry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	if err := os.WriteFile(c.path("bad"), []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("bad"); ok {
		t.Error("Expected corrupt entry to miss")
	}
}

func TestLayeredCache_PromotesFromDisk(t *testing.T) {
	dir := t.TempDir()

	first := NewLayeredCache(time.Minute, dir, time.Hour)
	if err := first.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// A fresh process only has the disk layer
	second := NewLayeredCache(time.Minute, dir, time.Hour)
	if got, ok := second.Get("k"); !ok || string(got) != "v" {
		t.Fatalf("Expected disk hit, got %q, %v", got, ok)
	}
	if _, ok := second.tiers[0].Get("k"); !ok {
		t.Error("Expected disk hit to be promoted to memory")
	}

	if err := second.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok := second.Get("k"); ok {
		t.Error("Expected miss after clear")
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("Clear should keep the cache directory: %v", err)
	}
}

func TestTiered_PromotesIntoFasterTiers(t *testing.T) {
	fast := NewMemoryCache(time.Minute, time.Minute)
	mid := NewMemoryCache(time.Minute, time.Minute)
	slow := NewMemoryCache(time.Minute, time.Minute)
	_ = slow.Set("k", []byte("v"), 0)

	tiered := NewTiered(fast, mid, slow)
	if got, ok := tiered.Get("k"); !ok || string(got) != "v" {
		t.Fatalf("Get() = %q, %v", got, ok)
	}
	if fast.Len() != 1 || mid.Len() != 1 {
		t.Errorf("Expected promotion into both faster tiers, got fast=%d mid=%d", fast.Len(), mid.Len())
	}

	if err := tiered.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if slow.Len() != 0 {
		t.Error("Expected delete to reach every tier")
	}
}

func TestJSONHelpers(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	in := []model.Evidence{{Claim: "c", Publisher: "PolitiFact", Rating: "False"}}

	if err := SetJSON(c, "k", in, 0); err != nil {
		t.Fatalf("SetJSON failed: %v", err)
	}
	var out []model.Evidence
	if !GetJSON(c, "k", &out) {
		t.Fatal("Expected hit")
	}
	if len(out) != 1 || out[0].Publisher != "PolitiFact" {
		t.Errorf("Unexpected value: %+v", out)
	}

	_ = c.Set("garbage", []byte("{"), 0)
	if GetJSON(c, "garbage", &out) {
		t.Error("Expected undecodable entry to miss")
	}

	// nil cache is a permanent miss
	if GetJSON(nil, "k", &out) {
		t.Error("Expected nil cache to miss")
	}
	if err := SetJSON(nil, "k", in, 0); err != nil {
		t.Errorf("SetJSON on nil cache should be a no-op, got %v", err)
	}
}
