package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const diskExt = ".cache"

// DiskCache persists entries as one JSON file per key, so fact-check
// lookups survive between runs
type DiskCache struct {
	dir string
	ttl time.Duration
}

// NewDiskCache creates a disk cache rooted at dir. The directory is made
// on first write.
func NewDiskCache(dir string, ttl time.Duration) *DiskCache {
	return &DiskCache{dir: dir, ttl: ttl}
}

type diskRecord struct {
	Expires time.Time `json:"expires"`
	Value   []byte    `json:"value"`
}

func (d *DiskCache) Get(key string) ([]byte, bool) {
	file := d.path(key)
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, false
	}

	var rec diskRecord
	if json.Unmarshal(raw, &rec) != nil || time.Now().After(rec.Expires) {
		_ = os.Remove(file)
		return nil, false
	}
	return rec.Value, true
}

func (d *DiskCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = d.ttl
	}
	raw, err := json.Marshal(diskRecord{Expires: time.Now().Add(ttl), Value: value})
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	return writeAtomic(d.dir, d.path(key), raw)
}

func (d *DiskCache) Delete(key string) error {
	if err := os.Remove(d.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Clear removes cache files only; the directory may be shared
func (d *DiskCache) Clear() error {
	files, err := filepath.Glob(filepath.Join(d.dir, "*"+diskExt))
	if err != nil {
		return err
	}
	var errs []error
	for _, f := range files {
		if err := os.Remove(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// path maps a key to a file name; ':' is not portable in file names
func (d *DiskCache) path(key string) string {
	return filepath.Join(d.dir, strings.ReplaceAll(key, ":", "_")+diskExt)
}

// writeAtomic writes through a temp file in dir so readers never see a
// partial entry
func writeAtomic(dir, target string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := tmp.Name()

	_, err = tmp.Write(data)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(name, target)
	}
	if err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("write cache file: %w", err)
	}
	return nil
}
