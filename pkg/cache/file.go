package cache

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// fileMagic starts every entry file. The header line is followed by the raw
// value, so an SVG entry stays readable on disk.
const fileMagic = "lanechart-cache/1"

// FileCache keeps entries on disk under dir, fanned out into 256
// subdirectories by key hash. Each file is a header line holding the expiry
// time (unix nanoseconds, 0 for none) followed by the value. Writes go
// through a temp file and a rename, so readers never see partial entries.
type FileCache struct {
	dir string
	now func() time.Time
}

// NewFileCache opens or creates a cache rooted at dir.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir, now: time.Now}, nil
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	expires, value, ok := parseEntry(raw)
	if !ok || (expires > 0 && c.now().UnixNano() > expires) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return value, true, nil
}

func parseEntry(raw []byte) (expires int64, value []byte, ok bool) {
	header, value, found := bytes.Cut(raw, []byte{'\n'})
	if !found {
		return 0, nil, false
	}
	magic, stamp, found := bytes.Cut(header, []byte{' '})
	if !found || string(magic) != fileMagic {
		return 0, nil, false
	}
	expires, err := strconv.ParseInt(string(stamp), 10, 64)
	if err != nil {
		return 0, nil, false
	}
	return expires, value, true
}

func (c *FileCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	var expires int64
	if ttl > 0 {
		expires = c.now().Add(ttl).UnixNano()
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(tmp, "%s %d\n", fileMagic, expires)
	if err == nil {
		_, err = tmp.Write(data)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (c *FileCache) Delete(_ context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Clear removes every entry and the emptied subdirectories, and returns the
// number of entries removed. A missing directory counts as empty.
func (c *FileCache) Clear() (int, error) {
	count := 0
	var dirs []string
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		switch {
		case err != nil && path == c.dir && os.IsNotExist(err):
			return fs.SkipAll
		case err != nil:
			return nil
		case d.IsDir():
			if path != c.dir {
				dirs = append(dirs, path)
			}
		case os.Remove(path) == nil:
			count++
		}
		return nil
	})
	// Children were appended after their parents.
	for i := len(dirs) - 1; i >= 0; i-- {
		_ = os.Remove(dirs[i])
	}
	return count, err
}

// Usage reports how many entries the cache holds and their total size on
// disk. Expired entries are counted until the next Get or Clear removes them.
func (c *FileCache) Usage() (entries int, bytes int64, err error) {
	err = filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == c.dir && os.IsNotExist(err) {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		entries++
		bytes += info.Size()
		return nil
	})
	return entries, bytes, err
}

func (c *FileCache) Close() error { return nil }

func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, h[:2], h[2:])
}

var _ Cache = (*FileCache)(nil)
