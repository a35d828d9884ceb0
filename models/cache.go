package models

import (
	"io/fs"
	"os"
	"path/filepath"
)

// DiskCache stores downloaded artifacts as plain files. Presence equals
// validity; the only invalidation is Clear.
type DiskCache struct {
	dir string
}

func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) Path(name string) string {
	return filepath.Join(c.dir, name)
}

func (c *DiskCache) Has(name string) bool {
	_, err := os.Stat(c.Path(name))
	return err == nil
}

func (c *DiskCache) Read(name string) ([]byte, error) {
	return readFileSharedLock(c.Path(name))
}

func (c *DiskCache) Put(name string, data []byte) error {
	return writeFileExclusiveLock(c.Path(name), data)
}

// Clear removes every cached artifact and recreates the cache directory.
func (c *DiskCache) Clear() error {
	if err := os.RemoveAll(c.dir); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0755)
}

// Size returns the total size in bytes of all cached artifacts.
func (c *DiskCache) Size() (int64, error) {
	var total int64
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	return total, err
}
