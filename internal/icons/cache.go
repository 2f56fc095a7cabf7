// Package icons keeps weather condition icons on local disk so that
// rendering and notifications can reference them without network access.
package icons

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

// Fetcher downloads the image bytes for an icon id.
type Fetcher interface {
	Icon(ctx context.Context, id string) ([]byte, error)
}

var validID = regexp.MustCompile(`^[0-9a-zA-Z]{1,8}$`)

// Cache resolves icon ids to files under dir, downloading each id once.
type Cache struct {
	dir     string
	fetcher Fetcher

	mu    sync.Mutex
	paths map[string]string
}

// NewCache creates a Cache writing into dir.
func NewCache(dir string, fetcher Fetcher) *Cache {
	return &Cache{
		dir:     dir,
		fetcher: fetcher,
		paths:   make(map[string]string),
	}
}

// Resolve returns the local path for id, fetching it on first use. Files
// already present on disk from an earlier run are reused.
func (c *Cache) Resolve(ctx context.Context, id string) (string, error) {
	if !validID.MatchString(id) {
		return "", fmt.Errorf("invalid icon id %q", id)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.paths[id]; ok {
		return p, nil
	}

	path := filepath.Join(c.dir, id+".png")
	if fi, err := os.Stat(path); err == nil && fi.Size() > 0 {
		c.paths[id] = path
		return path, nil
	}

	data, err := c.fetcher.Icon(ctx, id)
	if err != nil {
		return "", fmt.Errorf("fetch icon %s: %w", id, err)
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("create icon directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write icon: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("write icon: %w", err)
	}

	c.paths[id] = path
	return path, nil
}
