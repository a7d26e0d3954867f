package usecase

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// TemplateCache keeps template sources by file path for the lifetime of the
// cache. Entries are never invalidated.
type TemplateCache struct {
	entries *xsync.MapOf[string, string]
}

func NewTemplateCache() *TemplateCache {
	return &TemplateCache{
		entries: xsync.NewMapOf[string, string](),
	}
}

// Get returns the cached source of path, calling load on the first request.
// When two callers race on the same path the first stored source wins.
func (c *TemplateCache) Get(path string, load func(path string) (string, error)) (string, error) {
	if content, ok := c.entries.Load(path); ok {
		return content, nil
	}

	content, err := load(path)
	if err != nil {
		return "", err
	}

	actual, _ := c.entries.LoadOrStore(path, content)
	return actual, nil
}

func (c *TemplateCache) Len() int {
	return c.entries.Size()
}
