package flex

import (
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/arthur-debert/jsploader/pkg/errors"
)

// DefaultCacheSize is the entry count used when none is configured
const DefaultCacheSize = 512

// Entry is a cached element rendering
type Entry struct {
	Body    []byte
	Header  http.Header
	Status  int
	Created time.Time
}

// Cache stores element renderings. The loader only passes the handle along;
// template engines decide what to store.
type Cache interface {
	Get(key string) (*Entry, bool)
	Put(key string, entry *Entry)
	Remove(key string)
	Purge()
	Len() int
}

// LRUCache is a size-bounded Cache
type LRUCache struct {
	entries *lru.Cache[string, *Entry]
}

// NewLRUCache creates a cache holding at most size entries
func NewLRUCache(size int) (*LRUCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, *Entry](size)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigInvalid, "failed to create flex cache").
			WithDetail("size", size)
	}
	return &LRUCache{entries: entries}, nil
}

// Get returns the entry stored under key
func (c *LRUCache) Get(key string) (*Entry, bool) {
	return c.entries.Get(key)
}

// Put stores entry under key
func (c *LRUCache) Put(key string, entry *Entry) {
	c.entries.Add(key, entry)
}

// Remove drops the entry stored under key
func (c *LRUCache) Remove(key string) {
	c.entries.Remove(key)
}

// Purge drops all entries
func (c *LRUCache) Purge() {
	c.entries.Purge()
}

// Len returns the number of stored entries
func (c *LRUCache) Len() int {
	return c.entries.Len()
}
