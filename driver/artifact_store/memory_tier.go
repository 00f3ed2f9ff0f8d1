package artifact_store

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Entry is a payload held by the memory tier.
type Entry struct {
	Data        []byte
	ContentType string
}

// MemoryTier is a bounded LRU of hot artifacts. Evicting from it never touches disk.
type MemoryTier struct {
	cache *lru.Cache[string, Entry]
}

// NewMemoryTier returns nil when size is 0, which disables the tier.
func NewMemoryTier(size int) (*MemoryTier, error) {
	if size <= 0 {
		return nil, nil
	}
	c, err := lru.New[string, Entry](size)
	if err != nil {
		return nil, fmt.Errorf("create memory tier: %w", err)
	}
	return &MemoryTier{cache: c}, nil
}

// Get is safe on a nil tier.
func (m *MemoryTier) Get(name string) (Entry, bool) {
	if m == nil {
		return Entry{}, false
	}
	return m.cache.Get(name)
}

// Add is safe on a nil tier.
func (m *MemoryTier) Add(name string, e Entry) {
	if m == nil {
		return
	}
	m.cache.Add(name, e)
}

// Len is safe on a nil tier.
func (m *MemoryTier) Len() int {
	if m == nil {
		return 0
	}
	return m.cache.Len()
}
