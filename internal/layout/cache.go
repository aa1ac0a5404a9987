package layout

import (
	"hash/fnv"
	"sync"
)

// spanCache memoizes row spans per line, validated by a content hash.
// Changing the wrap width invalidates everything at once.
type spanCache struct {
	mu      sync.Mutex
	entries map[uint32]spanEntry
}

type spanEntry struct {
	lineHash uint64
	span     int
}

func newSpanCache() *spanCache {
	return &spanCache{entries: make(map[uint32]spanEntry)}
}

// get returns the cached span for the line if the content still hashes
// the same.
func (c *spanCache) get(line uint32, text string) (int, bool) {
	hash := hashLine(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[line]
	if !ok || e.lineHash != hash {
		return 0, false
	}
	return e.span, true
}

// put stores the span for the line's current content.
func (c *spanCache) put(line uint32, text string, span int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[line] = spanEntry{lineHash: hashLine(text), span: span}
}

// clear drops every entry.
func (c *spanCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[uint32]spanEntry)
}

func hashLine(text string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(text))
	return h.Sum64()
}
