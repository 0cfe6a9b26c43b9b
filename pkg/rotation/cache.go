package rotation

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/devmatch-io/devmatch/dao/model"
)

// Cache memoizes raw selector output for a short TTL so rapid repeated
// generation calls (UI retries) do not rescan the pool. It is never a
// correctness dependency: a nil or zero-TTL cache misses everything.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

type cacheEntry struct {
	raw     []Descriptor
	expires time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// CacheKey identifies one selection input: project, sorted skill set, quota.
func CacheKey(projectID uint, skillIDs []uint, quota model.QuotaSpec) string {
	sorted := make([]uint, len(skillIDs))
	copy(sorted, skillIDs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var b strings.Builder
	fmt.Fprintf(&b, "p:%d|s:", projectID)
	for i, id := range sorted {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", id)
	}
	fmt.Fprintf(&b, "|q:%d-%d-%d", quota.Fresher, quota.Mid, quota.Expert)
	return b.String()
}

func (c *Cache) Get(key string) ([]Descriptor, bool) {
	if c == nil || c.ttl <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.raw, true
}

func (c *Cache) Set(key string, raw []Descriptor) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{raw: raw, expires: time.Now().Add(c.ttl)}
}

// InvalidateProject drops every entry of one project, regardless of the
// skill set or quota it was keyed with.
func (c *Cache) InvalidateProject(projectID uint) {
	if c == nil {
		return
	}
	prefix := fmt.Sprintf("p:%d|", projectID)
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}
