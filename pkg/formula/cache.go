package formula

import "sync"

// Cache memoizes parsed expressions by source text. Formula sources are
// fixed at project load while evaluation runs on every recomputation, so
// parsing each distinct source once is enough. Safe for concurrent use.
type Cache struct {
	mu sync.RWMutex
	m  map[string]Expr
}

// NewCache returns an empty expression cache.
func NewCache() *Cache {
	return &Cache{m: make(map[string]Expr)}
}

// Parse returns the parsed expression for src, parsing it on first use.
// Parse errors are not cached; the static project check keeps bad sources
// out of the recomputation path.
func (c *Cache) Parse(src string) (Expr, error) {
	c.mu.RLock()
	expr, ok := c.m[src]
	c.mu.RUnlock()
	if ok {
		return expr, nil
	}
	expr, err := Parse(src)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.m[src] = expr
	c.mu.Unlock()
	return expr, nil
}
