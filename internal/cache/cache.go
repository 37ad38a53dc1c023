package cache

import (
	"sync"

	"github.com/traveller-vtt/dv/pkg/core"
)

// TokenCache keeps tokens read from or written to the database so repeated
// commands on the same ships avoid a round trip.
type TokenCache struct {
	m      sync.Mutex
	Tokens map[string]core.Token
}

func NewTokenCache() *TokenCache {
	return &TokenCache{
		Tokens: make(map[string]core.Token),
	}
}

func (c *TokenCache) Reset() {
	c.m.Lock()
	defer c.m.Unlock()
	c.Tokens = make(map[string]core.Token)
}

func (c *TokenCache) Get(id string) (core.Token, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	if t, ok := c.Tokens[id]; ok {
		return t, true
	}
	return core.Token{}, false
}

func (c *TokenCache) Put(t core.Token) {
	c.m.Lock()
	defer c.m.Unlock()
	c.Tokens[t.ID] = t
}

func (c *TokenCache) Invalidate(id string) {
	c.m.Lock()
	defer c.m.Unlock()
	delete(c.Tokens, id)
}

func (c *TokenCache) Len() int {
	c.m.Lock()
	defer c.m.Unlock()
	return len(c.Tokens)
}

// SafeCounter is a thread-safe counter
type SafeCounter struct {
	mu sync.Mutex
	v  int
}

func (c *SafeCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

func (c *SafeCounter) Set(v int) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}

func (c *SafeCounter) Inc() {
	c.mu.Lock()
	c.v++
	c.mu.Unlock()
}

func (c *SafeCounter) Dec() {
	c.mu.Lock()
	c.v--
	c.mu.Unlock()
}
