// internal/storage/memory/memory.go
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/traveller-vtt/dv/internal/config"
	"github.com/traveller-vtt/dv/internal/host"
	"github.com/traveller-vtt/dv/pkg/core"
)

// table keeps rows in insertion order.
type table[T any] struct {
	order []string
	rows  map[string]T
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]T)}
}

func (t *table[T]) get(id string) (T, bool) {
	v, ok := t.rows[id]
	return v, ok
}

func (t *table[T]) put(id string, v T) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = v
}

func (t *table[T]) remove(id string) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, o := range t.order {
		if o == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

func (t *table[T]) all() []T {
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.rows[id])
	}
	return out
}

// Backend is an in-memory host store with optional JSON snapshots
type Backend struct {
	cfg config.MemoryConfig

	playerPageID string
	pages        *table[core.Page]
	players      *table[core.Player]
	characters   *table[core.Character]
	tokens       *table[core.Token]
	paths        *table[core.Path]
	texts        *table[core.Text]

	mu sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	b := &Backend{cfg: cfg}
	b.reset()
	return b
}

func (b *Backend) reset() {
	b.playerPageID = ""
	b.pages = newTable[core.Page]()
	b.players = newTable[core.Player]()
	b.characters = newTable[core.Character]()
	b.tokens = newTable[core.Token]()
	b.paths = newTable[core.Path]()
	b.texts = newTable[core.Text]()
}

// Init loads the snapshot file when one is configured and present
func (b *Backend) Init() error {
	if b.cfg.SnapshotPath == "" {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loadSnapshot()
}

// Close writes the snapshot file when one is configured
func (b *Backend) Close() error {
	if b.cfg.SnapshotPath == "" {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.writeSnapshot()
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, host.ErrNotFound)
}

// PlayerPageID returns the page shown to players
func (b *Backend) PlayerPageID(_ context.Context) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.playerPageID, nil
}

// SetPlayerPage changes the page shown to players
func (b *Backend) SetPlayerPage(_ context.Context, pageID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.playerPageID = pageID
	return nil
}

// GetPage returns a page by id
func (b *Backend) GetPage(_ context.Context, id string) (core.Page, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.pages.get(id)
	if !ok {
		return core.Page{}, notFound("page", id)
	}
	return p, nil
}

// PutPage inserts or replaces a page
func (b *Backend) PutPage(_ context.Context, p core.Page) error {
	if p.ID == "" {
		return fmt.Errorf("page without id")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pages.put(p.ID, p)
	return nil
}

// GetCharacter returns a character by id
func (b *Backend) GetCharacter(_ context.Context, id string) (core.Character, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	c, ok := b.characters.get(id)
	if !ok {
		return core.Character{}, notFound("character", id)
	}
	return c, nil
}

// PutCharacter inserts or replaces a character
func (b *Backend) PutCharacter(_ context.Context, c core.Character) error {
	if c.ID == "" {
		return fmt.Errorf("character without id")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.characters.put(c.ID, c)
	return nil
}

// GetPlayer returns a player by id
func (b *Backend) GetPlayer(_ context.Context, id string) (core.Player, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.players.get(id)
	if !ok {
		return core.Player{}, notFound("player", id)
	}
	return p, nil
}

// PutPlayer inserts or replaces a player
func (b *Backend) PutPlayer(_ context.Context, p core.Player) error {
	if p.ID == "" {
		return fmt.Errorf("player without id")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.players.put(p.ID, p)
	return nil
}

// GetToken returns a token by id
func (b *Backend) GetToken(_ context.Context, id string) (core.Token, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	t, ok := b.tokens.get(id)
	if !ok {
		return core.Token{}, notFound("token", id)
	}
	return t, nil
}

// FindTokens returns the tokens on a page in creation order
func (b *Backend) FindTokens(_ context.Context, pageID string) ([]core.Token, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []core.Token
	for _, t := range b.tokens.all() {
		if t.PageID == pageID {
			out = append(out, t)
		}
	}
	return out, nil
}

// PutToken inserts or replaces a token, assigning an id when missing
func (b *Backend) PutToken(_ context.Context, t core.Token) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens.put(t.ID, t)
	return nil
}

// UpdateToken replaces an existing token
func (b *Backend) UpdateToken(_ context.Context, t core.Token) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.tokens.get(t.ID); !ok {
		return notFound("token", t.ID)
	}
	b.tokens.put(t.ID, t)
	return nil
}

// FindPaths returns the paths on a page in creation order
func (b *Backend) FindPaths(_ context.Context, pageID string) ([]core.Path, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []core.Path
	for _, p := range b.paths.all() {
		if p.PageID == pageID {
			out = append(out, p)
		}
	}
	return out, nil
}

// CreatePath stores a new path under a fresh id
func (b *Backend) CreatePath(_ context.Context, p core.Path) (string, error) {
	p.ID = uuid.NewString()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.paths.put(p.ID, p)
	return p.ID, nil
}

// RemovePath deletes a path
func (b *Backend) RemovePath(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.paths.remove(id) {
		return notFound("path", id)
	}
	return nil
}

// FindTexts returns the texts on a page in creation order
func (b *Backend) FindTexts(_ context.Context, pageID string) ([]core.Text, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []core.Text
	for _, t := range b.texts.all() {
		if t.PageID == pageID {
			out = append(out, t)
		}
	}
	return out, nil
}

// CreateText stores a new text under a fresh id
func (b *Backend) CreateText(_ context.Context, t core.Text) (string, error) {
	t.ID = uuid.NewString()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.texts.put(t.ID, t)
	return t.ID, nil
}

// RemoveText deletes a text
func (b *Backend) RemoveText(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.texts.remove(id) {
		return notFound("text", id)
	}
	return nil
}
