package memory

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/traveller-vtt/dv/pkg/core"
)

// Snapshot is the on-disk form of the whole store
type Snapshot struct {
	PlayerPageID string           `json:"playerpageid"`
	Pages        []core.Page      `json:"pages"`
	Players      []core.Player    `json:"players"`
	Characters   []core.Character `json:"characters"`
	Tokens       []core.Token     `json:"tokens"`
	Paths        []core.Path      `json:"paths"`
	Texts        []core.Text      `json:"texts"`
}

// Snapshot copies the current store contents
func (b *Backend) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.buildSnapshot()
}

func (b *Backend) buildSnapshot() Snapshot {
	return Snapshot{
		PlayerPageID: b.playerPageID,
		Pages:        b.pages.all(),
		Players:      b.players.all(),
		Characters:   b.characters.all(),
		Tokens:       b.tokens.all(),
		Paths:        b.paths.all(),
		Texts:        b.texts.all(),
	}
}

func (b *Backend) restore(s Snapshot) {
	b.reset()
	b.playerPageID = s.PlayerPageID
	for _, p := range s.Pages {
		b.pages.put(p.ID, p)
	}
	for _, p := range s.Players {
		b.players.put(p.ID, p)
	}
	for _, c := range s.Characters {
		b.characters.put(c.ID, c)
	}
	for _, t := range s.Tokens {
		b.tokens.put(t.ID, t)
	}
	for _, p := range s.Paths {
		b.paths.put(p.ID, p)
	}
	for _, t := range s.Texts {
		b.texts.put(t.ID, t)
	}
}

// writeSnapshot writes the store to the configured path, gzipped when configured
func (b *Backend) writeSnapshot() error {
	path := b.cfg.SnapshotPath
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	var w io.Writer = f
	if b.cfg.Compress {
		gzWriter := gzip.NewWriter(f)
		defer gzWriter.Close()
		w = gzWriter
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(b.buildSnapshot()); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

// loadSnapshot replaces the store with the configured snapshot. A missing
// file leaves the store empty.
func (b *Backend) loadSnapshot() error {
	f, err := os.Open(b.cfg.SnapshotPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if b.cfg.Compress {
		gzReader, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to read gzip snapshot: %w", err)
		}
		defer gzReader.Close()
		r = gzReader
	}

	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}
	b.restore(s)
	return nil
}
