// Package seed imports a scene of pages, players, characters and tokens from
// YAML into a host store.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/traveller-vtt/dv/internal/host"
	"github.com/traveller-vtt/dv/pkg/core"
)

// TokenEntry is a token in a scene file. Kind is optional; without it the
// token is classified from its name and GM notes.
type TokenEntry struct {
	core.Token `yaml:",inline"`
	Kind       string `yaml:"kind"`
}

// Scene is the content of a scene file.
type Scene struct {
	PlayerPageID string           `yaml:"playerPageId"`
	Pages        []core.Page      `yaml:"pages"`
	Players      []core.Player    `yaml:"players"`
	Characters   []core.Character `yaml:"characters"`
	Tokens       []TokenEntry     `yaml:"tokens"`
}

// Parse decodes a scene.
func Parse(r io.Reader) (Scene, error) {
	var s Scene
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return Scene{}, nil
		}
		return Scene{}, fmt.Errorf("decoding scene: %w", err)
	}
	return s, nil
}

// Load reads a scene file.
func Load(path string) (Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return Scene{}, fmt.Errorf("opening scene: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Resolve returns the scene's tokens with kinds assigned. Tokens without a
// page go on the player page.
func (s Scene) Resolve() []core.Token {
	tokens := make([]core.Token, 0, len(s.Tokens))
	for _, e := range s.Tokens {
		t := e.Token
		if e.Kind != "" {
			t.Kind = core.ParseKind(e.Kind)
		} else {
			t.Kind = core.ClassifyToken(t.Name, t.GMNotes)
		}
		if t.PageID == "" {
			t.PageID = s.PlayerPageID
		}
		tokens = append(tokens, t)
	}
	return tokens
}

// Apply writes the scene into the store.
func (s Scene) Apply(ctx context.Context, store host.Seeder) error {
	for _, p := range s.Pages {
		if err := store.PutPage(ctx, p); err != nil {
			return fmt.Errorf("importing page %s: %w", p.ID, err)
		}
	}
	for _, p := range s.Players {
		if err := store.PutPlayer(ctx, p); err != nil {
			return fmt.Errorf("importing player %s: %w", p.ID, err)
		}
	}
	for _, c := range s.Characters {
		if err := store.PutCharacter(ctx, c); err != nil {
			return fmt.Errorf("importing character %s: %w", c.ID, err)
		}
	}
	for _, t := range s.Resolve() {
		if err := store.PutToken(ctx, t); err != nil {
			return fmt.Errorf("importing token %s: %w", t.Name, err)
		}
	}
	if s.PlayerPageID != "" {
		if err := store.SetPlayerPage(ctx, s.PlayerPageID); err != nil {
			return fmt.Errorf("setting player page: %w", err)
		}
	}
	return nil
}
