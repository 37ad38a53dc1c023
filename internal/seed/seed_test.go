package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traveller-vtt/dv/internal/config"
	"github.com/traveller-vtt/dv/internal/storage/memory"
	"github.com/traveller-vtt/dv/pkg/core"
)

const scene = `
playerPageId: space
pages:
  - id: space
    name: Jump point
    width: 40
    height: 30
players:
  - id: gm
    displayname: Referee
    isGm: true
  - id: alice
    displayname: Alice
characters:
  - id: c-beowulf
    name: Beowulf
    controlledby: alice
    attributes:
      AC: "12"
tokens:
  - id: beowulf
    name: "!Beowulf"
    represents: c-beowulf
    rotation: 90
    bar1_value: "0,0,90"
    bar2_value: "0,0"
  - id: torch
    name: Torch
    gmnotes: "!Light"
    bar2_value: "60"
    bar2_max: "60"
    light_radius: "20"
    light_dimradius: "40"
  - id: decoy
    name: "Decoy"
    kind: ship
    pageId: hangar
`

func TestParse(t *testing.T) {
	s, err := Parse(strings.NewReader(scene))
	require.NoError(t, err)

	assert.Equal(t, "space", s.PlayerPageID)
	require.Len(t, s.Pages, 1)
	assert.Equal(t, 40, s.Pages[0].Width)
	require.Len(t, s.Players, 2)
	assert.True(t, s.Players[0].IsGM)
	assert.Equal(t, "12", s.Characters[0].Attr("AC"))
	require.Len(t, s.Tokens, 3)
	assert.Equal(t, "0,0,90", s.Tokens[0].Bar1Value)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse(strings.NewReader("playerPageId: space\nships: []\n"))
	assert.Error(t, err)
}

func TestParseEmpty(t *testing.T) {
	s, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, s.Tokens)
}

func TestResolve(t *testing.T) {
	s, err := Parse(strings.NewReader(scene))
	require.NoError(t, err)

	tokens := s.Resolve()
	require.Len(t, tokens, 3)
	assert.Equal(t, core.KindShip, tokens[0].Kind)
	assert.Equal(t, "space", tokens[0].PageID)
	assert.Equal(t, core.KindLight, tokens[1].Kind)
	assert.Equal(t, core.KindShip, tokens[2].Kind)
	assert.Equal(t, "hangar", tokens[2].PageID)
}

func TestLoadAndApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scene), 0o644))

	s, err := Load(path)
	require.NoError(t, err)

	ctx := context.Background()
	store := memory.New(config.MemoryConfig{})
	require.NoError(t, s.Apply(ctx, store))

	pageID, err := store.PlayerPageID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "space", pageID)

	tokens, err := store.FindTokens(ctx, "space")
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.True(t, tokens[0].IsShip())
	assert.Equal(t, 90.0, tokens[0].Rotation)

	c, err := store.GetCharacter(ctx, "c-beowulf")
	require.NoError(t, err)
	assert.True(t, c.IsControlledBy("alice"))
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
