package gormstorage

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/traveller-vtt/dv/internal/cache"
	"github.com/traveller-vtt/dv/internal/database"
	"github.com/traveller-vtt/dv/internal/host"
	"github.com/traveller-vtt/dv/pkg/core"
)

// Compile-time interface check
var (
	_ host.Store  = (*Backend)(nil)
	_ host.Seeder = (*Backend)(nil)
)

// newTestBackend creates a Backend on a private in-memory SQLite database.
func newTestBackend(t *testing.T) (*Backend, *cache.TokenCache) {
	t.Helper()
	m := database.NewManager(zerolog.Nop())
	require.NoError(t, m.ConnectSQLite(database.MemoryDSN))
	t.Cleanup(func() { m.Close() })

	tc := cache.NewTokenCache()
	b := New(Dependencies{DB: m.DB, TokenCache: tc, Logger: zerolog.Nop(), Migrate: m.Setup})
	require.NoError(t, b.Init())
	return b, tc
}

func TestInit_WithoutDB(t *testing.T) {
	b := New(Dependencies{})
	assert.Error(t, b.Init())
}

func TestPlayerPage(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)

	id, err := b.PlayerPageID(ctx)
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, b.SetPlayerPage(ctx, "p1"))
	require.NoError(t, b.SetPlayerPage(ctx, "p2"))

	id, err = b.PlayerPageID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "p2", id)
}

func TestCampaignObjects(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)

	require.NoError(t, b.PutPage(ctx, core.Page{ID: "p1", Name: "Jump point", Width: 25, Height: 15}))
	require.NoError(t, b.PutPlayer(ctx, core.Player{ID: "gm", DisplayName: "Referee", IsGM: true}))
	require.NoError(t, b.PutCharacter(ctx, core.Character{
		ID:           "c1",
		Name:         "Beowulf",
		ControlledBy: "p1,p2",
		Attributes:   map[string]string{"alignment": "LG"},
	}))

	page, err := b.GetPage(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, core.Page{ID: "p1", Name: "Jump point", Width: 25, Height: 15}, page)

	gm, err := b.GetPlayer(ctx, "gm")
	require.NoError(t, err)
	assert.True(t, gm.IsGM)

	c, err := b.GetCharacter(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "LG", c.Attr("alignment"))
	assert.True(t, c.IsControlledBy("p2"))

	// replace
	require.NoError(t, b.PutPage(ctx, core.Page{ID: "p1", Name: "Jump point", Width: 30, Height: 15}))
	page, _ = b.GetPage(ctx, "p1")
	assert.Equal(t, 30, page.Width)

	_, err = b.GetPage(ctx, "missing")
	assert.ErrorIs(t, err, host.ErrNotFound)
	_, err = b.GetCharacter(ctx, "missing")
	assert.ErrorIs(t, err, host.ErrNotFound)
	_, err = b.GetPlayer(ctx, "missing")
	assert.ErrorIs(t, err, host.ErrNotFound)
}

func TestTokens(t *testing.T) {
	ctx := context.Background()
	b, tc := newTestBackend(t)

	require.NoError(t, b.PutToken(ctx, core.Token{ID: "s1", PageID: "p1", Name: "!Beowulf", Kind: core.KindShip, Rotation: 90}))
	require.NoError(t, b.PutToken(ctx, core.Token{ID: "s2", PageID: "p1", Name: "!Cutter", Kind: core.KindShip}))
	require.NoError(t, b.PutToken(ctx, core.Token{ID: "x", PageID: "p2", Name: "Torch", Kind: core.KindLight}))

	tokens, err := b.FindTokens(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, core.KindShip, tokens[0].Kind)

	tc.Reset()
	tok, err := b.GetToken(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 90.0, tok.Rotation)
	assert.Equal(t, 1, tc.Len(), "read-through fills the cache")

	tok.Bar1Value = "360,0,90"
	tok.Bar2Value = ""
	require.NoError(t, b.UpdateToken(ctx, tok))

	tc.Reset()
	got, err := b.GetToken(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "360,0,90", got.Bar1Value)
	assert.Equal(t, "!Beowulf", got.Name)

	err = b.UpdateToken(ctx, core.Token{ID: "ghost"})
	assert.ErrorIs(t, err, host.ErrNotFound)
	_, err = b.GetToken(ctx, "ghost")
	assert.ErrorIs(t, err, host.ErrNotFound)
}

func TestUpdateToken_ClearsFields(t *testing.T) {
	ctx := context.Background()
	b, tc := newTestBackend(t)

	require.NoError(t, b.PutToken(ctx, core.Token{ID: "l1", PageID: "p1", LightRadius: "40", LightDimRadius: "20"}))

	tok, err := b.GetToken(ctx, "l1")
	require.NoError(t, err)
	tok.LightRadius = ""
	tok.LightDimRadius = ""
	require.NoError(t, b.UpdateToken(ctx, tok))

	tc.Reset()
	got, err := b.GetToken(ctx, "l1")
	require.NoError(t, err)
	assert.Empty(t, got.LightRadius)
	assert.Empty(t, got.LightDimRadius)
}

func TestOverlays(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)

	pid, err := b.CreatePath(ctx, core.Path{PageID: "p1", Layer: "map", Stroke: "#000000", StrokeWidth: 5, Points: `[["M",0,0]]`})
	require.NoError(t, err)
	tid, err := b.CreateText(ctx, core.Text{PageID: "p1", Layer: "map", Text: "10km", FontSize: 48, FontFamily: "Arial"})
	require.NoError(t, err)

	paths, err := b.FindPaths(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, pid, paths[0].ID)
	assert.Equal(t, 5, paths[0].StrokeWidth)

	texts, err := b.FindTexts(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, texts, 1)
	assert.Equal(t, "10km", texts[0].Text)

	require.NoError(t, b.RemovePath(ctx, pid))
	require.NoError(t, b.RemoveText(ctx, tid))
	assert.ErrorIs(t, b.RemovePath(ctx, pid), host.ErrNotFound)
	assert.ErrorIs(t, b.RemoveText(ctx, tid), host.ErrNotFound)

	paths, _ = b.FindPaths(ctx, "p1")
	assert.Empty(t, paths)
}

func TestClose_ResetsCache(t *testing.T) {
	ctx := context.Background()
	b, tc := newTestBackend(t)

	require.NoError(t, b.PutToken(ctx, core.Token{ID: "s1", PageID: "p1"}))
	assert.Equal(t, 1, tc.Len())
	require.NoError(t, b.Close())
	assert.Equal(t, 0, tc.Len())
}
