package memory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/traveller-vtt/dv/internal/config"
	"github.com/traveller-vtt/dv/internal/host"
	"github.com/traveller-vtt/dv/pkg/core"
)

var (
	_ host.Store  = (*Backend)(nil)
	_ host.Seeder = (*Backend)(nil)
)

func TestNew(t *testing.T) {
	b := New(config.MemoryConfig{SnapshotPath: "/tmp/test.json", Compress: true})

	require.NotNil(t, b)
	assert.Equal(t, "/tmp/test.json", b.cfg.SnapshotPath)
	assert.True(t, b.cfg.Compress)
	assert.NotNil(t, b.tokens)
	assert.NotNil(t, b.paths)
}

func TestInitAndCloseWithoutSnapshot(t *testing.T) {
	b := New(config.MemoryConfig{})
	assert.NoError(t, b.Init())
	assert.NoError(t, b.Close())
}

func TestLookupsNotFound(t *testing.T) {
	ctx := context.Background()
	b := New(config.MemoryConfig{})

	_, err := b.GetToken(ctx, "nope")
	assert.ErrorIs(t, err, host.ErrNotFound)
	_, err = b.GetPage(ctx, "nope")
	assert.ErrorIs(t, err, host.ErrNotFound)
	_, err = b.GetCharacter(ctx, "nope")
	assert.ErrorIs(t, err, host.ErrNotFound)
	_, err = b.GetPlayer(ctx, "nope")
	assert.ErrorIs(t, err, host.ErrNotFound)
	assert.ErrorIs(t, b.UpdateToken(ctx, core.Token{ID: "nope"}), host.ErrNotFound)
	assert.ErrorIs(t, b.RemovePath(ctx, "nope"), host.ErrNotFound)
	assert.ErrorIs(t, b.RemoveText(ctx, "nope"), host.ErrNotFound)
}

func TestPutRequiresID(t *testing.T) {
	ctx := context.Background()
	b := New(config.MemoryConfig{})

	assert.Error(t, b.PutPage(ctx, core.Page{}))
	assert.Error(t, b.PutCharacter(ctx, core.Character{}))
	assert.Error(t, b.PutPlayer(ctx, core.Player{}))
}

func TestTokens(t *testing.T) {
	ctx := context.Background()
	b := New(config.MemoryConfig{})

	require.NoError(t, b.PutToken(ctx, core.Token{ID: "a", PageID: "p1", Name: "!Alpha"}))
	require.NoError(t, b.PutToken(ctx, core.Token{ID: "b", PageID: "p2", Name: "!Bravo"}))
	require.NoError(t, b.PutToken(ctx, core.Token{ID: "c", PageID: "p1", Name: "!Charlie"}))
	require.NoError(t, b.PutToken(ctx, core.Token{PageID: "p1", Name: "generated"}))

	onP1, err := b.FindTokens(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, onP1, 3)
	assert.Equal(t, "a", onP1[0].ID)
	assert.Equal(t, "c", onP1[1].ID)
	assert.NotEmpty(t, onP1[2].ID)

	tok, err := b.GetToken(ctx, "a")
	require.NoError(t, err)
	tok.Bar1Value = "1,2,3"
	require.NoError(t, b.UpdateToken(ctx, tok))

	got, err := b.GetToken(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1,2,3", got.Bar1Value)

	onP1, _ = b.FindTokens(ctx, "p1")
	assert.Equal(t, "a", onP1[0].ID, "update keeps creation order")
}

func TestOverlays(t *testing.T) {
	ctx := context.Background()
	b := New(config.MemoryConfig{})

	id1, err := b.CreatePath(ctx, core.Path{ID: "ignored", PageID: "p1"})
	require.NoError(t, err)
	assert.NotEqual(t, "ignored", id1)
	id2, err := b.CreatePath(ctx, core.Path{PageID: "p1"})
	require.NoError(t, err)
	_, err = b.CreatePath(ctx, core.Path{PageID: "p2"})
	require.NoError(t, err)

	paths, err := b.FindPaths(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, id1, paths[0].ID)

	require.NoError(t, b.RemovePath(ctx, id1))
	paths, _ = b.FindPaths(ctx, "p1")
	require.Len(t, paths, 1)
	assert.Equal(t, id2, paths[0].ID)

	tid, err := b.CreateText(ctx, core.Text{PageID: "p1", Text: "10km"})
	require.NoError(t, err)
	texts, _ := b.FindTexts(ctx, "p1")
	require.Len(t, texts, 1)
	assert.Equal(t, "10km", texts[0].Text)
	require.NoError(t, b.RemoveText(ctx, tid))
	texts, _ = b.FindTexts(ctx, "p1")
	assert.Empty(t, texts)
}

func TestCampaignObjects(t *testing.T) {
	ctx := context.Background()
	b := New(config.MemoryConfig{})

	require.NoError(t, b.SetPlayerPage(ctx, "p1"))
	require.NoError(t, b.PutPage(ctx, core.Page{ID: "p1", Width: 25, Height: 15}))
	require.NoError(t, b.PutPlayer(ctx, core.Player{ID: "gm", IsGM: true}))
	require.NoError(t, b.PutCharacter(ctx, core.Character{ID: "c1", ControlledBy: "p1"}))

	pageID, err := b.PlayerPageID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "p1", pageID)

	page, err := b.GetPage(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 25, page.Width)

	gm, err := b.GetPlayer(ctx, "gm")
	require.NoError(t, err)
	assert.True(t, gm.IsGM)

	c, err := b.GetCharacter(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, c.IsControlledBy("p1"))
}

func TestSnapshotRoundTrip(t *testing.T) {
	for _, compress := range []bool{false, true} {
		t.Run(map[bool]string{false: "plain", true: "gzip"}[compress], func(t *testing.T) {
			ctx := context.Background()
			cfg := config.MemoryConfig{
				SnapshotPath: filepath.Join(t.TempDir(), "nested", "scene.json"),
				Compress:     compress,
			}

			b := New(cfg)
			require.NoError(t, b.Init(), "missing snapshot is not an error")
			require.NoError(t, b.SetPlayerPage(ctx, "p1"))
			require.NoError(t, b.PutPage(ctx, core.Page{ID: "p1", Width: 20, Height: 20}))
			require.NoError(t, b.PutToken(ctx, core.Token{ID: "s1", PageID: "p1", Name: "!Beowulf", Kind: core.KindShip, Bar1Value: "0,0,90"}))
			require.NoError(t, b.PutToken(ctx, core.Token{ID: "s2", PageID: "p1", Name: "!Cutter", Kind: core.KindShip}))
			_, err := b.CreateText(ctx, core.Text{PageID: "p1", Text: "10km"})
			require.NoError(t, err)
			require.NoError(t, b.Close())

			restored := New(cfg)
			require.NoError(t, restored.Init())

			assert.Equal(t, b.Snapshot(), restored.Snapshot())
			tokens, _ := restored.FindTokens(ctx, "p1")
			require.Len(t, tokens, 2)
			assert.Equal(t, "s1", tokens[0].ID)
			assert.Equal(t, core.KindShip, tokens[0].Kind)
		})
	}
}
