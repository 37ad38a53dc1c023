// internal/storage/storage_test.go
package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/traveller-vtt/dv/internal/config"
	"github.com/traveller-vtt/dv/internal/storage"
	gormstorage "github.com/traveller-vtt/dv/internal/storage/gorm"
	"github.com/traveller-vtt/dv/internal/storage/memory"
	"github.com/traveller-vtt/dv/pkg/core"
)

var (
	_ storage.Backend = (*memory.Backend)(nil)
	_ storage.Backend = (*gormstorage.Backend)(nil)
)

func TestNewBackend_Memory(t *testing.T) {
	b, err := storage.NewBackend(config.StorageConfig{Type: "memory"}, config.DBConfig{}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &memory.Backend{}, b)
	assert.NoError(t, b.Close())
}

func TestNewBackend_SQLiteFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "dv.db")
	cfg := config.StorageConfig{Type: "sqlite", SQLite: config.SQLiteConfig{Path: path}}

	b, err := storage.NewBackend(cfg, config.DBConfig{}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, b.PutToken(ctx, core.Token{ID: "s1", PageID: "p1", Name: "!Beowulf", Kind: core.KindShip}))
	require.NoError(t, b.Close())

	reopened, err := storage.NewBackend(cfg, config.DBConfig{}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	tok, err := reopened.GetToken(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "!Beowulf", tok.Name)
	assert.Equal(t, core.KindShip, tok.Kind)
}

func TestNewBackend_Unknown(t *testing.T) {
	_, err := storage.NewBackend(config.StorageConfig{Type: "redis"}, config.DBConfig{}, zerolog.Nop())
	assert.ErrorContains(t, err, "unknown storage type")
}
