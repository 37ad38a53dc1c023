// internal/storage/factory.go
package storage

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/traveller-vtt/dv/internal/cache"
	"github.com/traveller-vtt/dv/internal/config"
	"github.com/traveller-vtt/dv/internal/database"
	gormstorage "github.com/traveller-vtt/dv/internal/storage/gorm"
	"github.com/traveller-vtt/dv/internal/storage/memory"
)

// closer releases the database connection after the backend.
type closer struct {
	Backend
	manager *database.Manager
}

func (c closer) Close() error {
	err := c.Backend.Close()
	if cerr := c.manager.Close(); err == nil {
		err = cerr
	}
	return err
}

// NewBackend creates and initializes a storage backend based on configuration
func NewBackend(cfg config.StorageConfig, db config.DBConfig, log zerolog.Logger) (Backend, error) {
	switch cfg.Type {
	case "memory":
		b := memory.New(cfg.Memory)
		if err := b.Init(); err != nil {
			return nil, err
		}
		return b, nil
	case "sqlite", "postgres":
		m := database.NewManager(log.With().Str("component", "database").Logger())
		var err error
		if cfg.Type == "sqlite" {
			err = m.ConnectSQLite(cfg.SQLite.Path)
		} else {
			err = m.ConnectPostgres(db)
		}
		if err != nil {
			return nil, err
		}
		b := gormstorage.New(gormstorage.Dependencies{
			DB:         m.DB,
			TokenCache: cache.NewTokenCache(),
			Logger:     log,
			Migrate:    m.Setup,
		})
		if err := b.Init(); err != nil {
			m.Close()
			return nil, err
		}
		return closer{Backend: b, manager: m}, nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
