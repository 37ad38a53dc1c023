// Package gormstorage implements the host store on a GORM database
// (SQLite or Postgres), with a read-through token cache.
package gormstorage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/traveller-vtt/dv/internal/cache"
	"github.com/traveller-vtt/dv/internal/host"
	"github.com/traveller-vtt/dv/internal/model"
	"github.com/traveller-vtt/dv/internal/model/convert"
	"github.com/traveller-vtt/dv/pkg/core"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB         *gorm.DB
	TokenCache *cache.TokenCache
	Logger     zerolog.Logger
	// Migrate runs schema migration during Init.
	Migrate func() error
}

// Backend implements the host store using GORM.
type Backend struct {
	deps Dependencies
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.TokenCache == nil {
		deps.TokenCache = cache.NewTokenCache()
	}
	return &Backend{deps: deps}
}

// Init runs schema migration.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return fmt.Errorf("gorm backend without database")
	}
	if b.deps.Migrate != nil {
		if err := b.deps.Migrate(); err != nil {
			return err
		}
	}
	return nil
}

// Close drops cached tokens. The connection is owned by the caller.
func (b *Backend) Close() error {
	b.deps.TokenCache.Reset()
	return nil
}

func (b *Backend) db(ctx context.Context) *gorm.DB {
	return b.deps.DB.WithContext(ctx)
}

func lookupErr(kind, id string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %q: %w", kind, id, host.ErrNotFound)
	}
	return fmt.Errorf("failed to load %s %q: %w", kind, id, err)
}

// upsert inserts or fully replaces a row by primary key.
func upsert(db *gorm.DB, v any) error {
	return db.Clauses(clause.OnConflict{UpdateAll: true}).Create(v).Error
}

// PlayerPageID returns the page shown to players.
func (b *Backend) PlayerPageID(ctx context.Context) (string, error) {
	var s model.Setting
	err := b.db(ctx).Where(&model.Setting{Key: model.SettingPlayerPage}).Take(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load player page: %w", err)
	}
	return s.Value, nil
}

// SetPlayerPage changes the page shown to players.
func (b *Backend) SetPlayerPage(ctx context.Context, pageID string) error {
	return upsert(b.db(ctx), &model.Setting{Key: model.SettingPlayerPage, Value: pageID})
}

// GetPage returns a page by id.
func (b *Backend) GetPage(ctx context.Context, id string) (core.Page, error) {
	var p model.Page
	if err := b.db(ctx).Where("id = ?", id).Take(&p).Error; err != nil {
		return core.Page{}, lookupErr("page", id, err)
	}
	return convert.PageToCore(p), nil
}

// PutPage inserts or replaces a page.
func (b *Backend) PutPage(ctx context.Context, p core.Page) error {
	if p.ID == "" {
		return fmt.Errorf("page without id")
	}
	m := convert.CoreToPage(p)
	return upsert(b.db(ctx), &m)
}

// GetCharacter returns a character by id.
func (b *Backend) GetCharacter(ctx context.Context, id string) (core.Character, error) {
	var c model.Character
	if err := b.db(ctx).Where("id = ?", id).Take(&c).Error; err != nil {
		return core.Character{}, lookupErr("character", id, err)
	}
	return convert.CharacterToCore(c), nil
}

// PutCharacter inserts or replaces a character.
func (b *Backend) PutCharacter(ctx context.Context, c core.Character) error {
	if c.ID == "" {
		return fmt.Errorf("character without id")
	}
	m := convert.CoreToCharacter(c)
	return upsert(b.db(ctx), &m)
}

// GetPlayer returns a player by id.
func (b *Backend) GetPlayer(ctx context.Context, id string) (core.Player, error) {
	var p model.Player
	if err := b.db(ctx).Where("id = ?", id).Take(&p).Error; err != nil {
		return core.Player{}, lookupErr("player", id, err)
	}
	return convert.PlayerToCore(p), nil
}

// PutPlayer inserts or replaces a player.
func (b *Backend) PutPlayer(ctx context.Context, p core.Player) error {
	if p.ID == "" {
		return fmt.Errorf("player without id")
	}
	m := convert.CoreToPlayer(p)
	return upsert(b.db(ctx), &m)
}

// GetToken returns a token by id, from the cache when possible.
func (b *Backend) GetToken(ctx context.Context, id string) (core.Token, error) {
	if t, ok := b.deps.TokenCache.Get(id); ok {
		return t, nil
	}
	var m model.Token
	if err := b.db(ctx).Where("id = ?", id).Take(&m).Error; err != nil {
		return core.Token{}, lookupErr("token", id, err)
	}
	t := convert.TokenToCore(m)
	b.deps.TokenCache.Put(t)
	return t, nil
}

// FindTokens returns the tokens on a page in creation order.
func (b *Backend) FindTokens(ctx context.Context, pageID string) ([]core.Token, error) {
	var rows []model.Token
	if err := b.db(ctx).Where("page_id = ?", pageID).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find tokens on page %q: %w", pageID, err)
	}
	out := make([]core.Token, 0, len(rows))
	for _, r := range rows {
		t := convert.TokenToCore(r)
		b.deps.TokenCache.Put(t)
		out = append(out, t)
	}
	return out, nil
}

// PutToken inserts or replaces a token, assigning an id when missing.
func (b *Backend) PutToken(ctx context.Context, t core.Token) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	m := convert.CoreToToken(t)
	if err := upsert(b.db(ctx), &m); err != nil {
		return fmt.Errorf("failed to store token %q: %w", t.ID, err)
	}
	b.deps.TokenCache.Put(t)
	return nil
}

// UpdateToken replaces an existing token.
func (b *Backend) UpdateToken(ctx context.Context, t core.Token) error {
	m := convert.CoreToToken(t)
	res := b.db(ctx).Model(&model.Token{}).Where("id = ?", t.ID).Select("*").Omit("id", "created_at").Updates(&m)
	if res.Error != nil {
		b.deps.TokenCache.Invalidate(t.ID)
		return fmt.Errorf("failed to update token %q: %w", t.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		b.deps.TokenCache.Invalidate(t.ID)
		return fmt.Errorf("token %q: %w", t.ID, host.ErrNotFound)
	}
	b.deps.TokenCache.Put(t)
	return nil
}

// FindPaths returns the paths on a page.
func (b *Backend) FindPaths(ctx context.Context, pageID string) ([]core.Path, error) {
	var rows []model.Path
	if err := b.db(ctx).Where("page_id = ?", pageID).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find paths on page %q: %w", pageID, err)
	}
	out := make([]core.Path, 0, len(rows))
	for _, r := range rows {
		out = append(out, convert.PathToCore(r))
	}
	return out, nil
}

// CreatePath stores a new path under a fresh id.
func (b *Backend) CreatePath(ctx context.Context, p core.Path) (string, error) {
	p.ID = uuid.NewString()
	m := convert.CoreToPath(p)
	if err := b.db(ctx).Create(&m).Error; err != nil {
		return "", fmt.Errorf("failed to create path: %w", err)
	}
	return p.ID, nil
}

// RemovePath deletes a path.
func (b *Backend) RemovePath(ctx context.Context, id string) error {
	res := b.db(ctx).Where("id = ?", id).Delete(&model.Path{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove path %q: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("path %q: %w", id, host.ErrNotFound)
	}
	return nil
}

// FindTexts returns the texts on a page.
func (b *Backend) FindTexts(ctx context.Context, pageID string) ([]core.Text, error) {
	var rows []model.Text
	if err := b.db(ctx).Where("page_id = ?", pageID).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find texts on page %q: %w", pageID, err)
	}
	out := make([]core.Text, 0, len(rows))
	for _, r := range rows {
		out = append(out, convert.TextToCore(r))
	}
	return out, nil
}

// CreateText stores a new text under a fresh id.
func (b *Backend) CreateText(ctx context.Context, t core.Text) (string, error) {
	t.ID = uuid.NewString()
	m := convert.CoreToText(t)
	if err := b.db(ctx).Create(&m).Error; err != nil {
		return "", fmt.Errorf("failed to create text: %w", err)
	}
	return t.ID, nil
}

// RemoveText deletes a text.
func (b *Backend) RemoveText(ctx context.Context, id string) error {
	res := b.db(ctx).Where("id = ?", id).Delete(&model.Text{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove text %q: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("text %q: %w", id, host.ErrNotFound)
	}
	return nil
}
