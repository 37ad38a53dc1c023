// Package host defines what the service needs from the tabletop platform:
// an object store for pages, characters, tokens and overlays, plus chat.
package host

import (
	"context"
	"errors"

	"github.com/traveller-vtt/dv/pkg/core"
)

// ErrNotFound is returned by Store lookups for unknown ids.
var ErrNotFound = errors.New("object not found")

// Store is the tabletop's shared object store. Implementations are not
// required to be safe for concurrent command handling; the service processes
// one command at a time.
type Store interface {
	// PlayerPageID returns the page players are currently looking at.
	PlayerPageID(ctx context.Context) (string, error)
	GetPage(ctx context.Context, id string) (core.Page, error)
	GetCharacter(ctx context.Context, id string) (core.Character, error)
	GetPlayer(ctx context.Context, id string) (core.Player, error)

	GetToken(ctx context.Context, id string) (core.Token, error)
	FindTokens(ctx context.Context, pageID string) ([]core.Token, error)
	// UpdateToken writes the whole token back.
	UpdateToken(ctx context.Context, t core.Token) error

	FindPaths(ctx context.Context, pageID string) ([]core.Path, error)
	FindTexts(ctx context.Context, pageID string) ([]core.Text, error)
	// CreatePath and CreateText assign and return a new id.
	CreatePath(ctx context.Context, p core.Path) (string, error)
	CreateText(ctx context.Context, t core.Text) (string, error)
	RemovePath(ctx context.Context, id string) error
	RemoveText(ctx context.Context, id string) error
}

// Seeder is implemented by stores that can import objects directly.
type Seeder interface {
	SetPlayerPage(ctx context.Context, pageID string) error
	PutPage(ctx context.Context, p core.Page) error
	PutCharacter(ctx context.Context, c core.Character) error
	PutPlayer(ctx context.Context, p core.Player) error
	PutToken(ctx context.Context, t core.Token) error
}

// Chat delivers messages to players.
type Chat interface {
	Send(ctx context.Context, msg core.Outgoing) error
}

// ChatFunc adapts a function to Chat.
type ChatFunc func(ctx context.Context, msg core.Outgoing) error

// Send calls f.
func (f ChatFunc) Send(ctx context.Context, msg core.Outgoing) error {
	return f(ctx, msg)
}
