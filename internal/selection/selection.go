// Package selection resolves which tokens a chat command applies to.
package selection

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/traveller-vtt/dv/internal/host"
	"github.com/traveller-vtt/dv/pkg/core"
)

// ErrNoSelection is returned by One when the selection is not exactly one token.
var ErrNoSelection = errors.New("exactly one token must be selected")

// Resolver turns a chat message's selection into tokens.
type Resolver struct {
	store host.Store
	log   zerolog.Logger
}

// New creates a Resolver reading from store.
func New(store host.Store, log zerolog.Logger) *Resolver {
	return &Resolver{store: store, log: log}
}

// Tokens returns the explicitly selected, named tokens. Without a selection a
// non-GM player gets every named token on the player page whose character
// lists them as a controller; a GM gets nothing.
func (r *Resolver) Tokens(ctx context.Context, playerID string, selected []string) ([]core.Token, error) {
	if len(selected) > 0 {
		return r.explicit(ctx, selected)
	}

	gm, err := r.isGM(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if gm {
		return nil, nil
	}
	return r.controlled(ctx, playerID)
}

// One returns the single token a command such as focus acts on.
func (r *Resolver) One(ctx context.Context, playerID string, selected []string) (core.Token, error) {
	tokens, err := r.Tokens(ctx, playerID, selected)
	if err != nil {
		return core.Token{}, err
	}
	if len(tokens) != 1 {
		return core.Token{}, fmt.Errorf("%w: got %d", ErrNoSelection, len(tokens))
	}
	return tokens[0], nil
}

func (r *Resolver) explicit(ctx context.Context, ids []string) ([]core.Token, error) {
	var out []core.Token
	for _, id := range ids {
		t, err := r.store.GetToken(ctx, id)
		if errors.Is(err, host.ErrNotFound) {
			r.log.Debug().Str("token", id).Msg("selected token not found")
			continue
		}
		if err != nil {
			return nil, err
		}
		if t.Name == "" {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *Resolver) isGM(ctx context.Context, playerID string) (bool, error) {
	p, err := r.store.GetPlayer(ctx, playerID)
	if errors.Is(err, host.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return p.IsGM, nil
}

func (r *Resolver) controlled(ctx context.Context, playerID string) ([]core.Token, error) {
	pageID, err := r.store.PlayerPageID(ctx)
	if err != nil {
		return nil, err
	}
	tokens, err := r.store.FindTokens(ctx, pageID)
	if err != nil {
		return nil, err
	}

	var out []core.Token
	for _, t := range tokens {
		if t.Name == "" || t.Represents == "" {
			continue
		}
		c, err := r.store.GetCharacter(ctx, t.Represents)
		if errors.Is(err, host.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if c.IsControlledBy(playerID) {
			out = append(out, t)
		}
	}
	return out, nil
}
