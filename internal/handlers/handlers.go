// Package handlers implements the chat commands: !dv for starship movement,
// plus !lights and !info.
package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/traveller-vtt/dv/internal/describe"
	"github.com/traveller-vtt/dv/internal/dispatcher"
	"github.com/traveller-vtt/dv/internal/host"
	"github.com/traveller-vtt/dv/internal/lights"
	"github.com/traveller-vtt/dv/internal/selection"
	"github.com/traveller-vtt/dv/internal/session"
	"github.com/traveller-vtt/dv/internal/telemetry"
	"github.com/traveller-vtt/dv/pkg/core"
)

// Command words handled by this package.
const (
	CommandDV     = "!dv"
	CommandLights = "!lights"
	CommandInfo   = "!info"
)

// Result summarises what a command changed.
type Result struct {
	Command  string   `json:"command"`
	Verb     string   `json:"verb,omitempty"`
	Tokens   []string `json:"tokens,omitempty"`
	Overlays []string `json:"overlays,omitempty"`
}

func (r *Result) touched(id string) {
	r.Tokens = append(r.Tokens, id)
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Store    host.Store
	Chat     host.Chat
	Session  *session.Session
	Resolver *selection.Resolver
	Tracks   telemetry.Recorder
	Lights   *lights.Service
	Describe *describe.Service
	Logger   zerolog.Logger
}

// Service provides the command handlers
type Service struct {
	deps Dependencies
	log  zerolog.Logger
}

// NewService creates a new handler service. Collaborators left nil are built
// from Store and Chat.
func NewService(deps Dependencies) *Service {
	if deps.Session == nil {
		deps.Session = session.New(session.DefaultScaleKm)
	}
	if deps.Resolver == nil {
		deps.Resolver = selection.New(deps.Store, deps.Logger)
	}
	if deps.Tracks == nil {
		deps.Tracks = telemetry.Nop{}
	}
	if deps.Lights == nil {
		deps.Lights = lights.New(deps.Store, deps.Chat, deps.Logger)
	}
	if deps.Describe == nil {
		deps.Describe = describe.New(deps.Store, deps.Chat, deps.Logger)
	}
	return &Service{
		deps: deps,
		log:  deps.Logger,
	}
}

// Session returns the scale state the service works with.
func (s *Service) Session() *session.Session {
	return s.deps.Session
}

// Register adds the command handlers to the dispatcher.
func (s *Service) Register(d *dispatcher.Dispatcher) {
	d.Register(CommandDV, s.HandleDV, dispatcher.Logged())
	d.Register(CommandLights, s.HandleLights, dispatcher.Logged())
	d.Register(CommandInfo, s.HandleInfo, dispatcher.Logged())
}

// HandleLights passes game time for every light on the player page.
func (s *Service) HandleLights(ctx context.Context, e dispatcher.Event) (any, error) {
	result := &Result{Command: CommandLights}
	minutes, ok := lights.Minutes(e.Args)
	if !ok {
		s.log.Debug().Strs("args", e.Args).Msg("lights: duration is not a number")
		return result, nil
	}

	updated, err := s.deps.Lights.Pass(ctx, minutes)
	for _, t := range updated {
		result.touched(t.ID)
	}
	return result, err
}

// HandleInfo describes the token named in the first argument, or the first
// selected token.
func (s *Service) HandleInfo(ctx context.Context, e dispatcher.Event) (any, error) {
	var tokenID string
	switch {
	case len(e.Args) > 0:
		tokenID = e.Args[0]
	case len(e.Selected) > 0:
		tokenID = e.Selected[0]
	}

	result := &Result{Command: CommandInfo}
	if err := s.deps.Describe.Describe(ctx, e.PlayerID, tokenID); err != nil {
		return result, err
	}
	if tokenID != "" {
		result.touched(tokenID)
	}
	return result, nil
}

// playerPage returns the page players are looking at. ok is false when the
// page does not exist.
func (s *Service) playerPage(ctx context.Context) (page core.Page, ok bool, err error) {
	pageID, err := s.deps.Store.PlayerPageID(ctx)
	if err != nil {
		return core.Page{}, false, fmt.Errorf("failed to get player page: %w", err)
	}
	page, err = s.deps.Store.GetPage(ctx, pageID)
	if errors.Is(err, host.ErrNotFound) {
		s.log.Debug().Str("page", pageID).Msg("player page not found")
		return core.Page{}, false, nil
	}
	if err != nil {
		return core.Page{}, false, fmt.Errorf("failed to get page %s: %w", pageID, err)
	}
	return page, true, nil
}

// ships returns every ship token on the player page.
func (s *Service) ships(ctx context.Context) ([]core.Token, error) {
	pageID, err := s.deps.Store.PlayerPageID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get player page: %w", err)
	}
	tokens, err := s.deps.Store.FindTokens(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens on %s: %w", pageID, err)
	}

	var out []core.Token
	for _, t := range tokens {
		if t.IsShip() {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Service) update(ctx context.Context, t core.Token) error {
	if err := s.deps.Store.UpdateToken(ctx, t); err != nil {
		return fmt.Errorf("failed to update token %s: %w", t.ID, err)
	}
	return nil
}
