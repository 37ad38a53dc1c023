package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/traveller-vtt/dv/internal/chat"
	"github.com/traveller-vtt/dv/internal/dispatcher"
	"github.com/traveller-vtt/dv/internal/geo"
	"github.com/traveller-vtt/dv/internal/motion"
	"github.com/traveller-vtt/dv/internal/selection"
	"github.com/traveller-vtt/dv/internal/vector"
	"github.com/traveller-vtt/dv/pkg/core"
)

// Verbs understood by !dv, in matching order.
var Verbs = []string{"set", "focus", "info", "turn", "scale", "thrust", "move"}

// MatchVerb returns the first verb that starts with word. Matching is case
// sensitive.
func MatchVerb(word string) (string, bool) {
	if word == "" {
		return "", false
	}
	for _, v := range Verbs {
		if strings.HasPrefix(v, word) {
			return v, true
		}
	}
	return "", false
}

type verbFunc func(ctx context.Context, e dispatcher.Event, args []string, result *Result) error

func (s *Service) verb(name string) verbFunc {
	switch name {
	case "set":
		return s.set
	case "focus":
		return s.focus
	case "info":
		return s.info
	case "turn":
		return s.turn
	case "scale":
		return s.scale
	case "thrust":
		return s.thrust
	case "move":
		return s.move
	}
	return nil
}

// HandleDV routes a !dv command to its verb. Without a verb a help card is
// shown; an unknown verb does nothing.
func (s *Service) HandleDV(ctx context.Context, e dispatcher.Event) (any, error) {
	result := &Result{Command: CommandDV}
	if len(e.Args) == 0 {
		help := chat.Message("!dv help", "You need some commands: "+strings.Join(Verbs, ", "))
		return result, s.deps.Chat.Send(ctx, chat.Broadcast("", core.DeliveryDesc, help))
	}

	name, ok := MatchVerb(e.Args[0])
	if !ok {
		s.log.Debug().Str("verb", e.Args[0]).Msg("dv: unknown verb")
		return result, nil
	}
	result.Verb = name

	if err := s.verb(name)(ctx, e, e.Args[1:], result); err != nil {
		s.log.Error().Err(err).Str("verb", name).Str("player", e.PlayerID).Msg("dv command failed")
		return result, err
	}
	return result, nil
}

// set gives every resolved token a fresh vector: stationary at the origin,
// heading along its current rotation.
func (s *Service) set(ctx context.Context, e dispatcher.Event, _ []string, result *Result) error {
	tokens, err := s.deps.Resolver.Tokens(ctx, e.PlayerID, e.Selected)
	if err != nil {
		return err
	}
	for _, t := range tokens {
		v := vector.Zero(t)
		vector.Encode(&t, v)
		if err := s.update(ctx, t); err != nil {
			return err
		}
		s.deps.Tracks.RecordShip(ctx, t, v, "set")
		result.touched(t.ID)
	}
	return nil
}

// focus redraws the player page around exactly one token.
func (s *Service) focus(ctx context.Context, e dispatcher.Event, _ []string, result *Result) error {
	target, err := s.deps.Resolver.One(ctx, e.PlayerID, e.Selected)
	if errors.Is(err, selection.ErrNoSelection) {
		s.log.Debug().Err(err).Str("player", e.PlayerID).Msg("dv focus: no single token")
		return nil
	}
	if err != nil {
		return err
	}

	page, ok, err := s.playerPage(ctx)
	if err != nil || !ok {
		return err
	}
	ships, err := s.ships(ctx)
	if err != nil {
		return err
	}

	byID := make(map[string]core.Token, len(ships)+1)
	bodies := make([]geo.Body, 0, len(ships))
	for _, t := range ships {
		byID[t.ID] = t
		bodies = append(bodies, geo.Body{ID: t.ID, Vector: vector.Decode(t)})
	}
	byID[target.ID] = target

	canvas := geo.Canvas{Width: page.Width, Height: page.Height}
	focus := geo.Body{ID: target.ID, Vector: vector.Decode(target)}
	for _, p := range geo.Focus(focus, bodies, canvas, s.deps.Session.ScaleMetres()) {
		t := byID[p.ID]
		t.Left, t.Top, t.Rotation = p.Left, p.Top, p.Rotation
		if err := s.update(ctx, t); err != nil {
			return err
		}
		result.touched(t.ID)
	}
	return nil
}

// info whispers each resolved token's position, heading and velocity to the
// player who asked.
func (s *Service) info(ctx context.Context, e dispatcher.Event, _ []string, result *Result) error {
	tokens, err := s.deps.Resolver.Tokens(ctx, e.PlayerID, e.Selected)
	if err != nil {
		return err
	}
	for _, t := range tokens {
		card := chat.TokenCard(t.Name, t.ImgSrc, InfoBody(vector.Decode(t)))
		if err := s.deps.Chat.Send(ctx, chat.Whisper(t.Name, e.PlayerID, card)); err != nil {
			return fmt.Errorf("failed to send info for %s: %w", t.ID, err)
		}
		result.touched(t.ID)
	}
	return nil
}

// InfoBody lists a vector in kilometres, degrees and metres per second.
func InfoBody(v vector.Vector) string {
	return chat.Field("X", strconv.Itoa(v.X/1000)+"km") +
		chat.Field("Y", strconv.Itoa(v.Y/1000)+"km") +
		chat.Field("Angle", strconv.Itoa(v.Heading)+"°") +
		chat.Field("Xv", strconv.Itoa(v.XV)+"m/s") +
		chat.Field("Yv", strconv.Itoa(v.YV)+"m/s")
}

// turn rotates every resolved token by the signed number of degrees given.
func (s *Service) turn(ctx context.Context, e dispatcher.Event, args []string, result *Result) error {
	delta, ok := firstInt(args)
	if !ok {
		s.log.Debug().Strs("args", args).Msg("dv turn: angle is not a number")
		return nil
	}

	tokens, err := s.deps.Resolver.Tokens(ctx, e.PlayerID, e.Selected)
	if err != nil {
		return err
	}
	for _, t := range tokens {
		v, rotation := motion.Turn(vector.Decode(t), t.Rotation, delta)
		vector.Encode(&t, v)
		t.Rotation = rotation
		if err := s.update(ctx, t); err != nil {
			return err
		}
		s.deps.Tracks.RecordShip(ctx, t, v, "turn")
		result.touched(t.ID)
	}
	return nil
}

// scale sets kilometres per square and replaces the range rings on the player
// page. Every path and text on the page is removed first.
func (s *Service) scale(ctx context.Context, _ dispatcher.Event, args []string, result *Result) error {
	km, ok := firstInt(args)
	if !ok || !s.deps.Session.SetScale(km) {
		s.log.Debug().Strs("args", args).Msg("dv scale: not a positive number")
		return nil
	}
	s.log.Info().Int("km", km).Msg("scale changed")

	page, ok, err := s.playerPage(ctx)
	if err != nil || !ok {
		return err
	}
	if err := s.clearOverlays(ctx, page.ID); err != nil {
		return err
	}

	canvas := geo.Canvas{Width: page.Width, Height: page.Height}
	for _, ring := range geo.VisibleZones(s.deps.Session.ScaleMetres(), canvas) {
		path, label, err := ring.Overlay(page.ID)
		if err != nil {
			return err
		}
		pathID, err := s.deps.Store.CreatePath(ctx, path)
		if err != nil {
			return fmt.Errorf("failed to create %s ring: %w", ring.Label(), err)
		}
		labelID, err := s.deps.Store.CreateText(ctx, label)
		if err != nil {
			return fmt.Errorf("failed to create %s label: %w", ring.Label(), err)
		}
		result.Overlays = append(result.Overlays, pathID, labelID)
	}
	return nil
}

func (s *Service) clearOverlays(ctx context.Context, pageID string) error {
	paths, err := s.deps.Store.FindPaths(ctx, pageID)
	if err != nil {
		return fmt.Errorf("failed to list paths: %w", err)
	}
	for _, p := range paths {
		if err := s.deps.Store.RemovePath(ctx, p.ID); err != nil {
			return fmt.Errorf("failed to remove path %s: %w", p.ID, err)
		}
	}

	texts, err := s.deps.Store.FindTexts(ctx, pageID)
	if err != nil {
		return fmt.Errorf("failed to list texts: %w", err)
	}
	for _, t := range texts {
		if err := s.deps.Store.RemoveText(ctx, t.ID); err != nil {
			return fmt.Errorf("failed to remove text %s: %w", t.ID, err)
		}
	}
	return nil
}

// thrust accelerates the first resolved token along its heading. Any other
// tokens in the selection are left alone.
func (s *Service) thrust(ctx context.Context, e dispatcher.Event, args []string, result *Result) error {
	accel, ok := firstInt(args)
	if !ok {
		s.log.Debug().Strs("args", args).Msg("dv thrust: acceleration is not a number")
		return nil
	}

	tokens, err := s.deps.Resolver.Tokens(ctx, e.PlayerID, e.Selected)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}
	if len(tokens) > 1 {
		s.log.Debug().Int("ignored", len(tokens)-1).Msg("dv thrust: only the first token is accelerated")
	}

	t := tokens[0]
	v := motion.Thrust(vector.Decode(t), accel)
	vector.Encode(&t, v)
	if err := s.update(ctx, t); err != nil {
		return err
	}
	s.deps.Tracks.RecordShip(ctx, t, v, "thrust")
	result.touched(t.ID)
	return nil
}

// move advances every ship on the player page by one turn.
func (s *Service) move(ctx context.Context, _ dispatcher.Event, _ []string, result *Result) error {
	ships, err := s.ships(ctx)
	if err != nil {
		return err
	}
	for _, t := range ships {
		v := motion.Step(vector.Decode(t))
		vector.Encode(&t, v)
		if err := s.update(ctx, t); err != nil {
			return err
		}
		s.deps.Tracks.RecordShip(ctx, t, v, "move")
		result.touched(t.ID)
	}
	return nil
}

func firstInt(args []string) (int, bool) {
	if len(args) == 0 {
		return 0, false
	}
	return vector.ParseArg(args[0])
}
