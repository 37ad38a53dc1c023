// Package lights burns down torches, lanterns and light spells on the player
// page as game time passes.
//
// A light keeps its remaining duration in minutes in bar 2 (value/max) and its
// brightness in the bright and dim light radii. Spells stay at full strength
// and then collapse. Natural lights start to dim in the last third of their
// life and fade out over a few minutes once they are spent.
package lights

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/traveller-vtt/dv/internal/chat"
	"github.com/traveller-vtt/dv/internal/host"
	"github.com/traveller-vtt/dv/internal/vector"
	"github.com/traveller-vtt/dv/pkg/core"
)

// Rand is the source of the flicker in natural lights.
type Rand interface {
	Float64() float64
}

type randFunc func() float64

func (f randFunc) Float64() float64 { return f() }

// State is the part of a light token that decays.
type State struct {
	Current int
	Max     int
	Bright  int
	Dim     int
	// Off means both radii are blank and the token no longer emits light.
	Off bool
}

// Read extracts the light state from a token.
func Read(t core.Token) State {
	cur, _ := vector.ParseArg(t.Bar2Value)
	total, _ := vector.ParseArg(t.Bar2Max)
	bright, _ := vector.ParseArg(t.LightRadius)
	dim, _ := vector.ParseArg(t.LightDimRadius)
	return State{
		Current: cur,
		Max:     total,
		Bright:  bright,
		Dim:     dim,
		Off:     strings.TrimSpace(t.LightRadius) == "" && strings.TrimSpace(t.LightDimRadius) == "",
	}
}

// Apply writes the light state back onto a token.
func (s State) Apply(t *core.Token) {
	t.Bar2Value = strconv.Itoa(s.Current)
	if s.Off {
		t.LightRadius = ""
		t.LightDimRadius = ""
		return
	}
	t.LightRadius = strconv.Itoa(s.Bright)
	t.LightDimRadius = strconv.Itoa(s.Dim)
}

// Step advances a light by one minute. done is true once the light is out and
// further minutes change nothing.
func Step(s State, spell bool, r Rand) (next State, done bool) {
	switch {
	case s.Current <= 0 && s.Off:
		return s, true
	case s.Current <= 0 && s.Bright == 0 && s.Dim == 0:
		s.Off = true
		return s, false
	case spell:
		if s.Current <= 0 {
			s.Bright = int(math.Floor(float64(s.Bright) / 5))
			s.Dim = 0
		} else {
			s.Current--
		}
		return s, false
	}

	switch {
	case s.Current <= 0:
		s.Bright = max(s.Bright-10, 0)
		s.Dim = max(s.Dim-10, 0)
	case 3*s.Current < s.Max:
		if s.Dim > 2*s.Current {
			s.Dim -= 2
			s.Bright--
		} else if s.Dim > s.Current && r.Float64() < 0.5 {
			s.Dim--
		}
		s.Current = burn(s.Current, r)
	default:
		s.Current = burn(s.Current, r)
	}
	return s, false
}

// burn takes zero to two minutes off a natural light, never going below zero.
func burn(current int, r Rand) int {
	return max(current-int(math.Floor(r.Float64()*3)), 0)
}

// Advance runs Step for the given number of minutes.
func Advance(s State, spell bool, minutes int, r Rand) State {
	for range minutes {
		var done bool
		s, done = Step(s, spell, r)
		if done {
			break
		}
	}
	return s
}

// Announcement is the chat text for minutes of game time passing.
func Announcement(minutes int) string {
	if minutes == 1 {
		return "1 minute passes."
	}
	return fmt.Sprintf("%d minutes pass.", minutes)
}

// Minutes reads the optional duration argument. No argument means one minute.
func Minutes(args []string) (int, bool) {
	if len(args) == 0 {
		return 1, true
	}
	return vector.ParseArg(args[0])
}

// Option configures a Service.
type Option func(*Service)

// WithRand replaces the random source.
func WithRand(r Rand) Option {
	return func(s *Service) {
		s.rand = r
	}
}

// Service applies the passage of time to every light on the player page.
type Service struct {
	store host.Store
	chat  host.Chat
	rand  Rand
	log   zerolog.Logger
}

// New creates a light Service.
func New(store host.Store, out host.Chat, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		store: store,
		chat:  out,
		rand:  randFunc(rand.Float64),
		log:   log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Pass announces the elapsed time and burns down every light token on the
// player page. It returns the updated tokens. minutes < 1 does nothing.
func (s *Service) Pass(ctx context.Context, minutes int) ([]core.Token, error) {
	if minutes < 1 {
		return nil, nil
	}

	if err := s.chat.Send(ctx, chat.Broadcast("", core.DeliveryPlain, chat.Notice(Announcement(minutes)))); err != nil {
		return nil, fmt.Errorf("failed to announce time: %w", err)
	}

	pageID, err := s.store.PlayerPageID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get player page: %w", err)
	}
	tokens, err := s.store.FindTokens(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}

	var updated []core.Token
	for _, t := range tokens {
		if !t.Kind.IsLight() {
			continue
		}
		st := Advance(Read(t), t.Kind == core.KindMagicLight, minutes, s.rand)
		st.Apply(&t)
		if err := s.store.UpdateToken(ctx, t); err != nil {
			return updated, fmt.Errorf("failed to update light %s: %w", t.ID, err)
		}
		s.log.Debug().
			Str("token", t.ID).
			Int("remaining", st.Current).
			Str("bright", t.LightRadius).
			Str("dim", t.LightDimRadius).
			Msg("light burned down")
		updated = append(updated, t)
	}
	return updated, nil
}
