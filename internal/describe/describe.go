// Package describe renders a character sheet summary for a token into chat.
package describe

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/traveller-vtt/dv/internal/chat"
	"github.com/traveller-vtt/dv/internal/host"
	"github.com/traveller-vtt/dv/internal/vector"
	"github.com/traveller-vtt/dv/pkg/core"
)

const (
	boxStyle   = "background-color: #DDDDAA; color: #000000; padding:0px; border:1px solid COLOUR; border-radius: 5px;"
	titleStyle = "background-color: COLOUR; color: #FFFFFF; padding: 1px; text-align: center"
	textStyle  = "padding: 5px; padding-top: 0px; padding-bottom: 0px;"
	paraStyle  = "padding: 0px; margin: 0px;"

	defaultColour = "#000000"
	maxClasses    = 10
)

const (
	msgNoCharacter = "No character found"
	msgNoToken     = "Nothing selected."
)

// Title is the display title of a token: the part after the first ':' when
// the name has one.
func Title(name string) string {
	if parts := strings.Split(name, ":"); len(parts) > 1 {
		return parts[1]
	}
	return name
}

// ClassLevels lists "class-N-name level" pairs until the first blank class.
func ClassLevels(c core.Character) string {
	var levels []string
	for i := range maxClasses {
		name := c.Attr(fmt.Sprintf("class-%d-name", i))
		if name == "" {
			break
		}
		levels = append(levels, name+" "+c.Attr(fmt.Sprintf("class-%d-level", i)))
	}
	return strings.Join(levels, " / ")
}

// HitPoints formats bar 1 as current / max, with the effective value in
// parentheses when the token has non-lethal damage in bar 3.
func HitPoints(t core.Token) string {
	cur, _ := vector.ParseArg(t.Bar1Value)
	total, _ := vector.ParseArg(t.Bar1Max)
	nonlethal, _ := vector.ParseArg(t.Bar3Value)
	if nonlethal > 0 {
		return fmt.Sprintf("Hitpoints: (%d) %d / %d", cur-nonlethal, cur, total)
	}
	return "Hitpoints: " + strconv.Itoa(cur) + " / " + strconv.Itoa(total)
}

func text(s string) string {
	return "<p style='" + paraStyle + "'><b>" + html.EscapeString(s) + "</b></p>"
}

func cell(label, value string) string {
	if value == "" {
		return ""
	}
	return "<b>" + label + "</b> " + html.EscapeString(value) + " "
}

// Card renders the description card of a token and the character it represents.
func Card(t core.Token, c core.Character) string {
	colour := c.Attr("rolltemplate_color")
	if colour == "" {
		colour = defaultColour
	}

	var b strings.Builder
	b.WriteString("<div style='" + strings.ReplaceAll(boxStyle, "COLOUR", colour) + "'>")
	if t.Name != "" {
		b.WriteString("<div style='" + strings.ReplaceAll(titleStyle, "COLOUR", colour) + "'>")
		b.WriteString(html.EscapeString(Title(t.Name)))
		b.WriteString("</div>")
	}

	b.WriteString("<div style='" + textStyle + "'>")
	if c.Avatar != "" {
		b.WriteString("<table><tr>")
		b.WriteString("<td style='width:110px'><img src='" + html.EscapeString(c.Avatar) + "' width='100px' align='left'/></td>")
		b.WriteString("<td style='width: auto; vertical-align: top'>")
	}

	b.WriteString(text(strings.TrimSpace(c.Attr("size_display") + " " + c.Attr("npc-type"))))
	b.WriteString(text(ClassLevels(c)))
	b.WriteString(text(c.Attr("alignment")))
	b.WriteString("<br/>")
	b.WriteString(text(HitPoints(t)))
	b.WriteString(chat.Paragraph(cell("AC", c.Attr("AC")) + cell("Flat", c.Attr("Flat-Footed")) + cell("Touch", c.Attr("Touch"))))

	if c.Avatar != "" {
		b.WriteString("</td></tr></table>")
	}
	b.WriteString("</div></div>")
	return b.String()
}

// Service answers description requests.
type Service struct {
	store host.Store
	chat  host.Chat
	log   zerolog.Logger
}

// New creates a description Service.
func New(store host.Store, out host.Chat, log zerolog.Logger) *Service {
	return &Service{store: store, chat: out, log: log}
}

// Describe sends the card of tokenID. A GM's request is shown to the whole
// table; anyone else gets a whisper.
func (s *Service) Describe(ctx context.Context, playerID, tokenID string) error {
	if tokenID == "" {
		return s.chat.Send(ctx, chat.Whisper("", playerID, msgNoToken))
	}
	t, err := s.store.GetToken(ctx, tokenID)
	if errors.Is(err, host.ErrNotFound) {
		return s.chat.Send(ctx, chat.Whisper("", playerID, msgNoToken))
	}
	if err != nil {
		return fmt.Errorf("failed to get token %s: %w", tokenID, err)
	}

	if t.Represents == "" {
		return s.chat.Send(ctx, chat.Whisper("", playerID, msgNoCharacter))
	}
	c, err := s.store.GetCharacter(ctx, t.Represents)
	if errors.Is(err, host.ErrNotFound) {
		return s.chat.Send(ctx, chat.Whisper("", playerID, msgNoCharacter))
	}
	if err != nil {
		return fmt.Errorf("failed to get character %s: %w", t.Represents, err)
	}

	card := Card(t, c)

	gm, err := s.isGM(ctx, playerID)
	if err != nil {
		return err
	}
	s.log.Debug().Str("token", t.ID).Str("character", c.ID).Bool("gm", gm).Msg("describing token")
	if gm {
		return s.chat.Send(ctx, chat.Broadcast("", core.DeliveryDirect, card))
	}
	return s.chat.Send(ctx, chat.Whisper("", playerID, card))
}

func (s *Service) isGM(ctx context.Context, playerID string) (bool, error) {
	p, err := s.store.GetPlayer(ctx, playerID)
	if errors.Is(err, host.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get player %s: %w", playerID, err)
	}
	return p.IsGM, nil
}
