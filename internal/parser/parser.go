// Package parser turns relayed chat messages into dispatcher events.
package parser

import (
	"errors"
	"strings"
	"time"

	"github.com/traveller-vtt/dv/internal/dispatcher"
	"github.com/traveller-vtt/dv/pkg/core"
)

// ErrNotCommand is returned for chat that is not addressed to scripts.
var ErrNotCommand = errors.New("not an api command")

// CommandPrefix starts every script command.
const CommandPrefix = "!"

// Parse splits an api chat message into a command word and its arguments.
// Runs of whitespace separate arguments.
func Parse(msg core.ChatMessage) (dispatcher.Event, error) {
	if msg.Type != core.MessageTypeAPI {
		return dispatcher.Event{}, ErrNotCommand
	}

	fields := strings.Fields(msg.Content)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], CommandPrefix) || len(fields[0]) == len(CommandPrefix) {
		return dispatcher.Event{}, ErrNotCommand
	}

	var selected []string
	for _, id := range msg.Selected {
		if id = strings.TrimSpace(id); id != "" {
			selected = append(selected, id)
		}
	}

	return dispatcher.Event{
		Command:   fields[0],
		Args:      fields[1:],
		PlayerID:  msg.PlayerID,
		Selected:  selected,
		Timestamp: time.Now(),
	}, nil
}

// ParseLine builds an api chat message from a typed command line, as used by
// the command line client.
func ParseLine(playerID, line string, selected []string) (dispatcher.Event, error) {
	return Parse(core.ChatMessage{
		Type:     core.MessageTypeAPI,
		PlayerID: playerID,
		Content:  line,
		Selected: selected,
	})
}
