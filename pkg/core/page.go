// pkg/core/page.go
package core

import "strings"

// Page is a map page. Width and Height are measured in grid squares.
type Page struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
}

// Character is a character sheet a token may represent.
type Character struct {
	ID           string            `json:"id" yaml:"id"`
	Name         string            `json:"name" yaml:"name"`
	Avatar       string            `json:"avatar,omitempty" yaml:"avatar"`
	ControlledBy string            `json:"controlledby,omitempty" yaml:"controlledby"`
	Attributes   map[string]string `json:"attributes,omitempty" yaml:"attributes"`
}

// IsControlledBy reports whether the player is explicitly listed as a
// controller. Characters controlled by "all" only match players named in the
// list, so shared objects such as torches are never picked up implicitly.
func (c Character) IsControlledBy(playerID string) bool {
	if playerID == "" {
		return false
	}
	for _, id := range strings.Split(c.ControlledBy, ",") {
		if strings.TrimSpace(id) == playerID {
			return true
		}
	}
	return false
}

// Attr returns a character attribute, or "" when unset.
func (c Character) Attr(name string) string {
	if c.Attributes == nil {
		return ""
	}
	return c.Attributes[name]
}

// Player is a participant in the campaign.
type Player struct {
	ID          string `json:"id" yaml:"id"`
	DisplayName string `json:"displayname" yaml:"displayname"`
	IsGM        bool   `json:"isGm" yaml:"isGm"`
}
