// pkg/core/token.go
package core

import "strings"

// Kind tags a token with the role it plays on the map. It is assigned once,
// when the token is created or imported, and never re-derived from the name.
type Kind uint8

const (
	KindOther Kind = iota
	KindShip
	KindLight
	KindMagicLight
)

func (k Kind) String() string {
	switch k {
	case KindShip:
		return "ship"
	case KindLight:
		return "light"
	case KindMagicLight:
		return "magic_light"
	default:
		return "other"
	}
}

// ParseKind is the inverse of Kind.String. Unknown values map to KindOther.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ship":
		return KindShip
	case "light":
		return KindLight
	case "magic_light":
		return KindMagicLight
	default:
		return KindOther
	}
}

// IsLight reports whether the token is any kind of light source.
func (k Kind) IsLight() bool {
	return k == KindLight || k == KindMagicLight
}

// ClassifyToken interprets the tabletop's naming conventions for tokens that
// arrive without an explicit kind: a leading "!" marks a ship, "!Light" in the
// GM notes marks a light source and "Spell" in the name makes it magical.
func ClassifyToken(name, gmNotes string) Kind {
	if strings.Contains(gmNotes, "!Light") {
		if strings.Contains(name, "Spell") {
			return KindMagicLight
		}
		return KindLight
	}
	if strings.HasPrefix(name, "!") {
		return KindShip
	}
	return KindOther
}

// Token is a drawable graphic on a map page.
// Bar values are free-form strings owned by the host; the ship vector lives in
// Bar1Value/Bar2Value and light duration in Bar2Value/Bar2Max.
type Token struct {
	ID         string  `json:"id" yaml:"id"`
	PageID     string  `json:"pageId" yaml:"pageId"`
	Name       string  `json:"name" yaml:"name"`
	Kind       Kind    `json:"kind" yaml:"-"`
	Represents string  `json:"represents,omitempty" yaml:"represents"`
	ImgSrc     string  `json:"imgsrc,omitempty" yaml:"imgsrc"`
	GMNotes    string  `json:"gmnotes,omitempty" yaml:"gmnotes"`
	Left       float64 `json:"left" yaml:"left"`
	Top        float64 `json:"top" yaml:"top"`
	Rotation   float64 `json:"rotation" yaml:"rotation"`

	Bar1Value string `json:"bar1_value,omitempty" yaml:"bar1_value"`
	Bar1Max   string `json:"bar1_max,omitempty" yaml:"bar1_max"`
	Bar2Value string `json:"bar2_value,omitempty" yaml:"bar2_value"`
	Bar2Max   string `json:"bar2_max,omitempty" yaml:"bar2_max"`
	Bar3Value string `json:"bar3_value,omitempty" yaml:"bar3_value"`

	LightRadius    string `json:"light_radius,omitempty" yaml:"light_radius"`
	LightDimRadius string `json:"light_dimradius,omitempty" yaml:"light_dimradius"`
}

// IsShip reports whether the token takes part in starship movement.
func (t Token) IsShip() bool {
	return t.Kind == KindShip
}
