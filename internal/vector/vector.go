// Package vector encodes a ship's kinematic state into the two generic bar
// fields of a token and reads it back.
//
// Bar 1 holds "x,y,heading" (metres, metres, degrees) and bar 2 holds "xv,yv"
// (metres per second). Everything is an integer.
package vector

import (
	"math"
	"strconv"
	"strings"

	"github.com/traveller-vtt/dv/pkg/core"
)

// Vector is the kinematic state of one ship.
type Vector struct {
	X       int `json:"x"`
	Y       int `json:"y"`
	Heading int `json:"heading"`
	XV      int `json:"xv"`
	YV      int `json:"yv"`
}

// Decode reads the vector stored on the token. Missing or unparseable
// components decode as zero. A token that has never been given a vector
// decodes to the zero vector facing the token's current rotation.
func Decode(t core.Token) Vector {
	if strings.TrimSpace(t.Bar1Value) == "" && strings.TrimSpace(t.Bar2Value) == "" {
		return Zero(t)
	}

	xy := strings.Split(t.Bar1Value, ",")
	v := strings.Split(t.Bar2Value, ",")

	return Vector{
		X:       component(xy, 0),
		Y:       component(xy, 1),
		Heading: component(xy, 2),
		XV:      component(v, 0),
		YV:      component(v, 1),
	}
}

// Encode writes the vector into the token's bar fields. Heading is written as
// given; callers normalise it first.
func Encode(t *core.Token, v Vector) {
	t.Bar1Value = strconv.Itoa(v.X) + "," + strconv.Itoa(v.Y) + "," + strconv.Itoa(v.Heading)
	t.Bar2Value = strconv.Itoa(v.XV) + "," + strconv.Itoa(v.YV)
}

// Zero returns a stationary vector at the origin facing the token's rotation.
func Zero(t core.Token) Vector {
	h := int(t.Rotation) % 360
	if h < 0 {
		h += 360
	}
	return Vector{Heading: h}
}

func component(parts []string, i int) int {
	if i >= len(parts) {
		return 0
	}
	n, ok := ParseArg(parts[i])
	if !ok {
		return 0
	}
	return n
}

// ParseArg parses an integer that may have been written as a float ("32.00").
// Floats are truncated toward zero. ok is false for anything non-numeric, which
// command handlers treat as "do nothing".
func ParseArg(s string) (n int, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}
