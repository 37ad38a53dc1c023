// Package motion advances ships through discrete game turns.
//
// Motion is a plain translation at constant velocity; thrust is an impulse
// applied along the current heading. Headings are degrees clockwise from
// "up" on a screen whose y axis grows downward.
package motion

import (
	"math"

	"github.com/traveller-vtt/dv/internal/vector"
)

// TurnSeconds is the length of one game turn in simulated seconds.
const TurnSeconds = 360

// Step moves the ship by one turn of its current velocity.
func Step(v vector.Vector) vector.Vector {
	v.X += v.XV * TurnSeconds
	v.Y += v.YV * TurnSeconds
	return v
}

// Turn rotates both the encoded heading and the token's native rotation by
// delta degrees. Each is normalised to [0, 360) independently.
func Turn(v vector.Vector, rotation float64, delta int) (vector.Vector, float64) {
	v.Heading = NormalizeHeading(v.Heading + delta)
	return v, NormalizeRotation(rotation + float64(delta))
}

// Thrust applies accel (m/s²) for a whole turn along the ship's heading.
// The velocity change is truncated to whole metres per second.
func Thrust(v vector.Vector, accel int) vector.Vector {
	rad := float64(v.Heading) * math.Pi / 180
	xv := float64(v.XV) + float64(accel)*math.Sin(rad)*TurnSeconds
	yv := float64(v.YV) - float64(accel)*math.Cos(rad)*TurnSeconds
	v.XV = int(xv)
	v.YV = int(yv)
	return v
}

// NormalizeHeading maps any integer heading onto [0, 360).
func NormalizeHeading(h int) int {
	return ((h % 360) + 360) % 360
}

// NormalizeRotation maps any rotation onto [0, 360).
func NormalizeRotation(r float64) float64 {
	r = math.Mod(r, 360)
	if r < 0 {
		r += 360
	}
	if r >= 360 {
		r = 0
	}
	return r
}
