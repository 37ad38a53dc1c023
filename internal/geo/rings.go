package geo

import (
	"encoding/json"
	"fmt"
	"math"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/traveller-vtt/dv/pkg/core"
)

// Zones are the reference distances, in kilometres, that range rings may be
// drawn for.
var Zones = []int{1, 10, 1250, 10000, 25000, 50000, 100000, 200000, 500000}

const (
	segmentLength = 35
	minSteps      = 4
	maxSteps      = 20

	ringStroke      = "#000000"
	ringStrokeWidth = 5
	labelFontSize   = 48
	labelFont       = "Arial"
	overlayLayer    = "map"
)

// Circle is a closed polygon approximating a circle. Points are relative to
// the circle's bounding box, so the centre sits at (Radius, Radius).
type Circle struct {
	Radius float64
	Points []geom.XY
}

// Steps returns the number of segments drawn per quadrant for a radius.
func Steps(radius float64) int {
	steps := int(math.Round(2 * math.Pi * radius / segmentLength))
	return min(max(steps, minSteps), maxSteps)
}

// BuildCircle samples a quarter circle and mirrors it into the other three
// quadrants. The last point repeats the first.
func BuildCircle(radius float64) Circle {
	steps := Steps(radius)
	stepSize := math.Pi / float64(2*steps)

	q := make([][]geom.XY, 4)
	for i := 0; i <= steps; i++ {
		sin, cos := math.Sincos(float64(i) * stepSize)
		x, y := cos*radius, sin*radius
		q[0] = append(q[0], geom.XY{X: x, Y: y})
		q[1] = append(q[1], geom.XY{X: -x, Y: y})
		q[2] = append(q[2], geom.XY{X: -x, Y: -y})
		q[3] = append(q[3], geom.XY{X: x, Y: -y})
	}

	points := make([]geom.XY, 0, 4*steps+1)
	points = append(points, q[0]...)
	points = append(points, reversed(q[1])[1:]...)
	points = append(points, q[2][1:]...)
	points = append(points, reversed(q[3])[1:]...)

	offset := geom.XY{X: radius, Y: radius}
	for i := range points {
		points[i] = points[i].Add(offset)
	}
	return Circle{Radius: radius, Points: points}
}

func reversed(in []geom.XY) []geom.XY {
	out := make([]geom.XY, len(in))
	for i, p := range in {
		out[len(in)-1-i] = p
	}
	return out
}

// MarshalJSON renders the circle as a host path description:
// [["M",x,y],["L",x,y],...].
func (c Circle) MarshalJSON() ([]byte, error) {
	cmds := make([][3]any, len(c.Points))
	for i, p := range c.Points {
		op := "L"
		if i == 0 {
			op = "M"
		}
		cmds[i] = [3]any{op, p.X, p.Y}
	}
	return json.Marshal(cmds)
}

// Ring returns the circle outline as a closed line string.
func (c Circle) Ring() geom.LineString {
	flat := make([]float64, 0, 2*len(c.Points))
	for _, p := range c.Points {
		flat = append(flat, p.X, p.Y)
	}
	return geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
}

// Ring is a range ring for one zone at the current scale.
type Ring struct {
	DistanceKm int
	Radius     float64
	Centre     geom.XY
}

// ZoneRadius converts a zone distance into pixels at the given scale.
func ZoneRadius(distanceKm int, scaleMetres float64) float64 {
	return PixelsPerSquare * (1000 * float64(distanceKm) / scaleMetres)
}

// VisibleZones returns the rings that fit the canvas at this scale: at least
// one square across and less than four half-widths.
func VisibleZones(scaleMetres float64, canvas Canvas) []Ring {
	if scaleMetres <= 0 {
		return nil
	}
	limit := 4 * canvas.HalfWidth()
	centre := canvas.Centre()

	var rings []Ring
	for _, d := range Zones {
		r := ZoneRadius(d, scaleMetres)
		if r >= PixelsPerSquare && r < limit {
			rings = append(rings, Ring{DistanceKm: d, Radius: r, Centre: centre})
		}
	}
	return rings
}

// Label is the text drawn with the ring.
func (r Ring) Label() string {
	return fmt.Sprintf("%dkm", r.DistanceKm)
}

// Overlay builds the path and label objects for the ring on a page.
func (r Ring) Overlay(pageID string) (core.Path, core.Text, error) {
	points, err := json.Marshal(BuildCircle(r.Radius))
	if err != nil {
		return core.Path{}, core.Text{}, fmt.Errorf("encoding %s ring: %w", r.Label(), err)
	}

	path := core.Path{
		PageID:      pageID,
		Layer:       overlayLayer,
		Fill:        "transparent",
		Stroke:      ringStroke,
		StrokeWidth: ringStrokeWidth,
		Points:      string(points),
		Width:       2 * r.Radius,
		Height:      2 * r.Radius,
		Left:        r.Centre.X,
		Top:         r.Centre.Y,
	}
	label := core.Text{
		PageID:     pageID,
		Layer:      overlayLayer,
		Text:       r.Label(),
		Left:       r.Centre.X,
		Top:        r.Centre.Y - r.Radius,
		FontSize:   labelFontSize,
		FontFamily: labelFont,
	}
	return path, label, nil
}
