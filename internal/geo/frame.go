package geo

import (
	"math"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/traveller-vtt/dv/internal/motion"
	"github.com/traveller-vtt/dv/internal/vector"
)

// PixelsPerSquare is the rendered size of one map grid square.
const PixelsPerSquare = 70

// Canvas is the drawable area of a page, measured in grid squares.
type Canvas struct {
	Width  int
	Height int
}

// Centre returns the pixel centre of the canvas.
func (c Canvas) Centre() geom.XY {
	return geom.XY{
		X: float64(c.Width * PixelsPerSquare / 2),
		Y: float64(c.Height * PixelsPerSquare / 2),
	}
}

// HalfWidth returns the horizontal distance in pixels from the edge to the centre.
func (c Canvas) HalfWidth() float64 {
	return float64(c.Width * PixelsPerSquare / 2)
}

// Body is a ship as seen by the frame transform.
type Body struct {
	ID     string
	Vector vector.Vector
}

// Placement is where a token should be drawn after a transform.
type Placement struct {
	ID       string
	Left     float64
	Top      float64
	Rotation float64
}

// Focus re-expresses every body in the frame of the focus ship: the focus ship
// is drawn at the canvas centre pointing up, and the others keep their
// distance and bearing relative to it. scaleMetres is the world distance
// covered by one grid square.
//
// The first placement is always the focus ship. Bodies sharing the focus ID
// are skipped.
func Focus(focus Body, others []Body, canvas Canvas, scaleMetres float64) []Placement {
	centre := canvas.Centre()
	placements := make([]Placement, 0, len(others)+1)
	placements = append(placements, Placement{
		ID:   focus.ID,
		Left: centre.X,
		Top:  centre.Y,
	})

	angle := focus.Vector.Heading
	origin := position(focus.Vector)
	pixelsPerMetre := PixelsPerSquare / scaleMetres

	for _, b := range others {
		if b.ID == focus.ID {
			continue
		}
		offset := Rotate(position(b.Vector).Sub(origin), -float64(angle))
		p := centre.Add(offset.Scale(pixelsPerMetre))
		placements = append(placements, Placement{
			ID:       b.ID,
			Left:     p.X,
			Top:      p.Y,
			Rotation: float64(motion.NormalizeHeading(b.Vector.Heading - angle)),
		})
	}
	return placements
}

// Rotate turns v by deg degrees using the standard rotation matrix.
func Rotate(v geom.XY, deg float64) geom.XY {
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return geom.XY{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

func position(v vector.Vector) geom.XY {
	return geom.XY{X: float64(v.X), Y: float64(v.Y)}
}
