package session

import (
	"sync"

	"github.com/traveller-vtt/dv/internal/geo"
)

// DefaultScaleKm is the map scale used until the first scale command.
const DefaultScaleKm = 10

// Session holds the state that lives for as long as the service runs.
type Session struct {
	mu      sync.RWMutex
	scaleKm int
}

// New creates a session at the given scale. Non-positive values fall back to
// DefaultScaleKm.
func New(scaleKm int) *Session {
	if scaleKm <= 0 {
		scaleKm = DefaultScaleKm
	}
	return &Session{scaleKm: scaleKm}
}

// ScaleKm returns the kilometres covered by one grid square.
func (s *Session) ScaleKm() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scaleKm
}

// ScaleMetres returns the metres covered by one grid square.
func (s *Session) ScaleMetres() float64 {
	return float64(s.ScaleKm()) * 1000
}

// SetScale changes the map scale. It reports false and leaves the scale
// untouched for non-positive values.
func (s *Session) SetScale(km int) bool {
	if km <= 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scaleKm = km
	return true
}

// PixelsPerMetre is the conversion factor the focus view applies to world offsets.
func (s *Session) PixelsPerMetre() float64 {
	return geo.PixelsPerSquare / s.ScaleMetres()
}
