package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Connections     func() int
	Handled         func() int
	Failed          func() int
	ScaleKm         func() int
	TelemetryOnline func() bool
	StatusFile      string
	Logger          zerolog.Logger
}

// Status is a snapshot of the running service.
type Status struct {
	Time            time.Time `json:"time"`
	UptimeSeconds   int64     `json:"uptimeSeconds"`
	Connections     int       `json:"connections"`
	CommandsHandled int       `json:"commandsHandled"`
	CommandsFailed  int       `json:"commandsFailed"`
	ScaleKm         int       `json:"scaleKm"`
	TelemetryOnline bool      `json:"telemetryOnline"`
}

// Service manages status monitoring
type Service struct {
	deps    Dependencies
	started time.Time

	mu        sync.RWMutex
	isRunning bool
	last      Status
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	return &Service{deps: deps, started: time.Now()}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Last returns the most recent snapshot written by Run.
func (s *Service) Last() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// GetStatus takes a snapshot. Nil dependencies read as zero.
func (s *Service) GetStatus(now time.Time) Status {
	st := Status{
		Time:          now,
		UptimeSeconds: int64(now.Sub(s.started).Seconds()),
	}
	if s.deps.Connections != nil {
		st.Connections = s.deps.Connections()
	}
	if s.deps.Handled != nil {
		st.CommandsHandled = s.deps.Handled()
	}
	if s.deps.Failed != nil {
		st.CommandsFailed = s.deps.Failed()
	}
	if s.deps.ScaleKm != nil {
		st.ScaleKm = s.deps.ScaleKm()
	}
	if s.deps.TelemetryOnline != nil {
		st.TelemetryOnline = s.deps.TelemetryOnline()
	}
	return st
}

// WriteStatus replaces the status file with st.
func (s *Service) WriteStatus(st Status) error {
	if s.deps.StatusFile == "" {
		return nil
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding status: %w", err)
	}
	if dir := filepath.Dir(s.deps.StatusFile); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating status directory: %w", err)
		}
	}
	tmp := s.deps.StatusFile + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("error writing status file: %w", err)
	}
	return os.Rename(tmp, s.deps.StatusFile)
}

// Run writes a snapshot every interval until ctx is cancelled.
func (s *Service) Run(ctx context.Context, interval time.Duration) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
	}()

	s.deps.Logger.Debug().Str("statusFile", s.deps.StatusFile).Dur("interval", interval).
		Msg("Starting status monitor")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			st := s.GetStatus(now)
			s.mu.Lock()
			s.last = st
			s.mu.Unlock()

			if err := s.WriteStatus(st); err != nil {
				s.deps.Logger.Error().Err(err).Msg("Error writing status file")
			}
			s.deps.Logger.Trace().
				Int("connections", st.Connections).
				Int("handled", st.CommandsHandled).
				Int("failed", st.CommandsFailed).
				Msg("status")
		}
	}
}
