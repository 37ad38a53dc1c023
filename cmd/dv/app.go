package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/traveller-vtt/dv/internal/chat"
	"github.com/traveller-vtt/dv/internal/config"
	"github.com/traveller-vtt/dv/internal/dispatcher"
	"github.com/traveller-vtt/dv/internal/handlers"
	"github.com/traveller-vtt/dv/internal/logging"
	"github.com/traveller-vtt/dv/internal/session"
	"github.com/traveller-vtt/dv/internal/storage"
	"github.com/traveller-vtt/dv/internal/telemetry"
)

// app holds the wired service components shared by the commands.
type app struct {
	log     zerolog.Logger
	logFile *os.File

	store    storage.Backend
	outbox   *chat.Outbox
	session  *session.Session
	d        *dispatcher.Dispatcher
	handlers *handlers.Service
	tracks   *telemetry.Manager
}

// loadConfig reads and validates the configuration in configDir.
func loadConfig() error {
	if err := config.Load(configDir); err != nil {
		return err
	}
	return config.Validate()
}

// newLogger builds the service logger. console may be nil.
func newLogger(console io.Writer, name string) (zerolog.Logger, *os.File, error) {
	lc := config.GetLoggingConfig()
	level := lc.Level
	if verbose {
		level = "debug"
	}

	var file *os.File
	if lc.Dir != "" {
		if err := os.MkdirAll(lc.Dir, 0755); err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("error creating logs directory: %w", err)
		}
		var err error
		file, err = os.OpenFile(logging.LogFilePath(lc.Dir, name, time.Now()), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("error opening log file: %w", err)
		}
	}

	opts := logging.Options{
		Level:   level,
		Console: console,
	}
	if file != nil {
		opts.File = file
	}
	if lc.GraylogEnabled {
		opts.GraylogAddress = lc.GraylogAddress
	}

	log, err := logging.Setup(opts)
	if err != nil {
		if file != nil {
			file.Close()
		}
		return zerolog.Nop(), nil, err
	}
	return log, file, nil
}

// newApp loads configuration and wires the store, dispatcher and handlers.
// Telemetry is connected only when withTelemetry is set.
func newApp(ctx context.Context, console io.Writer, name string, withTelemetry bool) (*app, error) {
	if err := loadConfig(); err != nil {
		return nil, err
	}
	log, logFile, err := newLogger(console, name)
	if err != nil {
		return nil, err
	}
	a := &app{log: log, logFile: logFile, outbox: chat.NewOutbox()}

	a.store, err = storage.NewBackend(config.GetStorageConfig(), config.GetDBConfig(), log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	game := config.GetGameConfig()
	if game.PlayerPageID != "" {
		if err := a.store.SetPlayerPage(ctx, game.PlayerPageID); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to set player page: %w", err)
		}
	}

	var tracks telemetry.Recorder = telemetry.Nop{}
	if tc := config.GetTelemetryConfig(); withTelemetry && tc.Enabled {
		m := telemetry.NewManager(tc, log.With().Str("component", "telemetry").Logger())
		if err := m.Connect(ctx); err != nil {
			log.Warn().Err(err).Msg("ship track telemetry disabled")
		} else {
			a.tracks = m
			tracks = m
		}
	}

	a.d, err = dispatcher.New(logging.NewCommandLogger(log))
	if err != nil {
		a.Close()
		return nil, err
	}

	a.session = session.New(game.DefaultScaleKm)
	a.handlers = handlers.NewService(handlers.Dependencies{
		Store:   a.store,
		Chat:    a.outbox,
		Session: a.session,
		Tracks:  tracks,
		Logger:  log.With().Str("component", "handlers").Logger(),
	})
	a.handlers.Register(a.d)

	log.Debug().Int("commands", a.d.Commands()).Str("storage", config.GetStorageConfig().Type).Msg("service wired")
	return a, nil
}

// Close releases everything newApp opened.
func (a *app) Close() error {
	var firstErr error
	if a.tracks != nil {
		if err := a.tracks.Close(); err != nil {
			firstErr = err
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// consoleWriter returns stderr when verbose logging is on, nil otherwise.
func consoleWriter() io.Writer {
	if verbose {
		return os.Stderr
	}
	return nil
}
