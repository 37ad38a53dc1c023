package logging

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogFilePath(t *testing.T) {
	sessionStart := time.Date(2026, 2, 12, 21, 38, 36, 0, time.UTC)

	tests := []struct {
		name    string
		logsDir string
		logName string
		want    string
	}{
		{
			name:    "basic path",
			logsDir: "dvlogs",
			logName: "dv",
			want:    filepath.Join("dvlogs", "dv.20260212_213836.log"),
		},
		{
			name:    "relative path with dot",
			logsDir: "./dvlogs",
			logName: "dv",
			want:    filepath.Join(".", "dvlogs", "dv.20260212_213836.log"),
		},
		{
			name:    "absolute path",
			logsDir: filepath.Join("/var", "log", "dv"),
			logName: "dv",
			want:    filepath.Join("/var", "log", "dv", "dv.20260212_213836.log"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LogFilePath(tt.logsDir, tt.logName, sessionStart)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"Warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestSetup_FileSink(t *testing.T) {
	var file bytes.Buffer
	logger, err := Setup(Options{Level: "debug", File: &file})
	require.NoError(t, err)

	logger.Debug().Str("ship", "!Beowulf").Msg("moved")
	logger.Trace().Msg("hidden")

	out := file.String()
	assert.Contains(t, out, "moved")
	assert.Contains(t, out, "ship=!Beowulf")
	assert.Contains(t, out, "component=dv")
	assert.NotContains(t, out, "hidden")
	assert.NotContains(t, out, "\x1b[", "file output must not be colored")
}

func TestSetup_LevelFilters(t *testing.T) {
	var file bytes.Buffer
	logger, err := Setup(Options{Level: "warn", File: &file, Component: "server"})
	require.NoError(t, err)

	logger.Info().Msg("quiet")
	logger.Warn().Msg("loud")

	assert.NotContains(t, file.String(), "quiet")
	assert.Contains(t, file.String(), "loud")
	assert.Contains(t, file.String(), "component=server")
}

func TestSetup_NoSinks(t *testing.T) {
	logger, err := Setup(Options{})
	require.NoError(t, err)
	logger.Info().Msg("discarded")
}
