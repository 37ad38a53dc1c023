package telemetry

import (
	"compress/gzip"
	"context"
	"io"
	"os"
	"testing"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/traveller-vtt/dv/internal/config"
	"github.com/traveller-vtt/dv/internal/vector"
	"github.com/traveller-vtt/dv/pkg/core"
)

func unreachableConfig(t *testing.T) config.TelemetryConfig {
	return config.TelemetryConfig{
		Enabled:   true,
		Protocol:  "http",
		Host:      "127.0.0.1",
		Port:      "1",
		Org:       "dv",
		Bucket:    "dv_tracks",
		BackupDir: t.TempDir(),
	}
}

func TestShipPoint(t *testing.T) {
	tok := core.Token{ID: "t1", PageID: "p1", Name: "!Beowulf"}
	v := vector.Vector{X: 360, Y: -20, Heading: 90, XV: 1, YV: 0}
	ts := time.Unix(1700000000, 0)

	line := influxdb2_write.PointToLineProtocol(ShipPoint(tok, v, "move", ts), time.Nanosecond)

	assert.Contains(t, line, Measurement+",")
	assert.Contains(t, line, "token=t1")
	assert.Contains(t, line, "page=p1")
	assert.Contains(t, line, "command=move")
	assert.Contains(t, line, "x=360i")
	assert.Contains(t, line, "y=-20i")
	assert.Contains(t, line, "heading=90i")
	assert.Contains(t, line, "1700000000000000000")
}

func TestConnectDisabled(t *testing.T) {
	m := NewManager(config.TelemetryConfig{}, zerolog.Nop())
	assert.Error(t, m.Connect(context.Background()))
}

func TestWritePointWithoutConnect(t *testing.T) {
	m := NewManager(unreachableConfig(t), zerolog.Nop())
	err := m.WritePoint(ShipPoint(core.Token{ID: "t1"}, vector.Vector{}, "move", time.Now()))
	assert.Error(t, err)
}

func TestBackupFallback(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	m := NewManager(unreachableConfig(t), zerolog.Nop())
	require.NoError(t, m.Connect(ctx))
	assert.False(t, m.IsValid)
	require.NotEmpty(t, m.BackupPath)

	m.RecordShip(ctx, core.Token{ID: "t1", PageID: "p1", Name: "!Beowulf"}, vector.Vector{X: 5}, "thrust")
	require.NoError(t, m.Flush())
	require.NoError(t, m.Close())

	f, err := os.Open(m.BackupPath)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(gz)
	require.NoError(t, err)

	assert.Contains(t, string(data), "command=thrust")
	assert.Contains(t, string(data), "x=5i")
}

func TestRunStopsOnCancel(t *testing.T) {
	m := NewManager(unreachableConfig(t), zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, 10*time.Millisecond) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	r.RecordShip(context.Background(), core.Token{}, vector.Vector{}, "move")
}
