package telemetry

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadre-oss/sherpa/internal/config"
)

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, slog.LevelInfo)

	l.Debug("hidden")
	l.Info("shown", "agent", "sherpa")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "agent=sherpa")
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, slog.LevelDebug).WithFields(map[string]interface{}{"session": "abc"})

	l.Warn("careful")
	assert.Contains(t, buf.String(), "session=abc")
}

func TestNewLoggerFromConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "sherpa.log")

	l, err := NewLoggerFromConfig(config.LoggingConfig{Level: "warn", Format: "json", File: path}, false)
	require.NoError(t, err)

	l.Info("dropped")
	l.Error("kept", "code", 7)
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &line))
	assert.Equal(t, "kept", line["msg"])
}

func TestMetrics_Summary(t *testing.T) {
	m := NewMetrics()
	m.IncDecisions()
	m.IncDecisions()
	m.IncActionCalls()
	m.IncActionFailures()
	m.IncAPIRequests()
	m.IncContextBuilds()
	m.RecordActionLatency(10 * time.Millisecond)
	m.RecordActionLatency(30 * time.Millisecond)

	s := m.GetSummary()
	assert.Equal(t, int64(2), s["decisions"])
	assert.Equal(t, int64(1), s["action_calls"])
	assert.Equal(t, int64(1), s["action_failures"])
	assert.Equal(t, int64(20), s["avg_action_latency_ms"])
	assert.NotContains(t, s, "avg_api_latency_ms")

	m.Reset()
	assert.Equal(t, int64(0), m.GetSummary()["decisions"])
}

func TestMetrics_FlushWithoutExporter(t *testing.T) {
	assert.NoError(t, NewMetrics().Flush("run.completed", nil))
}

func TestJSONLExporter_Flush(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".sherpa", "metrics.jsonl")
	exporter, err := NewJSONLExporter(path)
	require.NoError(t, err)

	m := NewMetrics()
	m.SetExporter(exporter)
	m.IncActionCalls()

	require.NoError(t, m.Flush("run.completed", map[string]string{"agent": "sherpa"}))
	require.NoError(t, m.Flush("run.failed", nil))
	require.NoError(t, exporter.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var snapshots []MetricsSnapshot
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var s MetricsSnapshot
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &s))
		snapshots = append(snapshots, s)
	}
	require.Len(t, snapshots, 2)
	assert.Equal(t, "run.completed", snapshots[0].Event)
	assert.Equal(t, "sherpa", snapshots[0].Labels["agent"])
	assert.EqualValues(t, 1, snapshots[0].Metrics["action_calls"])
	assert.Equal(t, "run.failed", snapshots[1].Event)
}
