package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanq16/speedprobe/internal/probe"
)

func ptr(f float64) *float64 { return &f }

func TestRenderReport(t *testing.T) {
	t.Run("all fields", func(t *testing.T) {
		out := RenderReport(&probe.TransferReport{
			SourceURL:        "https://example.com/100MB.bin",
			TotalMegabytes:   100,
			TotalTimeSeconds: 8.5,
			AverageSpeedMBps: 11.7647,
			PeakSpeedMBps:    13.2,
			TimeTo50Seconds:  ptr(4.1),
			TimeTo100Seconds: ptr(8.5),
			CleanupSucceeded: true,
		})
		assert.Contains(t, out, "Network Speed Test Report")
		assert.Contains(t, out, "https://example.com/100MB.bin")
		assert.Contains(t, out, "100.00 MB")
		assert.Contains(t, out, "8.50 seconds")
		assert.Contains(t, out, "11.76 MB/s")
		assert.Contains(t, out, "13.20 MB/s")
		assert.Contains(t, out, "Time to 50%")
		assert.Contains(t, out, "4.10 s")
		assert.Contains(t, out, "File deleted after test")
	})

	t.Run("missing milestones and failed cleanup", func(t *testing.T) {
		out := RenderReport(&probe.TransferReport{SourceURL: "u", TotalTimeSeconds: 1})
		assert.NotContains(t, out, "Time to 50%")
		assert.NotContains(t, out, "Time to 100%")
		assert.Contains(t, out, "File not deleted")
	})
}

func TestReportJSON(t *testing.T) {
	data, err := ReportJSON(&probe.TransferReport{SourceURL: "u", TotalMegabytes: 1, TimeTo100Seconds: ptr(1)})
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "u", decoded["source_url"])
	assert.Equal(t, 1.0, decoded["time_to_100_seconds"])
	_, has50 := decoded["time_to_50_seconds"]
	assert.False(t, has50)
}

func TestPrintProgressBar(t *testing.T) {
	tests := []struct {
		name    string
		percent int
		filled  int
	}{
		{name: "empty", percent: 0, filled: 0},
		{name: "half", percent: 50, filled: 10},
		{name: "full", percent: 100, filled: 20},
		{name: "clamped high", percent: 150, filled: 20},
		{name: "clamped low", percent: -5, filled: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := PrintProgressBar(tt.percent, 20)
			assert.Equal(t, tt.filled, strings.Count(bar, StyleSymbols["hline"]))
		})
	}
}

func TestConsoleObserver(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleObserver(&buf)
	c.width = func() int { return 100 }

	c.OnProgress(probe.Progress{Percent: 25, CurrentSpeedMBps: 3.5, BytesTransferred: 25 << 20, TotalBytes: 100 << 20})
	c.OnProgress(probe.Progress{Percent: 50, CurrentSpeedMBps: 4.25, BytesTransferred: 50 << 20, TotalBytes: 100 << 20})
	c.Done()

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "\r"))
	assert.Contains(t, out, "3.50 MB/s")
	assert.Contains(t, out, "4.25 MB/s")
	assert.Contains(t, out, "25.00 MB / 100.00 MB")
	assert.Contains(t, out, "50.00 MB / 100.00 MB")
	assert.Contains(t, out, "(50% complete)")
	assert.True(t, strings.HasSuffix(out, "\n"))

	buf.Reset()
	c.Done()
	assert.Empty(t, buf.String())
}

func TestConsoleObserver_PadsByVisibleWidth(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleObserver(&buf)
	c.width = func() int { return 100 }

	c.OnProgress(probe.Progress{Percent: 90, CurrentSpeedMBps: 1234.5, BytesTransferred: 900 << 20, TotalBytes: 1000 << 20})
	c.OnProgress(probe.Progress{Percent: 5, CurrentSpeedMBps: 1.5, BytesTransferred: 5 << 10, TotalBytes: 100 << 10})

	lines := strings.Split(buf.String(), "\r")
	require.Len(t, lines, 3)
	assert.Greater(t, len(lines[1]), lipgloss.Width(lines[1]))
	assert.Equal(t, lipgloss.Width(lines[1]), lipgloss.Width(lines[2]))
}

func TestConsoleObserver_UnknownTotal(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleObserver(&buf)
	c.width = func() int { return 100 }

	c.OnProgress(probe.Progress{Percent: 100, BytesTransferred: 2048})
	assert.Contains(t, buf.String(), "2.00 KB")
	assert.NotContains(t, buf.String(), " / ")
}

func TestSummary(t *testing.T) {
	s := NewSummary()
	s.Complete("light")
	s.ReportError("heavy", errors.New("stream error: connection reset"))

	var buf bytes.Buffer
	s.Show(&buf)
	out := buf.String()
	assert.Equal(t, 1, s.Failures())
	assert.Contains(t, out, "Completed 1 of 2")
	assert.Contains(t, out, "Failed 1 of 2")
	assert.Contains(t, out, "Test: heavy")
	assert.Contains(t, out, "connection reset")
}
