package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanq16/speedprobe/internal/probe"
)

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}

func TestRecorder_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := New(reg)
	require.NoError(t, err)

	r.Observe(&probe.TransferReport{
		SourceURL:        "https://example.com/a",
		TotalBytes:       1048576,
		TotalTimeSeconds: 2,
		AverageSpeedMBps: 0.5,
		PeakSpeedMBps:    0.75,
	})

	assert.Equal(t, 1048576.0, testutil.ToFloat64(r.transferBytes.WithLabelValues("https://example.com/a")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.transferSeconds.WithLabelValues("https://example.com/a")))
	assert.Equal(t, 0.5, testutil.ToFloat64(r.averageSpeed.WithLabelValues("https://example.com/a")))
	assert.Equal(t, 0.75, testutil.ToFloat64(r.peakSpeed.WithLabelValues("https://example.com/a")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.transfersTotal.WithLabelValues("success")))
}

func TestRecorder_ObserveError(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := New(reg)
	require.NoError(t, err)

	r.ObserveError(&probe.TransferError{Kind: probe.ErrStream})
	r.ObserveError(&probe.TransferError{Kind: probe.ErrStream})
	r.ObserveError(&probe.TransferError{Kind: probe.ErrTimeout})

	assert.Equal(t, 3.0, testutil.ToFloat64(r.transfersTotal.WithLabelValues("error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("stream")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("timeout")))
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := New(reg)
	require.NoError(t, err)
	r.Observe(&probe.TransferReport{SourceURL: "https://example.com/a", AverageSpeedMBps: 9.5})

	path := filepath.Join(t.TempDir(), "speedprobe.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `speedprobe_average_speed_mbps{url="https://example.com/a"} 9.5`)
	assert.Contains(t, string(data), `speedprobe_transfers_total{result="success"} 1`)
}
