package scheduler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanq16/speedprobe/internal/metrics"
	"github.com/tanq16/speedprobe/internal/output"
	"github.com/tanq16/speedprobe/internal/probe"
	"github.com/tanq16/speedprobe/internal/utils"
)

type recordingDisplay struct {
	progress int
	done     int
}

func (d *recordingDisplay) OnProgress(p probe.Progress) { d.progress++ }
func (d *recordingDisplay) Done()                       { d.done++ }

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	payload := bytes.Repeat([]byte{0xAB}, 40000)
	mux := http.NewServeMux()
	mux.HandleFunc("/ok.bin", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		w.Write(payload)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRun(t *testing.T) {
	log.Logger = zerolog.Nop()

	t.Run("mixed results", func(t *testing.T) {
		srv := newServer(t)
		dir := t.TempDir()
		jobs := []utils.ProbeJob{
			{URL: srv.URL + "/ok.bin", SinkPath: filepath.Join(dir, "a.bin")},
			{Preset: "missing", URL: srv.URL + "/missing.bin", SinkPath: filepath.Join(dir, "b.bin")},
		}
		reg := prometheus.NewRegistry()
		rec, err := metrics.New(reg)
		require.NoError(t, err)
		summary := output.NewSummary()
		display := &recordingDisplay{}
		var reported []string

		results, err := Run(context.Background(), jobs, Options{
			Doer:     srv.Client(),
			Display:  display,
			Recorder: rec,
			Summary:  summary,
			OnReport: func(job utils.ProbeJob, report *probe.TransferReport) {
				reported = append(reported, report.SourceURL)
			},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, probe.ErrConnection)
		require.Len(t, results, 2)

		assert.NoError(t, results[0].Err)
		require.NotNil(t, results[0].Report)
		assert.Equal(t, int64(40000), results[0].Report.TotalBytes)
		assert.NotEmpty(t, results[0].Job.ID)
		assert.Nil(t, results[1].Report)
		assert.ErrorIs(t, results[1].Err, probe.ErrConnection)

		assert.Equal(t, []string{srv.URL + "/ok.bin"}, reported)
		assert.Equal(t, 1, summary.Failures())
		assert.Equal(t, 2, display.done)
		series, err := testutil.GatherAndCount(reg, "speedprobe_transfers_total", "speedprobe_errors_total")
		require.NoError(t, err)
		assert.Equal(t, 3, series)
	})

	t.Run("unresolvable source never starts a probe", func(t *testing.T) {
		display := &recordingDisplay{}
		results, err := Run(context.Background(), []utils.ProbeJob{{URL: "ftp://example.com/file"}}, Options{
			Doer:    http.DefaultClient,
			Display: display,
		})
		assert.ErrorIs(t, err, probe.ErrConnection)
		require.Len(t, results, 1)
		assert.Equal(t, utils.DefaultSinkName, results[0].Job.SinkPath)
		assert.Equal(t, 0, display.done)
	})

	t.Run("cancelled context skips all jobs", func(t *testing.T) {
		srv := newServer(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		summary := output.NewSummary()
		dir := t.TempDir()
		jobs := []utils.ProbeJob{
			{URL: srv.URL + "/ok.bin", SinkPath: filepath.Join(dir, "a.bin")},
			{URL: srv.URL + "/ok.bin", SinkPath: filepath.Join(dir, "b.bin")},
		}

		results, err := Run(ctx, jobs, Options{Doer: srv.Client(), Summary: summary})
		assert.ErrorIs(t, err, probe.ErrCancelled)
		require.Len(t, results, 2)
		for _, res := range results {
			assert.ErrorIs(t, res.Err, probe.ErrCancelled)
			assert.Nil(t, res.Report)
		}
		assert.Equal(t, 2, summary.Failures())
	})
}
