// Package metrics exposes finished speed tests as prometheus series so they
// can be scraped from a node-exporter textfile directory.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tanq16/speedprobe/internal/probe"
)

const namespace = "speedprobe"

type Recorder struct {
	transferBytes   *prometheus.GaugeVec
	transferSeconds *prometheus.GaugeVec
	averageSpeed    *prometheus.GaugeVec
	peakSpeed       *prometheus.GaugeVec
	transfersTotal  *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		transferBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "transfer_bytes",
			Help:      "Bytes received by the last speed test of a URL",
		}, []string{"url"}),
		transferSeconds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "transfer_seconds",
			Help:      "Wall time of the last speed test of a URL",
		}, []string{"url"}),
		averageSpeed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "average_speed_mbps",
			Help:      "Average download speed in MB/s",
		}, []string{"url"}),
		peakSpeed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "peak_speed_mbps",
			Help:      "Peak instantaneous download speed in MB/s",
		}, []string{"url"}),
		transfersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_total",
			Help:      "Speed tests run, by result",
		}, []string{"result"}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Failed speed tests, by error kind",
		}, []string{"kind"}),
	}
	for _, c := range []prometheus.Collector{
		r.transferBytes, r.transferSeconds, r.averageSpeed, r.peakSpeed, r.transfersTotal, r.errorsTotal,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("error registering metric: %w", err)
		}
	}
	return r, nil
}

func (r *Recorder) Observe(report *probe.TransferReport) {
	r.transferBytes.WithLabelValues(report.SourceURL).Set(float64(report.TotalBytes))
	r.transferSeconds.WithLabelValues(report.SourceURL).Set(report.TotalTimeSeconds)
	r.averageSpeed.WithLabelValues(report.SourceURL).Set(report.AverageSpeedMBps)
	r.peakSpeed.WithLabelValues(report.SourceURL).Set(report.PeakSpeedMBps)
	r.transfersTotal.WithLabelValues("success").Inc()
}

func (r *Recorder) ObserveError(err error) {
	r.transfersTotal.WithLabelValues("error").Inc()
	r.errorsTotal.WithLabelValues(probe.KindLabel(err)).Inc()
}

// WriteTextfile writes everything g gathers in the text exposition format.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("error writing metrics file: %w", err)
	}
	return nil
}
