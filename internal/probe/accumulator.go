package probe

import (
	"time"
)

const bytesPerMegabyte = 1024 * 1024

// TransferSample is produced once per buffer read and folded into an Accumulator.
// Cumulative is the byte count of the whole stream including this chunk.
type TransferSample struct {
	Bytes      int
	Cumulative int64
	At         time.Time
}

// Progress is the notification handed to an Observer.
type Progress struct {
	Percent          int
	CurrentSpeedMBps float64
	BytesTransferred int64
	TotalBytes       int64
	Elapsed          time.Duration
}

// Accumulator holds the running statistics of one transfer. It is owned by a
// single transfer loop and is not safe for concurrent use.
type Accumulator struct {
	contentLength int64
	totalBytes    int64
	start         time.Time
	lastReport    time.Time
	interval      time.Duration
	currentMBps   float64
	peakMBps      float64
	percent       int
	checkpoint50  time.Time
	checkpoint100 time.Time
	reached50     bool
	reached100    bool
}

func NewAccumulator(contentLength int64, start time.Time, interval time.Duration) *Accumulator {
	return &Accumulator{
		contentLength: contentLength,
		start:         start,
		lastReport:    start,
		interval:      interval,
	}
}

// Add folds one sample into the running state. The returned bool is true when
// at least one interval has passed since the previous emission. Empty samples
// and a Cumulative below the running total leave the state untouched.
func (a *Accumulator) Add(s TransferSample) (Progress, bool) {
	elapsed := s.At.Sub(a.start)
	if s.Bytes <= 0 || s.Cumulative < a.totalBytes {
		return a.progress(elapsed), false
	}
	a.totalBytes = s.Cumulative
	// a sample below clock resolution has no defined speed and is skipped
	if elapsed > 0 {
		a.currentMBps = megabytes(a.totalBytes) / elapsed.Seconds()
		a.peakMBps = max(a.peakMBps, a.currentMBps)
	}
	a.percent = percentOf(a.totalBytes, a.contentLength)
	if a.percent >= 50 && !a.reached50 {
		a.checkpoint50 = s.At
		a.reached50 = true
	}
	if a.percent >= 100 && !a.reached100 {
		a.checkpoint100 = s.At
		a.reached100 = true
	}
	progress := a.progress(elapsed)
	if s.At.Sub(a.lastReport) >= a.interval {
		a.lastReport = s.At
		return progress, true
	}
	return progress, false
}

func (a *Accumulator) progress(elapsed time.Duration) Progress {
	return Progress{
		Percent:          min(a.percent, 100),
		CurrentSpeedMBps: a.currentMBps,
		BytesTransferred: a.totalBytes,
		TotalBytes:       a.contentLength,
		Elapsed:          elapsed,
	}
}

func (a *Accumulator) TotalBytes() int64 { return a.totalBytes }

func (a *Accumulator) PeakSpeedMBps() float64 { return a.peakMBps }

// Finish closes the transfer at end and builds the report body. SourceURL and
// CleanupSucceeded are left for the caller.
func (a *Accumulator) Finish(end time.Time) (*TransferReport, error) {
	if !a.reached100 {
		return nil, newError(ErrInconsistent, "stream ended after %d of %d bytes", a.totalBytes, a.contentLength)
	}
	totalTime := end.Sub(a.start)
	if totalTime <= 0 {
		return nil, newError(ErrInconsistent, "zero elapsed time for %d bytes", a.totalBytes)
	}
	totalMB := megabytes(a.totalBytes)
	report := &TransferReport{
		TotalBytes:       a.totalBytes,
		TotalMegabytes:   totalMB,
		TotalTimeSeconds: totalTime.Seconds(),
		AverageSpeedMBps: totalMB / totalTime.Seconds(),
		PeakSpeedMBps:    a.peakMBps,
	}
	if a.reached50 {
		report.TimeTo50Seconds = seconds(a.checkpoint50.Sub(a.start))
	}
	report.TimeTo100Seconds = seconds(a.checkpoint100.Sub(a.start))
	return report, nil
}

func megabytes(b int64) float64 {
	return float64(b) / bytesPerMegabyte
}

func seconds(d time.Duration) *float64 {
	s := d.Seconds()
	return &s
}

// percentOf is floor(done*100/total) split so the multiply cannot overflow
// for any realistic total. A zero total counts as complete once a byte arrives.
func percentOf(done, total int64) int {
	if total <= 0 {
		if done > 0 {
			return 100
		}
		return 0
	}
	return int(done/total*100 + (done%total)*100/total)
}
