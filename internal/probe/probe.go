package probe

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/tanq16/speedprobe/internal/utils"
)

var errStalled = errors.New("no bytes received within stall timeout")

// Probe measures the throughput of a single sequential HTTP GET. One Probe
// runs one transfer at a time.
type Probe struct {
	client       utils.HTTPDoer
	observer     Observer
	clock        Clock
	fs           afero.Fs
	stallTimeout time.Duration
	interval     time.Duration
	logger       zerolog.Logger
}

type Option func(*Probe)

func WithObserver(o Observer) Option {
	return func(p *Probe) { p.observer = o }
}

func WithClock(c Clock) Option {
	return func(p *Probe) { p.clock = c }
}

// WithFs sets the filesystem the sink file lives on.
func WithFs(fs afero.Fs) Option {
	return func(p *Probe) { p.fs = fs }
}

func WithStallTimeout(d time.Duration) Option {
	return func(p *Probe) {
		if d > 0 {
			p.stallTimeout = d
		}
	}
}

func WithReportInterval(d time.Duration) Option {
	return func(p *Probe) {
		if d > 0 {
			p.interval = d
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(p *Probe) { p.logger = l }
}

func New(client utils.HTTPDoer, opts ...Option) *Probe {
	p := &Probe{
		client:       client,
		clock:        systemClock{},
		fs:           afero.NewOsFs(),
		stallTimeout: utils.DefaultStallTimeout,
		interval:     utils.ReportInterval,
		logger:       log.Logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run downloads req.SourceURL into req.SinkPath, measures it and removes the
// sink. It returns either a report or a *TransferError, never both.
func (p *Probe) Run(ctx context.Context, req TransferRequest) (*TransferReport, error) {
	logger := p.logger.With().Str("op", "probe/run").Str("url", req.SourceURL).Logger()
	if err := ctx.Err(); err != nil {
		return nil, &TransferError{Kind: ErrCancelled, Err: err}
	}

	reqCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	stall := time.AfterFunc(p.stallTimeout, func() { cancel(errStalled) })
	defer stall.Stop()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodGet, req.SourceURL, nil)
	if err != nil {
		return nil, newError(ErrConnection, "error creating GET request: %w", err)
	}
	logger.Debug().Msg("opening connection")
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, p.classify(ctx, reqCtx, ErrConnection, "error executing GET request", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newError(ErrConnection, "unexpected status code: %d", resp.StatusCode)
	}
	if resp.ContentLength < 0 {
		return nil, newError(ErrSizeUnknown, "server did not provide Content-Length")
	}
	logger.Debug().Int64("contentLength", resp.ContentLength).Msg("response received")

	sink, err := p.fs.Create(req.SinkPath)
	if err != nil {
		return nil, newError(ErrStream, "error creating sink file: %w", err)
	}
	report, err := p.stream(ctx, reqCtx, stall, resp.Body, sink, resp.ContentLength)
	closeErr := sink.Close()
	if err == nil && closeErr != nil {
		err = newError(ErrStream, "error closing sink file: %w", closeErr)
	}
	if err != nil {
		if rmErr := p.fs.Remove(req.SinkPath); rmErr != nil {
			logger.Warn().Err(rmErr).Str("sink", req.SinkPath).Msg("could not remove partial sink file")
		}
		logger.Debug().Err(err).Msg("transfer failed")
		return nil, err
	}

	report.SourceURL = req.SourceURL
	report.CleanupSucceeded = p.removeSink(req.SinkPath, logger)
	logger.Info().Float64("avgMBps", report.AverageSpeedMBps).Float64("peakMBps", report.PeakSpeedMBps).Msg("transfer complete")
	return report, nil
}

func (p *Probe) stream(ctx, reqCtx context.Context, stall *time.Timer, body io.Reader, sink io.Writer, contentLength int64) (*TransferReport, error) {
	buffer := make([]byte, utils.BufferSize)
	start := p.clock.Now()
	stall.Reset(p.stallTimeout)
	acc := NewAccumulator(contentLength, start, p.interval)
	var received int64
	for {
		if reqCtx.Err() != nil {
			return nil, p.classify(ctx, reqCtx, ErrStream, "transfer interrupted", context.Cause(reqCtx))
		}
		bytesRead, readErr := body.Read(buffer)
		if bytesRead > 0 {
			if _, writeErr := sink.Write(buffer[:bytesRead]); writeErr != nil {
				return nil, newError(ErrStream, "error writing to sink file: %w", writeErr)
			}
			stall.Reset(p.stallTimeout)
			received += int64(bytesRead)
			progress, emit := acc.Add(TransferSample{
				Bytes:      bytesRead,
				Cumulative: received,
				At:         p.clock.Now(),
			})
			if emit && p.observer != nil {
				p.observer.OnProgress(progress)
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			return nil, p.classify(ctx, reqCtx, ErrStream, "error reading response body", readErr)
		}
	}
	return acc.Finish(p.clock.Now())
}

// classify maps a transport error onto an error kind. The stall timer and the
// caller's context both cancel reqCtx, so the cause decides which one it was.
func (p *Probe) classify(ctx, reqCtx context.Context, fallback error, msg string, err error) *TransferError {
	if errors.Is(context.Cause(reqCtx), errStalled) {
		return newError(ErrTimeout, "%s: %w", msg, errStalled)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return newError(ErrCancelled, "%s: %w", msg, ctxErr)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newError(ErrTimeout, "%s: %w", msg, err)
	}
	return newError(fallback, "%s: %w", msg, err)
}

func (p *Probe) removeSink(path string, logger zerolog.Logger) bool {
	if err := p.fs.Remove(path); err != nil {
		logger.Warn().Err(err).Str("sink", path).Msg("could not remove sink file")
		return false
	}
	logger.Debug().Str("sink", path).Msg("sink file removed")
	return true
}

// Cleanup removes a sink left behind by an earlier run. A missing file is not an error.
func (p *Probe) Cleanup(path string) error {
	if err := p.fs.Remove(path); err != nil && !errors.Is(err, afero.ErrFileNotFound) {
		return err
	}
	return nil
}
