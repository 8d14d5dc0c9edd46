package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tanq16/speedprobe/internal/metrics"
	"github.com/tanq16/speedprobe/internal/output"
	"github.com/tanq16/speedprobe/internal/probe"
	"github.com/tanq16/speedprobe/internal/source"
	"github.com/tanq16/speedprobe/internal/utils"
)

// ProgressDisplay receives progress for the running job; Done is called once the job ends.
type ProgressDisplay interface {
	probe.Observer
	Done()
}

type Options struct {
	HTTPConfig   utils.HTTPClientConfig
	StallTimeout time.Duration
	Resolver     *source.Resolver
	Doer         utils.HTTPDoer
	Display      ProgressDisplay
	Recorder     *metrics.Recorder
	Summary      *output.Summary
	OnReport     func(job utils.ProbeJob, report *probe.TransferReport)
}

type Result struct {
	Job    utils.ProbeJob
	Report *probe.TransferReport
	Err    error
}

type outcome struct {
	report *probe.TransferReport
	err    error
}

// Run executes the jobs one after another. Each probe runs on its own
// goroutine while Run waits for it; cancelling ctx stops the current probe
// and skips the remaining jobs.
func Run(ctx context.Context, jobs []utils.ProbeJob, opts Options) ([]Result, error) {
	if opts.Resolver == nil {
		opts.Resolver = source.NewResolver(source.S3Config{})
	}
	if opts.Doer == nil {
		opts.Doer = utils.NewProbeHTTPClient(opts.HTTPConfig)
	}
	results := make([]Result, 0, len(jobs))
	var errs []error
	for _, job := range jobs {
		if job.ID == "" {
			job.ID = uuid.NewString()
		}
		if job.SinkPath == "" {
			job.SinkPath = utils.DefaultSinkName
		}
		var res Result
		if ctx.Err() != nil {
			res = Result{Job: job, Err: &probe.TransferError{Kind: probe.ErrCancelled, Err: errors.New("skipped")}}
		} else {
			report, err := runJob(ctx, job, opts)
			res = Result{Job: job, Report: report, Err: err}
		}
		record(res, opts)
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", jobName(res.Job), res.Err))
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

func runJob(ctx context.Context, job utils.ProbeJob, opts Options) (*probe.TransferReport, error) {
	logger := log.With().Str("op", "scheduler/run").Str("job", job.ID).Logger()
	target, err := opts.Resolver.Resolve(ctx, job.URL)
	if err != nil {
		return nil, &probe.TransferError{Kind: probe.ErrConnection, Err: fmt.Errorf("error resolving source: %w", err)}
	}
	probeOpts := []probe.Option{
		probe.WithStallTimeout(opts.StallTimeout),
		probe.WithLogger(logger),
	}
	if opts.Display != nil {
		probeOpts = append(probeOpts, probe.WithObserver(opts.Display))
		defer opts.Display.Done()
	}
	p := probe.New(opts.Doer, probeOpts...)

	logger.Info().Str("url", job.URL).Str("sink", job.SinkPath).Msg("starting speed test")
	outcomeCh := make(chan outcome, 1)
	go func() {
		report, err := p.Run(ctx, probe.TransferRequest{SourceURL: target, SinkPath: job.SinkPath})
		outcomeCh <- outcome{report: report, err: err}
	}()
	out := <-outcomeCh
	if out.report != nil {
		// presigned URLs carry credentials; report what the user asked for
		out.report.SourceURL = job.URL
	}
	return out.report, out.err
}

func record(res Result, opts Options) {
	name := jobName(res.Job)
	if res.Err != nil {
		log.Error().Str("op", "scheduler/run").Str("job", res.Job.ID).Err(res.Err).Msg("speed test failed")
		if opts.Recorder != nil {
			opts.Recorder.ObserveError(res.Err)
		}
		if opts.Summary != nil {
			opts.Summary.ReportError(name, res.Err)
		}
		return
	}
	if opts.Recorder != nil {
		opts.Recorder.Observe(res.Report)
	}
	if opts.Summary != nil {
		opts.Summary.Complete(name)
	}
	if opts.OnReport != nil {
		opts.OnReport(res.Job, res.Report)
	}
}

func jobName(job utils.ProbeJob) string {
	if job.Preset != "" {
		return job.Preset
	}
	return job.URL
}
