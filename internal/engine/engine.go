// Package engine coordinates probing all the configured targets.
//
// The engine fans a bounded pool of workers out over the target list
// and waits for every worker to finish before returning: barring a
// user initiated cancellation, callers always observe one result per
// target, never a partial set. Result order reflects completion and
// is not significant; the scoring package imposes the final order.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dnsarena/probe-cli/internal/dnsrtt"
	"github.com/dnsarena/probe-cli/internal/model"
	"github.com/dnsarena/probe-cli/internal/pingx"
	"github.com/dnsarena/probe-cli/internal/reach"
	"github.com/google/uuid"
)

// LatencyProber measures round trip latency for one target. The
// pingx.Prober implements this interface.
type LatencyProber interface {
	Measure(ctx context.Context, address string) (*model.PingSummary, error)
}

// DNSProber measures DNS roundtrip latency for one target. The
// dnsrtt.Prober implements this interface.
type DNSProber interface {
	Measure(ctx context.Context, address string) *model.DNSProbeResult
}

// Runner probes a list of targets concurrently.
//
// The zero value is invalid: use NewRunner or fill all fields.
type Runner struct {
	// Callbacks is the MANDATORY progress sink.
	Callbacks model.Callbacks

	// Config is the MANDATORY run configuration.
	Config *model.RunConfiguration

	// DNS is the MANDATORY DNS roundtrip prober.
	DNS DNSProber

	// Latency is the MANDATORY latency prober.
	Latency LatencyProber

	// Logger is the MANDATORY logger to use.
	Logger model.Logger
}

// NewRunner creates a [Runner] wired to the real probers. Passing a
// nil callbacks uses callbacks printing progress through the logger.
func NewRunner(config *model.RunConfiguration, logger model.Logger, callbacks model.Callbacks) *Runner {
	logger = model.ValidLoggerOrDefault(logger)
	if callbacks == nil {
		callbacks = model.NewPrinterCallbacks(logger)
	}
	return &Runner{
		Callbacks: callbacks,
		Config:    config,
		DNS:       dnsrtt.NewProber(logger, config.Timeout),
		Latency:   pingx.NewProber(config, logger, reach.NewProber(logger, config.Timeout)),
		Logger:    logger,
	}
}

// Run probes every target and returns the collected results. Each
// target occupies its own result slot, so workers never contend on
// shared state, and a sync.WaitGroup provides the fan-in barrier.
// Cancelling the context is the only early exit: submission stops,
// in-flight probes finish quickly because they honour the context,
// and the compacted results come back with Interrupted set.
func (r *Runner) Run(ctx context.Context, targets []model.Target) *model.RunResult {
	start := time.Now()
	result := &model.RunResult{
		ID:        uuid.Must(uuid.NewRandom()).String(),
		StartTime: start,
	}
	if len(targets) < 1 {
		return result
	}
	workers := r.workerCount(len(targets))
	r.Logger.Debugf("engine: run %s: %d targets, %d workers", result.ID, len(targets), workers)
	slots := make([]*model.TestResult, len(targets))
	jobs := make(chan int)
	var (
		completed atomic.Int64
		wg        sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobs {
				slots[index] = r.probeTarget(ctx, targets[index])
				percentage := float64(completed.Add(1)) / float64(len(targets))
				r.Callbacks.OnProgress(percentage, fmt.Sprintf("tested %s", targets[index].Name))
			}
		}()
	}
	interrupted := false
submission:
	for index := range targets {
		select {
		case jobs <- index:
		case <-ctx.Done():
			interrupted = true
			break submission
		}
	}
	close(jobs)
	wg.Wait()
	for _, entry := range slots {
		if entry != nil {
			result.Results = append(result.Results, entry)
		}
	}
	result.Interrupted = interrupted
	result.Runtime = time.Since(start).Seconds()
	return result
}

// probeTarget runs the probing pipeline for a single target. A panic
// inside a prober is contained here and recorded as a failed result,
// so that one broken target cannot abort the batch.
func (r *Runner) probeTarget(ctx context.Context, target model.Target) (out *model.TestResult) {
	out = &model.TestResult{Target: target}
	defer func() {
		if rec := recover(); rec != nil {
			r.Logger.Warnf("engine: %s: panic: %v", target.Name, rec)
			out.Ping = nil
			out.DNS = nil
			out.Failure = model.NewFailure(model.FailureUnexpected)
		}
	}()
	summary, err := r.Latency.Measure(ctx, target.Address)
	if err != nil {
		r.Logger.Debugf("engine: %s: %s", target.Name, err.Error())
		out.Failure = model.NewFailure(failureString(err))
		if errors.Is(err, pingx.ErrUnreachable) {
			// The target refused even a TCP connection: the DNS
			// probe would just burn its whole timeout budget.
			return
		}
		out.DNS = r.DNS.Measure(ctx, target.Address)
		return
	}
	out.Ping = summary
	out.DNS = r.DNS.Measure(ctx, target.Address)
	return
}

// failureString maps a latency prober error to a failure string.
func failureString(err error) string {
	switch {
	case errors.Is(err, pingx.ErrUnreachable):
		return model.FailureTCPUnreachable
	case errors.Is(err, pingx.ErrNoSamples):
		return model.FailurePingNoSamples
	default:
		return model.FailureUnexpected
	}
}

func (r *Runner) workerCount(targets int) int {
	workers := r.Config.MaxWorkers
	if workers > targets {
		workers = targets
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}
