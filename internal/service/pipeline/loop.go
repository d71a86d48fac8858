// Package pipeline drives the acquire → detect → filter → build → notify cycle.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Bajtii/Object-detection/internal/classes"
	"github.com/Bajtii/Object-detection/internal/logger"

	"github.com/benbjohnson/clock"
	"github.com/cenkalti/backoff/v4"
)

// Status is the result class of one cycle.
type Status string

const (
	StatusNotified   Status = "notified"
	StatusSuppressed Status = "suppressed"
	StatusNoMessage  Status = "no_message"
	StatusSkipped    Status = "skipped"
)

// Stage names where a skipped cycle failed.
type Stage string

const (
	StageAcquire Stage = "acquire"
	StageDetect  Stage = "detect"
	StageNotify  Stage = "notify"
)

// CycleResult describes how a single cycle ended. Err is set only for
// skipped cycles.
type CycleResult struct {
	Status     Status
	Stage      Stage
	Message    string
	Detections int
	Err        error
}

// Options configures a Loop.
type Options struct {
	Source   ImageSource
	Detector Detector
	Notifier Notifier
	Names    classes.Names
	Interest ClassesOfInterest
	TopK     int

	// Backoff paces cycles after consecutive acquisition failures.
	// nil means retry immediately.
	Backoff backoff.BackOff
	Clock   clock.Clock
	Logger  *logger.Logger
}

// Loop runs detection cycles until its context is cancelled.
type Loop struct {
	source   ImageSource
	detector Detector
	notifier Notifier
	names    classes.Names
	interest ClassesOfInterest
	topK     int
	backoff  backoff.BackOff
	clock    clock.Clock
	logger   *logger.Logger

	stats counters
}

// NewLoop builds a Loop from opts.
func NewLoop(opts Options) *Loop {
	l := &Loop{
		source:   opts.Source,
		detector: opts.Detector,
		notifier: opts.Notifier,
		names:    opts.Names,
		interest: opts.Interest,
		topK:     opts.TopK,
		backoff:  opts.Backoff,
		clock:    opts.Clock,
		logger:   opts.Logger,
	}
	if l.clock == nil {
		l.clock = clock.New()
	}
	if l.logger == nil {
		l.logger = logger.Nop()
	}
	return l
}

// NewFetchBackoff returns an exponential backoff capped at max that never
// gives up. Delays carry no jitter so max is a hard ceiling. A non-positive
// max disables pacing.
func NewFetchBackoff(max time.Duration) backoff.BackOff {
	if max <= 0 {
		return &backoff.ZeroBackOff{}
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = max
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Run loops until ctx is cancelled. Per-cycle failures never end the loop.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("Acquisition loop started")
	defer l.logger.Info("Acquisition loop stopped")

	for {
		if ctx.Err() != nil {
			return nil
		}

		result := l.RunCycle(ctx)
		l.logResult(ctx, result)

		if result.Status == StatusSkipped && result.Stage == StageAcquire {
			l.pause(ctx)
		} else if l.backoff != nil {
			l.backoff.Reset()
		}
	}
}

// RunCycle executes exactly one cycle. Collaborator errors and panics are
// reported in the result, never propagated.
func (l *Loop) RunCycle(ctx context.Context) (result CycleResult) {
	stage := StageAcquire
	defer func() {
		if r := recover(); r != nil {
			result = CycleResult{Status: StatusSkipped, Stage: stage, Err: fmt.Errorf("panic during %s: %v", stage, r)}
		}
		l.stats.record(result, l.clock.Now())
	}()

	frame, err := l.source.FetchFrame(ctx)
	if err != nil {
		return CycleResult{Status: StatusSkipped, Stage: StageAcquire, Err: err}
	}
	defer frame.Close()

	stage = StageDetect
	raw, err := l.detector.Detect(ctx, frame)
	if err != nil {
		return CycleResult{Status: StatusSkipped, Stage: StageDetect, Err: err}
	}

	batch := FilterBatch(LabelDetections(raw, l.names), l.interest)
	msg, ok := BuildMessage(batch, l.topK)
	if !ok {
		return CycleResult{Status: StatusNoMessage, Detections: len(raw)}
	}

	stage = StageNotify
	outcome, err := l.notifier.Notify(ctx, msg)
	switch {
	case err != nil:
		return CycleResult{Status: StatusSkipped, Stage: StageNotify, Message: msg, Detections: len(raw), Err: err}
	case outcome.Suppressed():
		return CycleResult{Status: StatusSuppressed, Message: msg, Detections: len(raw)}
	default:
		return CycleResult{Status: StatusNotified, Message: msg, Detections: len(raw)}
	}
}

// Stats returns a snapshot of the loop counters.
func (l *Loop) Stats() Stats {
	return l.stats.snapshot()
}

func (l *Loop) pause(ctx context.Context) {
	if l.backoff == nil {
		return
	}
	d := l.backoff.NextBackOff()
	if d <= 0 {
		return
	}

	timer := l.clock.Timer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (l *Loop) logResult(ctx context.Context, r CycleResult) {
	switch r.Status {
	case StatusSkipped:
		if errors.Is(r.Err, context.Canceled) && ctx.Err() != nil {
			return
		}
		switch r.Stage {
		case StageAcquire:
			l.logger.Warning("Frame acquisition failed: %v", r.Err)
		case StageDetect:
			l.logger.Error("Detection failed: %v", r.Err)
		case StageNotify:
			// already logged by the notifier
		}
	case StatusNotified:
		l.logger.Info("📣 %s", r.Message)
	default:
		l.logger.Debug("cycle %s (%d detections)", r.Status, r.Detections)
	}
}

// Stats are cumulative loop counters since process start.
type Stats struct {
	Cycles         int64     `json:"cycles"`
	Notified       int64     `json:"notified"`
	Suppressed     int64     `json:"suppressed"`
	NoMessage      int64     `json:"no_message"`
	AcquireErrors  int64     `json:"acquire_errors"`
	DetectErrors   int64     `json:"detect_errors"`
	DispatchErrors int64     `json:"dispatch_errors"`
	LastCycleAt    time.Time `json:"last_cycle_at"`
}

type counters struct {
	cycles, notified, suppressed, noMessage  atomic.Int64
	acquireErrors, detectErrors, dispatchErr atomic.Int64
	lastCycleAt                              atomic.Int64
}

func (c *counters) record(r CycleResult, at time.Time) {
	c.cycles.Add(1)
	c.lastCycleAt.Store(at.UnixNano())

	switch r.Status {
	case StatusNotified:
		c.notified.Add(1)
	case StatusSuppressed:
		c.suppressed.Add(1)
	case StatusNoMessage:
		c.noMessage.Add(1)
	case StatusSkipped:
		switch r.Stage {
		case StageAcquire:
			c.acquireErrors.Add(1)
		case StageDetect:
			c.detectErrors.Add(1)
		case StageNotify:
			c.dispatchErr.Add(1)
		}
	}
}

func (c *counters) snapshot() Stats {
	s := Stats{
		Cycles:         c.cycles.Load(),
		Notified:       c.notified.Load(),
		Suppressed:     c.suppressed.Load(),
		NoMessage:      c.noMessage.Load(),
		AcquireErrors:  c.acquireErrors.Load(),
		DetectErrors:   c.detectErrors.Load(),
		DispatchErrors: c.dispatchErr.Load(),
	}
	if ns := c.lastCycleAt.Load(); ns != 0 {
		s.LastCycleAt = time.Unix(0, ns)
	}
	return s
}
