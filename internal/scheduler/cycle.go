package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"servicepulse/internal/domain"
	"servicepulse/internal/metrics"
	"servicepulse/internal/notify"
	"servicepulse/internal/probe"
	"servicepulse/internal/pubsub"
	"servicepulse/internal/repo"
)

// ErrCycleRunning is returned when a trigger arrives while a cycle is in
// flight. Triggers are rejected, never queued: overlapping cycles against
// the same services would race on status records and double-notify.
var ErrCycleRunning = errors.New("monitoring cycle already running")

// Summary is the per-cycle result surfaced to callers and logs.
type Summary struct {
	Checked   int       `json:"checked"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	StartedAt time.Time `json:"started_at"`
	Duration  string    `json:"duration"`
}

// Orchestrator runs one monitoring cycle at a time: load services, fan out
// probes, persist results, detect transitions, route and dispatch. It is a
// two-state machine (idle/running); all dependencies are injected.
type Orchestrator struct {
	Logger     *zap.Logger
	Store      repo.Store
	Publisher  pubsub.Publisher
	Fanout     *Fanout
	Detector   *Detector
	Router     *notify.Router
	Dispatcher *notify.Dispatcher

	mu      sync.Mutex
	running bool
	last    *Summary
}

func NewOrchestrator(
	logger *zap.Logger,
	store repo.Store,
	publisher pubsub.Publisher,
	checker probe.Checker,
	mailer notify.Mailer,
	concurrency int,
) *Orchestrator {
	return &Orchestrator{
		Logger:     logger,
		Store:      store,
		Publisher:  publisher,
		Fanout:     NewFanout(logger, checker, concurrency),
		Detector:   NewDetector(store),
		Router:     notify.NewRouter(store, logger),
		Dispatcher: notify.NewDispatcher(store, publisher, mailer, logger),
	}
}

// LastSummary returns the most recent completed cycle, if any.
func (o *Orchestrator) LastSummary() *Summary {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.last == nil {
		return nil
	}
	cp := *o.last
	return &cp
}

// Running reports whether a cycle is in flight.
func (o *Orchestrator) Running() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running
}

// RunCycle executes one full cycle. It returns ErrCycleRunning if one is
// already in flight, and a fatal error only when setup fails before any
// service is processed. Per-service failures are logged and counted, never
// propagated.
func (o *Orchestrator) RunCycle(ctx context.Context) (*Summary, error) {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return nil, ErrCycleRunning
	}
	o.running = true
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.running = false
		o.mu.Unlock()
	}()

	start := time.Now()
	sum := Summary{StartedAt: start.UTC()}

	// Both handles must answer before any probe runs; a dead transport or
	// store aborts the cycle with no partial processing.
	if err := o.Publisher.Ping(ctx); err != nil {
		metrics.CyclesTotal.WithLabelValues("fatal").Inc()
		return nil, fmt.Errorf("pubsub unavailable: %w", err)
	}
	if err := o.Store.Ping(ctx); err != nil {
		metrics.CyclesTotal.WithLabelValues("fatal").Inc()
		return nil, fmt.Errorf("store unavailable: %w", err)
	}

	services, err := o.Store.ListActive(ctx)
	if err != nil {
		metrics.CyclesTotal.WithLabelValues("fatal").Inc()
		return nil, fmt.Errorf("list active services: %w", err)
	}
	sum.Checked = len(services)
	o.Logger.Info("cycle_started", zap.Int("services", len(services)))

	outcomes := o.Fanout.Run(ctx, services)
	for _, out := range outcomes {
		if err := o.processOutcome(ctx, out); err != nil {
			sum.Failed++
			o.Logger.Warn("service_processing_failed",
				zap.String("service", out.Service.Name),
				zap.Error(err),
			)
			continue
		}
		sum.Succeeded++
	}

	signal := pubsub.HealthCheckSignal{
		Checked:   sum.Checked,
		Succeeded: sum.Succeeded,
		Failed:    sum.Failed,
		Timestamp: pubsub.ISOTime(time.Now()),
	}
	if err := o.Publisher.Publish(ctx, pubsub.ChannelHealthCheck, signal); err != nil {
		o.Logger.Warn("health_check_signal_failed", zap.Error(err))
	}

	sum.Duration = time.Since(start).String()
	metrics.CyclesTotal.WithLabelValues("completed").Inc()
	metrics.CycleDuration.Observe(time.Since(start).Seconds())
	o.Logger.Info("cycle_completed",
		zap.Int("checked", sum.Checked),
		zap.Int("succeeded", sum.Succeeded),
		zap.Int("failed", sum.Failed),
		zap.Duration("took", time.Since(start)),
	)

	o.mu.Lock()
	o.last = &sum
	o.mu.Unlock()
	return &sum, nil
}

// processOutcome takes one settled probe slot through persist → detect →
// route → dispatch. An error anywhere affects only this service.
func (o *Orchestrator) processOutcome(ctx context.Context, out Outcome) error {
	if out.Err != nil {
		// Orchestration failure, distinct from a classified OFFLINE.
		return out.Err
	}
	res := out.Result
	metrics.ProbesTotal.WithLabelValues(string(res.Status)).Inc()

	prev, err := o.Detector.PriorStatus(ctx, out.Service.ID)
	if err != nil {
		return err
	}

	rec := domain.StatusRecord{
		ServiceID:      out.Service.ID,
		Status:         res.Status,
		ResponseTimeMS: res.ResponseTimeMS,
		Message:        res.Message,
		CheckedAt:      res.CheckedAt,
	}
	if res.HTTPStatus != 0 {
		code := res.HTTPStatus
		rec.HTTPStatus = &code
	}
	if err := o.Store.AppendStatus(ctx, &rec); err != nil {
		return fmt.Errorf("append status: %w", err)
	}

	tr := o.Detector.Detect(out.Service, prev, rec)
	if !tr.Notify {
		// Still broadcast so dashboards see the fresh check.
		if err := o.Dispatcher.Broadcast(ctx, rec); err != nil {
			o.Logger.Warn("broadcast_failed",
				zap.String("service", out.Service.Name),
				zap.Error(err),
			)
		}
		if tr.Changed {
			o.Logger.Info("status_changed_silent",
				zap.String("service", out.Service.Name),
				zap.String("from", string(tr.Old)),
				zap.String("to", string(tr.New)),
			)
		}
		return nil
	}

	recipients, err := o.Router.Resolve(ctx, tr.Category)
	if err != nil {
		return fmt.Errorf("resolve recipients: %w", err)
	}
	o.Dispatcher.Dispatch(ctx, tr, recipients)
	return nil
}

// RunLoop runs a cycle immediately and then on every tick until ctx is
// cancelled. Interval 0 disables the loop.
func (o *Orchestrator) RunLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		o.Logger.Info("cycle_loop_disabled")
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	if _, err := o.RunCycle(ctx); err != nil && !errors.Is(err, ErrCycleRunning) {
		o.Logger.Error("cycle_failed", zap.Error(err))
	}
	for {
		select {
		case <-ctx.Done():
			o.Logger.Info("cycle_loop_stopped")
			return
		case <-t.C:
			if _, err := o.RunCycle(ctx); err != nil && !errors.Is(err, ErrCycleRunning) {
				o.Logger.Error("cycle_failed", zap.Error(err))
			}
		}
	}
}
