package scheduler

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"servicepulse/internal/domain"
	"servicepulse/internal/probe"
)

// Outcome is one slot of a fan-out pass: either a classified probe result
// or an orchestration failure. Err is never a network-level failure — those
// are classified into Result by the probe itself.
type Outcome struct {
	Service domain.Service
	Result  domain.HealthResult
	Err     error
}

// Fanout runs one probe per service concurrently and waits for every slot
// to settle. A panicking or failing slot never takes down its siblings.
type Fanout struct {
	Logger      *zap.Logger
	Checker     probe.Checker
	Concurrency int
}

func NewFanout(logger *zap.Logger, checker probe.Checker, concurrency int) *Fanout {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Fanout{Logger: logger, Checker: checker, Concurrency: concurrency}
}

// Run probes all services and returns one outcome per service, in input
// order. It returns only after every probe has settled.
func (f *Fanout) Run(ctx context.Context, services []domain.Service) []Outcome {
	outcomes := make([]Outcome, len(services))

	sem := make(chan struct{}, f.Concurrency)
	var wg sync.WaitGroup

	for i, svc := range services {
		i, svc := i, svc
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() { <-sem }()
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					outcomes[i] = Outcome{Service: svc, Err: fmt.Errorf("probe panic: %v", r)}
					f.Logger.Error("probe_panic",
						zap.String("service", svc.Name),
						zap.Any("panic", r),
					)
				}
			}()

			res := f.Checker.Check(ctx, svc)
			outcomes[i] = Outcome{Service: svc, Result: res}
			f.Logger.Debug("probe_settled",
				zap.String("service", svc.Name),
				zap.String("status", string(res.Status)),
				zap.Int64("response_time_ms", res.ResponseTimeMS),
			)
		}()
	}

	wg.Wait()
	return outcomes
}
