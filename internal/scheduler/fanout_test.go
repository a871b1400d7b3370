package scheduler

import (
	"context"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"servicepulse/internal/domain"
)

type funcChecker func(ctx context.Context, svc domain.Service) domain.HealthResult

func (f funcChecker) Check(ctx context.Context, svc domain.Service) domain.HealthResult {
	return f(ctx, svc)
}

func services(n int) []domain.Service {
	out := make([]domain.Service, n)
	for i := range out {
		out[i] = domain.Service{
			ID:      domain.ServiceID(string(rune('A' + i))),
			Name:    "svc-" + string(rune('A'+i)),
			BaseURL: "https://example.com",
			Active:  true,
		}
	}
	return out
}

func TestFanout_AllSlotsSettle(t *testing.T) {
	var calls atomic.Int32
	chk := funcChecker(func(ctx context.Context, svc domain.Service) domain.HealthResult {
		calls.Add(1)
		return domain.HealthResult{Status: domain.StatusOnline, ResponseTimeMS: 1}
	})

	f := NewFanout(zap.NewNop(), chk, 3)
	out := f.Run(context.Background(), services(5))
	if len(out) != 5 {
		t.Fatalf("want 5 outcomes, got %d", len(out))
	}
	if calls.Load() != 5 {
		t.Fatalf("want 5 probe calls, got %d", calls.Load())
	}
	for i, o := range out {
		if o.Err != nil || o.Result.Status != domain.StatusOnline {
			t.Fatalf("slot %d not settled: %+v", i, o)
		}
	}
}

func TestFanout_PanicIsolatedToItsSlot(t *testing.T) {
	chk := funcChecker(func(ctx context.Context, svc domain.Service) domain.HealthResult {
		if svc.ID == "C" {
			panic("exploded")
		}
		return domain.HealthResult{Status: domain.StatusOnline}
	})

	f := NewFanout(zap.NewNop(), chk, 2)
	out := f.Run(context.Background(), services(5))
	if len(out) != 5 {
		t.Fatalf("want 5 outcomes even with one failure, got %d", len(out))
	}
	for _, o := range out {
		if o.Service.ID == "C" {
			if o.Err == nil {
				t.Fatalf("failing slot should carry its error: %+v", o)
			}
			continue
		}
		if o.Err != nil {
			t.Fatalf("sibling slot polluted by failure: %+v", o)
		}
	}
}

func TestFanout_OutcomesKeepInputOrder(t *testing.T) {
	chk := funcChecker(func(ctx context.Context, svc domain.Service) domain.HealthResult {
		return domain.HealthResult{Status: domain.StatusOnline}
	})
	svcs := services(4)
	out := NewFanout(zap.NewNop(), chk, 4).Run(context.Background(), svcs)
	for i := range svcs {
		if out[i].Service.ID != svcs[i].ID {
			t.Fatalf("slot %d holds %s, want %s", i, out[i].Service.ID, svcs[i].ID)
		}
	}
}
