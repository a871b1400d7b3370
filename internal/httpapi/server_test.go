package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"servicepulse/internal/domain"
	"servicepulse/internal/repo/memory"
	"servicepulse/internal/scheduler"
)

type okChecker struct{}

func (okChecker) Check(ctx context.Context, svc domain.Service) domain.HealthResult {
	return domain.HealthResult{Status: domain.StatusOnline, ResponseTimeMS: 1, CheckedAt: time.Now().UTC()}
}

type nopPublisher struct{}

func (nopPublisher) Publish(ctx context.Context, channel string, payload any) error { return nil }
func (nopPublisher) Ping(ctx context.Context) error                                 { return nil }
func (nopPublisher) Close() error                                                   { return nil }

type nopMailer struct{}

func (nopMailer) Send(ctx context.Context, to []string, subject, body string) error { return nil }

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	store := memory.New()
	orch := scheduler.NewOrchestrator(zap.NewNop(), store, nopPublisher{}, okChecker{}, nopMailer{}, 2)
	return NewServer(zap.NewNop(), orch, store, 0, 0), store
}

func TestServer_Healthz(t *testing.T) {
	s, _ := newTestServer(t)
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, httptest.NewRequest("GET", "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rr.Code)
	}
}

func TestServer_TriggerRunsCycle(t *testing.T) {
	s, store := newTestServer(t)
	store.AddService(&domain.Service{Name: "api", BaseURL: "https://api.internal", Active: true})

	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, httptest.NewRequest("POST", "/api/cycle/run", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var sum scheduler.Summary
	if err := json.Unmarshal(rr.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if sum.Checked != 1 || sum.Succeeded != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if len(store.StatusRecords()) != 1 {
		t.Fatalf("trigger should have appended a record")
	}
}

func TestServer_CycleStateReflectsLastRun(t *testing.T) {
	s, store := newTestServer(t)
	store.AddService(&domain.Service{Name: "api", BaseURL: "https://api.internal", Active: true})

	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, httptest.NewRequest("GET", "/api/cycle", nil))
	var before map[string]any
	_ = json.Unmarshal(rr.Body.Bytes(), &before)
	if before["state"] != "idle" || before["last"] != nil {
		t.Fatalf("fresh server should be idle with no summary: %v", before)
	}

	s.Router().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/api/cycle/run", nil))

	rr = httptest.NewRecorder()
	s.Router().ServeHTTP(rr, httptest.NewRequest("GET", "/api/cycle", nil))
	var after map[string]any
	_ = json.Unmarshal(rr.Body.Bytes(), &after)
	if after["last"] == nil {
		t.Fatalf("expected last summary after trigger: %v", after)
	}
}

func TestServer_LatestStatuses(t *testing.T) {
	s, store := newTestServer(t)
	_ = store.AppendStatus(context.Background(), &domain.StatusRecord{
		ServiceID: "S1", Status: domain.StatusOnline, CheckedAt: time.Now().UTC(),
	})

	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, httptest.NewRequest("GET", "/api/status", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rr.Code)
	}
	var rows []domain.StatusRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 1 || rows[0].ServiceID != "S1" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestServer_MetricsExposed(t *testing.T) {
	s, _ := newTestServer(t)
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("want 200 from /metrics, got %d", rr.Code)
	}
}
