package pubsub

import (
	"context"
	"time"

	"servicepulse/internal/domain"
)

// Channel names are part of the wire contract with the dashboards.
const (
	ChannelStatusUpdate = "service_status_update"
	ChannelHealthCheck  = "service_health_check"
)

// Publisher is the broadcast port. Implementations must be safe for
// concurrent use within a cycle.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload any) error
	Ping(ctx context.Context) error
	Close() error
}

// StatusUpdate is the payload on ChannelStatusUpdate, one per probe result.
type StatusUpdate struct {
	ServiceID domain.ServiceID    `json:"serviceId"`
	Status    domain.StatusRecord `json:"status"`
	Timestamp string              `json:"timestamp"` // ISO-8601
}

// HealthCheckSignal is the payload on ChannelHealthCheck, one per cycle.
type HealthCheckSignal struct {
	Checked   int    `json:"checked"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Timestamp string `json:"timestamp"`
}

// ISOTime formats t the way the dashboard subscribers expect.
func ISOTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
