package probe

import (
	"context"

	"servicepulse/internal/domain"
)

// Checker performs a single bounded health check against one service.
// Implementations never return an error: every failure mode is classified
// into the result's Status.
type Checker interface {
	Check(ctx context.Context, svc domain.Service) domain.HealthResult
}
