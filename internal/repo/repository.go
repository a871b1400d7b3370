package repo

import (
	"context"

	"servicepulse/internal/domain"
)

// Ports (interfaces) — swap in any DB adapter later.

type ServiceStore interface {
	// ListActive returns every service with the active flag set.
	ListActive(ctx context.Context) ([]domain.Service, error)
}

// StatusStore is append-only: records are inserted and read, never changed.
type StatusStore interface {
	AppendStatus(ctx context.Context, r *domain.StatusRecord) error
	// LatestStatus returns nil, nil when the service has no record yet.
	LatestStatus(ctx context.Context, id domain.ServiceID) (*domain.StatusRecord, error)
	// LatestStatuses returns the newest record per service, for read surfaces.
	LatestStatuses(ctx context.Context) ([]domain.StatusRecord, error)
}

// UserWithPreference pairs a user with their preference record, if any.
type UserWithPreference struct {
	User       domain.User
	Preference *domain.NotificationPreference
}

type UserStore interface {
	// ListWithPreferences returns active users holding one of the given
	// roles, each with their preference record or nil.
	ListWithPreferences(ctx context.Context, roles []domain.Role) ([]UserWithPreference, error)
}

type NotificationStore interface {
	InsertNotification(ctx context.Context, n *domain.Notification) error
}

// Store is the full persistence surface the monitor core consumes.
type Store interface {
	ServiceStore
	StatusStore
	UserStore
	NotificationStore
	Ping(ctx context.Context) error
}
