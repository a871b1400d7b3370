package domain

import "time"

type ServiceID string

type UserID string

// Service is a monitored target. Owned by the admin/config side; this core
// only reads it.
type Service struct {
	ID              ServiceID     `json:"id"`
	Name            string        `json:"name"`
	BaseURL         string        `json:"base_url"`
	HealthCheckPath string        `json:"health_check_path,omitempty"`
	Timeout         time.Duration `json:"timeout,omitempty"` // 0 means default
	Active          bool          `json:"active"`
	CreatedAt       time.Time     `json:"created_at"`
}

// URL joins the base URL and the optional health-check path.
func (s Service) URL() string {
	return s.BaseURL + s.HealthCheckPath
}

// HealthResult is the transient outcome of one probe. It lives for one cycle
// and is turned into a StatusRecord before anything else sees it.
type HealthResult struct {
	Status         Status    `json:"status"`
	ResponseTimeMS int64     `json:"response_time_ms"`
	HTTPStatus     int       `json:"http_status,omitempty"` // 0 for transport errors
	Message        string    `json:"message,omitempty"`
	CheckedAt      time.Time `json:"checked_at"`
}

// StatusRecord is the append-only persisted form of a probe outcome.
// Records are inserted, never updated or deleted; "current status" is the
// newest record by CheckedAt for a service.
type StatusRecord struct {
	ID             int64     `json:"id"`
	ServiceID      ServiceID `json:"service_id"`
	Status         Status    `json:"status"`
	ResponseTimeMS int64     `json:"response_time_ms"`
	HTTPStatus     *int      `json:"http_status"` // nil when no HTTP response
	Message        string    `json:"message,omitempty"`
	CheckedAt      time.Time `json:"checked_at"`
}

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user" // power user
	RoleGuest Role = "guest"
)

type User struct {
	ID     UserID `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Active bool   `json:"active"`
}

// NotificationPreference holds one user's opt-in flags. A missing record
// means "admins get everything, everyone else gets nothing".
type NotificationPreference struct {
	UserID          UserID `json:"user_id"`
	EmailEnabled    bool   `json:"email_enabled"`
	StatusChange    bool   `json:"status_change"`
	OnlineToOffline bool   `json:"online_to_offline"`
	OfflineToOnline bool   `json:"offline_to_online"`
	ErrorAlert      bool   `json:"error_alert"`
	WarningAlert    bool   `json:"warning_alert"`
	SystemAlert     bool   `json:"system_alert"`
}

type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Notification is the durable in-app record of a dispatched alert. The read
// flag and retention are owned by the UI side; this core only inserts.
type Notification struct {
	ID        string     `json:"id"`
	UserID    UserID     `json:"user_id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	ServiceID *ServiceID `json:"service_id,omitempty"`
	Priority  Priority   `json:"priority"`
	Read      bool       `json:"read"`
	CreatedAt time.Time  `json:"created_at"`
}
