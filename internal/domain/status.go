package domain

// Status is the classified health of a service at one point in time.
type Status string

const (
	StatusOnline      Status = "online"
	StatusWarning     Status = "warning"
	StatusError       Status = "error"
	StatusOffline     Status = "offline"
	StatusTimeout     Status = "timeout"
	StatusMaintenance Status = "maintenance"
	// StatusUnknown stands in for "no prior record"; the probe never produces it.
	StatusUnknown Status = "unknown"
)

// IsHealthy reports whether s counts as a healthy state. WARNING is degraded
// but reachable, so it sits on the healthy side of the transition table.
func (s Status) IsHealthy() bool {
	return s == StatusOnline || s == StatusWarning
}

// IsDown reports whether s counts as an outage state.
func (s Status) IsDown() bool {
	return s == StatusOffline || s == StatusError || s == StatusTimeout
}

// Emoji returns the visual marker used in email subjects and bodies.
func (s Status) Emoji() string {
	switch s {
	case StatusOnline:
		return "🟢"
	case StatusWarning:
		return "🟡"
	case StatusError, StatusOffline, StatusTimeout:
		return "🔴"
	case StatusMaintenance:
		return "🔧"
	default:
		return "⚪"
	}
}
