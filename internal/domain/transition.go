package domain

// Category classifies a status transition for routing and rendering.
type Category string

const (
	CategoryStatusChange Category = "status_change"
	CategoryDegradation  Category = "online_to_offline"
	CategoryRecovery     Category = "offline_to_online"
	CategoryErrorAlert   Category = "error_alert"
	CategoryWarningAlert Category = "warning_alert"
	CategorySystemAlert  Category = "system_alert"
)

// Transition is the ordered (previous, new) status pair for one service,
// carrying the record that produced it.
type Transition struct {
	Service  Service
	Record   StatusRecord
	Old      Status // StatusUnknown when no prior record exists
	New      Status
	Changed  bool
	Notify   bool // table entries plus first-check-not-ONLINE
	Category Category
}
