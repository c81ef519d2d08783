package domain

type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

type AlertCode string

const (
	AlertCapacityExceeded      AlertCode = "capacity_exceeded"
	AlertTimeWindowRisk        AlertCode = "time_window_risk"
	AlertPlanWindowExceeded    AlertCode = "plan_window_exceeded"
	AlertRefrigerationRequired AlertCode = "refrigeration_required"
	AlertFragileCargo          AlertCode = "fragile_cargo"
)

// Advisory note attached to a computed route. Alerts never block planning.
type Alert struct {
	AlertID  string
	Severity AlertSeverity
	Code     AlertCode
	Message  string
	OrderID  string
}
