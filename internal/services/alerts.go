package services

import (
	"fmt"
	"route-planning-service/internal/domain"
	"strings"
	"time"

	"github.com/google/uuid"
)

func newID() string { return uuid.NewString() }

func newAlert(sev domain.AlertSeverity, code domain.AlertCode, orderID, msg string) domain.Alert {
	return domain.Alert{
		AlertID:  newID(),
		Severity: sev,
		Code:     code,
		Message:  msg,
		OrderID:  orderID,
	}
}

func capacityAlerts(truck *domain.Truck) []domain.Alert {
	over := truck.Overload()
	if len(over) == 0 {
		return nil
	}
	return []domain.Alert{newAlert(
		domain.SeverityCritical,
		domain.AlertCapacityExceeded,
		"",
		fmt.Sprintf("Truck %d: %s", truck.TruckID, strings.Join(over, "; ")),
	)}
}

func cargoAlerts(orders []domain.Order) []domain.Alert {
	var out []domain.Alert
	for _, o := range orders {
		if o.Cargo.Refrigerated {
			out = append(out, newAlert(domain.SeverityWarning, domain.AlertRefrigerationRequired, o.OrderID,
				fmt.Sprintf("Order %s requires a refrigerated vehicle", orderLabel(o.OrderID, o.Number))))
		}
		if o.Cargo.Fragile {
			out = append(out, newAlert(domain.SeverityInfo, domain.AlertFragileCargo, o.OrderID,
				fmt.Sprintf("Order %s carries fragile cargo", orderLabel(o.OrderID, o.Number))))
		}
	}
	return out
}

// timeAlerts flags stops whose ETA plus the configured buffer falls after
// their window end, and a last stop that runs past the plan window.
func timeAlerts(stops []domain.Stop, params domain.OptimizationParams, cfg domain.Configuration) []domain.Alert {
	buffer := time.Duration(cfg.Normalized().TimeBufferMinutes) * time.Minute

	var out []domain.Alert
	for _, s := range stops {
		if s.Window == nil || s.Window.End.IsZero() {
			continue
		}
		if s.EstimatedArrival.Add(buffer).After(s.Window.End) {
			out = append(out, newAlert(domain.SeverityWarning, domain.AlertTimeWindowRisk, s.OrderID,
				fmt.Sprintf("%s of order %s estimated at %s, window closes %s",
					s.Kind, orderLabel(s.OrderID, s.OrderNumber),
					FormatETA(s.EstimatedArrival), FormatETA(s.Window.End))))
		}
	}

	if len(stops) > 0 && !params.WindowEnd.IsZero() {
		last := stops[len(stops)-1]
		finish := last.EstimatedArrival.Add(minutes(last.ServiceMinutes)).Add(buffer)
		if finish.After(params.WindowEnd) {
			out = append(out, newAlert(domain.SeverityWarning, domain.AlertPlanWindowExceeded, "",
				fmt.Sprintf("Route finishes at %s, after the plan window end %s",
					FormatETA(finish), FormatETA(params.WindowEnd))))
		}
	}

	return out
}

func orderLabel(id, number string) string {
	if number != "" {
		return number
	}
	return id
}
