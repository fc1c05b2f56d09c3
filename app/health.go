package app

import (
	"context"
	"time"
)

// HealthStatus represents the health state of a component.
type HealthStatus int

const (
	// HealthStatusUnknown means the status could not be determined.
	HealthStatusUnknown HealthStatus = iota
	// HealthStatusHealthy means the component is operating normally.
	HealthStatusHealthy
	// HealthStatusDegraded means the component works with reduced capability.
	HealthStatusDegraded
	// HealthStatusUnhealthy means the component cannot serve requests.
	HealthStatusUnhealthy
)

// String returns the string representation of the health status.
func (s HealthStatus) String() string {
	switch s {
	case HealthStatusHealthy:
		return "healthy"
	case HealthStatusDegraded:
		return "degraded"
	case HealthStatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// MarshalText renders the status by name in JSON output.
func (s HealthStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// severity orders statuses from best to worst for aggregation.
func (s HealthStatus) severity() int {
	switch s {
	case HealthStatusHealthy:
		return 0
	case HealthStatusDegraded:
		return 1
	case HealthStatusUnknown:
		return 2
	default:
		return 3
	}
}

// HealthReport is the result of one component's health check.
type HealthReport struct {
	Module    string         `json:"module"`
	Component string         `json:"component,omitempty"`
	Status    HealthStatus   `json:"status"`
	Message   string         `json:"message,omitempty"`
	CheckedAt time.Time      `json:"checkedAt"`
	Details   map[string]any `json:"details,omitempty"`
}

// HealthProvider is implemented by modules that report health.
type HealthProvider interface {
	HealthCheck(ctx context.Context) ([]HealthReport, error)
}

// AggregatedHealth combines every module's reports.
type AggregatedHealth struct {
	Status    HealthStatus   `json:"status"`
	Reports   []HealthReport `json:"reports"`
	CheckedAt time.Time      `json:"checkedAt"`
}

// aggregateHealth returns the worst status among reports, or healthy when
// there are none.
func aggregateHealth(reports []HealthReport) HealthStatus {
	status := HealthStatusHealthy
	for _, r := range reports {
		if r.Status.severity() > status.severity() {
			status = r.Status
		}
	}
	return status
}
