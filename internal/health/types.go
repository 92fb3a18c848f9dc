package health

import "time"

// HealthStatus represents the health state of an upstream service.
type HealthStatus string

const (
	StatusUnknown HealthStatus = "unknown"
	StatusOK      HealthStatus = "ok"
	StatusError   HealthStatus = "error"
)

// HealthItem is the last known state of one upstream service.
type HealthItem struct {
	Name       string       `json:"name"`
	Configured bool         `json:"configured"`
	Status     HealthStatus `json:"status"`
	Message    string       `json:"message,omitempty"`
	CheckedAt  *time.Time   `json:"checkedAt,omitempty"`
}

// HasIssues reports whether any configured service is not healthy.
func HasIssues(items []HealthItem) bool {
	for _, item := range items {
		if item.Configured && item.Status == StatusError {
			return true
		}
	}
	return false
}
