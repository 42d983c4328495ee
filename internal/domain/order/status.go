// internal/domain/order/status.go
package order

import (
	"strings"

	"github.com/your-org/marketflow-backend/internal/pkg/apperror"
)

// Status represents the order status
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// AllStatuses lists every known status in lifecycle order
var AllStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

var validTransitions = map[Status][]Status{
	StatusPending: {
		StatusProcessing,
		StatusCancelled,
	},
	StatusProcessing: {
		StatusShipped,
		StatusCancelled,
	},
	StatusShipped: {
		StatusDelivered,
	},
}

// ParseStatus maps a label onto a known Status
func ParseStatus(label string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(label)))
	for _, known := range AllStatuses {
		if s == known {
			return s, nil
		}
	}
	return "", apperror.Validation(ErrInvalidStatus.Code, "invalid status %q", label)
}

// IsTerminal reports whether no transition leaves s
func (s Status) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// CanTransitionTo reports whether s -> to is an edge of the state machine
func (s Status) CanTransitionTo(to Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}
