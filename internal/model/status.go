package model

import "fmt"

// Status is the lifecycle state of an order.
type Status string

const (
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
	StatusReturned   Status = "Returned"
	StatusAbandoned  Status = "Abandoned"
)

// Legacy spellings that still exist in old rows. They are rewritten to the
// canonical forms by the startup migration and are not accepted over the API.
const (
	LegacyStatusReturn Status = "Return"
	LegacyStatusCancel Status = "Cancel"
)

// ParseStatus validates a client-supplied status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled, StatusReturned, StatusAbandoned:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// terminalStatuses are the states after which an order no longer counts as
// active for duplicate detection.
var terminalStatuses = map[Status]bool{
	StatusDelivered: true,
	StatusCancelled: true,
	StatusReturned:  true,
}

// Terminal reports whether the status ends the order's active life.
func (s Status) Terminal() bool {
	return terminalStatuses[s]
}

// TerminalStatuses returns the terminal set for duplicate-detection queries.
func TerminalStatuses() []Status {
	return []Status{StatusDelivered, StatusCancelled, StatusReturned}
}

// DeductsInventory reports whether entering this status represents a physical
// shipment and therefore consumes stock.
func (s Status) DeductsInventory() bool {
	return s == StatusShipped || s == StatusDelivered
}

// transitions is the allowed state machine. Orders enter the ledger as
// Processing; Abandoned is only reachable through demotion, never through a
// plain status update.
var transitions = map[Status][]Status{
	StatusProcessing: {StatusShipped, StatusDelivered, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusCancelled, StatusReturned},
	StatusDelivered:  {StatusReturned},
	StatusCancelled:  {},
	StatusReturned:   {},
	StatusAbandoned:  {},
}

// TransitionAllowed reports whether moving from one status to the other is
// a legal lifecycle step.
func TransitionAllowed(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
