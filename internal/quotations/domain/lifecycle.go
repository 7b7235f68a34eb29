package domain

// Status is a quotation lifecycle status.
type Status string

// Workflow order: CREATED → QUOTATION → CONFIRMED → ONGOING → ARRIVED →
// RELEASED → CLOSED, with CANCELLED reachable from any non-terminal state.
const (
	StatusCreated   Status = "CREATED"
	StatusQuotation Status = "QUOTATION"
	StatusConfirmed Status = "CONFIRMED"
	StatusOngoing   Status = "ONGOING"
	StatusArrived   Status = "ARRIVED"
	StatusReleased  Status = "RELEASED"
	StatusClosed    Status = "CLOSED"
	StatusCancelled Status = "CANCELLED"
)

// AllStatuses lists every valid status in workflow order.
var AllStatuses = []Status{
	StatusCreated,
	StatusQuotation,
	StatusConfirmed,
	StatusOngoing,
	StatusArrived,
	StatusReleased,
	StatusClosed,
	StatusCancelled,
}

var validStatuses = map[Status]bool{
	StatusCreated:   true,
	StatusQuotation: true,
	StatusConfirmed: true,
	StatusOngoing:   true,
	StatusArrived:   true,
	StatusReleased:  true,
	StatusClosed:    true,
	StatusCancelled: true,
}

// rateLockedStatuses are statuses in which the three rate collections are
// frozen; rate corrections require moving back to an unlocked status first.
var rateLockedStatuses = map[Status]bool{
	StatusConfirmed: true,
	StatusOngoing:   true,
	StatusArrived:   true,
	StatusReleased:  true,
	StatusClosed:    true,
}

// IsValidStatus reports whether s is a known lifecycle status.
func IsValidStatus(s Status) bool {
	return validStatuses[s]
}

// IsRateEditLocked reports whether the status forbids changes to the carrier,
// extra-service and customer rate collections.
func IsRateEditLocked(s Status) bool {
	return rateLockedStatuses[s]
}

// RequiresCloseReason reports whether the status must carry a non-empty close
// reason. The requirement is re-checked on every update, not just on the
// transition edge, so a CLOSED quotation can never lose its reason through an
// unrelated edit.
func RequiresCloseReason(s Status) bool {
	return s == StatusClosed || s == StatusCancelled
}

// IsTerminal reports whether the status ends the workflow.
func IsTerminal(s Status) bool {
	return s == StatusClosed || s == StatusCancelled
}

// Transitions are deliberately permissive: corrective status edits in any
// direction are allowed. Only the rate-lock predicate and the close-reason
// requirement gate an update.
