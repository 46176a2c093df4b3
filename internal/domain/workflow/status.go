package workflow

// Request statuses. These are an open string enum: the routing table defines
// which statuses are reachable for each request type, and the terminal set
// below is absorbing.
const (
	StatusDraft              = "Draft"
	StatusPendingFocal       = "Pending Department Focal"
	StatusPendingLineManager = "Pending Line Manager/HOD"
	StatusPendingClerk       = "Pending Clerk/Approver"
	StatusPendingVisaClerk   = "Pending Visa Clerk"
	StatusProcessingEmbassy  = "Processing with Embassy"
	StatusApproved           = "Approved"
	StatusRejected           = "Rejected"
	StatusCancelled          = "Cancelled"
)

// IsTerminal returns true for absorbing statuses that admit no further
// transitions
func IsTerminal(status string) bool {
	switch status {
	case StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}
