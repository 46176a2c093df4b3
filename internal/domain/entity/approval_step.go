package entity

import "time"

// Step outcome values. A step is Pending until the corresponding stage is
// resolved; after that its outcome fields are never touched again.
const (
	StepPending   = "Pending"
	StepApproved  = "Approved"
	StepRejected  = "Rejected"
	StepCancelled = "Cancelled"
)

// ApprovalStep is one stage of a request's approval chain. Rows are
// append-only: resolution fills in the outcome fields exactly once.
type ApprovalStep struct {
	ID              int64      `json:"id"`
	RequestID       string     `json:"request_id"`
	RequestType     RequestType `json:"request_type"`
	Seq             int        `json:"seq"`
	StepRole        string     `json:"step_role"`
	StepName        string     `json:"step_name"`
	Status          string     `json:"status"`
	ActedAt         *time.Time `json:"acted_at,omitempty"`
	ApproverStaffID string     `json:"approver_staff_id,omitempty"`
	ApproverName    string     `json:"approver_name,omitempty"`
	Comments        string     `json:"comments,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
