package entity

import "time"

// Workflow execution states
const (
	ExecutionRunning   = "Running"
	ExecutionCompleted = "Completed"
	ExecutionFailed    = "Failed"
)

// WorkflowExecution records one run of the workflow engine against a request.
// At most one Running execution may exist per (RequestID, RequestType);
// the schema enforces this with a partial unique index.
type WorkflowExecution struct {
	ID          int64      `json:"id"`
	RequestID   string     `json:"request_id"`
	RequestType RequestType `json:"request_type"`
	Status      string     `json:"status"`
	Context     string     `json:"context"` // JSON snapshot: action, actor, status at start
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}
