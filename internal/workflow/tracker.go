package workflow

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/arslant84/syntra.production-sub009/internal/domain/entity"
	domain "github.com/arslant84/syntra.production-sub009/internal/domain/workflow"
	"github.com/arslant84/syntra.production-sub009/internal/repository"
	"go.uber.org/zap"
)

// ExecutionTracker records workflow-execution metadata: which engine run
// processed which request, when, and with what outcome. Its uniqueness
// guarantee (one Running execution per request) is what makes engine entry
// idempotent under concurrent calls.
type ExecutionTracker struct {
	repo   *repository.ExecutionRepository
	logger *zap.Logger
}

// NewExecutionTracker creates a new execution tracker
func NewExecutionTracker(repo *repository.ExecutionRepository, logger *zap.Logger) *ExecutionTracker {
	return &ExecutionTracker{
		repo:   repo,
		logger: logger,
	}
}

// Start opens a Running execution. Fails with ErrAlreadyRunning when another
// evaluation of the same request is still in flight.
func (t *ExecutionTracker) Start(requestID string, reqType entity.RequestType, context map[string]interface{}) (*entity.WorkflowExecution, error) {
	ctxJSON, err := json.Marshal(context)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal execution context: %w", err)
	}

	exec, err := t.repo.Start(requestID, reqType, string(ctxJSON))
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateRunning) {
			t.logger.Warn("Execution already running",
				zap.String("request_id", requestID),
				zap.String("request_type", reqType.String()))
			return nil, fmt.Errorf("%w: request %s", domain.ErrAlreadyRunning, requestID)
		}
		return nil, err
	}

	return exec, nil
}

// Complete moves the execution to Completed or Failed depending on outcome.
// A failure to record completion is logged but not surfaced: the workflow
// result itself is already decided.
func (t *ExecutionTracker) Complete(exec *entity.WorkflowExecution, outcome error) {
	if exec == nil {
		return
	}

	status := entity.ExecutionCompleted
	errText := ""
	if outcome != nil {
		status = entity.ExecutionFailed
		errText = outcome.Error()
	}

	if err := t.repo.Complete(exec.ID, status, errText); err != nil {
		t.logger.Error("Failed to record execution completion",
			zap.Int64("execution_id", exec.ID),
			zap.String("status", status),
			zap.Error(err))
	}
}

// Get returns the latest execution for a request, or nil when none exists
func (t *ExecutionTracker) Get(requestID string, reqType entity.RequestType) (*entity.WorkflowExecution, error) {
	return t.repo.GetLatest(requestID, reqType)
}
