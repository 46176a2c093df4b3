package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/arslant84/syntra.production-sub009/internal/domain/entity"
	sqlite3 "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// ExecutionRepository handles workflow execution database operations
type ExecutionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewExecutionRepository creates a new execution repository
func NewExecutionRepository(db *sql.DB, logger *zap.Logger) *ExecutionRepository {
	return &ExecutionRepository{
		db:     db,
		logger: logger,
	}
}

// ErrDuplicateRunning indicates an execution is already in flight for the
// request; the partial unique index on (request_id, request_type) raises it.
var ErrDuplicateRunning = errors.New("running execution already exists")

// Start inserts a Running execution row. Returns ErrDuplicateRunning when one
// already exists for the (request id, type) pair.
func (r *ExecutionRepository) Start(requestID string, reqType entity.RequestType, context string) (*entity.WorkflowExecution, error) {
	query := `
		INSERT INTO workflow_executions (request_id, request_type, status, context)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.Exec(query, requestID, reqType, entity.ExecutionRunning, context)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return nil, ErrDuplicateRunning
		}
		r.logger.Error("Failed to start execution",
			zap.String("request_id", requestID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to start execution: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return &entity.WorkflowExecution{
		ID:          id,
		RequestID:   requestID,
		RequestType: reqType,
		Status:      entity.ExecutionRunning,
		Context:     context,
		StartedAt:   time.Now(),
	}, nil
}

// Complete moves an execution to a terminal state
func (r *ExecutionRepository) Complete(executionID int64, status, errText string) error {
	query := `
		UPDATE workflow_executions
		SET status = ?, finished_at = CURRENT_TIMESTAMP, error = ?
		WHERE id = ? AND status = ?
	`

	_, err := r.db.Exec(query, status, errText, executionID, entity.ExecutionRunning)
	if err != nil {
		r.logger.Error("Failed to complete execution",
			zap.Int64("execution_id", executionID),
			zap.String("status", status),
			zap.Error(err))
		return fmt.Errorf("failed to complete execution: %w", err)
	}

	return nil
}

// GetLatest returns the most recent execution for a request, or nil when the
// request was never processed
func (r *ExecutionRepository) GetLatest(requestID string, reqType entity.RequestType) (*entity.WorkflowExecution, error) {
	query := `
		SELECT id, request_id, request_type, status, context, started_at, finished_at, error
		FROM workflow_executions
		WHERE request_id = ? AND request_type = ?
		ORDER BY id DESC
		LIMIT 1
	`

	var exec entity.WorkflowExecution
	var finishedAt sql.NullTime
	var errText sql.NullString

	err := r.db.QueryRow(query, requestID, reqType).Scan(
		&exec.ID, &exec.RequestID, &exec.RequestType, &exec.Status,
		&exec.Context, &exec.StartedAt, &finishedAt, &errText,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get execution",
			zap.String("request_id", requestID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get execution: %w", err)
	}

	if finishedAt.Valid {
		exec.FinishedAt = &finishedAt.Time
	}
	exec.Error = errText.String
	return &exec, nil
}
