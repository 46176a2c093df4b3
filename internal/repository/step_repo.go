package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/arslant84/syntra.production-sub009/internal/domain/entity"
	"go.uber.org/zap"
)

// StepRepository handles approval step database operations
type StepRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStepRepository creates a new step repository
func NewStepRepository(db *sql.DB, logger *zap.Logger) *StepRepository {
	return &StepRepository{
		db:     db,
		logger: logger,
	}
}

// Append inserts a new approval step
func (r *StepRepository) Append(tx *sql.Tx, step *entity.ApprovalStep) error {
	query := `
		INSERT INTO approval_steps (
			request_id, request_type, seq, step_role, step_name, status,
			acted_at, approver_staff_id, approver_name, comments
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var result sql.Result
	var err error
	if tx != nil {
		result, err = tx.Exec(query,
			step.RequestID, step.RequestType, step.Seq, step.StepRole, step.StepName,
			step.Status, step.ActedAt, step.ApproverStaffID, step.ApproverName, step.Comments)
	} else {
		result, err = r.db.Exec(query,
			step.RequestID, step.RequestType, step.Seq, step.StepRole, step.StepName,
			step.Status, step.ActedAt, step.ApproverStaffID, step.ApproverName, step.Comments)
	}

	if err != nil {
		r.logger.Error("Failed to append step",
			zap.String("request_id", step.RequestID),
			zap.Int("seq", step.Seq),
			zap.Error(err))
		return fmt.Errorf("failed to append step: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	step.ID = id
	return nil
}

// ResolvePending fills in the outcome fields of the request's pending step.
// The WHERE clause only matches a step still in Pending state, so the number
// of rows affected tells the caller whether it won the race: zero means the
// step was already resolved by a concurrent transition.
func (r *StepRepository) ResolvePending(tx *sql.Tx, requestID, outcome string, actor entity.Actor, comment string, at time.Time) (int64, error) {
	query := `
		UPDATE approval_steps
		SET status = ?, acted_at = ?, approver_staff_id = ?, approver_name = ?, comments = ?
		WHERE request_id = ? AND status = 'Pending'
	`

	var result sql.Result
	var err error
	if tx != nil {
		result, err = tx.Exec(query, outcome, at, actor.StaffID, actor.Name, comment, requestID)
	} else {
		result, err = r.db.Exec(query, outcome, at, actor.StaffID, actor.Name, comment, requestID)
	}

	if err != nil {
		r.logger.Error("Failed to resolve pending step",
			zap.String("request_id", requestID),
			zap.String("outcome", outcome),
			zap.Error(err))
		return 0, fmt.Errorf("failed to resolve pending step: %w", err)
	}

	return result.RowsAffected()
}

// NextSeq returns the next step sequence number for a request. Sequence
// numbers are contiguous starting at 1.
func (r *StepRepository) NextSeq(tx *sql.Tx, requestID string) (int, error) {
	query := `SELECT COALESCE(MAX(seq), 0) + 1 FROM approval_steps WHERE request_id = ?`

	var seq int
	var err error
	if tx != nil {
		err = tx.QueryRow(query, requestID).Scan(&seq)
	} else {
		err = r.db.QueryRow(query, requestID).Scan(&seq)
	}

	if err != nil {
		return 0, fmt.Errorf("failed to get next seq: %w", err)
	}
	return seq, nil
}

const stepColumns = `
	id, request_id, request_type, seq, step_role, step_name, status,
	acted_at, approver_staff_id, approver_name, comments, created_at
`

func scanStep(scanner interface {
	Scan(dest ...interface{}) error
}) (*entity.ApprovalStep, error) {
	var step entity.ApprovalStep
	var actedAt sql.NullTime
	var approverStaffID, approverName, comments sql.NullString

	err := scanner.Scan(
		&step.ID, &step.RequestID, &step.RequestType, &step.Seq,
		&step.StepRole, &step.StepName, &step.Status,
		&actedAt, &approverStaffID, &approverName, &comments, &step.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if actedAt.Valid {
		step.ActedAt = &actedAt.Time
	}
	step.ApproverStaffID = approverStaffID.String
	step.ApproverName = approverName.String
	step.Comments = comments.String
	return &step, nil
}

// GetPending returns the request's current pending step, or nil when none
// remains (the request is terminal or still in draft)
func (r *StepRepository) GetPending(requestID string) (*entity.ApprovalStep, error) {
	query := `SELECT ` + stepColumns + ` FROM approval_steps WHERE request_id = ? AND status = 'Pending'`

	step, err := scanStep(r.db.QueryRow(query, requestID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get pending step", zap.String("request_id", requestID), zap.Error(err))
		return nil, fmt.Errorf("failed to get pending step: %w", err)
	}
	return step, nil
}

// GetBySeq returns one step by its sequence number
func (r *StepRepository) GetBySeq(requestID string, seq int) (*entity.ApprovalStep, error) {
	query := `SELECT ` + stepColumns + ` FROM approval_steps WHERE request_id = ? AND seq = ?`

	step, err := scanStep(r.db.QueryRow(query, requestID, seq))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get step: %w", err)
	}
	return step, nil
}

// ListByRequest returns all steps of a request in sequence order
func (r *StepRepository) ListByRequest(requestID string) ([]*entity.ApprovalStep, error) {
	query := `SELECT ` + stepColumns + ` FROM approval_steps WHERE request_id = ? ORDER BY seq ASC`

	rows, err := r.db.Query(query, requestID)
	if err != nil {
		r.logger.Error("Failed to list steps", zap.String("request_id", requestID), zap.Error(err))
		return nil, fmt.Errorf("failed to list steps: %w", err)
	}
	defer rows.Close()

	var steps []*entity.ApprovalStep
	for rows.Next() {
		step, err := scanStep(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		steps = append(steps, step)
	}

	return steps, rows.Err()
}
