package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/arslant84/syntra.production-sub009/internal/domain/entity"
	"github.com/arslant84/syntra.production-sub009/internal/domain/workflow"
	"github.com/arslant84/syntra.production-sub009/pkg/database"
	"go.uber.org/zap"
)

// Store is the entity store for requests and their step history. All status
// mutation funnels through Transition so a request can never hold a status
// without a matching step record.
type Store struct {
	db       *database.DB
	requests *RequestRepository
	steps    *StepRepository
	logger   *zap.Logger
}

// NewStore creates a new entity store
func NewStore(db *database.DB, requests *RequestRepository, steps *StepRepository, logger *zap.Logger) *Store {
	return &Store{
		db:       db,
		requests: requests,
		steps:    steps,
		logger:   logger,
	}
}

// Requests exposes read access to the request repository
func (s *Store) Requests() *RequestRepository { return s.requests }

// Steps exposes read access to the step repository
func (s *Store) Steps() *StepRepository { return s.steps }

// GetStatus returns the current status of a request
func (s *Store) GetStatus(requestID string, reqType entity.RequestType) (string, error) {
	req, err := s.requests.GetByID(requestID, reqType)
	if err != nil {
		return "", err
	}
	if req == nil {
		return "", workflow.ErrNotFound
	}
	return req.Status, nil
}

// Transition is one atomic workflow transition: resolve the pending step,
// move the request status, and open the next pending step when the chain
// continues.
type Transition struct {
	RequestID   string
	RequestType entity.RequestType
	FromStatus  string
	ToStatus    string
	StepOutcome string // Approved, Rejected or Cancelled
	Actor       entity.Actor
	Comment     string
	NextRole    string // role of the next pending step; empty when ToStatus is terminal
	NextName    string
}

// Apply runs the transition as a single transaction. Both the step resolution
// and the status write are guarded by the values read inside the transaction;
// if either touches zero rows a concurrent transition already resolved the
// same step and ErrStaleTransition is returned with nothing committed.
func (s *Store) Apply(t Transition) (*entity.ApprovalStep, error) {
	now := time.Now()
	var resolved *entity.ApprovalStep

	err := s.db.WithTransaction(func(tx *sql.Tx) error {
		n, err := s.steps.ResolvePending(tx, t.RequestID, t.StepOutcome, t.Actor, t.Comment, now)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: pending step already resolved for %s", workflow.ErrStaleTransition, t.RequestID)
		}

		n, err = s.requests.UpdateStatusIf(tx, t.RequestID, t.ToStatus, t.FromStatus)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: status of %s no longer %s", workflow.ErrStaleTransition, t.RequestID, t.FromStatus)
		}

		if t.NextRole != "" {
			seq, err := s.steps.NextSeq(tx, t.RequestID)
			if err != nil {
				return err
			}
			next := &entity.ApprovalStep{
				RequestID:   t.RequestID,
				RequestType: t.RequestType,
				Seq:         seq,
				StepRole:    t.NextRole,
				StepName:    t.NextName,
				Status:      entity.StepPending,
			}
			if err := s.steps.Append(tx, next); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Transition applied",
		zap.String("request_id", t.RequestID),
		zap.String("from", t.FromStatus),
		zap.String("to", t.ToStatus),
		zap.String("outcome", t.StepOutcome),
		zap.String("actor", t.Actor.StaffID))

	// Re-read the resolved step for the caller; it is durable at this point
	steps, err := s.steps.ListByRequest(t.RequestID)
	if err != nil {
		return nil, err
	}
	for i := len(steps) - 1; i >= 0; i-- {
		if steps[i].Status == t.StepOutcome {
			resolved = steps[i]
			break
		}
	}
	return resolved, nil
}

// CreateSubmitted creates a request already routed to its first approval
// stage, with the first pending step, in one transaction.
func (s *Store) CreateSubmitted(req *entity.Request, firstRole, firstName string) error {
	now := time.Now()
	req.SubmittedAt = &now

	return s.db.WithTransaction(func(tx *sql.Tx) error {
		if err := s.requests.Create(tx, req); err != nil {
			return err
		}
		step := &entity.ApprovalStep{
			RequestID:   req.ID,
			RequestType: req.Type,
			Seq:         1,
			StepRole:    firstRole,
			StepName:    firstName,
			Status:      entity.StepPending,
		}
		return s.steps.Append(tx, step)
	})
}

// CancelDraft cancels a request that never entered the approval chain. There
// is no pending step to resolve, so the cancellation is recorded as its own
// resolved step for the audit trail.
func (s *Store) CancelDraft(req *entity.Request, actor entity.Actor, comment string) (*entity.ApprovalStep, error) {
	now := time.Now()
	step := &entity.ApprovalStep{
		RequestID:       req.ID,
		RequestType:     req.Type,
		StepRole:        "Requestor",
		StepName:        "Cancelled before submission",
		Status:          entity.StepCancelled,
		ActedAt:         &now,
		ApproverStaffID: actor.StaffID,
		ApproverName:    actor.Name,
		Comments:        comment,
	}

	err := s.db.WithTransaction(func(tx *sql.Tx) error {
		n, err := s.requests.UpdateStatusIf(tx, req.ID, workflow.StatusCancelled, req.Status)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: status of %s no longer %s", workflow.ErrStaleTransition, req.ID, req.Status)
		}
		seq, err := s.steps.NextSeq(tx, req.ID)
		if err != nil {
			return err
		}
		step.Seq = seq
		return s.steps.Append(tx, step)
	})
	if err != nil {
		return nil, err
	}
	return step, nil
}

// OpenFirstStep routes a draft request to its first approval stage: stamps
// the submission time, moves the status off Draft and opens the first
// pending step.
func (s *Store) OpenFirstStep(req *entity.Request, firstStatus, firstRole, firstName string) error {
	now := time.Now()

	return s.db.WithTransaction(func(tx *sql.Tx) error {
		n, err := s.requests.UpdateStatusIf(tx, req.ID, firstStatus, req.Status)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: status of %s no longer %s", workflow.ErrStaleTransition, req.ID, req.Status)
		}
		if err := s.requests.SetSubmittedAt(tx, req.ID, now); err != nil {
			return err
		}
		seq, err := s.steps.NextSeq(tx, req.ID)
		if err != nil {
			return err
		}
		step := &entity.ApprovalStep{
			RequestID:   req.ID,
			RequestType: req.Type,
			Seq:         seq,
			StepRole:    firstRole,
			StepName:    firstName,
			Status:      entity.StepPending,
		}
		return s.steps.Append(tx, step)
	})
}
