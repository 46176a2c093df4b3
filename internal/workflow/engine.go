// Package workflow orchestrates the multi-stage approval workflow: it decides
// legal transitions from the routing table, verifies the actor through the
// permission oracle, applies the transition through the entity store's atomic
// contract and fires post-commit notifications.
package workflow

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/arslant84/syntra.production-sub009/internal/domain/entity"
	domain "github.com/arslant84/syntra.production-sub009/internal/domain/workflow"
	"github.com/arslant84/syntra.production-sub009/internal/notification"
	"github.com/arslant84/syntra.production-sub009/internal/permission"
	"github.com/arslant84/syntra.production-sub009/internal/repository"
	"go.uber.org/zap"
)

// Engine evaluates and applies workflow transitions.
type Engine struct {
	store      *repository.Store
	oracle     permission.Oracle
	dispatcher *notification.Dispatcher
	tracker    *ExecutionTracker
	logger     *zap.Logger
}

// NewEngine creates a new workflow engine
func NewEngine(
	store *repository.Store,
	oracle permission.Oracle,
	dispatcher *notification.Dispatcher,
	tracker *ExecutionTracker,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		store:      store,
		oracle:     oracle,
		dispatcher: dispatcher,
		tracker:    tracker,
		logger:     logger,
	}
}

// SubmitPayload is the request content supplied at submission time.
type SubmitPayload struct {
	RequestorName  string            `json:"requestor_name"`
	Department     string            `json:"department"`
	RequestorEmail string            `json:"requestor_email"`
	AdditionalData map[string]string `json:"additional_data,omitempty"`
}

// ActionResult is the outcome of a successful transition.
type ActionResult struct {
	Request      *entity.Request      `json:"request"`
	ResolvedStep *entity.ApprovalStep `json:"resolved_step,omitempty"`
}

// SubmitRequest creates a request and routes it straight to its first
// approval stage. The request row and the first pending step are written in
// one transaction; the submission notification goes out after commit.
func (e *Engine) SubmitRequest(ctx context.Context, reqType entity.RequestType, payload SubmitPayload, actor entity.Actor) (*entity.Request, error) {
	if !reqType.IsValid() {
		return nil, fmt.Errorf("%w: unknown request type %q", domain.ErrInvalidTransition, reqType)
	}

	first, ok := domain.FirstRoute(reqType)
	if !ok {
		return nil, fmt.Errorf("%w: no routing chain for type %q", domain.ErrInvalidTransition, reqType)
	}

	additional := "{}"
	if len(payload.AdditionalData) > 0 {
		data, err := json.Marshal(payload.AdditionalData)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal additional data: %w", err)
		}
		additional = string(data)
	}

	req := &entity.Request{
		ID:             NewRequestID(reqType),
		Type:           reqType,
		RequestorName:  payload.RequestorName,
		StaffID:        actor.StaffID,
		Department:     payload.Department,
		RequestorEmail: payload.RequestorEmail,
		Status:         first.Status,
		AdditionalData: additional,
	}

	exec, err := e.tracker.Start(req.ID, reqType, map[string]interface{}{
		"action":     domain.ActionSubmit.String(),
		"actor":      actor.StaffID,
		"department": payload.Department,
	})
	if err != nil {
		return nil, err
	}

	if err = e.store.CreateSubmitted(req, first.StepRole, first.StepName); err != nil {
		e.tracker.Complete(exec, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	e.tracker.Complete(exec, nil)

	e.logger.Info("Request submitted",
		zap.String("request_id", req.ID),
		zap.String("request_type", reqType.String()),
		zap.String("staff_id", actor.StaffID),
		zap.String("status", req.Status))

	e.dispatcher.DispatchSubmission(notification.SubmissionNotice{
		EntityType:     reqType.String(),
		EntityID:       req.ID,
		RequestorName:  payload.RequestorName,
		RequestorEmail: payload.RequestorEmail,
		Department:     payload.Department,
	})

	return req, nil
}

// ActOnRequest evaluates one action against a request. expectedStatus is
// optional: when set, the engine fails with StaleTransition if the request
// has moved since the caller read it.
func (e *Engine) ActOnRequest(
	ctx context.Context,
	requestID string,
	reqType entity.RequestType,
	action domain.Action,
	actor entity.Actor,
	comment string,
	expectedStatus string,
) (*ActionResult, error) {
	if !action.IsValid() {
		return nil, fmt.Errorf("%w: unknown action %q", domain.ErrInvalidTransition, action)
	}

	exec, err := e.tracker.Start(requestID, reqType, map[string]interface{}{
		"action": action.String(),
		"actor":  actor.StaffID,
	})
	if err != nil {
		return nil, err
	}

	result, err := e.evaluate(ctx, requestID, reqType, action, actor, comment, expectedStatus)
	e.tracker.Complete(exec, err)
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (e *Engine) evaluate(
	ctx context.Context,
	requestID string,
	reqType entity.RequestType,
	action domain.Action,
	actor entity.Actor,
	comment string,
	expectedStatus string,
) (*ActionResult, error) {
	req, err := e.store.Requests().GetByID(requestID, reqType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if req == nil {
		return nil, fmt.Errorf("%w: %s (%s)", domain.ErrNotFound, requestID, reqType)
	}

	if expectedStatus != "" && req.Status != expectedStatus {
		return nil, fmt.Errorf("%w: request %s is %q, caller expected %q",
			domain.ErrStaleTransition, requestID, req.Status, expectedStatus)
	}

	if domain.IsTerminal(req.Status) {
		return nil, fmt.Errorf("%w: request %s is already %s", domain.ErrInvalidTransition, requestID, req.Status)
	}

	switch action {
	case domain.ActionSubmit, domain.ActionResubmit:
		return e.submitDraft(ctx, req, actor)
	case domain.ActionCancel:
		return e.cancel(ctx, req, actor, comment)
	case domain.ActionApprove, domain.ActionReject:
		return e.resolveStage(ctx, req, action, actor, comment)
	default:
		return nil, fmt.Errorf("%w: action %q", domain.ErrInvalidTransition, action)
	}
}

// submitDraft routes a draft request to the first approval stage.
func (e *Engine) submitDraft(ctx context.Context, req *entity.Request, actor entity.Actor) (*ActionResult, error) {
	if req.Status != domain.StatusDraft {
		return nil, fmt.Errorf("%w: cannot submit request %s from status %q", domain.ErrInvalidTransition, req.ID, req.Status)
	}

	if err := e.authorizeRequestor(ctx, req, actor); err != nil {
		return nil, err
	}

	first, ok := domain.FirstRoute(req.Type)
	if !ok {
		return nil, fmt.Errorf("%w: no routing chain for type %q", domain.ErrInvalidTransition, req.Type)
	}

	if err := e.store.OpenFirstStep(req, first.Status, first.StepRole, first.StepName); err != nil {
		return nil, wrapStoreErr(err)
	}
	req.Status = first.Status

	e.dispatcher.DispatchSubmission(notification.SubmissionNotice{
		EntityType:     req.Type.String(),
		EntityID:       req.ID,
		RequestorName:  req.RequestorName,
		RequestorEmail: req.RequestorEmail,
		Department:     req.Department,
	})

	return &ActionResult{Request: req}, nil
}

// cancel moves a request to the absorbing Cancelled status from any
// non-terminal state. Only the requestor or an admin may cancel.
func (e *Engine) cancel(ctx context.Context, req *entity.Request, actor entity.Actor, comment string) (*ActionResult, error) {
	if err := e.authorizeRequestor(ctx, req, actor); err != nil {
		return nil, err
	}

	var step *entity.ApprovalStep
	var err error
	if req.Status == domain.StatusDraft {
		// No pending step exists yet; record the cancellation as its own step
		step, err = e.store.CancelDraft(req, actor, comment)
	} else {
		step, err = e.store.Apply(repository.Transition{
			RequestID:   req.ID,
			RequestType: req.Type,
			FromStatus:  req.Status,
			ToStatus:    domain.StatusCancelled,
			StepOutcome: entity.StepCancelled,
			Actor:       actor,
			Comment:     comment,
		})
	}
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	req.Status = domain.StatusCancelled

	e.notifyTransition(req, actor, comment)
	return &ActionResult{Request: req, ResolvedStep: step}, nil
}

// resolveStage applies approve or reject to the request's current stage.
func (e *Engine) resolveStage(ctx context.Context, req *entity.Request, action domain.Action, actor entity.Actor, comment string) (*ActionResult, error) {
	route, ok := domain.RouteFor(req.Type, req.Status)
	if !ok {
		return nil, fmt.Errorf("%w: no routing entry for %s at %q", domain.ErrInvalidTransition, req.Type, req.Status)
	}

	if err := e.authorizeStep(ctx, route, actor); err != nil {
		return nil, err
	}

	toStatus := domain.StatusRejected
	stepOutcome := entity.StepRejected
	nextRole, nextName := "", ""
	if action == domain.ActionApprove {
		toStatus = route.NextOnApprove
		stepOutcome = entity.StepApproved
		if !domain.IsTerminal(toStatus) {
			next, ok := domain.RouteFor(req.Type, toStatus)
			if !ok {
				return nil, fmt.Errorf("%w: routing table has no entry for %q", domain.ErrInvalidTransition, toStatus)
			}
			nextRole, nextName = next.StepRole, next.StepName
		}
	}

	step, err := e.store.Apply(repository.Transition{
		RequestID:   req.ID,
		RequestType: req.Type,
		FromStatus:  req.Status,
		ToStatus:    toStatus,
		StepOutcome: stepOutcome,
		Actor:       actor,
		Comment:     comment,
		NextRole:    nextRole,
		NextName:    nextName,
	})
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	req.Status = toStatus

	e.logger.Info("Request transitioned",
		zap.String("request_id", req.ID),
		zap.String("action", action.String()),
		zap.String("new_status", toStatus),
		zap.String("actor", actor.StaffID))

	e.notifyTransition(req, actor, comment)
	return &ActionResult{Request: req, ResolvedStep: step}, nil
}

// authorizeStep checks the actor holds the capability the current stage
// requires, or the admin override.
func (e *Engine) authorizeStep(ctx context.Context, route domain.Route, actor entity.Actor) error {
	ok, err := e.oracle.HasPermission(ctx, actor.StaffID, route.Capability)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if ok {
		return nil
	}

	admin, err := e.oracle.HasPermission(ctx, actor.StaffID, domain.AdminOverrideCapability)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if admin {
		return nil
	}

	e.logger.Warn("Unauthorized workflow action",
		zap.String("actor", actor.StaffID),
		zap.String("required_role", route.StepRole),
		zap.String("required_capability", route.Capability))
	return fmt.Errorf("%w: %s requires %s (%s)", domain.ErrUnauthorized, route.StepName, route.StepRole, route.Capability)
}

// authorizeRequestor allows the request owner or an admin.
func (e *Engine) authorizeRequestor(ctx context.Context, req *entity.Request, actor entity.Actor) error {
	if actor.StaffID == req.StaffID {
		return nil
	}
	admin, err := e.oracle.HasPermission(ctx, actor.StaffID, domain.AdminOverrideCapability)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if admin {
		return nil
	}

	e.logger.Warn("Unauthorized workflow action",
		zap.String("actor", actor.StaffID),
		zap.String("request_id", req.ID),
		zap.String("owner", req.StaffID))
	return fmt.Errorf("%w: only the requestor or an admin may do this", domain.ErrUnauthorized)
}

func (e *Engine) notifyTransition(req *entity.Request, actor entity.Actor, comment string) {
	e.dispatcher.DispatchApproval(notification.ApprovalNotice{
		EntityType:     req.Type.String(),
		EntityID:       req.ID,
		RequestorName:  req.RequestorName,
		RequestorEmail: req.RequestorEmail,
		NewStatus:      req.Status,
		ApproverName:   actor.Name,
		Comments:       comment,
	})
}

// GetExecutionStatus returns the latest execution for a request
func (e *Engine) GetExecutionStatus(ctx context.Context, requestID string, reqType entity.RequestType) (*entity.WorkflowExecution, error) {
	return e.tracker.Get(requestID, reqType)
}

// wrapStoreErr keeps taxonomy errors intact and tags everything else as a
// persistence failure.
func wrapStoreErr(err error) error {
	if domain.Kind(err) != "Internal" {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
}
