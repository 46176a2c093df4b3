package notification

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// ApprovalNotice carries what the requestor needs to know after a transition.
type ApprovalNotice struct {
	EntityType     string `json:"entity_type"`
	EntityID       string `json:"entity_id"`
	RequestorName  string `json:"requestor_name"`
	RequestorEmail string `json:"requestor_email"`
	NewStatus      string `json:"new_status"`
	ApproverName   string `json:"approver_name"`
	Comments       string `json:"comments"`
}

// SubmissionNotice is sent when a request enters the approval chain.
type SubmissionNotice struct {
	EntityType     string `json:"entity_type"`
	EntityID       string `json:"entity_id"`
	RequestorName  string `json:"requestor_name"`
	RequestorEmail string `json:"requestor_email"`
	Department     string `json:"department"`
}

// Sender delivers notifications over some transport (Lark in production).
type Sender interface {
	SendApprovalNotification(ctx context.Context, notice ApprovalNotice) error
	SendSubmissionNotification(ctx context.Context, notice SubmissionNotice) error
}

type job struct {
	approval   *ApprovalNotice
	submission *SubmissionNotice
}

// Dispatcher decouples notification delivery from the transition transaction.
// Enqueueing never blocks the caller and delivery failures are logged, never
// propagated: by the time a notice is enqueued the transition is durable.
type Dispatcher struct {
	sender Sender
	queue  chan job
	logger *zap.Logger

	stopOnce sync.Once
	done     chan struct{}
	wg       sync.WaitGroup
}

// NewDispatcher creates a dispatcher with the given queue capacity
func NewDispatcher(sender Sender, queueSize int, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		queue:  make(chan job, queueSize),
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start launches the delivery worker
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-d.done:
				return
			case j := <-d.queue:
				d.deliver(ctx, j)
			}
		}
	}()
	d.logger.Info("Notification dispatcher started", zap.Int("queue_size", cap(d.queue)))
}

// Stop shuts down the worker; queued notices that were not yet delivered are
// dropped, which the fire-and-forget contract allows
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.done)
	})
	d.wg.Wait()
	d.logger.Info("Notification dispatcher stopped")
}

// DispatchApproval enqueues an approval notice without blocking
func (d *Dispatcher) DispatchApproval(notice ApprovalNotice) {
	d.enqueue(job{approval: &notice})
}

// DispatchSubmission enqueues a submission notice without blocking
func (d *Dispatcher) DispatchSubmission(notice SubmissionNotice) {
	d.enqueue(job{submission: &notice})
}

func (d *Dispatcher) enqueue(j job) {
	select {
	case d.queue <- j:
	default:
		// Saturated queue: the transition is already durable, so shed load
		d.logger.Warn("Notification queue full, dropping notice")
	}
}

func (d *Dispatcher) deliver(ctx context.Context, j job) {
	var err error
	switch {
	case j.approval != nil:
		err = d.sender.SendApprovalNotification(ctx, *j.approval)
		if err != nil {
			d.logger.Error("Failed to send approval notification",
				zap.String("entity_id", j.approval.EntityID),
				zap.String("new_status", j.approval.NewStatus),
				zap.Error(err))
		}
	case j.submission != nil:
		err = d.sender.SendSubmissionNotification(ctx, *j.submission)
		if err != nil {
			d.logger.Error("Failed to send submission notification",
				zap.String("entity_id", j.submission.EntityID),
				zap.Error(err))
		}
	}
}

// NopSender discards all notices; used when notifications are disabled.
type NopSender struct{}

// SendApprovalNotification discards the notice
func (NopSender) SendApprovalNotification(context.Context, ApprovalNotice) error { return nil }

// SendSubmissionNotification discards the notice
func (NopSender) SendSubmissionNotification(context.Context, SubmissionNotice) error { return nil }
