package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/assetiq/backend/pkg/queue"
)

// ReminderSink records that a reminder was dispatched.
type ReminderSink interface {
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
}

// ReminderDispatcher consumes reminder email jobs and delivers them. Actual
// SMTP delivery is delegated to the notification gateway; here the dispatch
// is a structured log plus the sent-state update.
type ReminderDispatcher struct {
	reminders ReminderSink
	queue     *queue.Queue
	logger    *zap.Logger
}

// NewReminderDispatcher creates a reminder email dispatcher.
func NewReminderDispatcher(reminders ReminderSink, q *queue.Queue, logger *zap.Logger) *ReminderDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderDispatcher{reminders: reminders, queue: q, logger: logger}
}

// Process executes one reminder email job.
func (d *ReminderDispatcher) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeReminderEmail {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.ReminderEmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	d.logger.Info("reminder email dispatched",
		zap.String("reminder_id", payload.ReminderID.String()),
		zap.String("org_id", payload.OrgID.String()),
		zap.String("recipient", payload.RecipientEmail),
		zap.String("subject", payload.Subject),
	)

	if err := d.reminders.MarkSent(ctx, payload.ReminderID, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (d *ReminderDispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("reminder dispatcher stopping")
			return
		default:
		}

		job, _, err := d.queue.Dequeue(ctx)
		if err != nil {
			d.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		d.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := d.Process(ctx, job); err != nil {
			d.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := d.queue.Retry(ctx, job); reErr != nil {
				d.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
