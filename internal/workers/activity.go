package workers

import (
	"context"
	"fmt"

	"github.com/promanage/taskboard/internal/database"
	"github.com/promanage/taskboard/internal/queue"
	"go.uber.org/zap"
)

// ActivityRecorder consumes activity events from the job queue and
// materializes them into per-user activity rows.
type ActivityRecorder struct {
	activityRepo database.UserActivityStore
	jobQueue     queue.JobQueue
	logger       *zap.Logger
	prefetch     int
}

// NewActivityRecorder creates a new activity recorder
func NewActivityRecorder(activityRepo database.UserActivityStore, jobQueue queue.JobQueue, logger *zap.Logger, prefetch int) *ActivityRecorder {
	if prefetch <= 0 {
		prefetch = 1
	}
	return &ActivityRecorder{
		activityRepo: activityRepo,
		jobQueue:     jobQueue,
		logger:       logger,
		prefetch:     prefetch,
	}
}

// Start consumes events until ctx is cancelled.
func (r *ActivityRecorder) Start(ctx context.Context) error {
	messages, errs, err := r.jobQueue.Consume(ctx, r.prefetch)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	r.logger.Info("activity_recorder_started",
		zap.Int("prefetch", r.prefetch),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			r.logger.Error("queue_consume_error", zap.Error(err))
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			r.handleMessage(ctx, msg)
		}
	}
}

// handleMessage records one event. Failed jobs are retried by
// re-publishing a copy with a bumped retry count; jobs out of retries go
// to the DLQ via nack.
func (r *ActivityRecorder) handleMessage(ctx context.Context, msg queue.MessageInterface) {
	job := msg.GetJob()
	if job == nil {
		_ = msg.Nack(false)
		return
	}

	if err := r.recordJob(ctx, job); err != nil {
		r.logger.Error("failed_to_record_activity_event",
			zap.String("job_id", job.ID.String()),
			zap.String("job_type", string(job.Type)),
			zap.String("user_id", job.UserID.String()),
			zap.Int("retry_count", job.RetryCount),
			zap.Error(err),
		)

		if job.CanRetry() {
			job.IncrementRetry()
			if enqueueErr := r.jobQueue.Enqueue(ctx, job); enqueueErr != nil {
				r.logger.Error("failed_to_requeue_job", zap.Error(enqueueErr))
				_ = msg.Nack(false) // dead-letter the original
				return
			}
			_ = msg.Ack()
			return
		}

		_ = msg.Nack(false)
		return
	}

	r.logger.Debug("recorded_activity_event",
		zap.String("job_type", string(job.Type)),
		zap.String("user_id", job.UserID.String()),
	)
	_ = msg.Ack()
}

func (r *ActivityRecorder) recordJob(ctx context.Context, job *queue.Job) error {
	return r.activityRepo.RecordEvent(ctx, job.UserID, string(job.Type), job.CreatedAt)
}
