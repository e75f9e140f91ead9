package river

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"
)

// ModerationWorker records committed moderation events in the service log.
type ModerationWorker struct {
	river.WorkerDefaults[ModerationJobArgs]
	logger *slog.Logger
}

// NewModerationWorker returns a worker logging to logger, or slog.Default when nil.
func NewModerationWorker(logger *slog.Logger) *ModerationWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &ModerationWorker{logger: logger}
}

func (w *ModerationWorker) Work(ctx context.Context, job *river.Job[ModerationJobArgs]) error {
	attrs := []any{
		"event", job.Args.Event,
		"vendor_id", job.Args.VendorID,
		"status", job.Args.Status,
		"job_id", job.ID,
		"attempt", job.Attempt,
	}
	if job.Args.ApprovedByID != "" {
		attrs = append(attrs, "approved_by_id", job.Args.ApprovedByID)
	}
	w.logger.InfoContext(ctx, "vendor moderated", attrs...)
	return nil
}
