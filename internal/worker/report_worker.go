package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"shareit/internal/database"
	"shareit/internal/models"
)

const (
	TaskUpsert       = "upsert"
	TaskUpdateStatus = "update_status"
)

// taskPayload is persisted in ExportTask.Payload as JSON.
type taskPayload struct {
	BookingID int64           `json:"booking_id"`
	Booking   *models.Booking `json:"booking,omitempty"`
	Status    string          `json:"status,omitempty"`
}

// ReportSink receives booking changes. Implementations mirror bookings
// into an external report (xlsx file, Google Sheets).
type ReportSink interface {
	UpsertBooking(booking *models.Booking) error
	UpdateBookingStatus(bookingID int64, status string) error
}

// ReportWorker drains the export_queue table and applies each task to
// every configured sink. Failed tasks are retried with backoff and
// eventually parked as dead.
type ReportWorker struct {
	db           *database.DB
	sinks        []ReportSink
	retryPolicy  RetryPolicy
	queue        chan models.ExportTask
	pollInterval time.Duration
	batchSize    int
	logger       zerolog.Logger
}

func NewReportWorker(db *database.DB, sinks []ReportSink, retry RetryPolicy, logger zerolog.Logger) *ReportWorker {
	return &ReportWorker{
		db:           db,
		sinks:        sinks,
		retryPolicy:  retry.withDefaults(),
		queue:        make(chan models.ExportTask, models.WorkerQueueSize),
		pollInterval: 2 * time.Second,
		batchSize:    20,
		logger:       logger,
	}
}

// EnqueueTask persists the task and nudges the worker. The database row
// is the source of truth; the channel only wakes the loop early, so a
// full channel is not an error.
func (w *ReportWorker) EnqueueTask(ctx context.Context, taskType string, booking *models.Booking) error {
	if taskType == "" {
		return errors.New("task type is required")
	}
	if booking == nil || booking.ID == 0 {
		return errors.New("booking id is required")
	}

	payload := taskPayload{
		BookingID: booking.ID,
		Booking:   booking,
		Status:    booking.Status,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode task payload: %w", err)
	}

	task := models.ExportTask{
		TaskType:  taskType,
		BookingID: booking.ID,
		Payload:   string(data),
		Status:    "pending",
	}
	if err := w.db.CreateExportTask(ctx, &task); err != nil {
		return fmt.Errorf("failed to persist export task: %w", err)
	}

	select {
	case w.queue <- task:
	default:
	}
	return nil
}

// Run processes tasks until ctx is cancelled.
func (w *ReportWorker) Run(ctx context.Context) {
	w.logger.Info().Msg("report worker started")
	defer w.logger.Info().Msg("report worker stopped")

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.queue:
			// Woken early; the poll below picks the row up.
		case <-ticker.C:
		}
		w.drainPending(ctx)
	}
}

// ProcessPending runs one polling pass. Exposed for callers that drive
// the worker manually.
func (w *ReportWorker) ProcessPending(ctx context.Context) {
	w.drainPending(ctx)
}

func (w *ReportWorker) drainPending(ctx context.Context) {
	for {
		tasks, err := w.db.GetPendingExportTasks(ctx, w.batchSize)
		if err != nil {
			w.logger.Error().Err(err).Msg("failed to fetch pending export tasks")
			return
		}
		if len(tasks) == 0 {
			return
		}
		for i := range tasks {
			if ctx.Err() != nil {
				return
			}
			w.processTask(ctx, &tasks[i])
		}
		if len(tasks) < w.batchSize {
			return
		}
	}
}

func (w *ReportWorker) processTask(ctx context.Context, task *models.ExportTask) {
	var payload taskPayload
	if err := json.Unmarshal([]byte(task.Payload), &payload); err != nil {
		w.park(ctx, task, fmt.Errorf("failed to decode payload: %w", err))
		return
	}

	if err := w.apply(task.TaskType, payload); err != nil {
		w.retryOrPark(ctx, task, err)
		return
	}

	if err := w.db.UpdateExportTaskStatus(ctx, task.ID, "done", "", nil); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("failed to mark export task done")
	}
}

func (w *ReportWorker) apply(taskType string, payload taskPayload) error {
	for _, sink := range w.sinks {
		var err error
		switch taskType {
		case TaskUpsert:
			if payload.Booking == nil {
				return errors.New("booking payload missing")
			}
			err = sink.UpsertBooking(payload.Booking)
		case TaskUpdateStatus:
			if payload.BookingID == 0 || payload.Status == "" {
				return errors.New("booking id or status missing")
			}
			err = sink.UpdateBookingStatus(payload.BookingID, payload.Status)
		default:
			return fmt.Errorf("unknown task type: %s", taskType)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *ReportWorker) retryOrPark(ctx context.Context, task *models.ExportTask, cause error) {
	attempt := task.RetryCount + 1
	if attempt >= w.retryPolicy.MaxRetries {
		w.park(ctx, task, cause)
		return
	}

	nextTime := time.Now().Add(w.retryPolicy.NextDelay(attempt))
	if err := w.db.UpdateExportTaskStatus(ctx, task.ID, "retry", cause.Error(), &nextTime); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("failed to mark export task for retry")
	}
	w.logger.Warn().Err(cause).Int64("task_id", task.ID).Int("attempt", attempt).Msg("export task failed, will retry")
}

func (w *ReportWorker) park(ctx context.Context, task *models.ExportTask, cause error) {
	if err := w.db.UpdateExportTaskStatus(ctx, task.ID, "dead", cause.Error(), nil); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("failed to mark export task dead")
	}
	w.logger.Error().Err(cause).Int64("task_id", task.ID).Int64("booking_id", task.BookingID).Msg("export task parked as dead")
}
