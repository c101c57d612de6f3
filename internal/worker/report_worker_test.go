package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shareit/internal/database"
	"shareit/internal/models"
)

type fakeSink struct {
	upserts  []int64
	statuses map[int64]string
	err      error
}

func newFakeSink() *fakeSink {
	return &fakeSink{statuses: make(map[int64]string)}
}

func (s *fakeSink) UpsertBooking(booking *models.Booking) error {
	if s.err != nil {
		return s.err
	}
	s.upserts = append(s.upserts, booking.ID)
	return nil
}

func (s *fakeSink) UpdateBookingStatus(bookingID int64, status string) error {
	if s.err != nil {
		return s.err
	}
	s.statuses[bookingID] = status
	return nil
}

func newWorkerDB(t *testing.T) *database.DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedBooking(t *testing.T, db *database.DB) *models.Booking {
	t.Helper()
	ctx := context.Background()
	owner := &models.User{Name: "Owner", Email: "owner@example.com"}
	require.NoError(t, db.CreateUser(ctx, owner))
	booker := &models.User{Name: "Booker", Email: "booker@example.com"}
	require.NoError(t, db.CreateUser(ctx, booker))
	item := &models.Item{Name: "Drill", Description: "d", Available: true, OwnerID: owner.ID}
	require.NoError(t, db.CreateItem(ctx, item))
	booking := &models.Booking{
		Start:    time.Now().Add(time.Hour),
		End:      time.Now().Add(2 * time.Hour),
		ItemID:   item.ID,
		BookerID: booker.ID,
		Status:   models.StatusWaiting,
	}
	require.NoError(t, db.CreateBooking(ctx, booking))
	return booking
}

func TestEnqueueTask_Validation(t *testing.T) {
	w := NewReportWorker(newWorkerDB(t), nil, RetryPolicy{}, zerolog.Nop())
	ctx := context.Background()

	assert.Error(t, w.EnqueueTask(ctx, "", &models.Booking{ID: 1}))
	assert.Error(t, w.EnqueueTask(ctx, TaskUpsert, nil))
	assert.Error(t, w.EnqueueTask(ctx, TaskUpsert, &models.Booking{}))
}

func TestReportWorker_AppliesToAllSinks(t *testing.T) {
	db := newWorkerDB(t)
	first, second := newFakeSink(), newFakeSink()
	w := NewReportWorker(db, []ReportSink{first, second}, RetryPolicy{}, zerolog.Nop())
	ctx := context.Background()
	booking := seedBooking(t, db)

	require.NoError(t, w.EnqueueTask(ctx, TaskUpsert, booking))
	booking.Status = models.StatusApproved
	require.NoError(t, w.EnqueueTask(ctx, TaskUpdateStatus, booking))

	w.ProcessPending(ctx)

	for _, sink := range []*fakeSink{first, second} {
		assert.Equal(t, []int64{booking.ID}, sink.upserts)
		assert.Equal(t, models.StatusApproved, sink.statuses[booking.ID])
	}

	pending, err := db.GetPendingExportTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "completed tasks leave the queue")
}

func TestReportWorker_RetriesThenParks(t *testing.T) {
	db := newWorkerDB(t)
	sink := newFakeSink()
	sink.err = errors.New("sheets unavailable")
	w := NewReportWorker(db, []ReportSink{sink}, RetryPolicy{MaxRetries: 2}, zerolog.Nop())
	ctx := context.Background()
	booking := seedBooking(t, db)

	require.NoError(t, w.EnqueueTask(ctx, TaskUpsert, booking))
	pending, err := db.GetPendingExportTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	taskID := pending[0].ID

	// First failure schedules a retry in the future, hiding the row from
	// the next polling pass.
	w.ProcessPending(ctx)
	pending, err = db.GetPendingExportTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// Bring the retry due and fail it past the attempt budget.
	past := time.Now().Add(-time.Second)
	require.NoError(t, db.UpdateExportTaskStatus(ctx, taskID, "retry", "forced due", &past))
	w.ProcessPending(ctx)

	dead, err := db.GetDeadExportTasks(ctx)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, taskID, dead[0].ID)
	assert.Equal(t, "sheets unavailable", dead[0].LastError)
	assert.NotNil(t, dead[0].ProcessedAt)
	assert.Empty(t, sink.upserts)
}

func TestReportWorker_RecoversAfterSinkHeals(t *testing.T) {
	db := newWorkerDB(t)
	sink := newFakeSink()
	sink.err = errors.New("transient")
	w := NewReportWorker(db, []ReportSink{sink}, RetryPolicy{MaxRetries: 5}, zerolog.Nop())
	ctx := context.Background()
	booking := seedBooking(t, db)

	require.NoError(t, w.EnqueueTask(ctx, TaskUpsert, booking))
	pending, err := db.GetPendingExportTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	taskID := pending[0].ID

	w.ProcessPending(ctx)

	sink.err = nil
	past := time.Now().Add(-time.Second)
	require.NoError(t, db.UpdateExportTaskStatus(ctx, taskID, "retry", "transient", &past))
	w.ProcessPending(ctx)

	assert.Equal(t, []int64{booking.ID}, sink.upserts)
	pending, err = db.GetPendingExportTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestReportWorker_MalformedPayloadParksImmediately(t *testing.T) {
	db := newWorkerDB(t)
	sink := newFakeSink()
	w := NewReportWorker(db, []ReportSink{sink}, RetryPolicy{}, zerolog.Nop())
	ctx := context.Background()

	task := models.ExportTask{TaskType: TaskUpsert, BookingID: 1, Payload: "{not json", Status: "pending"}
	require.NoError(t, db.CreateExportTask(ctx, &task))

	w.ProcessPending(ctx)

	dead, err := db.GetDeadExportTasks(ctx)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, task.ID, dead[0].ID)
}

func TestRetryPolicy_NextDelay(t *testing.T) {
	policy := RetryPolicy{InitialDelay: time.Second, MaxDelay: 10 * time.Second, BackoffFactor: 2, MaxRetries: 5}

	assert.Equal(t, time.Second, policy.NextDelay(1))
	assert.Equal(t, 2*time.Second, policy.NextDelay(2))
	assert.Equal(t, 4*time.Second, policy.NextDelay(3))
	assert.Equal(t, 10*time.Second, policy.NextDelay(5), "clamped to MaxDelay")
	assert.Equal(t, time.Second, policy.NextDelay(0), "attempt floor")
}
