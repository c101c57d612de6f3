package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"shareit/internal/database"
	"shareit/internal/models"
)

// fixedClock pins "now" so temporal filters are deterministic.
type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time {
	return c.t
}

// recordingWorker captures enqueued export tasks.
type recordingWorker struct {
	tasks []string
}

func (w *recordingWorker) EnqueueTask(_ context.Context, taskType string, booking *models.Booking) error {
	w.tasks = append(w.tasks, taskType)
	return nil
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func createUser(t *testing.T, db *database.DB, name, email string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: email}
	require.NoError(t, db.CreateUser(context.Background(), user))
	return user
}

func createItem(t *testing.T, db *database.DB, ownerID int64, name string, available bool) *models.Item {
	t.Helper()
	item := &models.Item{
		Name:        name,
		Description: name + " description",
		Available:   available,
		OwnerID:     ownerID,
	}
	require.NoError(t, db.CreateItem(context.Background(), item))
	return item
}
