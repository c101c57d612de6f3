package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shareit/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedUser(t *testing.T, db *DB, name, email string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: email}
	require.NoError(t, db.CreateUser(context.Background(), user))
	return user
}

func seedItem(t *testing.T, db *DB, ownerID int64, name string, available bool) *models.Item {
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

func seedBooking(t *testing.T, db *DB, itemID, bookerID int64, start, end time.Time, status string) *models.Booking {
	t.Helper()
	b := &models.Booking{
		Start:    start,
		End:      end,
		ItemID:   itemID,
		BookerID: bookerID,
		Status:   models.StatusWaiting,
	}
	require.NoError(t, db.CreateBooking(context.Background(), b))
	if status != models.StatusWaiting {
		require.NoError(t, db.DecideBookingIfWaiting(context.Background(), b.ID, status))
		b.Status = status
	}
	return b
}

func TestNewDB_DirectoryCreation(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "nested", "dir", "test.db")
	logger := zerolog.Nop()

	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, dbPath)
}

func TestNewDB_SchemaIsIdempotent(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")
	logger := zerolog.Nop()

	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopening on the same file re-runs schema creation.
	db, err = NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.PingContext(context.Background()))
}

func TestDeleteUser_CascadesToDependents(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "Owner", "owner@example.com")
	booker := seedUser(t, db, "Booker", "booker@example.com")
	item := seedItem(t, db, owner.ID, "Drill", true)
	booking := seedBooking(t, db, item.ID, booker.ID,
		time.Now().Add(-48*time.Hour), time.Now().Add(-24*time.Hour), models.StatusApproved)

	comment := &models.Comment{Text: "great", ItemID: item.ID, AuthorID: booker.ID, CreatedAt: time.Now()}
	require.NoError(t, db.CreateComment(ctx, comment))

	// Deleting the owner removes their items and everything hanging off them.
	require.NoError(t, db.DeleteUser(ctx, owner.ID))

	_, err := db.GetItem(ctx, item.ID)
	assert.ErrorIs(t, err, ErrNoRows)
	_, err = db.GetBooking(ctx, booking.ID)
	assert.ErrorIs(t, err, ErrNoRows)

	comments, err := db.GetCommentsByItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestDeleteRequest_DetachesItems(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	requester := seedUser(t, db, "Requester", "req@example.com")
	owner := seedUser(t, db, "Owner", "owner@example.com")

	request := &models.ItemRequest{Description: "need a ladder", RequesterID: requester.ID}
	require.NoError(t, db.CreateRequest(ctx, request))

	item := &models.Item{
		Name: "Ladder", Description: "tall", Available: true,
		OwnerID: owner.ID, RequestID: request.ID,
	}
	require.NoError(t, db.CreateItem(ctx, item))

	// Removing the requester deletes the request, but the offered item
	// survives with its reference cleared.
	require.NoError(t, db.DeleteUser(ctx, requester.ID))

	got, err := db.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.RequestID)
}

func TestConcurrentWrites(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	done := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func(n int) {
			user := &models.User{Name: fmt.Sprintf("user%d", n), Email: fmt.Sprintf("user%d@example.com", n)}
			done <- db.CreateUser(ctx, user)
		}(i)
	}
	for i := 0; i < 10; i++ {
		require.NoError(t, <-done)
	}

	users, err := db.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 10)
}

func TestMain(m *testing.M) {
	os.Exit(m.Run())
}
