package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shareit/internal/database"
)

func newRequestService(db *database.DB) *RequestService {
	return NewRequestService(db, fixedClock{t: time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)}, testLogger())
}

func TestRequestCreate(t *testing.T) {
	db := newTestDB(t)
	svc := newRequestService(db)
	ctx := context.Background()
	alice := createUser(t, db, "Alice", "alice@example.com")

	request, err := svc.Create(ctx, alice.ID, "Need a drill")
	require.NoError(t, err)
	assert.NotZero(t, request.ID)
	assert.Equal(t, alice.ID, request.RequesterID)

	_, err = svc.Create(ctx, alice.ID, "")
	assert.ErrorIs(t, err, ErrBadRequest)

	_, err = svc.Create(ctx, 999, "Need a saw")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRequestGetAllByUser(t *testing.T) {
	db := newTestDB(t)
	svc := newRequestService(db)
	ctx := context.Background()
	alice := createUser(t, db, "Alice", "alice@example.com")
	bob := createUser(t, db, "Bob", "bob@example.com")

	first, err := svc.Create(ctx, alice.ID, "Need a drill")
	require.NoError(t, err)
	second, err := svc.Create(ctx, alice.ID, "Need a saw")
	require.NoError(t, err)
	_, err = svc.Create(ctx, bob.ID, "Need a ladder")
	require.NoError(t, err)

	offered := createItem(t, db, bob.ID, "Drill", true)
	offered.RequestID = first.ID
	require.NoError(t, db.UpdateItem(ctx, offered))

	got, err := svc.GetAllByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, second.ID, got[1].ID)
	require.Len(t, got[0].Items, 1)
	assert.Equal(t, offered.ID, got[0].Items[0].ID)
	assert.NotNil(t, got[1].Items)
	assert.Empty(t, got[1].Items)

	_, err = svc.GetAllByUser(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRequestGetAll_ExcludesOwn(t *testing.T) {
	db := newTestDB(t)
	svc := newRequestService(db)
	ctx := context.Background()
	alice := createUser(t, db, "Alice", "alice@example.com")
	bob := createUser(t, db, "Bob", "bob@example.com")

	_, err := svc.Create(ctx, alice.ID, "Need a drill")
	require.NoError(t, err)
	bobs, err := svc.Create(ctx, bob.ID, "Need a saw")
	require.NoError(t, err)

	got, err := svc.GetAll(ctx, alice.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, bobs.ID, got[0].ID)

	empty, err := svc.GetAll(ctx, bob.ID, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRequestGetByID(t *testing.T) {
	db := newTestDB(t)
	svc := newRequestService(db)
	ctx := context.Background()
	alice := createUser(t, db, "Alice", "alice@example.com")
	bob := createUser(t, db, "Bob", "bob@example.com")

	request, err := svc.Create(ctx, alice.ID, "Need a drill")
	require.NoError(t, err)

	// Any known user may read any request.
	got, err := svc.GetByID(ctx, request.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, request.ID, got.ID)
	assert.NotNil(t, got.Items)

	_, err = svc.GetByID(ctx, 999, bob.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetByID(ctx, request.ID, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
