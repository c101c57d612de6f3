package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shareit/internal/models"
)

func TestCreateAndGetBooking(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "Owner", "owner@example.com")
	booker := seedUser(t, db, "Booker", "booker@example.com")
	item := seedItem(t, db, owner.ID, "Drill", true)

	start := time.Now().Add(24 * time.Hour)
	b := seedBooking(t, db, item.ID, booker.ID, start, start.Add(48*time.Hour), models.StatusWaiting)
	require.NotZero(t, b.ID)

	got, err := db.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
	assert.Equal(t, item.ID, got.ItemID)
	assert.Equal(t, "Drill", got.ItemName)
	assert.Equal(t, booker.ID, got.BookerID)
	assert.Equal(t, models.StatusWaiting, got.Status)
}

func TestGetBooking_NotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetBooking(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestDecideBookingIfWaiting_OneShot(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "Owner", "owner@example.com")
	booker := seedUser(t, db, "Booker", "booker@example.com")
	item := seedItem(t, db, owner.ID, "Drill", true)

	start := time.Now().Add(24 * time.Hour)
	b := seedBooking(t, db, item.ID, booker.ID, start, start.Add(time.Hour), models.StatusWaiting)

	require.NoError(t, db.DecideBookingIfWaiting(ctx, b.ID, models.StatusApproved))

	// The WAITING precondition makes any second decision fail, including
	// flipping to the other terminal status.
	err := db.DecideBookingIfWaiting(ctx, b.ID, models.StatusRejected)
	assert.ErrorIs(t, err, ErrAlreadyDecided)
	err = db.DecideBookingIfWaiting(ctx, b.ID, models.StatusApproved)
	assert.ErrorIs(t, err, ErrAlreadyDecided)

	got, err := db.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)
}

func TestDecideBookingIfWaiting_MissingBooking(t *testing.T) {
	db := setupTestDB(t)

	err := db.DecideBookingIfWaiting(context.Background(), 99, models.StatusApproved)
	assert.ErrorIs(t, err, ErrAlreadyDecided)
}

// bookingFixture seeds one booking per temporal state for a single
// booker and owner pair.
type bookingFixture struct {
	owner, booker   *models.User
	item            *models.Item
	past, current   *models.Booking
	future, waiting *models.Booking
	rejected        *models.Booking
	now             time.Time
	db              *DB
}

func setupBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	db := setupTestDB(t)
	f := &bookingFixture{db: db, now: time.Now()}

	f.owner = seedUser(t, db, "Owner", "owner@example.com")
	f.booker = seedUser(t, db, "Booker", "booker@example.com")
	f.item = seedItem(t, db, f.owner.ID, "Drill", true)

	day := 24 * time.Hour
	f.past = seedBooking(t, db, f.item.ID, f.booker.ID, f.now.Add(-3*day), f.now.Add(-2*day), models.StatusApproved)
	f.current = seedBooking(t, db, f.item.ID, f.booker.ID, f.now.Add(-day), f.now.Add(day), models.StatusApproved)
	f.future = seedBooking(t, db, f.item.ID, f.booker.ID, f.now.Add(2*day), f.now.Add(3*day), models.StatusApproved)
	f.waiting = seedBooking(t, db, f.item.ID, f.booker.ID, f.now.Add(4*day), f.now.Add(5*day), models.StatusWaiting)
	f.rejected = seedBooking(t, db, f.item.ID, f.booker.ID, f.now.Add(6*day), f.now.Add(7*day), models.StatusRejected)
	return f
}

func bookingIDs(bookings []*models.Booking) []int64 {
	ids := make([]int64, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
	}
	return ids
}

func TestGetBookingsByParty_StateFilters(t *testing.T) {
	f := setupBookingFixture(t)
	ctx := context.Background()

	cases := []struct {
		state models.BookingState
		want  []int64
	}{
		{models.StateAll, []int64{f.rejected.ID, f.waiting.ID, f.future.ID, f.current.ID, f.past.ID}},
		{models.StateCurrent, []int64{f.current.ID}},
		{models.StatePast, []int64{f.past.ID}},
		{models.StateFuture, []int64{f.rejected.ID, f.waiting.ID, f.future.ID}},
		{models.StateWaiting, []int64{f.waiting.ID}},
		{models.StateRejected, []int64{f.rejected.ID}},
	}

	for _, tc := range cases {
		t.Run(string(tc.state), func(t *testing.T) {
			for _, role := range []models.Role{models.RoleBooker, models.RoleOwner} {
				userID := f.booker.ID
				if role == models.RoleOwner {
					userID = f.owner.ID
				}
				got, err := f.db.GetBookingsByParty(ctx, role, userID, tc.state, f.now, 0, 50)
				require.NoError(t, err)
				assert.Equal(t, tc.want, bookingIDs(got), "role %s", role)
			}
		})
	}
}

func TestGetBookingsByParty_RoleScoping(t *testing.T) {
	f := setupBookingFixture(t)
	ctx := context.Background()

	// A user with no bookings in either role sees nothing.
	stranger := seedUser(t, f.db, "Stranger", "stranger@example.com")
	for _, role := range []models.Role{models.RoleBooker, models.RoleOwner} {
		got, err := f.db.GetBookingsByParty(ctx, role, stranger.ID, models.StateAll, f.now, 0, 50)
		require.NoError(t, err)
		assert.Empty(t, got)
	}

	// The owner is not a booker: owner role matches, booker role does not.
	got, err := f.db.GetBookingsByParty(ctx, models.RoleBooker, f.owner.ID, models.StateAll, f.now, 0, 50)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetBookingsByParty_Pagination(t *testing.T) {
	f := setupBookingFixture(t)
	ctx := context.Background()

	page, err := f.db.GetBookingsByParty(ctx, models.RoleBooker, f.booker.ID, models.StateAll, f.now, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{f.rejected.ID, f.waiting.ID}, bookingIDs(page))

	page, err = f.db.GetBookingsByParty(ctx, models.RoleBooker, f.booker.ID, models.StateAll, f.now, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{f.future.ID, f.current.ID}, bookingIDs(page))

	page, err = f.db.GetBookingsByParty(ctx, models.RoleBooker, f.booker.ID, models.StateAll, f.now, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{f.past.ID}, bookingIDs(page))
}

func TestHasFinishedApprovedBooking(t *testing.T) {
	f := setupBookingFixture(t)
	ctx := context.Background()

	// The past approved booking qualifies.
	ok, err := f.db.HasFinishedApprovedBooking(ctx, f.booker.ID, f.item.ID, f.now)
	require.NoError(t, err)
	assert.True(t, ok)

	// Nothing qualifies before the past booking ended.
	ok, err = f.db.HasFinishedApprovedBooking(ctx, f.booker.ID, f.item.ID, f.now.Add(-72*time.Hour))
	require.NoError(t, err)
	assert.False(t, ok)

	// The owner never booked.
	ok, err = f.db.HasFinishedApprovedBooking(ctx, f.owner.ID, f.item.ID, f.now)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLastAndNextBooking(t *testing.T) {
	f := setupBookingFixture(t)
	ctx := context.Background()

	last, err := f.db.GetLastBooking(ctx, f.item.ID, f.now)
	require.NoError(t, err)
	require.NotNil(t, last)
	// current started most recently among started approved bookings
	assert.Equal(t, f.current.ID, last.ID)
	assert.Equal(t, f.booker.ID, last.BookerID)

	next, err := f.db.GetNextBooking(ctx, f.item.ID, f.now)
	require.NoError(t, err)
	require.NotNil(t, next)
	// waiting and rejected bookings never surface here
	assert.Equal(t, f.future.ID, next.ID)
}

func TestLastAndNextBooking_NoRows(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "Owner", "owner@example.com")
	item := seedItem(t, db, owner.ID, "Drill", true)

	last, err := db.GetLastBooking(ctx, item.ID, time.Now())
	require.NoError(t, err)
	assert.Nil(t, last)

	next, err := db.GetNextBooking(ctx, item.ID, time.Now())
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestGetBookingsByDateRange(t *testing.T) {
	f := setupBookingFixture(t)
	ctx := context.Background()

	day := 24 * time.Hour
	got, err := f.db.GetBookingsByDateRange(ctx, f.now.Add(-2*day), f.now.Add(3*day))
	require.NoError(t, err)
	assert.Equal(t, []int64{f.past.ID, f.current.ID, f.future.ID}, bookingIDs(got))
}
