package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shareit/internal/models"
)

const bookingColumns = `b.id, b.start_date, b.end_date, b.item_id, i.name, b.booker_id, b.status, b.created_at, b.updated_at`

func scanBooking(row interface{ Scan(...any) error }) (*models.Booking, error) {
	b := &models.Booking{}
	err := row.Scan(
		&b.ID, &b.Start, &b.End, &b.ItemID, &b.ItemName,
		&b.BookerID, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (start_date, end_date, item_id, booker_id, status, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		booking.Start, booking.End, booking.ItemID, booking.BookerID, booking.Status, now, now)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now

	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b
              JOIN items i ON i.id = b.item_id
              WHERE b.id = ?`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: booking %d", ErrNoRows, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

// DecideBookingIfWaiting sets a terminal status with the WAITING
// precondition re-verified at write time. Returns ErrAlreadyDecided when
// a concurrent call won the transition.
func (db *DB) DecideBookingIfWaiting(ctx context.Context, id int64, status string) error {
	query := `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ? AND status = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now(), id, models.StatusWaiting)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrAlreadyDecided
	}
	return nil
}

// partyPredicate maps a role to the column a listing query matches against.
func partyPredicate(role models.Role) string {
	if role == models.RoleOwner {
		return `i.owner_id = ?`
	}
	return `b.booker_id = ?`
}

// GetBookingsByParty returns the role-scoped, state-filtered booking page
// ordered by start descending. The temporal predicates are evaluated
// against the supplied now, and pagination happens at the query level.
func (db *DB) GetBookingsByParty(ctx context.Context, role models.Role, userID int64,
	state models.BookingState, now time.Time, offset, limit int) ([]*models.Booking, error) {

	args := []any{userID}

	var predicate string
	switch state {
	case models.StateAll:
		predicate = ``
	case models.StateCurrent:
		predicate = ` AND b.start_date <= ? AND b.end_date > ?`
		args = append(args, now, now)
	case models.StatePast:
		predicate = ` AND b.end_date < ?`
		args = append(args, now)
	case models.StateFuture:
		predicate = ` AND b.start_date > ?`
		args = append(args, now)
	case models.StateWaiting, models.StateRejected:
		predicate = ` AND b.status = ?`
		args = append(args, string(state))
	default:
		return nil, fmt.Errorf("unsupported booking state: %s", state)
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings b
              JOIN items i ON i.id = b.item_id
              WHERE ` + partyPredicate(role) + predicate + `
              ORDER BY b.start_date DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings by %s: %w", role, err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// GetBookingsByDateRange returns bookings whose window intersects
// [start, end], oldest first. The report writers use it to rebuild
// snapshots.
func (db *DB) GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b
              JOIN items i ON i.id = b.item_id
              WHERE b.start_date <= ? AND b.end_date >= ?
              ORDER BY b.start_date ASC, b.created_at ASC`
	rows, err := db.QueryContext(ctx, query, end, start)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings by date range: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// HasFinishedApprovedBooking reports whether booker has at least one
// APPROVED booking on item that ended before now.
func (db *DB) HasFinishedApprovedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	query := `SELECT COUNT(*) FROM bookings
              WHERE booker_id = ? AND item_id = ? AND status = ? AND end_date < ?`
	var count int
	err := db.QueryRowContext(ctx, query, bookerID, itemID, models.StatusApproved, now).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check finished bookings: %w", err)
	}
	return count > 0, nil
}

// GetLastBooking returns the most recent approved booking on item that has
// already started, or nil.
func (db *DB) GetLastBooking(ctx context.Context, itemID int64, now time.Time) (*models.BookingRef, error) {
	query := `SELECT id, booker_id FROM bookings
              WHERE item_id = ? AND status = ? AND start_date <= ?
              ORDER BY start_date DESC LIMIT 1`
	return db.queryBookingRef(ctx, query, itemID, models.StatusApproved, now)
}

// GetNextBooking returns the earliest approved booking on item that starts
// after now, or nil.
func (db *DB) GetNextBooking(ctx context.Context, itemID int64, now time.Time) (*models.BookingRef, error) {
	query := `SELECT id, booker_id FROM bookings
              WHERE item_id = ? AND status = ? AND start_date > ?
              ORDER BY start_date ASC LIMIT 1`
	return db.queryBookingRef(ctx, query, itemID, models.StatusApproved, now)
}

func (db *DB) queryBookingRef(ctx context.Context, query string, args ...any) (*models.BookingRef, error) {
	ref := &models.BookingRef{}
	err := db.QueryRowContext(ctx, query, args...).Scan(&ref.ID, &ref.BookerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking ref: %w", err)
	}
	return ref, nil
}
