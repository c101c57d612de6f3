package service

import "shareit/internal/models"

// Authorization predicates. Callers translate a false result into a
// not-found error, never into a forbidden one: the system does not reveal
// that a hidden resource exists.

// CanApprove reports whether userID owns the booked item.
func CanApprove(userID int64, item *models.Item) bool {
	return userID == item.OwnerID
}

// CanView reports whether userID is the booker or the item owner.
func CanView(userID int64, booking *models.Booking, item *models.Item) bool {
	return userID == booking.BookerID || userID == item.OwnerID
}

// IsOwner reports whether userID owns the item.
func IsOwner(userID int64, item *models.Item) bool {
	return userID == item.OwnerID
}
