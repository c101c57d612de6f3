package domain

import (
	"context"
	"time"

	"shareit/internal/models"
)

// Repository is the durable entity store consumed by the services.
type Repository interface {
	// users
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	GetUsersByEmail(ctx context.Context, email string) ([]*models.User, error)
	OtherUserHasEmail(ctx context.Context, id int64, email string) (bool, error)
	OtherUserHasName(ctx context.Context, id int64, name string) (bool, error)

	// items
	CreateItem(ctx context.Context, item *models.Item) error
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id int64) error
	GetItemsByOwner(ctx context.Context, ownerID int64, offset, limit int) ([]*models.Item, error)
	GetItemsByRequest(ctx context.Context, requestID int64) ([]*models.Item, error)
	SearchItems(ctx context.Context, text string, offset, limit int) ([]*models.Item, error)

	// bookings
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	DecideBookingIfWaiting(ctx context.Context, id int64, status string) error
	GetBookingsByParty(ctx context.Context, role models.Role, userID int64,
		state models.BookingState, now time.Time, offset, limit int) ([]*models.Booking, error)
	HasFinishedApprovedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error)
	GetLastBooking(ctx context.Context, itemID int64, now time.Time) (*models.BookingRef, error)
	GetNextBooking(ctx context.Context, itemID int64, now time.Time) (*models.BookingRef, error)

	// requests
	CreateRequest(ctx context.Context, request *models.ItemRequest) error
	GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error)
	GetRequestsByUser(ctx context.Context, userID int64) ([]*models.ItemRequest, error)
	GetRequestsFromOthers(ctx context.Context, userID int64, offset, limit int) ([]*models.ItemRequest, error)

	// comments
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentsByItem(ctx context.Context, itemID int64) ([]*models.Comment, error)
}

// Clock supplies "now" so that temporal filters stay deterministic in tests.
type Clock interface {
	Now() time.Time
}

// CacheRepository stores short-lived JSON snapshots of hot listings.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// EventPublisher emits domain events after successful persistence.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// ExportWorker accepts durable report tasks for asynchronous processing.
type ExportWorker interface {
	EnqueueTask(ctx context.Context, taskType string, booking *models.Booking) error
}

type UserService interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetAll(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

type ItemService interface {
	Create(ctx context.Context, ownerID int64, item *models.Item) (*models.Item, error)
	GetByID(ctx context.Context, id, viewerID int64) (*models.ItemDetails, error)
	GetAllByOwner(ctx context.Context, ownerID int64, from, size int) ([]*models.ItemDetails, error)
	Update(ctx context.Context, id, ownerID int64, patch models.ItemPatch) (*models.Item, error)
	Delete(ctx context.Context, id, ownerID int64) error
	Search(ctx context.Context, text string, from, size int) ([]*models.Item, error)
	CreateComment(ctx context.Context, itemID, authorID int64, text string) (*models.Comment, error)
}

type BookingService interface {
	Create(ctx context.Context, itemID, bookerID int64, start, end time.Time) (*models.Booking, error)
	Approve(ctx context.Context, bookingID, actorID int64, approved bool) (*models.Booking, error)
	GetByID(ctx context.Context, bookingID, viewerID int64) (*models.Booking, error)
	List(ctx context.Context, role models.Role, userID int64, state models.BookingState, from, size int) ([]*models.Booking, error)
}

type RequestService interface {
	Create(ctx context.Context, userID int64, description string) (*models.ItemRequest, error)
	GetAllByUser(ctx context.Context, userID int64) ([]*models.ItemRequest, error)
	GetAll(ctx context.Context, userID int64, from, size int) ([]*models.ItemRequest, error)
	GetByID(ctx context.Context, requestID, userID int64) (*models.ItemRequest, error)
}
