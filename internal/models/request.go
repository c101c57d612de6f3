package models

import "time"

type ItemRequest struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	RequesterID int64     `json:"requester_id"`
	CreatedAt   time.Time `json:"created_at"`

	// Items offered in response to this request; computed, not stored.
	Items []*Item `json:"items,omitempty"`
}
