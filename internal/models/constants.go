package models

const (
	StatusWaiting  = "WAITING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

const (
	// DefaultPageSize is the listing page size when the client sends none.
	DefaultPageSize = 10

	// MaxSearchPageSize caps the size query parameter.
	MaxSearchPageSize = 100

	// RateLimitRequests per RateLimitWindow seconds, per caller.
	RateLimitRequests = 30
	RateLimitWindow   = 60

	// ItemsCacheTTL is the listing cache lifetime in seconds.
	ItemsCacheTTL = 5 * 60

	// WorkerQueueSize bounds the export worker wake-up channel.
	WorkerQueueSize = 1000
)
