package models

import "time"

// ExportTask is a durable unit of work for the report worker.
type ExportTask struct {
	ID          int64
	TaskType    string // upsert, update_status
	BookingID   int64
	Payload     string
	Status      string // pending, retry, done, dead
	RetryCount  int
	LastError   string
	CreatedAt   time.Time
	ProcessedAt *time.Time
	NextRetryAt *time.Time
}
