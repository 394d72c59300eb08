package models

import "time"

// DeductionTransaction is the idempotency marker for a job's one-time
// material consumption. The unique index on JobId is the concurrency guard:
// the workflow inserts optimistically and treats a duplicate-key error as
// "already deducted". Its id is also the Reference grouping key for the
// StockMovement rows it caused.
type DeductionTransaction struct {
	ID        int       `gorm:"primary_key" json:"id"`
	JobId     int       `gorm:"uniqueIndex;not null" json:"job_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
