package models

import (
	"context"
	"time"

	"github.com/pressroomhq/printops_backend/config"
)

// JobStageHistory is the append-only log of stage entries.
//
// Invariant: at most one row per job has ExitedAt = NULL (the currently open
// stage). MySQL has no partial unique indexes, so the invariant is enforced
// with OpenJobId: set to the job id while the row is open, NULL once closed.
// Unique indexes ignore NULLs, so any number of closed rows coexist while a
// second concurrent open insert fails with a duplicate-key error.
type JobStageHistory struct {
	ID        int        `gorm:"primary_key" json:"id"`
	JobId     int        `gorm:"index;not null" json:"job_id"`
	Stage     string     `gorm:"size:50;not null" json:"stage"`
	EnteredAt time.Time  `gorm:"not null" json:"entered_at"`
	ExitedAt  *time.Time `json:"exited_at"`
	OpenJobId *int       `gorm:"uniqueIndex" json:"-"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func GetStageHistory(ctx context.Context, jobId int) ([]JobStageHistory, error) {
	db := config.GetDB()
	var entries []JobStageHistory
	if err := db.WithContext(ctx).
		Where("job_id = ?", jobId).
		Order("entered_at, id").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
