package models

import (
	"context"
	"errors"
	"time"

	"github.com/pressroomhq/printops_backend/config"
	"github.com/pressroomhq/printops_backend/utils"
	"gorm.io/gorm"
)

// Job is one production order moving through the physical pipeline. The pair
// (ProductionStage, TrelloListId) is the state the webhook no-op check
// compares against; it is only ever mutated by the stage transition workflow.
type Job struct {
	ID              int       `gorm:"primary_key" json:"id"`
	LeadId          int       `gorm:"index;not null" json:"lead_id"`
	TrelloCardId    string    `gorm:"size:64;uniqueIndex;not null" json:"trello_card_id"`
	TrelloListId    string    `gorm:"size:64;index" json:"trello_list_id"`
	ProductionStage string    `gorm:"size:50;not null;default:pending" json:"production_stage"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func GetJob(ctx context.Context, id int) (*Job, error) {
	db := config.GetDB()
	var job Job
	if err := db.WithContext(ctx).First(&job, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

// GetJobByCardId resolves a webhook's card id to the tracked job.
// A board event for an untracked card is not actionable, so callers treat
// ErrorJobNotFound as an ack/no-op.
func GetJobByCardId(ctx context.Context, cardId string) (*Job, error) {
	db := config.GetDB()
	var job Job
	if err := db.WithContext(ctx).Where("trello_card_id = ?", cardId).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorJobNotFound
		}
		return nil, err
	}
	return &job, nil
}
