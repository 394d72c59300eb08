package models

import "time"

// Lead is the customer-facing record a job was created from. Lead CRUD lives
// in another service; this core only propagates the production stage so the
// sales UI shows where the order sits without joining through jobs.
type Lead struct {
	ID              int       `gorm:"primary_key" json:"id"`
	CustomerName    string    `gorm:"size:100;not null" json:"customer_name"`
	Phone           string    `gorm:"size:30" json:"phone"`
	ProductionStage string    `gorm:"size:50;not null;default:pending" json:"production_stage"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
