package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockMovement is one append-only ledger row. Rows are never updated or
// deleted once written; corrections are expressed as new adjustment rows
// (same discipline as an accounting journal).
type StockMovement struct {
	ID         int               `gorm:"primary_key" json:"id"`
	MaterialId int               `gorm:"index;not null" json:"material_id"`
	DeltaQty   decimal.Decimal   `gorm:"type:decimal(20,4);not null" json:"delta_qty"`
	Type       StockMovementType `gorm:"size:20;not null;index" json:"type"`
	Reference  string            `gorm:"size:100;index" json:"reference"`
	CreatedAt  time.Time         `gorm:"autoCreateTime" json:"created_at"`
}
