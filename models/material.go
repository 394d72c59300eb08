package models

import (
	"context"
	"time"

	"github.com/pressroomhq/printops_backend/config"
	"github.com/shopspring/decimal"
)

// Material is a raw material tracked by the inventory ledger.
//
// QtyOnHand is a denormalized running counter; it only ever changes in the
// same transaction as the StockMovement that explains the change. The
// stock-recount command in cmd/ rebuilds it from the movement ledger when
// drift is suspected.
type Material struct {
	ID        int             `gorm:"primary_key" json:"id"`
	Name      string          `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Unit      string          `gorm:"size:30;not null" json:"unit"`
	QtyOnHand decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"qty_on_hand"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func GetMaterials(ctx context.Context) ([]Material, error) {
	db := config.GetDB()
	var materials []Material
	if err := db.WithContext(ctx).Order("name").Find(&materials).Error; err != nil {
		return nil, err
	}
	return materials, nil
}
