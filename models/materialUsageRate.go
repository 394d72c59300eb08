package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MaterialUsageRate is one BOM row: producing one unit of (ProductType, Size)
// consumes QtyPerUnit of MaterialId. A composite product (e.g. DTF-printed
// shirt) carries two rows for the same (ProductType, Size) pair, one per
// material. Size is NULL for products without a size axis.
type MaterialUsageRate struct {
	ID          int             `gorm:"primary_key" json:"id"`
	ProductType string          `gorm:"size:100;not null;index:idx_usage_lookup" json:"product_type"`
	Size        *string         `gorm:"size:30;index:idx_usage_lookup" json:"size"`
	MaterialId  int             `gorm:"index;not null" json:"material_id"`
	QtyPerUnit  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"qty_per_unit"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (MaterialUsageRate) TableName() string {
	return "product_material_usage"
}

// GetUsageRates returns the rates exactly matching (productType, size).
// No fallback: a sized line item never matches a size-less rate and vice
// versa. Zero rows means the BOM is not configured for that pair.
func GetUsageRates(tx *gorm.DB, productType string, size *string) ([]MaterialUsageRate, error) {
	var rates []MaterialUsageRate
	q := tx.Where("product_type = ?", productType)
	if size == nil {
		q = q.Where("size IS NULL")
	} else {
		q = q.Where("size = ?", *size)
	}
	if err := q.Order("id").Find(&rates).Error; err != nil {
		return nil, err
	}
	return rates, nil
}
