// seed-bom seeds materials and BOM usage rates for a fresh database.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-bom
//
// Re-running is safe: existing materials are matched by name and existing
// rates by (product_type, size, material), so the command upserts rather
// than duplicating.
package main

import (
	"fmt"
	"os"

	"github.com/pressroomhq/printops_backend/config"
	"github.com/pressroomhq/printops_backend/models"
	"github.com/pressroomhq/printops_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type seedRate struct {
	productType string
	size        *string
	material    string
	qtyPerUnit  string
}

var seedMaterials = []models.Material{
	{Name: "White Cotton T-Shirt Blank", Unit: "pcs"},
	{Name: "DTF Film", Unit: "m"},
	{Name: "Vinyl Sticker Sheet", Unit: "sheet"},
}

var seedRates = []seedRate{
	{"T-Shirt", utils.NewString("S"), "White Cotton T-Shirt Blank", "1"},
	{"T-Shirt", utils.NewString("M"), "White Cotton T-Shirt Blank", "1"},
	{"T-Shirt", utils.NewString("L"), "White Cotton T-Shirt Blank", "1"},
	{"T-Shirt", utils.NewString("XL"), "White Cotton T-Shirt Blank", "1"},
	// Composite: a printed shirt consumes a blank and DTF film.
	{"T-Shirt", utils.NewString("S"), "DTF Film", "0.4"},
	{"T-Shirt", utils.NewString("M"), "DTF Film", "0.5"},
	{"T-Shirt", utils.NewString("L"), "DTF Film", "0.6"},
	{"T-Shirt", utils.NewString("XL"), "DTF Film", "0.7"},
	{"Sticker", nil, "Vinyl Sticker Sheet", "0.1"},
}

func main() {
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	models.MigrateTable()

	if err := db.Transaction(func(tx *gorm.DB) error {
		materialIds := map[string]int{}
		for _, m := range seedMaterials {
			var existing models.Material
			err := tx.Where("name = ?", m.Name).First(&existing).Error
			if err == gorm.ErrRecordNotFound {
				existing = m
				if err := tx.Create(&existing).Error; err != nil {
					return err
				}
			} else if err != nil {
				return err
			}
			materialIds[m.Name] = existing.ID
		}

		for _, r := range seedRates {
			qty, err := decimal.NewFromString(r.qtyPerUnit)
			if err != nil {
				return fmt.Errorf("bad seed rate %q: %w", r.qtyPerUnit, err)
			}
			materialId := materialIds[r.material]

			q := tx.Where("product_type = ? AND material_id = ?", r.productType, materialId)
			if r.size == nil {
				q = q.Where("size IS NULL")
			} else {
				q = q.Where("size = ?", *r.size)
			}
			var existing models.MaterialUsageRate
			err = q.First(&existing).Error
			if err == gorm.ErrRecordNotFound {
				rate := models.MaterialUsageRate{
					ProductType: r.productType,
					Size:        r.size,
					MaterialId:  materialId,
					QtyPerUnit:  qty,
				}
				if err := tx.Create(&rate).Error; err != nil {
					return err
				}
				continue
			}
			if err != nil {
				return err
			}
			if !existing.QtyPerUnit.Equal(qty) {
				if err := tx.Model(&existing).Update("qty_per_unit", qty).Error; err != nil {
					return err
				}
			}
		}
		return nil
	}); err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("seeded materials and usage rates")
}
