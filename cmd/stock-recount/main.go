// stock-recount rebuilds materials.qty_on_hand from the stock_movements
// ledger and reports drift.
//
// qty_on_hand is a denormalized counter kept for read efficiency; every write
// pairs it with a movement row in one transaction, so the two should never
// disagree. When they do (manual SQL, restored backup), this command is the
// reconciliation escape hatch.
//
// Usage:
//
//	go run ./cmd/stock-recount            # report drift only
//	go run ./cmd/stock-recount -fix       # rewrite counters from the ledger
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pressroomhq/printops_backend/config"
	"github.com/pressroomhq/printops_backend/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func main() {
	fix := flag.Bool("fix", false, "rewrite qty_on_hand from the movement ledger")
	flag.Parse()

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	var materials []models.Material
	if err := db.Order("id").Find(&materials).Error; err != nil {
		fmt.Fprintf(os.Stderr, "load materials: %v\n", err)
		os.Exit(1)
	}

	drifted := 0
	for _, material := range materials {
		var row struct {
			Total decimal.Decimal
		}
		if err := db.Model(&models.StockMovement{}).
			Select("COALESCE(SUM(delta_qty), 0) AS total").
			Where("material_id = ?", material.ID).
			Scan(&row).Error; err != nil {
			fmt.Fprintf(os.Stderr, "sum movements for material %d: %v\n", material.ID, err)
			os.Exit(1)
		}

		if material.QtyOnHand.Equal(row.Total) {
			continue
		}
		drifted++
		fmt.Printf("material %d (%s): counter=%s ledger=%s drift=%s\n",
			material.ID, material.Name,
			material.QtyOnHand.String(), row.Total.String(),
			material.QtyOnHand.Sub(row.Total).String())

		if !*fix {
			continue
		}
		if err := db.Transaction(func(tx *gorm.DB) error {
			return tx.Model(&models.Material{}).
				Where("id = ?", material.ID).
				Update("qty_on_hand", row.Total).Error
		}); err != nil {
			fmt.Fprintf(os.Stderr, "fix material %d: %v\n", material.ID, err)
			os.Exit(1)
		}
		fmt.Printf("material %d: counter reset to %s\n", material.ID, row.Total.String())
	}

	if drifted == 0 {
		fmt.Println("all counters match the movement ledger")
	} else if !*fix {
		fmt.Printf("%d material(s) drifted; rerun with -fix to reconcile\n", drifted)
	}
}
