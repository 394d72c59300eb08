package models

import (
	"log"

	"github.com/pressroomhq/printops_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Lead{}, &Job{}, &JobStageHistory{},
		&Material{}, &MaterialUsageRate{}, &StockMovement{},
		&DeductionTransaction{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
