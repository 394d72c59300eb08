package workflow

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/pressroomhq/printops_backend/config"
	"github.com/pressroomhq/printops_backend/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDbSeq int64

// setupTestDB wires an isolated in-memory sqlite DB into the config global.
// TranslateError mirrors production config so duplicate-key detection sees
// gorm.ErrDuplicatedKey the same way it does on MySQL.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:workflow_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDbSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Lead{}, &models.Job{}, &models.JobStageHistory{},
		&models.Material{}, &models.MaterialUsageRate{}, &models.StockMovement{},
		&models.DeductionTransaction{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	config.SetDB(db)
	t.Cleanup(func() {
		config.SetDB(nil)
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func createTestJob(t *testing.T, db *gorm.DB, cardId string) *models.Job {
	t.Helper()

	lead := models.Lead{CustomerName: "Aye Chan", Phone: "0912345678"}
	if err := db.Create(&lead).Error; err != nil {
		t.Fatalf("create lead: %v", err)
	}
	job := models.Job{LeadId: lead.ID, TrelloCardId: cardId, ProductionStage: models.StagePending}
	if err := db.Create(&job).Error; err != nil {
		t.Fatalf("create job: %v", err)
	}
	return &job
}
