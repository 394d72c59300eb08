package trello

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pressroomhq/printops_backend/config"
	"github.com/pressroomhq/printops_backend/models"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// List ids from the default stage map.
const (
	testListDesign   = "5f1a2b3c4d5e6f7a8b9c0d02"
	testListPrinting = "5f1a2b3c4d5e6f7a8b9c0d03"
)

var testDbSeq int64

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:trello_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDbSeq, 1))
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

// setupWebhookEnv provisions the webhook secret/callback URL and a fake board
// API that serves cardDesc for every card.
func setupWebhookEnv(t *testing.T, cardDesc string) (*gin.Engine, config.TrelloConfig) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	boardAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"desc": cardDesc})
	}))
	t.Cleanup(boardAPI.Close)

	t.Setenv("TRELLO_WEBHOOK_SECRET", "test-secret")
	t.Setenv("TRELLO_CALLBACK_URL", "https://example.com/webhook/trello")
	t.Setenv("TRELLO_API_KEY", "test-key")
	t.Setenv("TRELLO_API_TOKEN", "test-token")
	t.Setenv("TRELLO_API_BASE_URL", boardAPI.URL)

	cfg := config.GetTrelloConfig()
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	r := gin.New()
	r.HEAD("/webhook/trello", WebhookProbeHandler())
	r.POST("/webhook/trello", WebhookHandler(client))
	return r, cfg
}

func cardMovedBody(cardId, listAfterId, listAfterName string) []byte {
	body, _ := json.Marshal(map[string]any{
		"action": map[string]any{
			"type": "updateCard",
			"data": map[string]any{
				"card":      map[string]any{"id": cardId, "name": "Order"},
				"listAfter": map[string]any{"id": listAfterId, "name": listAfterName},
			},
		},
	})
	return body
}

func postWebhook(r *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook/trello", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, signature)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedWebhookJob(t *testing.T, db *gorm.DB, cardId string) *models.Job {
	t.Helper()

	lead := models.Lead{CustomerName: "Moe Thu"}
	if err := db.Create(&lead).Error; err != nil {
		t.Fatalf("create lead: %v", err)
	}
	job := models.Job{LeadId: lead.ID, TrelloCardId: cardId, ProductionStage: models.StagePending}
	if err := db.Create(&job).Error; err != nil {
		t.Fatalf("create job: %v", err)
	}
	return &job
}

func TestWebhook_BadSignatureRejectedWithoutWrites(t *testing.T) {
	db := setupTestDB(t)
	r, _ := setupWebhookEnv(t, "")
	job := seedWebhookJob(t, db, "card-sig")

	w := postWebhook(r, cardMovedBody("card-sig", testListDesign, "Design"), "bm90LXRoZS1zaWc=")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", w.Code, w.Body.String())
	}

	var reloaded models.Job
	if err := db.First(&reloaded, job.ID).Error; err != nil {
		t.Fatal(err)
	}
	if reloaded.ProductionStage != models.StagePending {
		t.Errorf("job mutated by unauthenticated request: %+v", reloaded)
	}
	var historyCount int64
	db.Model(&models.JobStageHistory{}).Count(&historyCount)
	if historyCount != 0 {
		t.Errorf("history written by unauthenticated request: %d rows", historyCount)
	}
}

func TestWebhook_UnknownListIsAckedNoOp(t *testing.T) {
	db := setupTestDB(t)
	r, cfg := setupWebhookEnv(t, "")
	job := seedWebhookJob(t, db, "card-unknown")

	body := cardMovedBody("card-unknown", "not-a-tracked-list", "Random")
	w := postWebhook(r, body, Sign(body, cfg))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var reloaded models.Job
	if err := db.First(&reloaded, job.ID).Error; err != nil {
		t.Fatal(err)
	}
	if reloaded.ProductionStage != models.StagePending {
		t.Errorf("job mutated by unmapped list: %+v", reloaded)
	}
}

func TestWebhook_UntrackedCardIsAcked(t *testing.T) {
	setupTestDB(t)
	r, cfg := setupWebhookEnv(t, "")

	body := cardMovedBody("card-nobody-knows", testListDesign, "Design")
	w := postWebhook(r, body, Sign(body, cfg))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 ack for untracked card, got %d", w.Code)
	}
}

func TestWebhook_MalformedJSONIs400(t *testing.T) {
	setupTestDB(t)
	r, cfg := setupWebhookEnv(t, "")

	body := []byte(`{"action":`)
	w := postWebhook(r, body, Sign(body, cfg))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestWebhook_MoveToPrintingDeductsOnce(t *testing.T) {
	db := setupTestDB(t)
	desc := "[products]\nT-Shirt\n4, M\n6, L\n[/products]"
	r, cfg := setupWebhookEnv(t, desc)

	film := models.Material{Name: "DTF Film", Unit: "m", QtyOnHand: decimal.NewFromInt(100)}
	if err := db.Create(&film).Error; err != nil {
		t.Fatal(err)
	}
	sizeM, sizeL := "M", "L"
	rates := []models.MaterialUsageRate{
		{ProductType: "T-Shirt", Size: &sizeM, MaterialId: film.ID, QtyPerUnit: decimal.RequireFromString("0.5")},
		{ProductType: "T-Shirt", Size: &sizeL, MaterialId: film.ID, QtyPerUnit: decimal.RequireFromString("0.6")},
	}
	for i := range rates {
		if err := db.Create(&rates[i]).Error; err != nil {
			t.Fatal(err)
		}
	}
	job := seedWebhookJob(t, db, "card-print")

	body := cardMovedBody("card-print", testListPrinting, "Printing")
	w := postWebhook(r, body, Sign(body, cfg))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Redelivery of the same move: no second transition, no second deduction.
	w = postWebhook(r, body, Sign(body, cfg))
	if w.Code != http.StatusOK {
		t.Fatalf("redelivery: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var reloaded models.Job
	if err := db.First(&reloaded, job.ID).Error; err != nil {
		t.Fatal(err)
	}
	if reloaded.ProductionStage != models.StagePrinting {
		t.Errorf("job stage: got %q", reloaded.ProductionStage)
	}

	var historyCount, txnCount, movementCount int64
	db.Model(&models.JobStageHistory{}).Where("job_id = ?", job.ID).Count(&historyCount)
	db.Model(&models.DeductionTransaction{}).Where("job_id = ?", job.ID).Count(&txnCount)
	db.Model(&models.StockMovement{}).Count(&movementCount)
	if historyCount != 1 || txnCount != 1 || movementCount != 1 {
		t.Errorf("expected 1 history/1 transaction/1 movement, got %d/%d/%d", historyCount, txnCount, movementCount)
	}

	var material models.Material
	if err := db.First(&material, film.ID).Error; err != nil {
		t.Fatal(err)
	}
	if !material.QtyOnHand.Equal(decimal.RequireFromString("94.4")) {
		t.Errorf("qty_on_hand: got %s", material.QtyOnHand)
	}
}

func TestWebhook_HeadProbeReturns200(t *testing.T) {
	setupTestDB(t)
	r, _ := setupWebhookEnv(t, "")

	req := httptest.NewRequest(http.MethodHead, "/webhook/trello", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for HEAD probe, got %d", w.Code)
	}
}
