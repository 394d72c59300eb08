package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/pressroomhq/printops_backend/bom"
	"github.com/pressroomhq/printops_backend/config"
	"github.com/pressroomhq/printops_backend/models"
	"github.com/pressroomhq/printops_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("printops-backend/workflow")

type DeductionStatus string

const (
	DeductionStatusDeducted        DeductionStatus = "deducted"
	DeductionStatusAlreadyDeducted DeductionStatus = "already_deducted"
	// DeductionStatusSkippedNoBom: the card has no product-list block.
	// Nothing to deduct, nothing recorded; a later manual trigger can still
	// run once the operator adds the block.
	DeductionStatusSkippedNoBom DeductionStatus = "skipped_no_bom"
)

// MaterialTotal is the aggregated requirement for one material across every
// line item of a job's product list.
type MaterialTotal struct {
	MaterialId   int             `json:"material_id"`
	MaterialName string          `json:"material_name"`
	Unit         string          `json:"unit"`
	Qty          decimal.Decimal `json:"qty"`
}

type DeductionResult struct {
	Status    DeductionStatus `json:"status"`
	LineItems []bom.LineItem  `json:"line_items,omitempty"`
	Totals    []MaterialTotal `json:"totals,omitempty"`
}

// CardTextFetcher returns the current description text of a board card.
// Kept as a function type so the webhook handler injects the live client and
// tests inject a stub.
type CardTextFetcher func(ctx context.Context, cardId string) (string, error)

var errAlreadyDeducted = errors.New("already deducted")

// DeductForJob consumes the job's bill of materials from stock, exactly once
// per job for the lifetime of the system.
//
// The deduction_transactions unique index on job_id is the commit point and
// the concurrency guard: whatever triggers a duplicate run (retried webhook,
// duplicate printing entry, operator re-click), only the first insert lands
// and every other caller gets already_deducted. Resolution is all-or-nothing:
// one line item without a configured usage rate aborts the whole batch with
// bom_missing and zero writes.
func DeductForJob(ctx context.Context, logger *logrus.Logger, jobId int, fetchCardText CardTextFetcher) (*DeductionResult, error) {
	ctx, span := tracer.Start(ctx, "workflow.DeductForJob")
	defer span.End()

	db := config.GetDB()

	// Fast path: prior deduction means no further reads or writes at all.
	var existing models.DeductionTransaction
	err := db.WithContext(ctx).Where("job_id = ?", jobId).First(&existing).Error
	if err == nil {
		return &DeductionResult{Status: DeductionStatusAlreadyDeducted}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	job, err := models.GetJob(ctx, jobId)
	if err != nil {
		return nil, err
	}

	// Redis lock is a best-effort optimization to avoid wasted card fetches
	// on concurrent triggers. Reliability must not depend on Redis: the
	// unique index on deduction_transactions.job_id is authoritative.
	if locker := config.GetRedisLock(); locker != nil {
		lock, lockErr := locker.Obtain(ctx, fmt.Sprintf("deduction:job:%d", jobId), 30*time.Second, nil)
		if lockErr == nil {
			defer lock.Release(ctx)
		} else if !errors.Is(lockErr, redislock.ErrNotObtained) {
			config.LogError(logger, "workflow", "DeductForJob", "redis lock", jobId, lockErr)
		}
	}

	text, err := fetchCardText(ctx, job.TrelloCardId)
	if err != nil {
		return nil, fmt.Errorf("fetch card text: %w", err)
	}

	items := bom.ParseProductList(text)
	if len(items) == 0 {
		return &DeductionResult{Status: DeductionStatusSkippedNoBom}, nil
	}

	var totals []MaterialTotal
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		required, aggErr := aggregateRequirements(tx, items)
		if aggErr != nil {
			return aggErr
		}

		// Optimistic insert is the commit point; the race loser lands here
		// with a duplicate key and rolls back cleanly.
		txn := models.DeductionTransaction{JobId: job.ID}
		if err := tx.Create(&txn).Error; err != nil {
			if isDuplicateKeyErr(err) {
				return errAlreadyDeducted
			}
			return err
		}

		reference := fmt.Sprintf("DT-%d", txn.ID)
		for _, req := range required {
			movement := models.StockMovement{
				MaterialId: req.MaterialId,
				DeltaQty:   req.Qty.Neg(),
				Type:       models.StockMovementTypeConsumed,
				Reference:  reference,
			}
			if err := tx.Create(&movement).Error; err != nil {
				return err
			}
			res := tx.Model(&models.Material{}).
				Where("id = ?", req.MaterialId).
				Update("qty_on_hand", gorm.Expr("qty_on_hand - ?", req.Qty))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected != 1 {
				return fmt.Errorf("material %d disappeared during deduction", req.MaterialId)
			}
		}
		totals = required
		return nil
	})

	if errors.Is(err, errAlreadyDeducted) {
		return &DeductionResult{Status: DeductionStatusAlreadyDeducted}, nil
	}
	if err != nil {
		return nil, err
	}

	fields := logrus.Fields{
		"module":     "workflow",
		"job_id":     jobId,
		"line_items": len(items),
		"materials":  len(totals),
	}
	if correlationId, ok := utils.GetCorrelationIdFromContext(ctx); ok {
		fields["correlation_id"] = correlationId
	}
	logger.WithFields(fields).Info("stock deducted for job")

	return &DeductionResult{
		Status:    DeductionStatusDeducted,
		LineItems: items,
		Totals:    totals,
	}, nil
}

// aggregateRequirements resolves every line item against the BOM table and
// sums the per-material requirement with exact decimal arithmetic. Any line
// item with zero matching rates fails the whole batch: a partial deduction
// would corrupt the ledger.
func aggregateRequirements(tx *gorm.DB, items []bom.LineItem) ([]MaterialTotal, error) {
	sums := map[int]decimal.Decimal{}
	order := []int{}

	for _, item := range items {
		rates, err := models.GetUsageRates(tx, item.ProductType, item.Size)
		if err != nil {
			return nil, err
		}
		if len(rates) == 0 {
			return nil, utils.ErrorBomMissing
		}
		for _, rate := range rates {
			if _, seen := sums[rate.MaterialId]; !seen {
				order = append(order, rate.MaterialId)
			}
			sums[rate.MaterialId] = sums[rate.MaterialId].Add(item.Qty.Mul(rate.QtyPerUnit))
		}
	}

	totals := make([]MaterialTotal, 0, len(order))
	for _, materialId := range order {
		var material models.Material
		if err := tx.First(&material, materialId).Error; err != nil {
			return nil, fmt.Errorf("bom references material %d: %w", materialId, err)
		}
		totals = append(totals, MaterialTotal{
			MaterialId:   material.ID,
			MaterialName: material.Name,
			Unit:         material.Unit,
			Qty:          sums[materialId],
		})
	}
	return totals, nil
}
