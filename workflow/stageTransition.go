package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/pressroomhq/printops_backend/config"
	"github.com/pressroomhq/printops_backend/models"
	"github.com/pressroomhq/printops_backend/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ApplyStageTransition moves a job to targetStage.
//
// Duplicate deliveries of the same move are absorbed by the no-op check on
// (production_stage, trello_list_id). A real transition updates the job,
// propagates the stage to the linked lead, closes the open stage-history row
// and opens a new one, all in one DB transaction: a crash between the
// sub-steps must never leave two open rows or a job/lead stage mismatch.
//
// Two deliveries racing past the no-op check are serialized by the unique
// open_job_id column: the loser's history insert fails with a duplicate key,
// the whole transaction rolls back, and the race resolves as a no-op.
func ApplyStageTransition(ctx context.Context, logger *logrus.Logger, jobId int, targetStage string, targetListId string) (changed bool, err error) {
	db := config.GetDB()

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job models.Job
		if err := tx.First(&job, jobId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrorJobNotFound
			}
			return err
		}

		if job.ProductionStage == targetStage && job.TrelloListId == targetListId {
			return nil
		}

		now := time.Now().UTC()

		// Close the currently open history row, releasing open_job_id for
		// the insert below.
		if err := tx.Model(&models.JobStageHistory{}).
			Where("job_id = ? AND exited_at IS NULL", job.ID).
			Updates(map[string]interface{}{"exited_at": now, "open_job_id": nil}).Error; err != nil {
			return err
		}

		entry := models.JobStageHistory{
			JobId:     job.ID,
			Stage:     targetStage,
			EnteredAt: now,
			OpenJobId: &job.ID,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		if err := tx.Model(&job).Updates(map[string]interface{}{
			"production_stage": targetStage,
			"trello_list_id":   targetListId,
		}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Lead{}).
			Where("id = ?", job.LeadId).
			Update("production_stage", targetStage).Error; err != nil {
			return err
		}

		changed = true
		return nil
	})

	if err != nil && isDuplicateKeyErr(err) {
		// A concurrent delivery won the open-row insert; its transition
		// committed, ours rolled back. Same terminal state, so ack.
		fields := logrus.Fields{
			"module": "workflow",
			"job_id": jobId,
			"stage":  targetStage,
		}
		if correlationId, ok := utils.GetCorrelationIdFromContext(ctx); ok {
			fields["correlation_id"] = correlationId
		}
		logger.WithFields(fields).Info("concurrent stage transition detected; treating as no-op")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return changed, nil
}
