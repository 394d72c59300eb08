package trello

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pressroomhq/printops_backend/config"
	"github.com/pressroomhq/printops_backend/models"
	"github.com/pressroomhq/printops_backend/utils"
	"github.com/pressroomhq/printops_backend/workflow"
)

// DeductHandler is the manual deduction trigger for the operator UI.
// Domain failures come back as a structured {error} body, never as a thrown
// 500: the client matches "bom_missing" verbatim to show its dedicated
// "configure the BOM first" message.
func DeductHandler(client *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		jobId, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
			return
		}

		result, err := workflow.DeductForJob(c.Request.Context(), logger, jobId, client.DescriptionFetcher())
		if err != nil {
			switch {
			case errors.Is(err, utils.ErrorBomMissing):
				c.JSON(http.StatusOK, gin.H{"error": utils.ErrorBomMissing.Error()})
			case errors.Is(err, utils.ErrorJobNotFound):
				c.JSON(http.StatusOK, gin.H{"error": utils.ErrorJobNotFound.Error()})
			default:
				config.LogError(logger, "trello", "DeductHandler", "deduct for job", jobId, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{"result": result})
	}
}

// StageHistoryHandler lists a job's stage history for the operator UI.
func StageHistoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		jobId, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
			return
		}

		ctx := c.Request.Context()
		if _, err := models.GetJob(ctx, jobId); err != nil {
			if errors.Is(err, utils.ErrorJobNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": utils.ErrorJobNotFound.Error()})
				return
			}
			config.LogError(logger, "trello", "StageHistoryHandler", "lookup job", jobId, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
			return
		}

		entries, err := models.GetStageHistory(ctx, jobId)
		if err != nil {
			config.LogError(logger, "trello", "StageHistoryHandler", "stage history", jobId, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"job_id": jobId, "stages": entries})
	}
}
