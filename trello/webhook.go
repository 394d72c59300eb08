package trello

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pressroomhq/printops_backend/config"
	"github.com/pressroomhq/printops_backend/models"
	"github.com/pressroomhq/printops_backend/utils"
	"github.com/pressroomhq/printops_backend/workflow"
	"github.com/sirupsen/logrus"
)

// WebhookHandler processes card-moved deliveries from the board service.
//
// Deliveries are at-least-once and may arrive duplicated, reordered, or
// concurrently; every path below either acks with 200 (permanently
// irrelevant input, or work that is already applied) or returns non-2xx to
// invite a retry. The two must never be confused: acking a transient failure
// loses the event, retrying an irrelevant one retries forever.
func WebhookHandler(client *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()
		cfg := config.GetTrelloConfig()

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			config.LogError(logger, "trello", "WebhookHandler", "read body", nil, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}

		// Authenticate on the exact raw bytes before any JSON work.
		if err := VerifySignature(body, c.GetHeader(SignatureHeader), cfg); err != nil {
			if errors.Is(err, ErrUnconfigured) {
				config.LogError(logger, "trello", "WebhookHandler", "verify signature", nil, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook not configured"})
				return
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		event := ClassifyEvent(body)
		switch event.Class {
		case EventBadRequest:
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
			return
		case EventIrrelevant:
			c.JSON(http.StatusOK, gin.H{"ok": true})
			return
		}

		stage, ok := models.ResolveStage(event.ListAfterId)
		if !ok {
			// A list this system does not track; ack so the sender stops.
			c.JSON(http.StatusOK, gin.H{"ok": true})
			return
		}

		ctx := c.Request.Context()

		job, err := models.GetJobByCardId(ctx, event.CardId)
		if err != nil {
			if errors.Is(err, utils.ErrorJobNotFound) {
				// A board event for an untracked card is not actionable.
				c.JSON(http.StatusOK, gin.H{"ok": true})
				return
			}
			config.LogError(logger, "trello", "WebhookHandler", "lookup job", event.CardId, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "store failure"})
			return
		}

		changed, err := workflow.ApplyStageTransition(ctx, logger, job.ID, stage, event.ListAfterId)
		if err != nil {
			config.LogError(logger, "trello", "WebhookHandler", "apply transition", job.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "store failure"})
			return
		}

		if stage == models.StagePrinting {
			result, err := workflow.DeductForJob(ctx, logger, job.ID, client.DescriptionFetcher())
			if err != nil {
				if errors.Is(err, utils.ErrorBomMissing) {
					// Deterministic for this card content; retrying the
					// delivery cannot fix it. Ack and leave it to the
					// operator's manual trigger once rates are configured.
					logger.WithFields(logrus.Fields{
						"module":  "trello",
						"job_id":  job.ID,
						"card_id": event.CardId,
					}).Warn("deduction skipped: bom_missing")
					c.JSON(http.StatusOK, gin.H{"ok": true, "warning": "bom_missing"})
					return
				}
				config.LogError(logger, "trello", "WebhookHandler", "deduct for job", job.ID, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "deduction failed"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"ok": true, "changed": changed, "deduction": result.Status})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true, "changed": changed})
	}
}

// WebhookProbeHandler answers the HEAD request the board service sends to
// validate the callback URL at webhook registration time.
func WebhookProbeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Status(http.StatusOK)
	}
}
