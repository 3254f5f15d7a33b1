package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/Jostyn07/Asesoriasth-backend/model"
	"github.com/Jostyn07/Asesoriasth-backend/pkg/logger"
	"github.com/Jostyn07/Asesoriasth-backend/service"
	"github.com/gin-gonic/gin"
)

// Submitter runs the intake pipeline; an interface so handler tests can
// fake the orchestrator.
type Submitter interface {
	Submit(ctx context.Context, sub *model.Submission) (*model.SubmissionResult, error)
}

type SubmissionHandler struct {
	submitter Submitter
}

func NewSubmissionHandler(submitter Submitter) *SubmissionHandler {
	return &SubmissionHandler{submitter: submitter}
}

// Submit accepts the full enrollment form. Status codes follow the
// partial-success contract: 201 when the primary write and every mirror
// group landed, 207 when the record is durable but one or more mirror
// groups gave up, 400 for validation, 500 for a primary store failure.
func (h *SubmissionHandler) Submit(c *gin.Context) {
	var sub model.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission payload"})
		return
	}

	result, err := h.submitter.Submit(c.Request.Context(), &sub)
	if err != nil {
		var validationErr *service.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Validation failed",
				"field": validationErr.Field,
			})
			return
		}

		var storeErr *service.PrimaryStoreError
		if errors.As(err, &storeErr) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to persist submission"})
			return
		}

		logger.Error(c.Request.Context(), "submission failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process submission"})
		return
	}

	if result.FullSuccess() {
		c.JSON(http.StatusCreated, gin.H{
			"success":    true,
			"status":     "complete",
			"clientId":   result.ClientID,
			"sinkStatus": result.SinkStatus,
		})
		return
	}

	// Primary store holds the record; the mirror is out of sync for the
	// listed groups until someone reconciles by clientId.
	c.JSON(http.StatusMultiStatus, gin.H{
		"success":      true,
		"status":       "partial",
		"clientId":     result.ClientID,
		"sinkStatus":   result.SinkStatus,
		"failedGroups": result.SinkStatus.FailedGroups(),
		"warning":      "Submission stored, but some mirror writes failed",
	})
}
