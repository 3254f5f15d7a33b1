package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/Jostyn07/Asesoriasth-backend/model"
	"github.com/Jostyn07/Asesoriasth-backend/pkg/logger"
	"github.com/Jostyn07/Asesoriasth-backend/store"
	"github.com/gin-gonic/gin"
)

// DraftStore is the persistence boundary for drafts, kept an interface so
// handler tests run against a fake.
type DraftStore interface {
	Save(ctx context.Context, draftID string, payload json.RawMessage) (string, time.Time, error)
	Load(ctx context.Context, draftID string) (*model.Draft, error)
	List(ctx context.Context) ([]model.DraftSummary, error)
	Delete(ctx context.Context, draftID string) error
}

type DraftHandler struct {
	drafts DraftStore
}

func NewDraftHandler(drafts DraftStore) *DraftHandler {
	return &DraftHandler{drafts: drafts}
}

// Save upserts a draft snapshot. The body is an arbitrary JSON object;
// an optional draftId field addresses an existing draft.
func (h *DraftHandler) Save(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
		return
	}

	var probe struct {
		DraftID string `json:"draftId"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid draft payload"})
		return
	}

	draftID, savedAt, err := h.drafts.Save(c.Request.Context(), probe.DraftID, body)
	if err != nil {
		logger.Error(c.Request.Context(), "draft save failed", "draft_id", probe.DraftID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save draft"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"draftId":   draftID,
		"timestamp": savedAt.Format(time.RFC3339),
	})
}

// Load returns an active draft's full snapshot plus listing metadata.
func (h *DraftHandler) Load(c *gin.Context) {
	draftID := c.Param("draftId")

	draft, err := h.drafts.Load(c.Request.Context(), draftID)
	if errors.Is(err, store.ErrDraftNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Draft not found"})
		return
	}
	if err != nil {
		logger.Error(c.Request.Context(), "draft load failed", "draft_id", draftID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load draft"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"draft":   json.RawMessage(draft.Payload),
		"metadata": gin.H{
			"draftId":   draft.DraftID,
			"timestamp": draft.UpdatedAt.Format(time.RFC3339),
			"nombre":    draft.GivenName,
			"apellidos": draft.FamilyName,
		},
	})
}

// List returns summaries of active drafts, most recent first.
func (h *DraftHandler) List(c *gin.Context) {
	drafts, err := h.drafts.List(c.Request.Context())
	if err != nil {
		logger.Error(c.Request.Context(), "draft list failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list drafts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(drafts),
		"drafts":  drafts,
	})
}

// Delete soft-deletes a draft. The row stays; the draft just stops being
// visible, so deleting twice reads as not found.
func (h *DraftHandler) Delete(c *gin.Context) {
	draftID := c.Param("draftId")

	err := h.drafts.Delete(c.Request.Context(), draftID)
	if errors.Is(err, store.ErrDraftNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Draft not found"})
		return
	}
	if err != nil {
		logger.Error(c.Request.Context(), "draft delete failed", "draft_id", draftID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete draft"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"draftId": draftID,
	})
}
