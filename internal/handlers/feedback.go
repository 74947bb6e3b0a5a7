package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"table-games-backend/internal/models"
	"table-games-backend/internal/services"
)

type FeedbackHandler struct {
	gameEngine *services.GameEngine
}

func NewFeedbackHandler(gameEngine *services.GameEngine) *FeedbackHandler {
	return &FeedbackHandler{gameEngine: gameEngine}
}

// Submit accepts a 1-5 star rating for a session that has played. Submission
// is terminal: there is no edit-after-submit.
func (h *FeedbackHandler) Submit(c *gin.Context) {
	sessionID := c.GetString("session_id")

	var req models.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rating must be between 1 and 5"})
		return
	}

	if err := h.gameEngine.SubmitFeedback(c.Request.Context(), sessionID, req.Rating); err != nil {
		switch {
		case errors.Is(err, services.ErrNoToken):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Please register before submitting feedback"})
		case errors.Is(err, services.ErrNotPlayed):
			c.JSON(http.StatusConflict, gin.H{"error": "Play a game before rating your experience"})
		case errors.Is(err, services.ErrAlreadyRated):
			c.JSON(http.StatusConflict, gin.H{"error": "Feedback has already been submitted"})
		case errors.Is(err, services.ErrSessionNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired or invalid"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit feedback"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Thank you for your feedback!",
	})
}
