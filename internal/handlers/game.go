package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"table-games-backend/internal/models"
	"table-games-backend/internal/services"
)

type GameHandler struct {
	gameEngine *services.GameEngine
}

func NewGameHandler(gameEngine *services.GameEngine) *GameHandler {
	return &GameHandler{gameEngine: gameEngine}
}

// Play resolves one game for the authenticated session. A session that has
// already played gets a 409 and no draw is run.
func (h *GameHandler) Play(c *gin.Context) {
	sessionID := c.GetString("session_id")

	game, err := models.ParseGameType(c.Param("game"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.gameEngine.Play(c.Request.Context(), sessionID, game)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAlreadyPlayed):
			c.JSON(http.StatusConflict, gin.H{"error": "You have already played today"})
		case errors.Is(err, services.ErrSessionNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired or invalid"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to play game"})
		}
		return
	}

	c.JSON(http.StatusOK, models.PlayResponse{Success: true, Outcome: outcome})
}

// GetSession returns the session snapshot the UI hydrates from.
func (h *GameHandler) GetSession(c *gin.Context) {
	sessionID := c.GetString("session_id")

	session, err := h.gameEngine.Session(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired or invalid"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": sessionView(session)})
}
