package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"table-games-backend/internal/models"
	"table-games-backend/internal/services"
)

type AuthHandler struct {
	gameEngine *services.GameEngine
	jwtService *services.JWTService
}

func NewAuthHandler(gameEngine *services.GameEngine, jwtService *services.JWTService) *AuthHandler {
	return &AuthHandler{
		gameEngine: gameEngine,
		jwtService: jwtService,
	}
}

// Register validates the form, registers the customer upstream and returns a
// signed session token plus the session snapshot the UI hydrates from.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	session, err := h.gameEngine.Register(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"message": err.Error()})
		return
	}

	token, err := h.jwtService.GenerateToken(session.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create session token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"session": sessionView(session),
	})
}

func sessionView(session *models.Session) gin.H {
	return gin.H{
		"id":              session.ID,
		"table_name":      session.TableName,
		"offers":          session.Offers,
		"win_probability": session.WinProbability,
		"played":          session.Played,
		"rated":           session.Rated,
	}
}
