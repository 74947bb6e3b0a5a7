package services

import "table-games-backend/internal/models"

// Broadcaster pushes wheel animation frames to connected clients.
type Broadcaster interface {
	BroadcastSpinFrame(sessionID, spinID string, rotation, revolutions int)
	BroadcastSpinResult(sessionID, spinID string, outcome *models.PlayOutcome)
}
