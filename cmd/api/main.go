package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"table-games-backend/internal/config"
	"table-games-backend/internal/handlers"
	"table-games-backend/internal/middleware"
	"table-games-backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := services.NewRedisStore(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer store.Close()

	jwtService := services.NewJWTService(cfg)
	upstream := services.NewUpstreamClient(cfg)

	hub := handlers.NewWebSocketHub()
	gameEngine := services.NewGameEngine(store, services.NewOutcomeSelector(), upstream, hub)

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			gameEngine.CleanupStaleSpins(5 * time.Minute)
		}
	}()

	authHandler := handlers.NewAuthHandler(gameEngine, jwtService)
	gameHandler := handlers.NewGameHandler(gameEngine)
	feedbackHandler := handlers.NewFeedbackHandler(gameEngine)
	wsHandler := handlers.NewWebSocketHandler(hub)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.POST("/api/register", authHandler.Register)

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(jwtService))
	{
		protected.GET("/session", gameHandler.GetSession)
		protected.POST("/feedback", feedbackHandler.Submit)

		protected.GET("/games/wheel/live", wsHandler.HandleWebSocket)
		protected.POST("/games/:game/play", gameHandler.Play)
	}

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
