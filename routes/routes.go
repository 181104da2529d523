package routes

import (
	"log"
	"net/http"

	"reelvote/handlers"
	"reelvote/middleware"
	"reelvote/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func SetupRoutes(
	router *gin.Engine,
	gameHandler *handlers.GameHandler,
	voteHandler *handlers.VoteHandler,
	adminHandler *handlers.AdminHandler,
	hub *services.Hub,
	jwtSecret string,
) {
	// API routes
	api := router.Group("/api")
	{
		// Public routes; an admin token, when present, widens visibility
		public := api.Group("/")
		public.Use(middleware.AdminOptional(jwtSecret))
		{
			public.GET("/games", gameHandler.ListGames)
			public.GET("/board", gameHandler.GetBoard)
			public.GET("/feed", voteHandler.GetFeed)
			public.POST("/device", voteHandler.RegisterDevice)
			public.POST("/games/:id/vote", voteHandler.CastVote)
		}

		// Admin unlock (public by necessity)
		api.POST("/admin/unlock", adminHandler.Unlock)

		// Protected admin routes
		admin := api.Group("/admin")
		admin.Use(middleware.AdminRequired(jwtSecret))
		{
			admin.POST("/games", gameHandler.CreateGame)
			admin.PUT("/games/featured", gameHandler.SaveFeatured)
			admin.POST("/games/import", gameHandler.ImportGames)

			admin.POST("/reset/selected", adminHandler.ResetSelected)
			admin.POST("/reset/votes", adminHandler.ResetAllVotes)
			admin.POST("/reset/live", adminHandler.ResetLiveLog)
			admin.GET("/reset/:kind/progress", adminHandler.ResetProgress)
		}
	}

	// WebSocket endpoint for live board and feed updates
	router.GET("/ws", func(c *gin.Context) {
		// Browsers cannot set headers on WebSocket upgrades, so the admin
		// token rides in the query string here.
		isAdmin := false
		if token := c.Query("token"); token != "" {
			isAdmin = middleware.TokenIsAdmin(token, jwtSecret)
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
			return
		}

		log.Printf("WebSocket connection established (admin=%t)", isAdmin)
		hub.RegisterClient(conn, isAdmin)
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
