package handlers

import (
	"errors"
	"net/http"

	"reelvote/middleware"
	"reelvote/services"

	"github.com/gin-gonic/gin"
)

type GameHandler struct {
	gameService *services.GameService
	hub         *services.Hub
}

func NewGameHandler(gameService *services.GameService, hub *services.Hub) *GameHandler {
	return &GameHandler{
		gameService: gameService,
		hub:         hub,
	}
}

// ListGames returns the viewer's games: featured-only for the public,
// everything for admins, leaderboard-ordered either way.
func (h *GameHandler) ListGames(c *gin.Context) {
	isAdmin := middleware.IsAdmin(c)

	games, err := h.gameService.VisibleGames(isAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load games"})
		return
	}

	c.JSON(http.StatusOK, games)
}

func (h *GameHandler) GetBoard(c *gin.Context) {
	var board []services.BoardEntry
	var err error
	if middleware.IsAdmin(c) {
		board, err = h.gameService.AdminBoard()
	} else {
		board, err = h.gameService.PublicBoard()
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build leaderboard"})
		return
	}

	c.JSON(http.StatusOK, board)
}

func (h *GameHandler) CreateGame(c *gin.Context) {
	var req services.CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	game, err := h.gameService.CreateGame(&req)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateName) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create game"})
		return
	}

	if h.hub != nil {
		h.hub.BroadcastBoard()
	}

	c.JSON(http.StatusCreated, game)
}

type saveFeaturedRequest struct {
	IDs []uint `json:"ids"`
}

// SaveFeatured replaces the featured set with exactly the posted ids.
func (h *GameHandler) SaveFeatured(c *gin.Context) {
	var req saveFeaturedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.gameService.SaveFeatured(req.IDs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save selection"})
		return
	}

	if h.hub != nil {
		h.hub.BroadcastBoard()
	}

	c.JSON(http.StatusOK, gin.H{"message": "Selection saved"})
}

// ImportGames bulk-adds games from a JSON array, skipping names that
// already exist.
func (h *GameHandler) ImportGames(c *gin.Context) {
	var items []services.GameImport
	if err := c.ShouldBindJSON(&items); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, skipped, err := h.gameService.ImportGames(items)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Import failed"})
		return
	}

	if h.hub != nil {
		h.hub.BroadcastBoard()
	}

	c.JSON(http.StatusOK, gin.H{"created": created, "skipped": skipped})
}
