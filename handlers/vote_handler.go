package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"reelvote/services"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	voteService     *services.VoteService
	gameService     *services.GameService
	identityService *services.IdentityService
	hub             *services.Hub
}

func NewVoteHandler(
	voteService *services.VoteService,
	gameService *services.GameService,
	identityService *services.IdentityService,
	hub *services.Hub,
) *VoteHandler {
	return &VoteHandler{
		voteService:     voteService,
		gameService:     gameService,
		identityService: identityService,
		hub:             hub,
	}
}

// RegisterDevice mints (or confirms) the caller's device token. Clients
// persist the returned token and send it back on every vote.
func (h *VoteHandler) RegisterDevice(c *gin.Context) {
	token, err := h.identityService.GetOrCreate(c.Request.Context(), c.GetHeader("X-Device-Token"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register device"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"device_token": token})
}

// CastVote records one vote for a game, keyed by the caller's device
// token. A repeat vote from the same device is a 409, not an error.
func (h *VoteHandler) CastVote(c *gin.Context) {
	gameID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid game ID"})
		return
	}

	deviceToken := c.GetHeader("X-Device-Token")
	if deviceToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-Device-Token header required"})
		return
	}

	var req services.CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.voteService.CastVote(uint(gameID), req.VoterName, deviceToken)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAlreadyVoted):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrGameNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Vote failed"})
		}
		return
	}

	if err := h.gameService.RefreshBoardCache(); err != nil {
		log.Printf("Failed to refresh board cache after vote: %v", err)
	}
	if h.hub != nil {
		h.hub.BroadcastVoteEvent(entry)
		h.hub.BroadcastBoard()
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Vote recorded"})
}

// GetFeed returns the newest activity-log entries.
func (h *VoteHandler) GetFeed(c *gin.Context) {
	entries, err := h.voteService.RecentFeed(10)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load feed"})
		return
	}

	c.JSON(http.StatusOK, entries)
}
