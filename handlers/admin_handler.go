package handlers

import (
	"errors"
	"log"
	"net/http"

	"reelvote/services"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	authService  *services.AuthService
	resetService *services.ResetService
	gameService  *services.GameService
	hub          *services.Hub
}

func NewAdminHandler(
	authService *services.AuthService,
	resetService *services.ResetService,
	gameService *services.GameService,
	hub *services.Hub,
) *AdminHandler {
	return &AdminHandler{
		authService:  authService,
		resetService: resetService,
		gameService:  gameService,
		hub:          hub,
	}
}

// Unlock exchanges the admin code for a signed admin token.
func (h *AdminHandler) Unlock(c *gin.Context) {
	var req services.UnlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.authService.Unlock(req.Code)
	if err != nil {
		if errors.Is(err, services.ErrInvalidAdminCode) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unlock failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

type resetSelectedRequest struct {
	IDs []uint `json:"ids" binding:"required"`
}

// ResetSelected wipes votes, counters and log entries for the chosen
// games only.
func (h *AdminHandler) ResetSelected(c *gin.Context) {
	var req resetSelectedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.IDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Select at least one game"})
		return
	}

	if err := h.resetService.ResetSelected(req.IDs); err != nil {
		h.resetError(c, err)
		return
	}

	h.afterReset("selected")
	c.JSON(http.StatusOK, gin.H{"message": "Selected reset complete"})
}

// ResetAllVotes zeroes every game's votes and counter but keeps the live
// log.
func (h *AdminHandler) ResetAllVotes(c *gin.Context) {
	if err := h.resetService.ResetAllVotes(); err != nil {
		h.resetError(c, err)
		return
	}

	h.afterReset("votes")
	c.JSON(http.StatusOK, gin.H{"message": "All vote counts reset"})
}

// ResetLiveLog clears the activity feed only.
func (h *AdminHandler) ResetLiveLog(c *gin.Context) {
	if err := h.resetService.ResetLiveLog(); err != nil {
		h.resetError(c, err)
		return
	}

	h.afterReset("live")
	c.JSON(http.StatusOK, gin.H{"message": "Live log cleared"})
}

// ResetProgress reports the checkpoint of an interrupted reset, if any.
func (h *AdminHandler) ResetProgress(c *gin.Context) {
	kind := c.Param("kind")
	if kind != "selected" && kind != "votes" && kind != "live" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown reset kind"})
		return
	}

	progress, err := h.resetService.Progress(kind)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load reset progress"})
		return
	}
	if progress == nil {
		c.JSON(http.StatusOK, gin.H{"pending": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"pending": true, "progress": progress})
}

func (h *AdminHandler) resetError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrResetInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Reset failed; progress is checkpointed, retry to resume"})
}

func (h *AdminHandler) afterReset(kind string) {
	if err := h.gameService.RefreshBoardCache(); err != nil {
		log.Printf("Failed to refresh board cache after %s reset: %v", kind, err)
	}
	if h.hub != nil {
		h.hub.BroadcastResetDone(kind)
		h.hub.BroadcastBoard()
	}
}
