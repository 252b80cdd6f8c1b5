package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pulse-social/pulse-social/internal/services"
)

type GraphHandler struct {
	graphService *services.GraphService
}

func NewGraphHandler(graphService *services.GraphService) *GraphHandler {
	return &GraphHandler{graphService: graphService}
}

type followResult struct {
	Following bool `json:"following"`
}

type userIDList struct {
	UserIDs []uuid.UUID `json:"user_ids"`
}

// Follow creates the edge from the authenticated user to the target. A
// duplicate edge comes back as 409, a self-follow as 400; callers treat the
// conflict as non-fatal.
func (h *GraphHandler) Follow(c *gin.Context) {
	followerID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.graphService.Follow(c.Request.Context(), followerID, targetID); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, followResult{Following: true})
}

// Unfollow always succeeds, present edge or not.
func (h *GraphHandler) Unfollow(c *gin.Context) {
	followerID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.graphService.Unfollow(c.Request.Context(), followerID, targetID); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, followResult{Following: false})
}

func (h *GraphHandler) GetFollowers(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	ids, err := h.graphService.ListFollowers(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, userIDList{UserIDs: ids})
}

func (h *GraphHandler) GetFollowing(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	ids, err := h.graphService.ListFollowing(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, userIDList{UserIDs: ids})
}
