package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pulse-social/pulse-social/internal/services"
)

type FeedHandler struct {
	feedService       *services.FeedService
	engagementService *services.EngagementService
}

func NewFeedHandler(feedService *services.FeedService, engagementService *services.EngagementService) *FeedHandler {
	return &FeedHandler{
		feedService:       feedService,
		engagementService: engagementService,
	}
}

func (h *FeedHandler) CreatePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	post, err := h.feedService.CreatePost(c.Request.Context(), userID, &req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Post created successfully",
		"post":    post,
	})
}

func (h *FeedHandler) GetPost(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	post, err := h.feedService.GetPost(c.Request.Context(), postID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post})
}

// DeactivatePost is the soft delete: the post disappears from every read
// path but its likes, comments and notifications stay addressable.
func (h *FeedHandler) DeactivatePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.feedService.Deactivate(c.Request.Context(), userID, postID); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deactivated"})
}

func (h *FeedHandler) GetUserPosts(c *gin.Context) {
	authorID, ok := pathID(c, "id")
	if !ok {
		return
	}

	page, limit := pageParams(c)
	posts, err := h.feedService.ListUserPosts(c.Request.Context(), authorID, page, limit)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (h *FeedHandler) GetFeed(c *gin.Context) {
	viewerID, ok := currentUserID(c)
	if !ok {
		return
	}

	page, limit := pageParams(c)
	feed, err := h.feedService.ComposeFeed(c.Request.Context(), viewerID, page, limit)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, feed)
}

type likeResult struct {
	Liked bool `json:"liked"`
}

type engagementCounts struct {
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
}

func (h *FeedHandler) LikePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.engagementService.Like(c.Request.Context(), userID, postID); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, likeResult{Liked: true})
}

func (h *FeedHandler) UnlikePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.engagementService.Unlike(c.Request.Context(), userID, postID); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, likeResult{Liked: false})
}

// GetEngagement serves the live counts; they are computed from edge rows at
// query time and resolve for deactivated posts as well.
func (h *FeedHandler) GetEngagement(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	likes, err := h.engagementService.CountLikes(c.Request.Context(), postID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	comments, err := h.engagementService.CountComments(c.Request.Context(), postID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, engagementCounts{Likes: likes, Comments: comments})
}

type createCommentRequest struct {
	Content string `json:"content"`
}

func (h *FeedHandler) CreateComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	comment, err := h.engagementService.AddComment(c.Request.Context(), userID, postID, req.Content)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Comment created successfully",
		"comment": comment,
	})
}

func (h *FeedHandler) GetPostComments(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	page, limit := pageParams(c)
	comments, err := h.engagementService.ListComments(c.Request.Context(), postID, page, limit)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}
