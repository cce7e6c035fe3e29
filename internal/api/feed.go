package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/bubblefeed/internal/models"
	"github.com/lalith-99/bubblefeed/internal/repository"
	"go.uber.org/zap"
)

const (
	// A feed must have strictly more likes than this to be a top feed.
	topFeedsMinLikes = 100
	topFeedsLimit    = 4
)

// FeedHandler serves feeds both nested under /bubbles/:id/feeds and at
// the top-level /feeds.
type FeedHandler struct {
	bubbles         repository.BubbleRepository
	users           repository.UserRepository
	feeds           repository.FeedRepository
	restrictDeletes bool
	logger          *zap.Logger
}

func NewFeedHandler(
	bubbles repository.BubbleRepository,
	users repository.UserRepository,
	feeds repository.FeedRepository,
	restrictDeletes bool,
	logger *zap.Logger,
) *FeedHandler {
	return &FeedHandler{
		bubbles:         bubbles,
		users:           users,
		feeds:           feeds,
		restrictDeletes: restrictDeletes,
		logger:          logger,
	}
}

type createFeedRequest struct {
	UserID          *int64  `json:"user_id" binding:"required"`
	Content         *string `json:"content" binding:"required"`
	MediaURL        *string `json:"media_url" binding:"required,max=512"`
	MediaType       *string `json:"media_type" binding:"required,oneof=image video"`
	IsAdvertisement bool    `json:"is_advertisement"`
	ViewCount       int     `json:"view_count" binding:"min=-2147483648,max=2147483647"`
	LikeCount       int     `json:"like_count" binding:"min=-2147483648,max=2147483647"`
	IsLiked         bool    `json:"is_liked"`
}

type updateFeedRequest struct {
	Content         *string `json:"content"`
	MediaURL        *string `json:"media_url" binding:"omitempty,max=512"`
	MediaType       *string `json:"media_type" binding:"omitempty,oneof=image video"`
	IsAdvertisement *bool   `json:"is_advertisement"`
	ViewCount       *int    `json:"view_count" binding:"omitempty,min=-2147483648,max=2147483647"`
	LikeCount       *int    `json:"like_count" binding:"omitempty,min=-2147483648,max=2147483647"`
	IsLiked         *bool   `json:"is_liked"`
}

func (r updateFeedRequest) apply(f *models.Feed) {
	if r.Content != nil {
		f.Content = *r.Content
	}
	if r.MediaURL != nil {
		f.MediaURL = *r.MediaURL
	}
	if r.MediaType != nil {
		f.MediaType = *r.MediaType
	}
	if r.IsAdvertisement != nil {
		f.IsAdvertisement = *r.IsAdvertisement
	}
	if r.ViewCount != nil {
		f.ViewCount = *r.ViewCount
	}
	if r.LikeCount != nil {
		f.LikeCount = *r.LikeCount
	}
	if r.IsLiked != nil {
		f.IsLiked = *r.IsLiked
	}
}

// Create handles POST /bubbles/:id/feeds
//
// Both the bubble and the author must exist; either missing is a 404.
func (h *FeedHandler) Create(c *gin.Context) {
	b, ok := loadBubble(c, h.bubbles, h.logger)
	if !ok {
		return
	}
	var req createFeedRequest
	if !bindCreate(c, &req) {
		return
	}

	author, err := h.users.GetByID(c.Request.Context(), *req.UserID)
	if err != nil {
		serverError(c, h.logger, "create feed", err)
		return
	}
	if author == nil {
		notFound(c, "user")
		return
	}

	f := models.Feed{
		BubbleID:        b.ID,
		UserID:          author.ID,
		Content:         *req.Content,
		MediaURL:        *req.MediaURL,
		MediaType:       *req.MediaType,
		IsAdvertisement: req.IsAdvertisement,
		ViewCount:       req.ViewCount,
		LikeCount:       req.LikeCount,
		IsLiked:         req.IsLiked,
	}
	if err := h.feeds.Create(c.Request.Context(), &f); err != nil {
		serverError(c, h.logger, "create feed", err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

// ListByBubble handles GET /bubbles/:id/feeds, most liked first.
func (h *FeedHandler) ListByBubble(c *gin.Context) {
	b, ok := loadBubble(c, h.bubbles, h.logger)
	if !ok {
		return
	}
	feeds, err := h.feeds.ListByBubble(c.Request.Context(), b.ID)
	if err != nil {
		serverError(c, h.logger, "list feeds", err)
		return
	}
	c.JSON(http.StatusOK, feeds)
}

// Top handles GET /bubbles/:id/feeds/top4: up to four feeds with more
// than 100 likes, most liked first. An empty list is a valid answer.
func (h *FeedHandler) Top(c *gin.Context) {
	b, ok := loadBubble(c, h.bubbles, h.logger)
	if !ok {
		return
	}
	feeds, err := h.feeds.TopByBubble(c.Request.Context(), b.ID, topFeedsMinLikes, topFeedsLimit)
	if err != nil {
		serverError(c, h.logger, "list top feeds", err)
		return
	}
	c.JSON(http.StatusOK, feeds)
}

// GetInBubble handles GET /bubbles/:id/feeds/:feed_id
func (h *FeedHandler) GetInBubble(c *gin.Context) {
	f, ok := h.loadInBubble(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, f)
}

// UpdateInBubble handles PUT /bubbles/:id/feeds/:feed_id
//
// like_count and is_liked are written as given; nothing keeps them in
// step here. Use the like toggle for that.
func (h *FeedHandler) UpdateInBubble(c *gin.Context) {
	f, ok := h.loadInBubble(c)
	if !ok {
		return
	}
	var req updateFeedRequest
	if !bindPatch(c, &req) {
		return
	}

	req.apply(f)
	if err := h.feeds.Update(c.Request.Context(), f); err != nil {
		serverError(c, h.logger, "update feed", err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// DeleteInBubble handles DELETE /bubbles/:id/feeds/:feed_id
func (h *FeedHandler) DeleteInBubble(c *gin.Context) {
	f, ok := h.loadInBubble(c)
	if !ok {
		return
	}

	if h.restrictDeletes {
		has, err := h.feeds.HasTags(c.Request.Context(), f.ID)
		if err != nil {
			serverError(c, h.logger, "delete feed", err)
			return
		}
		if has {
			c.JSON(http.StatusConflict, gin.H{"error": "feed still has tags"})
			return
		}
	}

	if err := h.feeds.Delete(c.Request.Context(), f.ID); err != nil {
		serverError(c, h.logger, "delete feed", err)
		return
	}
	deleted(c, "Feed")
}

// List handles GET /feeds, most liked first across every bubble.
func (h *FeedHandler) List(c *gin.Context) {
	feeds, err := h.feeds.List(c.Request.Context())
	if err != nil {
		serverError(c, h.logger, "list feeds", err)
		return
	}
	c.JSON(http.StatusOK, feeds)
}

// Get handles GET /feeds/:id
func (h *FeedHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "feed")
	if !ok {
		return
	}
	f, err := h.feeds.GetByID(c.Request.Context(), id)
	if err != nil {
		serverError(c, h.logger, "get feed", err)
		return
	}
	if f == nil {
		notFound(c, "feed")
		return
	}
	c.JSON(http.StatusOK, f)
}

// ToggleLike handles POST /feeds/:id/like
func (h *FeedHandler) ToggleLike(c *gin.Context) {
	id, ok := pathID(c, "id", "feed")
	if !ok {
		return
	}
	f, err := h.feeds.ToggleLike(c.Request.Context(), id)
	if err != nil {
		serverError(c, h.logger, "toggle like", err)
		return
	}
	if f == nil {
		notFound(c, "feed")
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *FeedHandler) loadInBubble(c *gin.Context) (*models.Feed, bool) {
	bubbleID, ok := pathID(c, "id", "bubble")
	if !ok {
		return nil, false
	}
	feedID, ok := pathID(c, "feed_id", "feed")
	if !ok {
		return nil, false
	}
	f, err := h.feeds.GetInBubble(c.Request.Context(), bubbleID, feedID)
	if err != nil {
		serverError(c, h.logger, "get feed", err)
		return nil, false
	}
	if f == nil {
		notFound(c, "feed")
		return nil, false
	}
	return f, true
}
