package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/bubblefeed/internal/models"
	"github.com/lalith-99/bubblefeed/internal/repository"
	"go.uber.org/zap"
)

// FeedTagHandler serves /feeds/:id/tags.
type FeedTagHandler struct {
	feeds  repository.FeedRepository
	tags   repository.FeedTagRepository
	logger *zap.Logger
}

func NewFeedTagHandler(feeds repository.FeedRepository, tags repository.FeedTagRepository, logger *zap.Logger) *FeedTagHandler {
	return &FeedTagHandler{feeds: feeds, tags: tags, logger: logger}
}

type createFeedTagRequest struct {
	Content         *string `json:"content" binding:"required,max=50"`
	IsAdvertisement bool    `json:"is_advertisement"`
}

type updateFeedTagRequest struct {
	Content         *string `json:"content" binding:"omitempty,max=50"`
	IsAdvertisement *bool   `json:"is_advertisement"`
}

// Create handles POST /feeds/:id/tags
func (h *FeedTagHandler) Create(c *gin.Context) {
	f, ok := h.loadFeed(c)
	if !ok {
		return
	}
	var req createFeedTagRequest
	if !bindCreate(c, &req) {
		return
	}

	t := models.FeedTag{FeedID: f.ID, Content: *req.Content, IsAdvertisement: req.IsAdvertisement}
	if err := h.tags.Create(c.Request.Context(), &t); err != nil {
		serverError(c, h.logger, "create tag", err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// List handles GET /feeds/:id/tags
func (h *FeedTagHandler) List(c *gin.Context) {
	f, ok := h.loadFeed(c)
	if !ok {
		return
	}
	tags, err := h.tags.ListByFeed(c.Request.Context(), f.ID)
	if err != nil {
		serverError(c, h.logger, "list tags", err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

// Get handles GET /feeds/:id/tags/:tag_id
func (h *FeedTagHandler) Get(c *gin.Context) {
	t, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, t)
}

// Update handles PUT /feeds/:id/tags/:tag_id
func (h *FeedTagHandler) Update(c *gin.Context) {
	t, ok := h.load(c)
	if !ok {
		return
	}
	var req updateFeedTagRequest
	if !bindPatch(c, &req) {
		return
	}

	if req.Content != nil {
		t.Content = *req.Content
	}
	if req.IsAdvertisement != nil {
		t.IsAdvertisement = *req.IsAdvertisement
	}
	if err := h.tags.Update(c.Request.Context(), t); err != nil {
		serverError(c, h.logger, "update tag", err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// Delete handles DELETE /feeds/:id/tags/:tag_id
func (h *FeedTagHandler) Delete(c *gin.Context) {
	t, ok := h.load(c)
	if !ok {
		return
	}
	if err := h.tags.Delete(c.Request.Context(), t.ID); err != nil {
		serverError(c, h.logger, "delete tag", err)
		return
	}
	deleted(c, "Tag")
}

func (h *FeedTagHandler) loadFeed(c *gin.Context) (*models.Feed, bool) {
	id, ok := pathID(c, "id", "feed")
	if !ok {
		return nil, false
	}
	f, err := h.feeds.GetByID(c.Request.Context(), id)
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

func (h *FeedTagHandler) load(c *gin.Context) (*models.FeedTag, bool) {
	feedID, ok := pathID(c, "id", "feed")
	if !ok {
		return nil, false
	}
	tagID, ok := pathID(c, "tag_id", "tag")
	if !ok {
		return nil, false
	}
	t, err := h.tags.Get(c.Request.Context(), feedID, tagID)
	if err != nil {
		serverError(c, h.logger, "get tag", err)
		return nil, false
	}
	if t == nil {
		notFound(c, "tag")
		return nil, false
	}
	return t, true
}
