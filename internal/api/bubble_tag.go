package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/bubblefeed/internal/models"
	"github.com/lalith-99/bubblefeed/internal/repository"
	"go.uber.org/zap"
)

// BubbleTagHandler serves /bubbles/:id/tags.
type BubbleTagHandler struct {
	bubbles repository.BubbleRepository
	tags    repository.BubbleTagRepository
	logger  *zap.Logger
}

func NewBubbleTagHandler(bubbles repository.BubbleRepository, tags repository.BubbleTagRepository, logger *zap.Logger) *BubbleTagHandler {
	return &BubbleTagHandler{bubbles: bubbles, tags: tags, logger: logger}
}

type createBubbleTagRequest struct {
	Content         *string `json:"content" binding:"required,max=50"`
	IsAdvertisement bool    `json:"is_advertisement"`
	SizeLevel       *int    `json:"size_level" binding:"required,oneof=1 2 3"`
}

type updateBubbleTagRequest struct {
	Content         *string `json:"content" binding:"omitempty,max=50"`
	IsAdvertisement *bool   `json:"is_advertisement"`
	SizeLevel       *int    `json:"size_level" binding:"omitempty,oneof=1 2 3"`
}

// Create handles POST /bubbles/:id/tags
func (h *BubbleTagHandler) Create(c *gin.Context) {
	b, ok := loadBubble(c, h.bubbles, h.logger)
	if !ok {
		return
	}
	var req createBubbleTagRequest
	if !bindCreate(c, &req) {
		return
	}

	t := models.BubbleTag{
		BubbleID:        b.ID,
		Content:         *req.Content,
		IsAdvertisement: req.IsAdvertisement,
		SizeLevel:       *req.SizeLevel,
	}
	if err := h.tags.Create(c.Request.Context(), &t); err != nil {
		serverError(c, h.logger, "create tag", err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// List handles GET /bubbles/:id/tags
func (h *BubbleTagHandler) List(c *gin.Context) {
	b, ok := loadBubble(c, h.bubbles, h.logger)
	if !ok {
		return
	}
	tags, err := h.tags.ListByBubble(c.Request.Context(), b.ID)
	if err != nil {
		serverError(c, h.logger, "list tags", err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

// Get handles GET /bubbles/:id/tags/:tag_id
func (h *BubbleTagHandler) Get(c *gin.Context) {
	t, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, t)
}

// Update handles PUT /bubbles/:id/tags/:tag_id
func (h *BubbleTagHandler) Update(c *gin.Context) {
	t, ok := h.load(c)
	if !ok {
		return
	}
	var req updateBubbleTagRequest
	if !bindPatch(c, &req) {
		return
	}

	if req.Content != nil {
		t.Content = *req.Content
	}
	if req.IsAdvertisement != nil {
		t.IsAdvertisement = *req.IsAdvertisement
	}
	if req.SizeLevel != nil {
		t.SizeLevel = *req.SizeLevel
	}
	if err := h.tags.Update(c.Request.Context(), t); err != nil {
		serverError(c, h.logger, "update tag", err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// Delete handles DELETE /bubbles/:id/tags/:tag_id
func (h *BubbleTagHandler) Delete(c *gin.Context) {
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

// load finds the tag scoped to its bubble. A tag under another bubble is a 404.
func (h *BubbleTagHandler) load(c *gin.Context) (*models.BubbleTag, bool) {
	bubbleID, ok := pathID(c, "id", "bubble")
	if !ok {
		return nil, false
	}
	tagID, ok := pathID(c, "tag_id", "tag")
	if !ok {
		return nil, false
	}
	t, err := h.tags.Get(c.Request.Context(), bubbleID, tagID)
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
