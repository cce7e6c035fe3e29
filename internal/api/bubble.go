package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/bubblefeed/internal/models"
	"github.com/lalith-99/bubblefeed/internal/repository"
	"go.uber.org/zap"
)

type BubbleHandler struct {
	repo            repository.BubbleRepository
	restrictDeletes bool
	logger          *zap.Logger
}

func NewBubbleHandler(repo repository.BubbleRepository, restrictDeletes bool, logger *zap.Logger) *BubbleHandler {
	return &BubbleHandler{repo: repo, restrictDeletes: restrictDeletes, logger: logger}
}

type createBubbleRequest struct {
	ImageURL  *string  `json:"image_url" binding:"required,max=255"`
	Title     *string  `json:"title" binding:"required,max=150"`
	SizeLevel *int     `json:"size_level" binding:"required,oneof=1 2 3"`
	PosX      *float64 `json:"pos_x" binding:"required"`
	PosY      *float64 `json:"pos_y" binding:"required"`
	PosZ      *float64 `json:"pos_z" binding:"required"`
}

type updateBubbleRequest struct {
	ImageURL  *string  `json:"image_url" binding:"omitempty,max=255"`
	Title     *string  `json:"title" binding:"omitempty,max=150"`
	SizeLevel *int     `json:"size_level" binding:"omitempty,oneof=1 2 3"`
	PosX      *float64 `json:"pos_x"`
	PosY      *float64 `json:"pos_y"`
	PosZ      *float64 `json:"pos_z"`
}

func (r updateBubbleRequest) apply(b *models.Bubble) {
	if r.ImageURL != nil {
		b.ImageURL = *r.ImageURL
	}
	if r.Title != nil {
		b.Title = *r.Title
	}
	if r.SizeLevel != nil {
		b.SizeLevel = *r.SizeLevel
	}
	if r.PosX != nil {
		b.PosX = *r.PosX
	}
	if r.PosY != nil {
		b.PosY = *r.PosY
	}
	if r.PosZ != nil {
		b.PosZ = *r.PosZ
	}
}

// Create handles POST /bubbles
func (h *BubbleHandler) Create(c *gin.Context) {
	var req createBubbleRequest
	if !bindCreate(c, &req) {
		return
	}

	b := models.Bubble{
		ImageURL:  *req.ImageURL,
		Title:     *req.Title,
		SizeLevel: *req.SizeLevel,
		PosX:      *req.PosX,
		PosY:      *req.PosY,
		PosZ:      *req.PosZ,
	}
	if err := h.repo.Create(c.Request.Context(), &b); err != nil {
		serverError(c, h.logger, "create bubble", err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// List handles GET /bubbles
func (h *BubbleHandler) List(c *gin.Context) {
	bubbles, err := h.repo.List(c.Request.Context())
	if err != nil {
		serverError(c, h.logger, "list bubbles", err)
		return
	}
	c.JSON(http.StatusOK, bubbles)
}

// Get handles GET /bubbles/:id
func (h *BubbleHandler) Get(c *gin.Context) {
	b, ok := loadBubble(c, h.repo, h.logger)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, b)
}

// Update handles PUT /bubbles/:id
func (h *BubbleHandler) Update(c *gin.Context) {
	b, ok := loadBubble(c, h.repo, h.logger)
	if !ok {
		return
	}
	var req updateBubbleRequest
	if !bindPatch(c, &req) {
		return
	}

	req.apply(b)
	if err := h.repo.Update(c.Request.Context(), b); err != nil {
		serverError(c, h.logger, "update bubble", err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// Delete handles DELETE /bubbles/:id
//
// Tags and feeds of the bubble are left in place. With restrictDeletes the
// request is refused while any exist.
func (h *BubbleHandler) Delete(c *gin.Context) {
	b, ok := loadBubble(c, h.repo, h.logger)
	if !ok {
		return
	}

	if h.restrictDeletes {
		has, err := h.repo.HasChildren(c.Request.Context(), b.ID)
		if err != nil {
			serverError(c, h.logger, "delete bubble", err)
			return
		}
		if has {
			c.JSON(http.StatusConflict, gin.H{"error": "bubble still has tags or feeds"})
			return
		}
	}

	if err := h.repo.Delete(c.Request.Context(), b.ID); err != nil {
		serverError(c, h.logger, "delete bubble", err)
		return
	}
	deleted(c, "Bubble")
}

// loadBubble resolves the :id path parameter to a bubble. Feed and tag
// handlers use it for their parent check.
func loadBubble(c *gin.Context, repo repository.BubbleRepository, logger *zap.Logger) (*models.Bubble, bool) {
	id, ok := pathID(c, "id", "bubble")
	if !ok {
		return nil, false
	}
	b, err := repo.GetByID(c.Request.Context(), id)
	if err != nil {
		serverError(c, logger, "get bubble", err)
		return nil, false
	}
	if b == nil {
		notFound(c, "bubble")
		return nil, false
	}
	return b, true
}
