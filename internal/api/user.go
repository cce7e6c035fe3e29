package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/bubblefeed/internal/models"
	"github.com/lalith-99/bubblefeed/internal/repository"
	"go.uber.org/zap"
)

// UserHandler serves /users.
type UserHandler struct {
	repo            repository.UserRepository
	restrictDeletes bool
	logger          *zap.Logger
}

func NewUserHandler(repo repository.UserRepository, restrictDeletes bool, logger *zap.Logger) *UserHandler {
	return &UserHandler{repo: repo, restrictDeletes: restrictDeletes, logger: logger}
}

// Pointers mark presence: "required" fails only when the key is absent,
// so an empty string is still accepted.
type createUserRequest struct {
	Username        *string `json:"username" binding:"required,max=150"`
	ProfileImageURL *string `json:"profile_image_url" binding:"required,max=512"`
	IsSponsor       bool    `json:"is_sponsor"`
}

type updateUserRequest struct {
	Username        *string `json:"username" binding:"omitempty,max=150"`
	ProfileImageURL *string `json:"profile_image_url" binding:"omitempty,max=512"`
	IsSponsor       *bool   `json:"is_sponsor"`
}

func (r updateUserRequest) apply(u *models.User) {
	if r.Username != nil {
		u.Username = *r.Username
	}
	if r.ProfileImageURL != nil {
		u.ProfileImageURL = *r.ProfileImageURL
	}
	if r.IsSponsor != nil {
		u.IsSponsor = *r.IsSponsor
	}
}

// Create handles POST /users
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if !bindCreate(c, &req) {
		return
	}

	u := models.User{
		Username:        *req.Username,
		ProfileImageURL: *req.ProfileImageURL,
		IsSponsor:       req.IsSponsor,
	}
	if err := h.repo.Create(c.Request.Context(), &u); err != nil {
		serverError(c, h.logger, "create user", err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// List handles GET /users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.repo.List(c.Request.Context())
	if err != nil {
		serverError(c, h.logger, "list users", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// Get handles GET /users/:id
func (h *UserHandler) Get(c *gin.Context) {
	u, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, u)
}

// Update handles PUT /users/:id
func (h *UserHandler) Update(c *gin.Context) {
	u, ok := h.load(c)
	if !ok {
		return
	}
	var req updateUserRequest
	if !bindPatch(c, &req) {
		return
	}

	req.apply(u)
	if err := h.repo.Update(c.Request.Context(), u); err != nil {
		serverError(c, h.logger, "update user", err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// Delete handles DELETE /users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	u, ok := h.load(c)
	if !ok {
		return
	}

	if h.restrictDeletes {
		has, err := h.repo.HasFeeds(c.Request.Context(), u.ID)
		if err != nil {
			serverError(c, h.logger, "delete user", err)
			return
		}
		if has {
			c.JSON(http.StatusConflict, gin.H{"error": "user still has feeds"})
			return
		}
	}

	if err := h.repo.Delete(c.Request.Context(), u.ID); err != nil {
		serverError(c, h.logger, "delete user", err)
		return
	}
	deleted(c, "User")
}

// load resolves :id to a user, writing the 400/404/500 itself on failure.
func (h *UserHandler) load(c *gin.Context) (*models.User, bool) {
	id, ok := pathID(c, "id", "user")
	if !ok {
		return nil, false
	}
	u, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		serverError(c, h.logger, "get user", err)
		return nil, false
	}
	if u == nil {
		notFound(c, "user")
		return nil, false
	}
	return u, true
}
