package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lalith-99/bubblefeed/internal/action"
	"github.com/lalith-99/bubblefeed/internal/middleware"
	"github.com/lalith-99/bubblefeed/internal/repository"
	"go.uber.org/zap"
)

// Deps is everything the router needs. Health may be nil when the
// backing store has nothing to ping.
type Deps struct {
	Repos           repository.Repositories
	Actions         action.Store
	Health          func(ctx context.Context) error
	Logger          *zap.Logger
	RestrictDeletes bool
	PublicDir       string
	CORSOrigins     []string
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.AccessLog(d.Logger),
		middleware.Recovery(d.Logger),
		cors.New(corsConfig(d.CORSOrigins)),
	)

	r.GET("/health", healthHandler(d.Health))

	users := NewUserHandler(d.Repos.Users, d.RestrictDeletes, d.Logger)
	r.POST("/users", users.Create)
	r.GET("/users", users.List)
	r.GET("/users/:id", users.Get)
	r.PUT("/users/:id", users.Update)
	r.DELETE("/users/:id", users.Delete)

	bubbles := NewBubbleHandler(d.Repos.Bubbles, d.RestrictDeletes, d.Logger)
	r.POST("/bubbles", bubbles.Create)
	r.GET("/bubbles", bubbles.List)
	r.GET("/bubbles/:id", bubbles.Get)
	r.PUT("/bubbles/:id", bubbles.Update)
	r.DELETE("/bubbles/:id", bubbles.Delete)

	bubbleTags := NewBubbleTagHandler(d.Repos.Bubbles, d.Repos.BubbleTags, d.Logger)
	r.POST("/bubbles/:id/tags", bubbleTags.Create)
	r.GET("/bubbles/:id/tags", bubbleTags.List)
	r.GET("/bubbles/:id/tags/:tag_id", bubbleTags.Get)
	r.PUT("/bubbles/:id/tags/:tag_id", bubbleTags.Update)
	r.DELETE("/bubbles/:id/tags/:tag_id", bubbleTags.Delete)

	feeds := NewFeedHandler(d.Repos.Bubbles, d.Repos.Users, d.Repos.Feeds, d.RestrictDeletes, d.Logger)
	r.POST("/bubbles/:id/feeds", feeds.Create)
	r.GET("/bubbles/:id/feeds", feeds.ListByBubble)
	r.GET("/bubbles/:id/feeds/top4", feeds.Top)
	r.GET("/bubbles/:id/feeds/:feed_id", feeds.GetInBubble)
	r.PUT("/bubbles/:id/feeds/:feed_id", feeds.UpdateInBubble)
	r.DELETE("/bubbles/:id/feeds/:feed_id", feeds.DeleteInBubble)
	r.GET("/feeds", feeds.List)
	r.GET("/feeds/:id", feeds.Get)
	r.POST("/feeds/:id/like", feeds.ToggleLike)
	// Older VR clients post likes to the singular path.
	r.POST("/feed/:id/like", feeds.ToggleLike)

	feedTags := NewFeedTagHandler(d.Repos.Feeds, d.Repos.FeedTags, d.Logger)
	r.POST("/feeds/:id/tags", feedTags.Create)
	r.GET("/feeds/:id/tags", feedTags.List)
	r.GET("/feeds/:id/tags/:tag_id", feedTags.Get)
	r.PUT("/feeds/:id/tags/:tag_id", feedTags.Update)
	r.DELETE("/feeds/:id/tags/:tag_id", feedTags.Delete)

	actions := NewActionHandler(d.Actions, d.Logger)
	r.GET("/action-vr", actions.Get)
	r.POST("/action-vr", actions.Set)
	r.POST("/action-vr/reset", actions.Reset)
	r.GET("/action-vr/ws", actions.Stream)

	if d.PublicDir != "" {
		r.Static("/public", d.PublicDir)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.HeaderRequestID},
		ExposeHeaders: []string{middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func healthHandler(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
