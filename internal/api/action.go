package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/lalith-99/bubblefeed/internal/action"
	"github.com/lalith-99/bubblefeed/internal/middleware"
	"go.uber.org/zap"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

// ActionHandler serves the VR action slot under /action-vr.
type ActionHandler struct {
	store    action.Store
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewActionHandler(store action.Store, logger *zap.Logger) *ActionHandler {
	return &ActionHandler{
		store: store,
		upgrader: websocket.Upgrader{
			// Same-origin is not enforced; CORS is open for this API as well.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Get handles GET /action-vr
func (h *ActionHandler) Get(c *gin.Context) {
	payload, err := h.store.Get(c.Request.Context())
	if err != nil {
		serverError(c, h.logger, "get action", err)
		return
	}
	writeRaw(c, http.StatusOK, payload)
}

// Set handles POST /action-vr. Any JSON object is accepted and stored
// byte for byte; its shape is not checked.
func (h *ActionHandler) Set(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read request body"})
		return
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be a JSON object"})
		return
	}

	if err := h.store.Set(c.Request.Context(), raw); err != nil {
		serverError(c, h.logger, "set action", err)
		return
	}
	writeRaw(c, http.StatusOK, raw)
}

// Reset handles POST /action-vr/reset
func (h *ActionHandler) Reset(c *gin.Context) {
	if err := h.store.Reset(c.Request.Context()); err != nil {
		serverError(c, h.logger, "reset action", err)
		return
	}
	writeRaw(c, http.StatusOK, action.Default)
}

// Stream handles GET /action-vr/ws. The client gets the current action
// right away and then every later Set or Reset as a text frame. Frames
// from the client are read only to notice when it goes away.
func (h *ActionHandler) Stream(c *gin.Context) {
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Subscribe before reading the current value so nothing written in
	// between is missed.
	updates, err := h.store.Subscribe(ctx)
	if err != nil {
		serverError(c, h.logger, "subscribe to actions", err)
		return
	}
	current, err := h.store.Get(ctx)
	if err != nil {
		serverError(c, h.logger, "get action", err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.logger.Warn("websocket upgrade failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err),
		)
		return
	}
	defer conn.Close()

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(p json.RawMessage) error {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		return conn.WriteMessage(websocket.TextMessage, p)
	}
	if err := send(current); err != nil {
		return
	}

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-updates:
			if !ok {
				return
			}
			if err := send(p); err != nil {
				h.logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
		}
	}
}

func writeRaw(c *gin.Context, status int, payload json.RawMessage) {
	c.Data(status, "application/json; charset=utf-8", payload)
}
