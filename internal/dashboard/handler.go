package dashboard

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"nexusq/internal/constants"
	"nexusq/internal/logger"
	"nexusq/pkg/logging"
)

type Handler struct {
	hook   *Hook
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(hook *Hook, log logger.Logger) *Handler {
	return &Handler{
		hook:   hook,
		logger: log,
		now:    time.Now,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		v1.GET("/snapshot", h.GetSnapshot)
		v1.POST("/snapshot/reload", h.Reload)
		v1.GET("/stream", h.Stream)
		v1.GET("/dashboard", h.GetOverview)
	}
}

// GetSnapshot godoc
// @Summary      Current data snapshot
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  Snapshot
// @Router       /v1/snapshot [get]
func (h *Handler) GetSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.hook.Snapshot())
}

// Reload godoc
// @Summary      Reload the snapshot
// @Description  Runs a full (non-silent) load and returns the result, including any load error
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  Snapshot
// @Router       /v1/snapshot/reload [post]
func (h *Handler) Reload(c *gin.Context) {
	// The snapshot is shared by every viewer, so a client hanging up must not abort it.
	ctx, cancel := context.WithTimeout(logging.Detach(c.Request.Context()), constants.SnapshotReloadTimeout)
	defer cancel()

	c.JSON(http.StatusOK, h.hook.Load(ctx, false))
}

// GetOverview godoc
// @Summary      Dashboard aggregates
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  Overview
// @Router       /v1/dashboard [get]
func (h *Handler) GetOverview(c *gin.Context) {
	c.JSON(http.StatusOK, BuildOverview(h.hook.Snapshot(), h.now()))
}

// Stream godoc
// @Summary      Snapshot stream
// @Description  Server-sent events; a "snapshot" event is sent on connect and after every refresh
// @Tags         dashboard
// @Produce      text/event-stream
// @Router       /v1/stream [get]
func (h *Handler) Stream(c *gin.Context) {
	updates, stop := h.hook.Watch()
	defer stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent("snapshot", h.hook.Snapshot())
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case _, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("snapshot", h.hook.Snapshot())
			return true
		}
	})

	h.logger.DebugwCtx(ctx, "Snapshot stream closed")
}
