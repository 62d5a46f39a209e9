package events

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nexusq/internal/logger"
	"nexusq/pkg/errors"
)

type BaseHandler struct {
	Service Service
	Logger  logger.Logger
}

func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	h.Logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)

	status := errors.ToHTTPStatus(err)
	response := errors.ToErrorResponse(err)

	c.JSON(status, response)
}

type Handler struct {
	BaseHandler
}

func NewHandler(service Service, log logger.Logger) *Handler {
	return &Handler{
		BaseHandler: BaseHandler{
			Service: service,
			Logger:  log,
		},
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		v1.GET("/events", h.ListEvents)
	}
}

// ListEvents godoc
// @Summary      List backend events
// @Description  Most recent event rows, optionally filtered by entity or event type
// @Tags         events
// @Produce      json
// @Param        entity_type  query     string  false  "Entity type"
// @Param        entity_id    query     string  false  "Entity ID"
// @Param        event_type   query     string  false  "Event type"
// @Param        limit        query     int     false  "Maximum rows (default 100, max 1000)"
// @Success      200          {array}   Event
// @Failure      400          {object}  errors.ErrorResponse
// @Failure      500          {object}  errors.ErrorResponse
// @Router       /v1/events [get]
func (h *Handler) ListEvents(c *gin.Context) {
	var filter ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	rows, err := h.Service.ListEvents(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}
