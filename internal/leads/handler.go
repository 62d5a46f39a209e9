package leads

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nexusq/internal/logger"
	"nexusq/pkg/errors"
	"nexusq/pkg/middleware"
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

// RegisterRoutes mounts the public ingestion route. Extra middleware (rate limiting)
// applies to the POST only.
func (h *Handler) RegisterRoutes(router *gin.Engine, ingest ...gin.HandlerFunc) {
	api := router.Group("/api")
	{
		chain := append(append([]gin.HandlerFunc{}, ingest...),
			middleware.RequireFields("email", "source"),
			h.CreateLead,
		)
		api.POST("/leads", chain...)
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/leads", h.ListLeads)
	}
}

// CreateLead godoc
// @Summary      Create a lead
// @Description  Inserts a lead and records a lead_created event. Automation is notified asynchronously.
// @Tags         leads
// @Accept       json
// @Produce      json
// @Param        lead  body      CreateLeadRequest  true  "Lead data"
// @Success      201   {object}  Lead
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /leads [post]
func (h *Handler) CreateLead(c *gin.Context) {
	var req CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	lead, err := h.Service.CreateLead(c.Request.Context(), req)
	if err != nil {
		h.Logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create lead"})
		return
	}

	c.JSON(http.StatusCreated, lead)
}

// ListLeads godoc
// @Summary      List leads
// @Description  Most recent leads first
// @Tags         leads
// @Produce      json
// @Param        limit  query     int  false  "Maximum rows (default 200, max 1000)"
// @Success      200    {array}   Lead
// @Failure      400    {object}  errors.ErrorResponse
// @Failure      500    {object}  errors.ErrorResponse
// @Router       /v1/leads [get]
func (h *Handler) ListLeads(c *gin.Context) {
	var filter ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	rows, err := h.Service.ListLeads(c.Request.Context(), filter.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}
