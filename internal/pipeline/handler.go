package pipeline

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

type listQuery struct {
	Limit int `form:"limit"`
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		p := v1.Group("/pipeline")
		p.GET("", h.ListRows)
		p.GET("/board", h.GetBoard)
		p.POST("/stage", h.UpdateStage)
	}
}

// GetBoard godoc
// @Summary      Pipeline board
// @Description  Kanban columns, stage distribution, revenue by stage and flow data
// @Tags         pipeline
// @Produce      json
// @Success      200  {object}  Board
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /v1/pipeline/board [get]
func (h *Handler) GetBoard(c *gin.Context) {
	board, err := h.Service.Board(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, board)
}

// ListRows godoc
// @Summary      List pipeline rows
// @Tags         pipeline
// @Produce      json
// @Param        limit  query     int  false  "Maximum rows (default 2000)"
// @Success      200    {array}   Row
// @Failure      400    {object}  errors.ErrorResponse
// @Failure      500    {object}  errors.ErrorResponse
// @Router       /v1/pipeline [get]
func (h *Handler) ListRows(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.HandleError(c, errors.ErrValidation.WithCause(err))
		return
	}

	rows, err := h.Service.Rows(c.Request.Context(), q.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}

// UpdateStage godoc
// @Summary      Change a lead's pipeline stage
// @Description  Forwards the change to the pipeline update workflow
// @Tags         pipeline
// @Accept       json
// @Produce      json
// @Param        update  body      StageUpdateRequest  true  "Stage change"
// @Success      200     {object}  map[string]bool
// @Failure      400     {object}  errors.ErrorResponse
// @Failure      502     {object}  errors.ErrorResponse
// @Router       /v1/pipeline/stage [post]
func (h *Handler) UpdateStage(c *gin.Context) {
	var req StageUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleError(c, errors.ErrValidation.WithMessage("invalid request body").WithCause(err))
		return
	}

	if err := h.Service.UpdateStage(c.Request.Context(), req); err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
