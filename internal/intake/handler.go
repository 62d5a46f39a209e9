package intake

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
	status := errors.ToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.Logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)
	}

	c.JSON(status, errors.ToErrorResponse(err))
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

// RegisterRoutes mounts the intake routes. Extra middleware (rate limiting) applies to
// the submission only.
func (h *Handler) RegisterRoutes(router *gin.Engine, submit ...gin.HandlerFunc) {
	v1 := router.Group("/api/v1/intake")
	{
		v1.POST("", append(append([]gin.HandlerFunc{}, submit...), h.Submit)...)
		v1.POST("/steps", h.Advance)
	}
}

// Submit godoc
// @Summary      Submit a service request
// @Description  Validates the form, normalises the phone number and posts it to every intake webhook
// @Tags         intake
// @Accept       json
// @Produce      json
// @Param        form  body      Form  true  "Intake form"
// @Success      201   {object}  SubmitResult
// @Failure      400   {object}  errors.ErrorResponse
// @Failure      409   {object}  errors.ErrorResponse
// @Failure      502   {object}  errors.ErrorResponse
// @Router       /v1/intake [post]
func (h *Handler) Submit(c *gin.Context) {
	var form Form
	if err := c.ShouldBindJSON(&form); err != nil {
		h.HandleError(c, errors.ErrValidation.WithMessage("invalid request body").WithCause(err))
		return
	}

	result, err := h.Service.Submit(c.Request.Context(), form)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// Advance godoc
// @Summary      Validate a wizard transition
// @Tags         intake
// @Accept       json
// @Produce      json
// @Param        request  body      StepRequest  true  "Current step, action and form"
// @Success      200      {object}  StepResult
// @Failure      400      {object}  errors.ErrorResponse
// @Router       /v1/intake/steps [post]
func (h *Handler) Advance(c *gin.Context) {
	var req StepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleError(c, errors.ErrValidation.WithMessage("invalid request body").WithCause(err))
		return
	}

	result, err := h.Service.Advance(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
