package systemhealth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nexusq/pkg/health"
)

type ServiceStatus struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Load   int    `json:"load"`
	Uptime string `json:"uptime"`
}

type LogEntry struct {
	Time   string `json:"time"`
	Event  string `json:"event"`
	Source string `json:"source"`
	Status string `json:"status"`
}

// Catalogue is the fixed service list shown on the health page.
var Catalogue = []ServiceStatus{
	{Name: "LLM Processor", Status: "optimal", Load: 12, Uptime: "99.98%"},
	{Name: "Lead Validator", Status: "active", Load: 5, Uptime: "100%"},
	{Name: "Revenue Pipeline", Status: "synced", Load: 8, Uptime: "99.95%"},
	{Name: "Messaging API", Status: "connected", Load: 2, Uptime: "99.99%"},
}

var Logs = []LogEntry{
	{Time: "05:12:44", Event: "Lead qualification completed", Source: "Nexus Core", Status: "success"},
	{Time: "05:10:02", Event: "Automated response dispatched", Source: "Messaging", Status: "success"},
	{Time: "05:08:15", Event: "System health check initiated", Source: "Monitor", Status: "info"},
	{Time: "04:55:30", Event: "New intake request detected", Source: "Web Entry", Status: "success"},
	{Time: "04:42:11", Event: "Minor latency detected in region us-east-1", Source: "Network", Status: "warning"},
}

type Report struct {
	health.Health
	Services []ServiceStatus `json:"services"`
	Logs     []LogEntry      `json:"logs"`
}

type Handler struct {
	registry *health.CheckerRegistry
}

func NewHandler(registry *health.CheckerRegistry) *Handler {
	return &Handler{registry: registry}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.Liveness)
	router.GET("/api/v1/system/health", h.Report)
}

// Liveness answers 200 as long as the process serves HTTP. It sits outside /api and is
// left out of the API docs.
func (h *Handler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Report godoc
// @Summary      System health
// @Description  Dependency checks plus the service catalogue
// @Tags         health
// @Produce      json
// @Success      200  {object}  Report
// @Failure      503  {object}  Report
// @Router       /v1/system/health [get]
func (h *Handler) Report(c *gin.Context) {
	result := h.registry.Check(c.Request.Context())

	statusCode := http.StatusOK
	if result.Status == health.StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, Report{
		Health:   result,
		Services: Catalogue,
		Logs:     Logs,
	})
}
