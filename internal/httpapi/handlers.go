package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"comment-lens/internal/orchestrator"
	"comment-lens/shared/apperrors"
	"comment-lens/shared/monitoring"
)

type handlers struct {
	orch    *orchestrator.Orchestrator
	monitor *monitoring.Monitor
}

type startRequest struct {
	URL string `json:"url"`
}

// startAnalysis kicks off a run for the posted URL. The response carries
// the run's first snapshot: 202 when the pipeline started, 400 when the
// input was rejected outright.
func (h *handlers) startAnalysis(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(apperrors.KindInvalidInput, "request body must be JSON with a url field"))
		return
	}

	run := h.orch.Start(req.URL)
	status := http.StatusAccepted
	if run.State == orchestrator.StateError {
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"run": run})
}

// latestAnalysis returns the newest run, idle placeholder included.
func (h *handlers) latestAnalysis(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"run": h.orch.Snapshot()})
}

// getAnalysis returns one run by ID.
func (h *handlers) getAnalysis(c *gin.Context) {
	run, ok := h.orch.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, errorBody(apperrors.KindNotFound, "no such analysis run"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"run": run})
}

// health serves orchestration probes from the run monitor.
func (h *handlers) health(c *gin.Context) {
	status := h.monitor.GetStatus()
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"service": "comment-lens", "status": status})
}

func errorBody(kind apperrors.Kind, message string) gin.H {
	return gin.H{"error": gin.H{"kind": kind, "message": message}}
}
