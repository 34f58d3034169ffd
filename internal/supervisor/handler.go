package supervisor

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Runner executes a supervisor on demand.
type Runner interface {
	RunNow(ctx context.Context, name string) (RunSummary, error)
}

type Handler struct {
	runner Runner
}

func NewHandler(runner Runner) *Handler {
	return &Handler{runner: runner}
}

// Run executes a supervisor immediately.
// POST /api/supervisors/:name/run
func (h *Handler) Run(c *gin.Context) {
	summary, err := h.runner.RunNow(c.Request.Context(), c.Param("name"))
	if err != nil {
		if errors.Is(err, ErrUnknownJob) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "summary": summary})
		return
	}
	c.JSON(http.StatusOK, summary)
}
