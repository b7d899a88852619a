package handler

import (
	"context"
	"net/http"
	"time"

	"employee_tracker/utils"

	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by the Mongo and Redis wrappers used for health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthHandler struct {
	checks  map[string]Pinger
	started time.Time
}

// NewHealthHandler takes named dependency checks; a nil entry reports the
// dependency as disabled.
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks, started: time.Now()}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		switch {
		case check == nil:
			deps[name] = "disabled"
		case check.Ping(ctx) != nil:
			deps[name] = "down"
			status = http.StatusServiceUnavailable
		default:
			deps[name] = "up"
		}
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	c.JSON(status, gin.H{
		"status":       overall,
		"dependencies": deps,
		"uptime":       time.Since(h.started).Round(time.Second).String(),
		"cpu_percent":  utils.GetCPUUsage(),
		"mem_percent":  utils.GetMemoryUsage(),
	})
}
