package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

const healthProbeTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController reports ok only while the record store answers.
type HealthController struct {
	store Pinger
}

func NewHealthController(store Pinger) *HealthController {
	return &HealthController{store: store}
}

func (c *HealthController) Show(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
	defer cancel()

	if err := c.store.Ping(ctx); err != nil {
		logger.WithCtx(r.Context()).Warn("health probe failed", "error", err)
		response.Error(w, http.StatusServiceUnavailable, "record store unavailable")
		return
	}
	response.Success(w, map[string]string{"status": "ok"})
}
