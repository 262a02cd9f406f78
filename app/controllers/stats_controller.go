package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

// StatsController exposes cached counters as {"count": n}.
type StatsController struct {
	dashboards *services.Dashboards
}

func NewStatsController(dashboards *services.Dashboards) *StatsController {
	return &StatsController{dashboards: dashboards}
}

func (c *StatsController) count(w http.ResponseWriter, r *http.Request, pick func(services.Stats) int64) {
	s, err := c.dashboards.Stats(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, map[string]int64{"count": pick(s)})
}

func (c *StatsController) Customers(w http.ResponseWriter, r *http.Request) {
	c.count(w, r, func(s services.Stats) int64 { return int64(s.Customers) })
}

func (c *StatsController) Products(w http.ResponseWriter, r *http.Request) {
	c.count(w, r, func(s services.Stats) int64 { return int64(s.Products) })
}

// Orders reports the number of order notifications still queued.
func (c *StatsController) Orders(w http.ResponseWriter, r *http.Request) {
	c.count(w, r, func(s services.Stats) int64 { return s.PendingQueued })
}
