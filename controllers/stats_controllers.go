package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/pastelaria-api/services"
)

type StatsController struct {
	Service *services.SyncService
}

func NewStatsController(sync *services.SyncService) *StatsController {
	return &StatsController{Service: sync}
}

// Dashboard -> GET /api/v1/stats
func (sc *StatsController) Dashboard(c *gin.Context) {
	stats, err := sc.Service.Dashboard(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
