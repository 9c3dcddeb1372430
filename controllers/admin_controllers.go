package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/pastelaria-api/cache"
	"github.com/yeremiapane/pastelaria-api/middlewares"
	"github.com/yeremiapane/pastelaria-api/utils"
)

type AdminController struct {
	Cache cache.Store
}

func NewAdminController(store cache.Store) *AdminController {
	return &AdminController{Cache: store}
}

// ClearCache -> POST /api/v1/admin/clear-cache. ?pattern= narrows the
// deletion to matching keys (SQL LIKE syntax).
func (ac *AdminController) ClearCache(c *gin.Context) {
	pattern := c.DefaultQuery("pattern", "%")

	removed, err := ac.Cache.DeletePattern(c.Request.Context(), pattern)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	fields := logrus.Fields{"pattern": pattern, "removed": removed}
	if user := middlewares.CurrentUser(c); user != nil {
		fields["user"] = user.Username
	}
	utils.InfoLogger.WithFields(fields).Info("cache cleared")

	utils.RespondJSON(c, http.StatusOK, "Cache limpo com sucesso", gin.H{"removed": removed, "pattern": pattern})
}

// SweepCache -> POST /api/v1/admin/sweep-cache, drops expired entries only.
func (ac *AdminController) SweepCache(c *gin.Context) {
	removed, err := ac.Cache.Sweep(c.Request.Context())
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Entradas expiradas removidas", gin.H{"removed": removed})
}
