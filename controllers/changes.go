package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/pastelaria-api/cache"
	"github.com/yeremiapane/pastelaria-api/services"
)

const (
	apiPrefix     = "/api/v1/"
	dashboardPath = apiPrefix + "stats"
)

// changeNotifier drops cached reads of an entity and of the dashboard, then
// queues the change for sync clients.
type changeNotifier struct {
	Cache cache.Store
	Sync  *services.SyncRecorder
}

func (n changeNotifier) changed(c *gin.Context, table string, id uint, operation string, data interface{}) {
	ctx := c.Request.Context()
	cache.Invalidate(ctx, n.Cache, apiPrefix+table, dashboardPath)
	n.Sync.Record(ctx, table, id, operation, data)
}

func (n changeNotifier) invalidate(c *gin.Context, tables ...string) {
	paths := make([]string, 0, len(tables)+1)
	for _, t := range tables {
		paths = append(paths, apiPrefix+t)
	}
	paths = append(paths, dashboardPath)
	cache.Invalidate(c.Request.Context(), n.Cache, paths...)
}
