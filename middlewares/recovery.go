package middlewares

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/pastelaria-api/utils"
)

// Recovery turns a panic into the standard 500 error body.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				utils.ErrorLogger.WithFields(logrus.Fields{
					"panic":      rec,
					"path":       c.Request.URL.Path,
					"request_id": c.GetString(ContextRequestIDKey),
				}).Errorf("panic recovered\n%s", debug.Stack())
				utils.AbortWithError(c, http.StatusInternalServerError, utils.NewInternal("Erro interno do servidor"))
			}
		}()
		c.Next()
	}
}

// NotFound answers unknown routes with the standard error body.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		utils.RespondError(c, http.StatusNotFound, utils.NewNotFound("Rota não encontrada"))
	}
}
