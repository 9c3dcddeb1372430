package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/pastelaria-api/utils"
)

var errTooLarge = utils.NewAPIError(http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE", "Requisição muito grande")

// BodyLimit rejects declared oversize bodies up front and caps the rest
// while they are read.
func BodyLimit(max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > max {
			utils.AbortWithError(c, http.StatusRequestEntityTooLarge, errTooLarge)
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		}
		c.Next()
	}
}
