package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/pastelaria-api/utils"
)

const ContextUserKey = "currentUser"

var (
	errMissingToken = utils.NewAPIError(http.StatusUnauthorized, "MISSING_TOKEN", "Token de acesso requerido")
	errInvalidToken = utils.NewAPIError(http.StatusUnauthorized, "INVALID_TOKEN", "Token inválido ou expirado")
	errForbidden    = utils.NewAPIError(http.StatusForbidden, "FORBIDDEN", "Acesso negado")
)

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			utils.AbortWithError(c, http.StatusUnauthorized, errMissingToken)
			return
		}

		claims, err := utils.ParseToken(secret, token)
		if err != nil {
			utils.AbortWithError(c, http.StatusUnauthorized, errInvalidToken)
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is present and never blocks.
func OptionalAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if claims, err := utils.ParseToken(secret, token); err == nil {
				c.Set(ContextUserKey, claims)
			}
		}
		c.Next()
	}
}

// WebSocketAuth reads the token from the query string, since browsers
// cannot set headers on a websocket handshake.
func WebSocketAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			utils.AbortWithError(c, http.StatusUnauthorized, errMissingToken)
			return
		}
		claims, err := utils.ParseToken(secret, token)
		if err != nil {
			utils.AbortWithError(c, http.StatusUnauthorized, errInvalidToken)
			return
		}
		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			utils.AbortWithError(c, http.StatusUnauthorized, errMissingToken)
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		utils.AbortWithError(c, http.StatusForbidden, errForbidden)
	}
}

// CurrentUser returns the authenticated claims, or nil.
func CurrentUser(c *gin.Context) *utils.CustomClaims {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*utils.CustomClaims)
	return claims
}
