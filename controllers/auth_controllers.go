package controllers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/pastelaria-api/middlewares"
	"github.com/yeremiapane/pastelaria-api/utils"
	"golang.org/x/crypto/bcrypt"
)

const RoleAdmin = "admin"

var errInvalidCredentials = utils.NewAPIError(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Usuário ou senha inválidos")

// AuthController authenticates the single configured operator account.
type AuthController struct {
	Secret       []byte
	TTL          time.Duration
	Username     string
	PasswordHash []byte
}

// NewAuthController uses passwordHash when set, otherwise hashes password.
func NewAuthController(secret []byte, ttl time.Duration, username, passwordHash, password string) (*AuthController, error) {
	hash := []byte(passwordHash)
	if len(hash) == 0 {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
	}
	return &AuthController{Secret: secret, TTL: ttl, Username: username, PasswordHash: hash}, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login -> POST /api/v1/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var input loginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.NewBadRequest("INVALID_JSON", "JSON inválido"))
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(input.Username), []byte(ac.Username)) == 1
	passErr := bcrypt.CompareHashAndPassword(ac.PasswordHash, []byte(input.Password))
	if !userOK || passErr != nil {
		utils.InfoLogger.WithFields(logrus.Fields{"username": input.Username, "ip": c.ClientIP()}).Warn("login failed")
		utils.RespondError(c, http.StatusUnauthorized, errInvalidCredentials)
		return
	}

	token, err := utils.GenerateToken(ac.Secret, ac.Username, RoleAdmin, ac.TTL)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Login realizado com sucesso", gin.H{
		"token":      token,
		"user":       gin.H{"username": ac.Username, "role": RoleAdmin},
		"expires_in": int64(ac.TTL.Seconds()),
	})
}

// Me -> GET /api/v1/auth/me
func (ac *AuthController) Me(c *gin.Context) {
	claims := middlewares.CurrentUser(c)
	if claims == nil {
		utils.RespondError(c, http.StatusUnauthorized, utils.NewAPIError(http.StatusUnauthorized, "MISSING_TOKEN", "Token de acesso requerido"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Usuário autenticado", gin.H{
		"username":   claims.Username,
		"role":       claims.Role,
		"expires_at": claims.ExpiresAt,
	})
}
