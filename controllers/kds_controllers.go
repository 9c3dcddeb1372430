package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/pastelaria-api/kds"
	"github.com/yeremiapane/pastelaria-api/middlewares"
	"github.com/yeremiapane/pastelaria-api/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type KDSController struct {
	Hub *kds.Hub
}

func NewKDSController(hub *kds.Hub) *KDSController {
	return &KDSController{Hub: hub}
}

// Connect -> GET /ws/pedidos. Runs behind WebSocketAuth; the connection
// only receives, anything the client sends is discarded.
func (kc *KDSController) Connect(c *gin.Context) {
	user := "anonymous"
	if claims := middlewares.CurrentUser(c); claims != nil {
		user = claims.Username
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.WithField("user", user).Warnf("websocket upgrade failed: %v", err)
		return
	}

	kc.Hub.Register(ws, user)
	utils.InfoLogger.WithField("user", user).Info("kds client connected")

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	kc.Hub.Unregister(ws)
	utils.InfoLogger.WithField("user", user).Info("kds client disconnected")
}
