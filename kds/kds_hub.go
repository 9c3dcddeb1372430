// Package kds fans order and catalog changes out to kitchen display screens
// over websockets.
package kds

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/pastelaria-api/utils"
)

// Event types
const (
	EventPedidoCriado     = "pedido_criado"
	EventPedidoAtualizado = "pedido_atualizado"
	EventCatalogoAlterado = "catalogo_alterado"
)

const writeTimeout = 5 * time.Second

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds every connected display. The value is the username the
// connection authenticated as.
type Hub struct {
	clients map[*websocket.Conn]string
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]string)}
}

func (h *Hub) Register(conn *websocket.Conn, user string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = user
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	delete(h.clients, conn)
	conn.Close()
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Broadcast sends the event to every client. Clients that fail a write are dropped.
func (h *Hub) Broadcast(event string, data interface{}) {
	payload, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		utils.ErrorLogger.WithField("event", event).Errorf("marshal kds message: %v", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn, user := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			utils.ErrorLogger.WithFields(logrus.Fields{"user": user, "error": err}).Warn("dropping kds client")
			delete(h.clients, conn)
			conn.Close()
		}
	}
}
