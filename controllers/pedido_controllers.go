package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/pastelaria-api/cache"
	"github.com/yeremiapane/pastelaria-api/services"
	"github.com/yeremiapane/pastelaria-api/utils"
)

type PedidoController struct {
	Orders *services.OrderService
	changeNotifier
}

func NewPedidoController(orders *services.OrderService, store cache.Store) *PedidoController {
	return &PedidoController{Orders: orders, changeNotifier: changeNotifier{Cache: store, Sync: orders.Sync}}
}

// GetAll -> GET /api/v1/pedidos
func (pc *PedidoController) GetAll(c *gin.Context) {
	filters := services.PedidoFilters{
		Status:         c.Query("status"),
		TipoEntrega:    c.Query("tipo_entrega"),
		FormaPagamento: c.Query("forma_pagamento"),
		DataInicio:     c.Query("data_inicio"),
		DataFim:        c.Query("data_fim"),
		Search:         c.Query("search"),
	}

	pedidos, page, err := pc.Orders.List(c.Request.Context(), filters, utils.ParsePagination(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondPaginated(c, pedidos, page, filters)
}

// GetByID -> GET /api/v1/pedidos/:id
func (pc *PedidoController) GetByID(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		respondInvalidID(c)
		return
	}

	pedido, err := pc.Orders.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Pedido encontrado", pedido)
}

// GetByNumero -> GET /api/v1/pedidos/numero/:numero
func (pc *PedidoController) GetByNumero(c *gin.Context) {
	numero, err := strconv.Atoi(c.Param("numero"))
	if err != nil || numero < 1 {
		respondInvalidID(c)
		return
	}

	pedido, err := pc.Orders.GetByNumero(c.Request.Context(), numero)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Pedido encontrado", pedido)
}

// Create -> POST /api/v1/pedidos
func (pc *PedidoController) Create(c *gin.Context) {
	var input services.CreatePedidoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.NewBadRequest("INVALID_JSON", err.Error()))
		return
	}

	pedido, err := pc.Orders.Create(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	pc.invalidate(c, "pedidos")
	utils.RespondJSON(c, http.StatusCreated, "Pedido criado com sucesso", pedido)
}

type statusInput struct {
	Status string `json:"status"`
}

// UpdateStatus -> PUT /api/v1/pedidos/:id/status
func (pc *PedidoController) UpdateStatus(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		respondInvalidID(c)
		return
	}

	var input statusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.NewBadRequest("INVALID_JSON", err.Error()))
		return
	}

	pedido, err := pc.Orders.UpdateStatus(c.Request.Context(), id, input.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	pc.invalidate(c, "pedidos")
	utils.RespondJSON(c, http.StatusOK, "Status do pedido atualizado", pedido)
}

// Cancel -> DELETE /api/v1/pedidos/:id
func (pc *PedidoController) Cancel(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		respondInvalidID(c)
		return
	}

	pedido, err := pc.Orders.Cancel(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	pc.invalidate(c, "pedidos")
	utils.RespondJSON(c, http.StatusOK, "Pedido cancelado com sucesso", pedido)
}

// Stats -> GET /api/v1/pedidos/stats?periodo=hoje|semana|mes|ano
func (pc *PedidoController) Stats(c *gin.Context) {
	stats, err := pc.Orders.Stats(c.Request.Context(), c.DefaultQuery("periodo", "hoje"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Estatísticas de pedidos", stats)
}
