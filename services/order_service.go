package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/pastelaria-api/models"
	"github.com/yeremiapane/pastelaria-api/utils"
	"gorm.io/gorm"
)

const maxNumberAttempts = 3

// SaborInput is a flavor reference. It decodes from a bare id or from
// {"sabor_id": n, "preco_adicional": x}.
type SaborInput struct {
	SaborID        uint     `json:"sabor_id"`
	PrecoAdicional *float64 `json:"preco_adicional,omitempty"`
}

func (s *SaborInput) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] != '{' {
		id, err := strconv.ParseUint(strings.Trim(string(b), `"`), 10, 64)
		if err != nil {
			return fmt.Errorf("sabor inválido: %s", b)
		}
		s.SaborID = uint(id)
		return nil
	}

	type plain SaborInput
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*s = SaborInput(p)
	return nil
}

type ItemInput struct {
	ProdutoID     uint         `json:"produto_id"`
	Quantidade    int          `json:"quantidade"`
	PrecoUnitario *float64     `json:"preco_unitario,omitempty"`
	TamanhoID     *uint        `json:"tamanho_id,omitempty"`
	Observacoes   string       `json:"observacoes"`
	Sabores       []SaborInput `json:"sabores"`
}

type CreatePedidoInput struct {
	ClienteNome     string      `json:"cliente_nome"`
	ClienteTelefone string      `json:"cliente_telefone"`
	ClienteEndereco string      `json:"cliente_endereco"`
	TipoEntrega     string      `json:"tipo_entrega"`
	FormaPagamento  string      `json:"forma_pagamento"`
	Observacoes     string      `json:"observacoes"`
	Itens           []ItemInput `json:"itens"`
}

type PedidoFilters struct {
	Status         string `json:"status,omitempty"`
	TipoEntrega    string `json:"tipo_entrega,omitempty"`
	FormaPagamento string `json:"forma_pagamento,omitempty"`
	DataInicio     string `json:"data_inicio,omitempty"`
	DataFim        string `json:"data_fim,omitempty"`
	Search         string `json:"search,omitempty"`
}

// PedidoResumo is a list row annotated with item aggregates.
type PedidoResumo struct {
	models.Pedido
	TotalItens int     `json:"total_itens"`
	ValorItens float64 `json:"valor_itens"`
}

type OrderService struct {
	DB          *gorm.DB
	DeliveryFee float64
	Sync        *SyncRecorder
}

func NewOrderService(db *gorm.DB, deliveryFee float64, sync *SyncRecorder) *OrderService {
	return &OrderService{DB: db, DeliveryFee: deliveryFee, Sync: sync}
}

// Create prices and stores the order with all items and flavors in one
// transaction. A numero collision with a concurrent insert retries the
// whole transaction.
func (s *OrderService) Create(ctx context.Context, in CreatePedidoInput) (*models.Pedido, error) {
	var (
		pedido *models.Pedido
		err    error
	)
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		pedido, err = s.createOnce(ctx, in)
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
		utils.InfoLogger.WithField("attempt", attempt).Warn("numero collision, retrying order creation")
	}
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"pedido_id": pedido.ID,
		"numero":    pedido.Numero,
		"total":     pedido.Total,
	}).Info("pedido criado")

	s.Sync.Record(ctx, "pedidos", pedido.ID, models.OperationCreate, pedido)
	return pedido, nil
}

func (s *OrderService) createOnce(ctx context.Context, in CreatePedidoInput) (*models.Pedido, error) {
	var pedido models.Pedido

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		itens, lines, err := s.resolveItems(tx, in.Itens)
		if err != nil {
			return err
		}
		totals := CalculateTotals(lines, in.TipoEntrega, s.DeliveryFee)

		var maxNumero int
		if err := tx.Model(&models.Pedido{}).Select("COALESCE(MAX(numero), 0)").Scan(&maxNumero).Error; err != nil {
			return err
		}

		pedido = models.Pedido{
			Numero:          maxNumero + 1,
			ClienteNome:     strings.TrimSpace(in.ClienteNome),
			ClienteTelefone: strings.TrimSpace(in.ClienteTelefone),
			ClienteEndereco: strings.TrimSpace(in.ClienteEndereco),
			TipoEntrega:     in.TipoEntrega,
			FormaPagamento:  in.FormaPagamento,
			Status:          models.StatusPendente,
			Subtotal:        totals.Subtotal,
			TaxaEntrega:     totals.TaxaEntrega,
			Total:           totals.Total,
			Observacoes:     in.Observacoes,
			Itens:           itens,
		}
		return tx.Create(&pedido).Error
	})
	if err != nil {
		return nil, err
	}
	return &pedido, nil
}

// resolveItems snapshots names and prices. Missing unit prices come from the
// product price scaled by the size multiplier; missing flavor prices come
// from the flavor itself.
func (s *OrderService) resolveItems(tx *gorm.DB, inputs []ItemInput) ([]models.ItemPedido, []Line, error) {
	itens := make([]models.ItemPedido, 0, len(inputs))
	lines := make([]Line, 0, len(inputs))

	for i, in := range inputs {
		var produto models.Produto
		if err := tx.Where("id = ? AND ativo = ?", in.ProdutoID, true).Take(&produto).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, fmt.Errorf("itens[%d]: %w: %d", i, ErrProductNotFound, in.ProdutoID)
			}
			return nil, nil, err
		}

		item := models.ItemPedido{
			ProdutoID:   produto.ID,
			ProdutoNome: produto.Nome,
			Quantidade:  in.Quantidade,
			Observacoes: in.Observacoes,
		}

		unit := produto.Preco
		if in.TamanhoID != nil {
			var tamanho models.Tamanho
			if err := tx.Where("id = ? AND ativo = ?", *in.TamanhoID, true).Take(&tamanho).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, nil, fmt.Errorf("itens[%d]: %w: %d", i, ErrSizeNotFound, *in.TamanhoID)
				}
				return nil, nil, err
			}
			item.TamanhoID = &tamanho.ID
			item.TamanhoNome = tamanho.Nome
			unit = ApplyMultiplier(produto.Preco, tamanho.Multiplicador)
		}
		if in.PrecoUnitario != nil {
			unit = *in.PrecoUnitario
		}
		item.PrecoUnitario = utils.RoundCurrency(unit)
		item.PrecoTotal = ItemTotal(item.Quantidade, item.PrecoUnitario)

		line := Line{Quantidade: item.Quantidade, PrecoUnitario: item.PrecoUnitario}
		for _, si := range in.Sabores {
			var sabor models.Sabor
			if err := tx.Where("id = ? AND ativo = ?", si.SaborID, true).Take(&sabor).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, nil, fmt.Errorf("itens[%d]: %w: %d", i, ErrFlavorNotFound, si.SaborID)
				}
				return nil, nil, err
			}
			adicional := sabor.PrecoAdicional
			if si.PrecoAdicional != nil {
				adicional = *si.PrecoAdicional
			}
			adicional = utils.RoundCurrency(adicional)

			item.Sabores = append(item.Sabores, models.ItemSabor{
				SaborID:        sabor.ID,
				SaborNome:      sabor.Nome,
				PrecoAdicional: adicional,
			})
			line.Adicionais = append(line.Adicionais, adicional)
		}

		itens = append(itens, item)
		lines = append(lines, line)
	}
	return itens, lines, nil
}

func (s *OrderService) Get(ctx context.Context, id uint) (*models.Pedido, error) {
	return s.findOne(ctx, "id = ?", id)
}

func (s *OrderService) GetByNumero(ctx context.Context, numero int) (*models.Pedido, error) {
	return s.findOne(ctx, "numero = ?", numero)
}

func (s *OrderService) findOne(ctx context.Context, query string, arg interface{}) (*models.Pedido, error) {
	var pedido models.Pedido
	err := s.DB.WithContext(ctx).
		Preload("Itens", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Itens.Sabores").
		Where(query, arg).
		Take(&pedido).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pedido, nil
}

// UpdateStatus allows any transition. Entregue also stamps data_entrega.
func (s *OrderService) UpdateStatus(ctx context.Context, id uint, status string) (*models.Pedido, error) {
	if !contains(models.StatusPedido, status) {
		return nil, ErrInvalidStatus
	}

	var pedido models.Pedido
	if err := s.DB.WithContext(ctx).First(&pedido, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{"status": status}
	if status == models.StatusEntregue {
		now := utils.NowUTC()
		updates["data_entrega"] = &now
	}
	if err := s.DB.WithContext(ctx).Model(&pedido).Updates(updates).Error; err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{"pedido_id": id, "status": status}).Info("status do pedido atualizado")
	s.Sync.Record(ctx, "pedidos", id, models.OperationUpdate, updates)
	return s.Get(ctx, id)
}

// Cancel marks an open order Cancelado. The row is kept.
func (s *OrderService) Cancel(ctx context.Context, id uint) (*models.Pedido, error) {
	var pedido models.Pedido
	if err := s.DB.WithContext(ctx).First(&pedido, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !pedido.CanCancel() {
		return nil, fmt.Errorf("%w: status %s", ErrCannotCancel, pedido.Status)
	}

	if err := s.DB.WithContext(ctx).Model(&pedido).Update("status", models.StatusCancelado).Error; err != nil {
		return nil, err
	}
	pedido.Status = models.StatusCancelado

	s.Sync.Record(ctx, "pedidos", id, models.OperationUpdate, map[string]interface{}{"status": models.StatusCancelado})
	return &pedido, nil
}

func (s *OrderService) List(ctx context.Context, f PedidoFilters, page utils.Pagination) ([]PedidoResumo, utils.Pagination, error) {
	filtered := func() (*gorm.DB, error) {
		q := s.DB.WithContext(ctx).Model(&models.Pedido{})
		if f.Status != "" {
			q = q.Where("pedidos.status = ?", f.Status)
		}
		if f.TipoEntrega != "" {
			q = q.Where("pedidos.tipo_entrega = ?", f.TipoEntrega)
		}
		if f.FormaPagamento != "" {
			q = q.Where("pedidos.forma_pagamento = ?", f.FormaPagamento)
		}
		if f.DataInicio != "" {
			start, err := parseDate(f.DataInicio)
			if err != nil {
				return nil, err
			}
			q = q.Where("pedidos.created_at >= ?", start.UTC())
		}
		if f.DataFim != "" {
			end, err := parseDate(f.DataFim)
			if err != nil {
				return nil, err
			}
			q = q.Where("pedidos.created_at < ?", end.AddDate(0, 0, 1).UTC())
		}
		if f.Search != "" {
			like := "%" + f.Search + "%"
			id, _ := strconv.ParseUint(f.Search, 10, 64)
			q = q.Where("(pedidos.cliente_nome LIKE ? OR pedidos.cliente_telefone LIKE ? OR pedidos.id = ?)", like, like, id)
		}
		return q, nil
	}

	countQuery, err := filtered()
	if err != nil {
		return nil, page, err
	}
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, page, err
	}

	rowsQuery, _ := filtered()
	rows := []PedidoResumo{}
	err = rowsQuery.
		Select("pedidos.*, COUNT(itens_pedido.id) AS total_itens, COALESCE(SUM(itens_pedido.preco_total), 0) AS valor_itens").
		Joins("LEFT JOIN itens_pedido ON itens_pedido.pedido_id = pedidos.id").
		Group("pedidos.id").
		Order("pedidos.created_at DESC, pedidos.id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Scan(&rows).Error
	if err != nil {
		return nil, page, err
	}

	return rows, page.WithTotal(total), nil
}

type CountByKey struct {
	Chave      string  `json:"chave"`
	Quantidade int64   `json:"quantidade"`
	ValorTotal float64 `json:"valor_total"`
}

type PedidoStats struct {
	Periodo        string           `json:"periodo"`
	DataInicio     time.Time        `json:"data_inicio"`
	TotalPedidos   int64            `json:"total_pedidos"`
	Faturamento    float64          `json:"faturamento"`
	TicketMedio    float64          `json:"ticket_medio"`
	PorStatus      map[string]int64 `json:"por_status"`
	PorPagamento   []CountByKey     `json:"por_pagamento"`
	PorTipoEntrega []CountByKey     `json:"por_tipo_entrega"`
}

// PeriodStart maps hoje|semana|mes|ano to the first instant counted.
// Unknown periods fall back to hoje.
func PeriodStart(periodo string, now time.Time) (string, time.Time) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch periodo {
	case "semana":
		return periodo, now.AddDate(0, 0, -7)
	case "mes":
		return periodo, time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case "ano":
		return periodo, time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	default:
		return "hoje", today
	}
}

// Stats summarises orders since the period start. Faturamento ignores
// cancelled orders.
func (s *OrderService) Stats(ctx context.Context, periodo string) (*PedidoStats, error) {
	periodo, start := PeriodStart(periodo, time.Now())
	db := s.DB.WithContext(ctx)

	stats := &PedidoStats{
		Periodo:        periodo,
		DataInicio:     start,
		PorStatus:      map[string]int64{},
		PorPagamento:   []CountByKey{},
		PorTipoEntrega: []CountByKey{},
	}
	for _, st := range models.StatusPedido {
		stats.PorStatus[st] = 0
	}

	var byStatus []CountByKey
	err := db.Model(&models.Pedido{}).
		Select("status AS chave, COUNT(*) AS quantidade, COALESCE(SUM(total), 0) AS valor_total").
		Where("created_at >= ?", start.UTC()).
		Group("status").
		Scan(&byStatus).Error
	if err != nil {
		return nil, err
	}

	var faturados int64
	for _, row := range byStatus {
		stats.PorStatus[row.Chave] = row.Quantidade
		stats.TotalPedidos += row.Quantidade
		if row.Chave != models.StatusCancelado {
			stats.Faturamento += row.ValorTotal
			faturados += row.Quantidade
		}
	}
	stats.Faturamento = utils.RoundCurrency(stats.Faturamento)
	if faturados > 0 {
		stats.TicketMedio = utils.RoundCurrency(stats.Faturamento / float64(faturados))
	}

	for column, dest := range map[string]*[]CountByKey{
		"forma_pagamento": &stats.PorPagamento,
		"tipo_entrega":    &stats.PorTipoEntrega,
	} {
		err := db.Model(&models.Pedido{}).
			Select(column+" AS chave, COUNT(*) AS quantidade, COALESCE(SUM(total), 0) AS valor_total").
			Where("created_at >= ? AND status <> ?", start.UTC(), models.StatusCancelado).
			Group(column).
			Order(column).
			Scan(dest).Error
		if err != nil {
			return nil, err
		}
	}
	return stats, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, utils.NewBadRequest("INVALID_DATE", fmt.Sprintf("Data inválida '%s', use AAAA-MM-DD", s))
	}
	return t, nil
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
