package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/pastelaria-api/models"
	"github.com/yeremiapane/pastelaria-api/utils"
	"gorm.io/gorm"
)

const (
	DownloadLimit = 1000

	ResolutionServerWins = "server_wins"
	ResolutionClientWins = "client_wins"
	ResolutionMerge      = "merge"
)

var (
	ErrInvalidResolution = errors.New("resolução de conflito inválida")

	DefaultDownloadTables = []string{"produtos", "sabores", "tamanhos"}
)

// syncTable describes a table clients may write through the sync endpoints.
// Only the listed columns can be set.
type syncTable struct {
	newModel func() interface{}
	newSlice func() interface{}
	columns  map[string]bool
}

var syncTables = map[string]syncTable{
	"produtos": {
		newModel: func() interface{} { return &models.Produto{Ativo: true} },
		newSlice: func() interface{} { return &[]models.Produto{} },
		columns:  columnSet("nome", "categoria", "preco", "descricao", "ativo", "imagem"),
	},
	"sabores": {
		newModel: func() interface{} { return &models.Sabor{Ativo: true} },
		newSlice: func() interface{} { return &[]models.Sabor{} },
		columns:  columnSet("nome", "preco_adicional", "categoria", "descricao", "ativo"),
	},
	"tamanhos": {
		newModel: func() interface{} { return &models.Tamanho{Ativo: true, Multiplicador: 1} },
		newSlice: func() interface{} { return &[]models.Tamanho{} },
		columns:  columnSet("nome", "multiplicador", "descricao", "ordem", "ativo"),
	},
	"pedidos": {
		newModel: func() interface{} { return &models.Pedido{Status: models.StatusPendente} },
		newSlice: func() interface{} { return &[]models.Pedido{} },
		columns: columnSet("numero", "cliente_nome", "cliente_telefone", "cliente_endereco", "tipo_entrega",
			"forma_pagamento", "status", "subtotal", "taxa_entrega", "total", "observacoes", "data_entrega"),
	},
}

// SyncOperation is one offline change sent by a client. RecordID falls back
// to ID when ID is numeric.
type SyncOperation struct {
	ID       interface{}            `json:"id"`
	Type     string                 `json:"type"`
	Table    string                 `json:"table"`
	RecordID *uint                  `json:"record_id,omitempty"`
	Data     map[string]interface{} `json:"data"`
}

type OperationResult struct {
	ID     interface{} `json:"id"`
	Status string      `json:"status"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

type UploadResult struct {
	Success      bool              `json:"success"`
	Processed    int               `json:"processed"`
	Errors       int               `json:"errors"`
	Results      []OperationResult `json:"results"`
	ErrorDetails []OperationResult `json:"errorDetails"`
}

type DownloadResult struct {
	Success   bool                   `json:"success"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
	Deleted   map[string]interface{} `json:"deleted"`
	HasMore   bool                   `json:"has_more"`
}

type SyncStatus struct {
	ProdutosAtivos int64      `json:"produtos_ativos"`
	SaboresAtivos  int64      `json:"sabores_ativos"`
	TamanhosAtivos int64      `json:"tamanhos_ativos"`
	PedidosHoje    int64      `json:"pedidos_hoje"`
	LastUpdate     *time.Time `json:"last_update"`
	ServerTime     time.Time  `json:"server_time"`
}

// DashboardStats feeds the shop dashboard.
type DashboardStats struct {
	ProdutosAtivos   int64     `json:"produtos_ativos"`
	PedidosHoje      int64     `json:"pedidos_hoje"`
	PedidosPendentes int64     `json:"pedidos_pendentes"`
	Timestamp        time.Time `json:"timestamp"`
}

type SyncService struct {
	DB   *gorm.DB
	Sync *SyncRecorder
}

func NewSyncService(db *gorm.DB, sync *SyncRecorder) *SyncService {
	return &SyncService{DB: db, Sync: sync}
}

// Tables lists the tables reachable through sync, sorted.
func Tables() []string {
	names := make([]string, 0, len(syncTables))
	for name := range syncTables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupTable(table string) (syncTable, error) {
	t, ok := syncTables[table]
	if !ok {
		return syncTable{}, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	return t, nil
}

// WritableColumns keeps only the columns clients may set on table.
func WritableColumns(table string, data map[string]interface{}) map[string]interface{} {
	t, ok := syncTables[table]
	if !ok {
		return map[string]interface{}{}
	}
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		if t.columns[k] {
			out[k] = v
		}
	}
	return out
}

func checkColumns(t syncTable, data map[string]interface{}) error {
	for column := range data {
		if !t.columns[column] {
			return fmt.Errorf("%w: %s", ErrUnknownColumn, column)
		}
	}
	return nil
}

// Create inserts a typed row built from data and returns it.
func (s *SyncService) Create(ctx context.Context, table string, data map[string]interface{}) (interface{}, uint, error) {
	t, err := lookupTable(table)
	if err != nil {
		return nil, 0, err
	}
	if err := checkColumns(t, data); err != nil {
		return nil, 0, err
	}

	row := t.newModel()
	if err := decodeInto(data, row); err != nil {
		return nil, 0, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if p, ok := row.(*models.Pedido); ok && p.Numero == 0 {
			if err := tx.Model(&models.Pedido{}).Select("COALESCE(MAX(numero), 0)").Scan(&p.Numero).Error; err != nil {
				return err
			}
			p.Numero++
		}
		return tx.Create(row).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return row, rowID(row), nil
}

// Update sets the given columns plus updated_at on the row with id.
func (s *SyncService) Update(ctx context.Context, table string, id uint, data map[string]interface{}) (interface{}, error) {
	t, err := lookupTable(table)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	if err := checkColumns(t, data); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{}, len(data)+1)
	for k, v := range data {
		updates[k] = v
	}
	updates["updated_at"] = utils.NowUTC()

	result := s.DB.WithContext(ctx).Model(t.newModel()).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: %s/%d", ErrRecordNotFound, table, id)
	}
	return s.Find(ctx, table, id)
}

func (s *SyncService) Delete(ctx context.Context, table string, id uint) error {
	t, err := lookupTable(table)
	if err != nil {
		return err
	}
	result := s.DB.WithContext(ctx).Where("id = ?", id).Delete(t.newModel())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s/%d", ErrRecordNotFound, table, id)
	}
	return nil
}

func (s *SyncService) Find(ctx context.Context, table string, id uint) (interface{}, error) {
	t, err := lookupTable(table)
	if err != nil {
		return nil, err
	}
	row := t.newModel()
	err = s.DB.WithContext(ctx).Where("id = ?", id).Take(row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s/%d", ErrRecordNotFound, table, id)
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Upload applies operations in order. A failing operation is reported and
// does not stop the rest.
func (s *SyncService) Upload(ctx context.Context, ops []SyncOperation) UploadResult {
	res := UploadResult{
		Success:      true,
		Results:      []OperationResult{},
		ErrorDetails: []OperationResult{},
	}

	for _, op := range ops {
		result, err := s.apply(ctx, op)
		if err != nil {
			utils.InfoLogger.WithFields(logrus.Fields{"op": op.ID, "type": op.Type, "table": op.Table}).Warnf("sync operation failed: %v", err)
			res.ErrorDetails = append(res.ErrorDetails, OperationResult{ID: op.ID, Status: "error", Error: err.Error()})
			continue
		}
		res.Results = append(res.Results, OperationResult{ID: op.ID, Status: "success", Result: result})
	}

	res.Processed = len(res.Results)
	res.Errors = len(res.ErrorDetails)
	return res
}

func (s *SyncService) apply(ctx context.Context, op SyncOperation) (interface{}, error) {
	switch strings.ToUpper(op.Type) {
	case "CREATE":
		row, id, err := s.Create(ctx, op.Table, op.Data)
		if err != nil {
			return nil, err
		}
		s.Sync.Record(ctx, op.Table, id, models.OperationCreate, row)
		return row, nil

	case "UPDATE":
		id, err := op.recordID()
		if err != nil {
			return nil, err
		}
		row, err := s.Update(ctx, op.Table, id, op.Data)
		if err != nil {
			return nil, err
		}
		s.Sync.Record(ctx, op.Table, id, models.OperationUpdate, op.Data)
		return row, nil

	case "DELETE":
		id, err := op.recordID()
		if err != nil {
			return nil, err
		}
		if err := s.Delete(ctx, op.Table, id); err != nil {
			return nil, err
		}
		s.Sync.Record(ctx, op.Table, id, models.OperationDelete, map[string]interface{}{"id": id})
		return map[string]interface{}{"deleted": true, "id": id}, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownOp, op.Type)
	}
}

func (op SyncOperation) recordID() (uint, error) {
	if op.RecordID != nil && *op.RecordID > 0 {
		return *op.RecordID, nil
	}
	switch v := op.ID.(type) {
	case float64:
		if v > 0 && v == float64(uint(v)) {
			return uint(v), nil
		}
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil && n > 0 {
			return uint(n), nil
		}
	}
	return 0, fmt.Errorf("%w: record_id ausente", ErrRecordNotFound)
}

// Download returns rows changed after lastSync, newest first, capped per table.
// A nil lastSync returns everything up to the cap.
func (s *SyncService) Download(ctx context.Context, lastSync *time.Time, tables []string) (*DownloadResult, error) {
	if len(tables) == 0 {
		tables = DefaultDownloadTables
	}

	res := &DownloadResult{
		Success:   true,
		Timestamp: time.Now().UTC(),
		Data:      make(map[string]interface{}, len(tables)),
		Deleted:   map[string]interface{}{},
	}

	for _, table := range tables {
		t, err := lookupTable(table)
		if err != nil {
			return nil, err
		}

		rows := t.newSlice()
		q := s.DB.WithContext(ctx).Order("updated_at DESC").Limit(DownloadLimit)
		if lastSync != nil {
			q = q.Where("updated_at > ?", lastSync.UTC())
		}
		if err := q.Find(rows).Error; err != nil {
			return nil, err
		}
		res.Data[table] = rows
	}
	return res, nil
}

func (s *SyncService) Status(ctx context.Context) (*SyncStatus, error) {
	db := s.DB.WithContext(ctx)
	status := &SyncStatus{ServerTime: time.Now().UTC()}

	counts := []struct {
		model interface{}
		dest  *int64
	}{
		{&models.Produto{}, &status.ProdutosAtivos},
		{&models.Sabor{}, &status.SaboresAtivos},
		{&models.Tamanho{}, &status.TamanhosAtivos},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Where("ativo = ?", true).Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	_, today := PeriodStart("hoje", time.Now())
	if err := db.Model(&models.Pedido{}).Where("created_at >= ?", today.UTC()).Count(&status.PedidosHoje).Error; err != nil {
		return nil, err
	}

	var last models.Produto
	err := db.Order("updated_at DESC").Take(&last).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err == nil {
		status.LastUpdate = &last.UpdatedAt
	}
	return status, nil
}

func (s *SyncService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	db := s.DB.WithContext(ctx)
	stats := &DashboardStats{Timestamp: time.Now().UTC()}

	if err := db.Model(&models.Produto{}).Where("ativo = ?", true).Count(&stats.ProdutosAtivos).Error; err != nil {
		return nil, err
	}
	_, today := PeriodStart("hoje", time.Now())
	if err := db.Model(&models.Pedido{}).Where("created_at >= ?", today.UTC()).Count(&stats.PedidosHoje).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Pedido{}).Where("status = ?", models.StatusPendente).Count(&stats.PedidosPendentes).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

// Resolve settles a conflict on one record. merge overlays every client
// field except id and the timestamps onto the server row; the last writer
// wins per field.
func (s *SyncService) Resolve(ctx context.Context, table string, id uint, resolution string, data map[string]interface{}) (interface{}, error) {
	if _, err := lookupTable(table); err != nil {
		return nil, err
	}

	switch resolution {
	case ResolutionServerWins:
		return s.Find(ctx, table, id)

	case ResolutionClientWins:
		data = withoutIdentity(data)
		row, err := s.Update(ctx, table, id, data)
		if err != nil {
			return nil, err
		}
		s.Sync.Record(ctx, table, id, models.OperationUpdate, data)
		return row, nil

	case ResolutionMerge:
		current, err := s.Find(ctx, table, id)
		if err != nil {
			return nil, err
		}
		merged, err := mergeRow(syncTables[table], current, data)
		if err != nil {
			return nil, err
		}
		row, err := s.Update(ctx, table, id, merged)
		if err != nil {
			return nil, err
		}
		s.Sync.Record(ctx, table, id, models.OperationUpdate, merged)
		return row, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidResolution, resolution)
	}
}

func mergeRow(t syncTable, server interface{}, client map[string]interface{}) (map[string]interface{}, error) {
	serverMap, err := toMap(server)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]interface{}, len(t.columns))
	for column := range t.columns {
		if v, ok := serverMap[column]; ok {
			merged[column] = v
		}
	}
	for key, value := range withoutIdentity(client) {
		if !t.columns[key] {
			return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, key)
		}
		merged[key] = value
	}
	return merged, nil
}

// withoutIdentity drops the keys a client copy of a row carries but may
// never overwrite.
func withoutIdentity(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for key, value := range data {
		switch key {
		case "id", "created_at", "updated_at":
			continue
		}
		out[key] = value
	}
	return out
}

func decodeInto(data map[string]interface{}, dest interface{}) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return fmt.Errorf("dados inválidos: %w", err)
	}
	return nil
}

func toMap(v interface{}) (map[string]interface{}, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	err = json.Unmarshal(b, &m)
	return m, err
}

func rowID(row interface{}) uint {
	switch r := row.(type) {
	case *models.Produto:
		return r.ID
	case *models.Sabor:
		return r.ID
	case *models.Tamanho:
		return r.ID
	case *models.Pedido:
		return r.ID
	}
	return 0
}

func columnSet(columns ...string) map[string]bool {
	set := make(map[string]bool, len(columns))
	for _, c := range columns {
		set[c] = true
	}
	return set
}
