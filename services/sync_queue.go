package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/pastelaria-api/kds"
	"github.com/yeremiapane/pastelaria-api/models"
	"github.com/yeremiapane/pastelaria-api/utils"
	"gorm.io/gorm"
)

// Broadcaster pushes change events to live clients.
type Broadcaster interface {
	Broadcast(event string, data interface{})
}

type SyncEvent struct {
	ID        uint        `json:"id"`
	Table     string      `json:"table_name"`
	RecordID  uint        `json:"record_id"`
	Operation string      `json:"operation"`
	Data      interface{} `json:"data"`
	CreatedAt time.Time   `json:"created_at"`
}

// SyncRecorder appends to the sync queue and announces each entry.
type SyncRecorder struct {
	DB  *gorm.DB
	Hub Broadcaster
}

func NewSyncRecorder(db *gorm.DB, hub Broadcaster) *SyncRecorder {
	return &SyncRecorder{DB: db, Hub: hub}
}

// Record is best-effort: the change it describes is already committed, so
// failures are logged and swallowed.
func (r *SyncRecorder) Record(ctx context.Context, table string, recordID uint, operation string, data interface{}) {
	if r == nil {
		return
	}

	payload, err := json.Marshal(data)
	if err != nil {
		utils.ErrorLogger.WithFields(logrus.Fields{"table": table, "record_id": recordID}).Errorf("marshal sync data: %v", err)
		return
	}

	entry := models.SyncQueue{
		Tabela:    table,
		RecordID:  recordID,
		Operation: operation,
		Data:      string(payload),
	}
	if err := r.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		utils.ErrorLogger.WithFields(logrus.Fields{"table": table, "record_id": recordID}).Errorf("append sync queue: %v", err)
		return
	}

	if r.Hub != nil {
		r.Hub.Broadcast(eventFor(table, operation), SyncEvent{
			ID:        entry.ID,
			Table:     table,
			RecordID:  recordID,
			Operation: operation,
			Data:      data,
			CreatedAt: entry.CreatedAt,
		})
	}
}

// Since pages through the queue in insertion order.
func (r *SyncRecorder) Since(ctx context.Context, sinceID uint, limit int) ([]models.SyncQueue, error) {
	var entries []models.SyncQueue
	err := r.DB.WithContext(ctx).
		Where("id > ?", sinceID).
		Order("id ASC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func eventFor(table, operation string) string {
	if table != "pedidos" {
		return kds.EventCatalogoAlterado
	}
	if operation == models.OperationCreate {
		return kds.EventPedidoCriado
	}
	return kds.EventPedidoAtualizado
}
