package models

import "time"

const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// SyncQueue is append-only. Data holds the JSON payload of the change.
type SyncQueue struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Tabela    string    `gorm:"column:table_name;type:varchar(50);not null;index" json:"table_name"`
	RecordID  uint      `gorm:"not null" json:"record_id"`
	Operation string    `gorm:"type:varchar(10);not null" json:"operation"`
	Data      string    `gorm:"type:text" json:"data"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (SyncQueue) TableName() string { return "sync_queue" }
