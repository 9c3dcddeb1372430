package models

import "time"

type CacheEntry struct {
	Chave     string    `gorm:"primaryKey;type:varchar(512)" json:"chave"`
	Valor     string    `gorm:"type:text;not null" json:"valor"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (CacheEntry) TableName() string { return "cache_dados" }
