package models

import "time"

const (
	MinMultiplicador = 0.1
	MaxMultiplicador = 10.0
)

type Tamanho struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Nome          string    `gorm:"type:varchar(50);not null;uniqueIndex" json:"nome"`
	Multiplicador float64   `gorm:"type:decimal(5,2);not null;default:1" json:"multiplicador"`
	Descricao     string    `gorm:"type:varchar(255)" json:"descricao"`
	Ordem         int       `gorm:"not null;default:0" json:"ordem"`
	Ativo         bool      `gorm:"not null;index" json:"ativo"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `gorm:"index" json:"updated_at"`
}

func (Tamanho) TableName() string { return "tamanhos" }
