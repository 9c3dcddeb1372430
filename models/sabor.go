package models

import "time"

const (
	SaborDoce     = "Doce"
	SaborSalgado  = "Salgado"
	SaborEspecial = "Especial"
)

var CategoriasSabor = []string{SaborDoce, SaborSalgado, SaborEspecial}

type Sabor struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Nome           string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"nome"`
	PrecoAdicional float64   `gorm:"type:decimal(10,2);not null;default:0" json:"preco_adicional"`
	Categoria      string    `gorm:"type:varchar(20);not null;index" json:"categoria"`
	Descricao      string    `gorm:"type:varchar(500)" json:"descricao"`
	Ativo          bool      `gorm:"not null;index" json:"ativo"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `gorm:"index" json:"updated_at"`
}

func (Sabor) TableName() string { return "sabores" }
