package models

import "time"

const (
	CategoriaPizza     = "Pizza"
	CategoriaPastel    = "Pastel"
	CategoriaBebida    = "Bebida"
	CategoriaSobremesa = "Sobremesa"
)

var CategoriasProduto = []string{CategoriaPizza, CategoriaPastel, CategoriaBebida, CategoriaSobremesa}

// Produto is never hard-deleted; deletion clears Ativo.
type Produto struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Nome      string    `gorm:"type:varchar(100);not null" json:"nome"`
	Categoria string    `gorm:"type:varchar(20);not null;index" json:"categoria"`
	Preco     float64   `gorm:"type:decimal(10,2);not null" json:"preco"`
	Descricao string    `gorm:"type:varchar(500)" json:"descricao"`
	Ativo     bool      `gorm:"not null;index" json:"ativo"`
	Imagem    string    `gorm:"type:varchar(255)" json:"imagem"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`
}

func (Produto) TableName() string { return "produtos" }
