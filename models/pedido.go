package models

import "time"

const (
	StatusPendente   = "Pendente"
	StatusPreparando = "Preparando"
	StatusPronto     = "Pronto"
	StatusEntregue   = "Entregue"
	StatusCancelado  = "Cancelado"

	EntregaBalcao   = "Balcão"
	EntregaDelivery = "Entrega"
)

var (
	StatusPedido    = []string{StatusPendente, StatusPreparando, StatusPronto, StatusEntregue, StatusCancelado}
	TiposEntrega    = []string{EntregaBalcao, EntregaDelivery}
	FormasPagamento = []string{"Dinheiro", "Cartão", "PIX", "Débito", "Crédito"}
)

type Pedido struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	Numero          int          `gorm:"not null;uniqueIndex" json:"numero"`
	ClienteNome     string       `gorm:"type:varchar(100);not null" json:"cliente_nome"`
	ClienteTelefone string       `gorm:"type:varchar(20);not null;index" json:"cliente_telefone"`
	ClienteEndereco string       `gorm:"type:varchar(255)" json:"cliente_endereco"`
	TipoEntrega     string       `gorm:"type:varchar(20);not null" json:"tipo_entrega"`
	FormaPagamento  string       `gorm:"type:varchar(20);not null" json:"forma_pagamento"`
	Status          string       `gorm:"type:varchar(20);not null;index" json:"status"`
	Subtotal        float64      `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	TaxaEntrega     float64      `gorm:"type:decimal(10,2);not null;default:0" json:"taxa_entrega"`
	Total           float64      `gorm:"type:decimal(10,2);not null" json:"total"`
	Observacoes     string       `gorm:"type:varchar(500)" json:"observacoes"`
	DataEntrega     *time.Time   `json:"data_entrega,omitempty"`
	CreatedAt       time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"index" json:"updated_at"`
	Itens           []ItemPedido `gorm:"foreignKey:PedidoID" json:"itens,omitempty"`
}

func (Pedido) TableName() string { return "pedidos" }

// CanCancel reports whether the order is still open.
func (p *Pedido) CanCancel() bool {
	return p.Status != StatusEntregue && p.Status != StatusCancelado
}

type ItemPedido struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	PedidoID      uint        `gorm:"not null;index" json:"pedido_id"`
	ProdutoID     uint        `gorm:"not null;index" json:"produto_id"`
	ProdutoNome   string      `gorm:"type:varchar(100)" json:"produto_nome"`
	TamanhoID     *uint       `json:"tamanho_id,omitempty"`
	TamanhoNome   string      `gorm:"type:varchar(50)" json:"tamanho_nome,omitempty"`
	Quantidade    int         `gorm:"not null" json:"quantidade"`
	PrecoUnitario float64     `gorm:"type:decimal(10,2);not null" json:"preco_unitario"`
	PrecoTotal    float64     `gorm:"type:decimal(10,2);not null" json:"preco_total"`
	Observacoes   string      `gorm:"type:varchar(255)" json:"observacoes"`
	CreatedAt     time.Time   `json:"created_at"`
	Sabores       []ItemSabor `gorm:"foreignKey:ItemPedidoID" json:"sabores,omitempty"`
}

func (ItemPedido) TableName() string { return "itens_pedido" }

type ItemSabor struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	ItemPedidoID   uint    `gorm:"not null;index" json:"item_pedido_id"`
	SaborID        uint    `gorm:"not null;index" json:"sabor_id"`
	SaborNome      string  `gorm:"type:varchar(100)" json:"sabor_nome"`
	PrecoAdicional float64 `gorm:"type:decimal(10,2);not null;default:0" json:"preco_adicional"`
}

func (ItemSabor) TableName() string { return "item_sabores" }
