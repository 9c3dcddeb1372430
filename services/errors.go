package services

import "errors"

var (
	ErrProductNotFound = errors.New("produto não encontrado ou inativo")
	ErrSizeNotFound    = errors.New("tamanho não encontrado ou inativo")
	ErrFlavorNotFound  = errors.New("sabor não encontrado ou inativo")
	ErrOrderNotFound   = errors.New("pedido não encontrado")
	ErrCannotCancel    = errors.New("pedido não pode ser cancelado")
	ErrInvalidStatus   = errors.New("status inválido")

	ErrUnknownTable   = errors.New("tabela não permitida")
	ErrUnknownColumn  = errors.New("coluna não permitida")
	ErrRecordNotFound = errors.New("registro não encontrado")
	ErrUnknownOp      = errors.New("operação desconhecida")
	ErrEmptyData      = errors.New("nenhum dado para atualizar")
)
