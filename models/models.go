package models

// All lists every table the API owns, in migration order.
func All() []interface{} {
	return []interface{}{
		&Produto{},
		&Sabor{},
		&Tamanho{},
		&Pedido{},
		&ItemPedido{},
		&ItemSabor{},
		&CacheEntry{},
		&SyncQueue{},
	}
}
