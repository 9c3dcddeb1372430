package services

import (
	"github.com/yeremiapane/pastelaria-api/models"
	"github.com/yeremiapane/pastelaria-api/utils"
)

const DefaultDeliveryFee = 5.00

// Line is one priced order item.
type Line struct {
	Quantidade    int
	PrecoUnitario float64
	Adicionais    []float64
}

// Total is quantidade × preco_unitario plus each flavor surcharge once.
func (l Line) Total() float64 {
	total := float64(l.Quantidade) * l.PrecoUnitario
	for _, a := range l.Adicionais {
		total += a
	}
	return utils.RoundCurrency(total)
}

type Totals struct {
	Subtotal    float64 `json:"subtotal"`
	TaxaEntrega float64 `json:"taxa_entrega"`
	Total       float64 `json:"total"`
}

// CalculateTotals charges deliveryFee only for tipo_entrega Entrega.
func CalculateTotals(lines []Line, tipoEntrega string, deliveryFee float64) Totals {
	var subtotal float64
	for _, l := range lines {
		subtotal += l.Total()
	}
	subtotal = utils.RoundCurrency(subtotal)

	var taxa float64
	if tipoEntrega == models.EntregaDelivery {
		taxa = utils.RoundCurrency(deliveryFee)
	}

	return Totals{
		Subtotal:    subtotal,
		TaxaEntrega: taxa,
		Total:       utils.RoundCurrency(subtotal + taxa),
	}
}

// ItemTotal is the stored preco_total of an item, flavors excluded.
func ItemTotal(quantidade int, precoUnitario float64) float64 {
	return utils.RoundCurrency(float64(quantidade) * precoUnitario)
}

func ApplyMultiplier(base, multiplicador float64) float64 {
	return utils.RoundCurrency(base * multiplicador)
}

type SizePrice struct {
	TamanhoID     uint    `json:"tamanho_id"`
	TamanhoNome   string  `json:"tamanho_nome"`
	PrecoBase     float64 `json:"preco_base"`
	Multiplicador float64 `json:"multiplicador"`
	PrecoFinal    float64 `json:"preco_final"`
	Economia      float64 `json:"economia"`
}

// PriceForSize reports the sized price. Economia is negative when the size
// makes the item dearer.
func PriceForSize(base float64, t models.Tamanho) SizePrice {
	final := ApplyMultiplier(base, t.Multiplicador)
	return SizePrice{
		TamanhoID:     t.ID,
		TamanhoNome:   t.Nome,
		PrecoBase:     base,
		Multiplicador: t.Multiplicador,
		PrecoFinal:    final,
		Economia:      utils.RoundCurrency(base - final),
	}
}
