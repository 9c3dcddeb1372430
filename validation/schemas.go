package validation

import (
	"fmt"

	"github.com/yeremiapane/pastelaria-api/models"
)

var ProdutoSchema = Schema{
	{Name: "nome", Rules: []Rule{Required(), String(2, 100)}},
	{Name: "categoria", Rules: []Rule{Required(), Enum(models.CategoriasProduto...)}},
	{Name: "preco", Rules: []Rule{Required(), Number(), Min(0)}},
	{Name: "descricao", Rules: []Rule{Optional(String(0, 500))}},
	{Name: "ativo", Rules: []Rule{Optional(Boolean())}},
	{Name: "imagem", Rules: []Rule{Optional(String(0, 255))}},
}

var SaborSchema = Schema{
	{Name: "nome", Rules: []Rule{Required(), String(2, 100)}},
	{Name: "preco_adicional", Rules: []Rule{Optional(Number(), Min(0))}},
	{Name: "categoria", Rules: []Rule{Required(), Enum(models.CategoriasSabor...)}},
	{Name: "descricao", Rules: []Rule{Optional(String(0, 500))}},
	{Name: "ativo", Rules: []Rule{Optional(Boolean())}},
}

var TamanhoSchema = Schema{
	{Name: "nome", Rules: []Rule{Required(), String(1, 50)}},
	{Name: "multiplicador", Rules: []Rule{Required(), Number(), Min(models.MinMultiplicador), Max(models.MaxMultiplicador)}},
	{Name: "descricao", Rules: []Rule{Optional(String(0, 255))}},
	{Name: "ordem", Rules: []Rule{Optional(Integer(), Min(0))}},
	{Name: "ativo", Rules: []Rule{Optional(Boolean())}},
}

var PedidoSchema = Schema{
	{Name: "cliente_nome", Rules: []Rule{Required(), String(2, 100)}},
	{Name: "cliente_telefone", Rules: []Rule{Required(), Phone()}},
	{Name: "cliente_endereco", Rules: []Rule{Optional(String(0, 255))}},
	{Name: "tipo_entrega", Rules: []Rule{Required(), Enum(models.TiposEntrega...)}},
	{Name: "forma_pagamento", Rules: []Rule{Required(), Enum(models.FormasPagamento...)}},
	{Name: "observacoes", Rules: []Rule{Optional(String(0, 500))}},
	{Name: "itens", Rules: []Rule{Required(), Array(1, 50)}},
}

var ItemPedidoSchema = Schema{
	{Name: "produto_id", Rules: []Rule{Required(), Integer(), Min(1)}},
	{Name: "quantidade", Rules: []Rule{Required(), Integer(), Min(1), Max(100)}},
	{Name: "preco_unitario", Rules: []Rule{Optional(Number(), Min(0))}},
	{Name: "tamanho_id", Rules: []Rule{Optional(Integer(), Min(1))}},
	{Name: "observacoes", Rules: []Rule{Optional(String(0, 255))}},
	{Name: "sabores", Rules: []Rule{Optional(Array(0, 4))}},
}

var StatusSchema = Schema{
	{Name: "status", Rules: []Rule{Required(), Enum(models.StatusPedido...)}},
}

var CalcularPrecoSchema = Schema{
	{Name: "preco_base", Rules: []Rule{Required(), Number(), Min(0)}},
	{Name: "tamanho_id", Rules: []Rule{Required(), Integer(), Min(1)}},
}

var ReorderSchema = Schema{
	{Name: "tamanhos", Rules: []Rule{Required(), Array(1, 0)}},
}

var LoginSchema = Schema{
	{Name: "username", Rules: []Rule{Required(), String(1, 100)}},
	{Name: "password", Rules: []Rule{Required(), String(1, 200)}},
}

var SyncUploadSchema = Schema{
	{Name: "operations", Rules: []Rule{Required(), Array(1, 500)}},
}

// ValidatePedido checks the order header, then every item with messages
// prefixed by its position, e.g. "itens[1].quantidade".
func ValidatePedido(data map[string]interface{}) []string {
	errs := Validate(data, PedidoSchema)

	if data["tipo_entrega"] == models.EntregaDelivery && isEmpty(data["cliente_endereco"]) {
		errs = append(errs, "Campo 'cliente_endereco' é obrigatório para entrega")
	}

	items, ok := data["itens"].([]interface{})
	if !ok {
		return errs
	}
	for i, raw := range items {
		prefix := fmt.Sprintf("itens[%d]", i)
		item, ok := raw.(map[string]interface{})
		if !ok {
			errs = append(errs, fmt.Sprintf("Campo '%s' deve ser um objeto", prefix))
			continue
		}
		errs = append(errs, Validate(item, ItemPedidoSchema.withPrefix(prefix))...)
		errs = append(errs, validateSabores(item, prefix)...)
	}
	return errs
}

// validateSabores accepts either a bare flavor id or {sabor_id, preco_adicional?}.
func validateSabores(item map[string]interface{}, prefix string) []string {
	sabores, ok := item["sabores"].([]interface{})
	if !ok {
		return nil
	}

	var errs []string
	for j, raw := range sabores {
		name := fmt.Sprintf("%s.sabores[%d]", prefix, j)
		switch v := raw.(type) {
		case map[string]interface{}:
			errs = append(errs, Validate(v, Schema{
				{Name: "sabor_id", Rules: []Rule{Required(), Integer(), Min(1)}},
				{Name: "preco_adicional", Rules: []Rule{Optional(Number(), Min(0))}},
			}.withPrefix(name))...)
		default:
			coerced, msg := Required()(raw, name)
			if msg == "" {
				coerced, msg = Integer()(coerced, name)
			}
			if msg == "" {
				_, msg = Min(1)(coerced, name)
			}
			if msg != "" {
				errs = append(errs, msg)
				continue
			}
			sabores[j] = coerced
		}
	}
	return errs
}

// withPrefix renames fields in messages only; data keys stay unprefixed.
func (s Schema) withPrefix(prefix string) Schema {
	out := make(Schema, len(s))
	for i, f := range s {
		rules := make([]Rule, len(f.Rules))
		for j, rule := range f.Rules {
			rule := rule
			label := prefix + "." + f.Name
			rules[j] = func(value interface{}, _ string) (interface{}, string) {
				return rule(value, label)
			}
		}
		out[i] = Field{Name: f.Name, Rules: rules, SkipAbsent: f.SkipAbsent}
	}
	return out
}
