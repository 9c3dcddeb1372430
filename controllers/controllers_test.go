package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/pastelaria-api/cache"
	"github.com/yeremiapane/pastelaria-api/middlewares"
	"github.com/yeremiapane/pastelaria-api/models"
	"github.com/yeremiapane/pastelaria-api/services"
	"github.com/yeremiapane/pastelaria-api/testutil"
	"github.com/yeremiapane/pastelaria-api/validation"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type nopHub struct{}

func (nopHub) Broadcast(string, interface{}) {}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w, resp
}

func dataAs(t *testing.T, resp apiResponse, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Data, dest))
}

func setupCatalogRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	db := testutil.NewTestDB(t)
	store := cache.NewDBStore(db)
	recorder := services.NewSyncRecorder(db, nopHub{})

	produtoCtrl := NewProdutoController(db, store, recorder)
	saborCtrl := NewSaborController(db, store, recorder)
	tamanhoCtrl := NewTamanhoController(db, store, recorder)

	r := gin.New()
	r.GET("/produtos", produtoCtrl.GetAll)
	r.GET("/produtos/:id", produtoCtrl.GetByID)
	r.POST("/produtos", middlewares.ValidateJSON(validation.ProdutoSchema), produtoCtrl.Create)
	r.PUT("/produtos/:id", middlewares.ValidateJSON(validation.Partial(validation.ProdutoSchema)), produtoCtrl.Update)
	r.DELETE("/produtos/:id", produtoCtrl.Delete)

	r.GET("/sabores", saborCtrl.GetAll)
	r.GET("/sabores/categorias", saborCtrl.GetCategorias)
	r.GET("/sabores/:id", saborCtrl.GetByID)
	r.POST("/sabores", middlewares.ValidateJSON(validation.SaborSchema), saborCtrl.Create)
	r.DELETE("/sabores/:id", saborCtrl.Delete)

	r.GET("/tamanhos", tamanhoCtrl.GetAll)
	r.POST("/tamanhos", middlewares.ValidateJSON(validation.TamanhoSchema), tamanhoCtrl.Create)
	r.POST("/tamanhos/reorder", middlewares.ValidateJSON(validation.ReorderSchema), tamanhoCtrl.Reorder)
	r.POST("/tamanhos/calcular-preco", middlewares.ValidateJSON(validation.CalcularPrecoSchema), tamanhoCtrl.CalcularPreco)
	r.DELETE("/tamanhos/:id", tamanhoCtrl.Delete)
	return r, db
}

func TestProdutoCreateThenGet(t *testing.T) {
	r, _ := setupCatalogRouter(t)

	w, resp := doJSON(t, r, http.MethodPost, "/produtos", map[string]interface{}{
		"nome":      "Pastel de Queijo",
		"categoria": "Pastel",
		"preco":     "8.50",
		"descricao": "Queijo mussarela",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.Produto
	dataAs(t, resp, &created)
	assert.True(t, created.Ativo)
	assert.Equal(t, 8.5, created.Preco)

	w, resp = doJSON(t, r, http.MethodGet, fmt.Sprintf("/produtos/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.Produto
	dataAs(t, resp, &got)
	assert.Equal(t, "Pastel de Queijo", got.Nome)
	assert.Equal(t, "Pastel", got.Categoria)
	assert.Equal(t, 8.5, got.Preco)
	assert.Equal(t, "Queijo mussarela", got.Descricao)
	assert.True(t, got.Ativo)
}

func TestProdutoSoftDelete(t *testing.T) {
	r, db := setupCatalogRouter(t)

	p := models.Produto{Nome: "Coca-Cola", Categoria: models.CategoriaBebida, Preco: 6, Ativo: true}
	require.NoError(t, db.Create(&p).Error)

	w, _ := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/produtos/%d", p.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stored models.Produto
	require.NoError(t, db.First(&stored, p.ID).Error)
	assert.False(t, stored.Ativo)

	_, resp := doJSON(t, r, http.MethodGet, "/produtos", nil)
	var listed []models.Produto
	dataAs(t, resp, &listed)
	assert.Empty(t, listed)

	_, resp = doJSON(t, r, http.MethodGet, "/produtos?ativo=todos", nil)
	dataAs(t, resp, &listed)
	assert.Len(t, listed, 1)

	w, resp = doJSON(t, r, http.MethodGet, fmt.Sprintf("/produtos/%d", p.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got models.Produto
	dataAs(t, resp, &got)
	assert.False(t, got.Ativo)

	w, resp = doJSON(t, r, http.MethodDelete, "/produtos/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", resp.Code)
}

func TestProdutoPartialUpdate(t *testing.T) {
	r, db := setupCatalogRouter(t)

	p := models.Produto{Nome: "Pizza Margherita", Categoria: models.CategoriaPizza, Preco: 30, Ativo: true}
	require.NoError(t, db.Create(&p).Error)

	w, resp := doJSON(t, r, http.MethodPut, fmt.Sprintf("/produtos/%d", p.ID), map[string]interface{}{"preco": 32.5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got models.Produto
	dataAs(t, resp, &got)
	assert.Equal(t, 32.5, got.Preco)
	assert.Equal(t, "Pizza Margherita", got.Nome)

	w, resp = doJSON(t, r, http.MethodPut, fmt.Sprintf("/produtos/%d", p.ID), map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "EMPTY_DATA", resp.Code)

	w, resp = doJSON(t, r, http.MethodPut, fmt.Sprintf("/produtos/%d", p.ID), map[string]interface{}{"categoria": "Lanche"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", resp.Code)
}

func TestSaborDeleteDeactivatesWhenUsed(t *testing.T) {
	r, db := setupCatalogRouter(t)

	produto := models.Produto{Nome: "Pizza", Categoria: models.CategoriaPizza, Preco: 20, Ativo: true}
	usado := models.Sabor{Nome: "Calabresa", Categoria: models.SaborSalgado, Ativo: true}
	livre := models.Sabor{Nome: "Chocolate", Categoria: models.SaborDoce, Ativo: true}
	require.NoError(t, db.Create(&produto).Error)
	require.NoError(t, db.Create(&usado).Error)
	require.NoError(t, db.Create(&livre).Error)

	_, err := services.NewOrderService(db, services.DefaultDeliveryFee, nil).Create(context.Background(), services.CreatePedidoInput{
		ClienteNome:     "João",
		ClienteTelefone: "11999998888",
		TipoEntrega:     models.EntregaBalcao,
		FormaPagamento:  "Dinheiro",
		Itens: []services.ItemInput{
			{ProdutoID: produto.ID, Quantidade: 1, Sabores: []services.SaborInput{{SaborID: usado.ID}}},
		},
	})
	require.NoError(t, err)

	var action struct {
		Action string `json:"action"`
	}

	w, resp := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/sabores/%d", usado.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	dataAs(t, resp, &action)
	assert.Equal(t, SaborDeactivated, action.Action)

	w, _ = doJSON(t, r, http.MethodGet, fmt.Sprintf("/sabores/%d", usado.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/sabores/%d", livre.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	dataAs(t, resp, &action)
	assert.Equal(t, SaborDeleted, action.Action)

	w, _ = doJSON(t, r, http.MethodGet, fmt.Sprintf("/sabores/%d", livre.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSaborDuplicateName(t *testing.T) {
	r, _ := setupCatalogRouter(t)
	body := map[string]interface{}{"nome": "Frango", "categoria": "Salgado", "preco_adicional": 2}

	w, _ := doJSON(t, r, http.MethodPost, "/sabores", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, resp := doJSON(t, r, http.MethodPost, "/sabores", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DUPLICATE_NAME", resp.Code)
}

func TestSaborCategorias(t *testing.T) {
	r, db := setupCatalogRouter(t)
	require.NoError(t, db.Create(&models.Sabor{Nome: "Carne", Categoria: models.SaborSalgado, Ativo: true}).Error)
	require.NoError(t, db.Create(&models.Sabor{Nome: "Queijo", Categoria: models.SaborSalgado, Ativo: true}).Error)

	_, resp := doJSON(t, r, http.MethodGet, "/sabores/categorias", nil)
	var cats []struct {
		Categoria string `json:"categoria"`
		Total     int64  `json:"total"`
	}
	dataAs(t, resp, &cats)
	require.Len(t, cats, len(models.CategoriasSabor))

	totals := map[string]int64{}
	for _, c := range cats {
		totals[c.Categoria] = c.Total
	}
	assert.Equal(t, int64(2), totals[models.SaborSalgado])
	assert.Equal(t, int64(0), totals[models.SaborDoce])
}

func TestCalcularPreco(t *testing.T) {
	r, db := setupCatalogRouter(t)
	grande := models.Tamanho{Nome: "Grande", Multiplicador: 1.3, Ordem: 1, Ativo: true}
	require.NoError(t, db.Create(&grande).Error)

	w, resp := doJSON(t, r, http.MethodPost, "/tamanhos/calcular-preco", map[string]interface{}{
		"preco_base": 20.00,
		"tamanho_id": grande.ID,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var price services.SizePrice
	dataAs(t, resp, &price)
	assert.Equal(t, 26.00, price.PrecoFinal)
	assert.Equal(t, -6.00, price.Economia)
	assert.Equal(t, "Grande", price.TamanhoNome)

	w, resp = doJSON(t, r, http.MethodPost, "/tamanhos/calcular-preco", map[string]interface{}{
		"preco_base": 20.00,
		"tamanho_id": 999,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "SIZE_NOT_FOUND", resp.Code)
}

func TestTamanhoCreateAppendsAndReorder(t *testing.T) {
	r, _ := setupCatalogRouter(t)

	var first, second models.Tamanho
	w, resp := doJSON(t, r, http.MethodPost, "/tamanhos", map[string]interface{}{"nome": "Pequena", "multiplicador": 0.8})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	dataAs(t, resp, &first)
	w, resp = doJSON(t, r, http.MethodPost, "/tamanhos", map[string]interface{}{"nome": "Média", "multiplicador": 1})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	dataAs(t, resp, &second)
	assert.Equal(t, 1, first.Ordem)
	assert.Equal(t, 2, second.Ordem)

	w, _ = doJSON(t, r, http.MethodPost, "/tamanhos/reorder", map[string]interface{}{
		"tamanhos": []map[string]interface{}{
			{"id": first.ID, "ordem": 2},
			{"id": second.ID, "ordem": 1},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	_, resp = doJSON(t, r, http.MethodGet, "/tamanhos", nil)
	var listed []models.Tamanho
	dataAs(t, resp, &listed)
	require.Len(t, listed, 2)
	assert.Equal(t, "Média", listed[0].Nome)

	w, resp = doJSON(t, r, http.MethodPost, "/tamanhos/reorder", map[string]interface{}{
		"tamanhos": []map[string]interface{}{{"id": second.ID, "ordem": 9}, {"id": 999, "ordem": 6}},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", resp.Code)

	_, resp = doJSON(t, r, http.MethodGet, "/tamanhos", nil)
	dataAs(t, resp, &listed)
	assert.Equal(t, "Média", listed[0].Nome, "failed reorder must roll back")
}

func TestMultiplicadorBounds(t *testing.T) {
	r, _ := setupCatalogRouter(t)
	w, resp := doJSON(t, r, http.MethodPost, "/tamanhos", map[string]interface{}{"nome": "Gigante", "multiplicador": 11})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", resp.Code)
}
