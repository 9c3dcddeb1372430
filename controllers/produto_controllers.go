package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/pastelaria-api/cache"
	"github.com/yeremiapane/pastelaria-api/middlewares"
	"github.com/yeremiapane/pastelaria-api/models"
	"github.com/yeremiapane/pastelaria-api/services"
	"github.com/yeremiapane/pastelaria-api/utils"
	"gorm.io/gorm"
)

type ProdutoController struct {
	DB *gorm.DB
	changeNotifier
}

func NewProdutoController(db *gorm.DB, store cache.Store, sync *services.SyncRecorder) *ProdutoController {
	return &ProdutoController{DB: db, changeNotifier: changeNotifier{Cache: store, Sync: sync}}
}

type produtoInput struct {
	Nome      string  `json:"nome"`
	Categoria string  `json:"categoria"`
	Preco     float64 `json:"preco"`
	Descricao string  `json:"descricao"`
	Ativo     *bool   `json:"ativo"`
	Imagem    string  `json:"imagem"`
}

// activeScope applies the ?ativo= filter. Listings show active rows unless
// asked for "false" or "todos".
func activeScope(c *gin.Context) (func(*gorm.DB) *gorm.DB, string) {
	ativo := c.DefaultQuery("ativo", "true")
	return func(db *gorm.DB) *gorm.DB {
		switch ativo {
		case "todos":
			return db
		case "false":
			return db.Where("ativo = ?", false)
		default:
			return db.Where("ativo = ?", true)
		}
	}, ativo
}

// GetAll -> GET /api/v1/produtos
func (pc *ProdutoController) GetAll(c *gin.Context) {
	page := utils.ParsePagination(c)
	categoria := c.Query("categoria")
	search := c.Query("search")
	ativoScope, ativo := activeScope(c)

	query := func() *gorm.DB {
		q := pc.DB.WithContext(c.Request.Context()).Model(&models.Produto{}).Scopes(ativoScope)
		if categoria != "" {
			q = q.Where("categoria = ?", categoria)
		}
		if search != "" {
			like := "%" + search + "%"
			q = q.Where("nome LIKE ? OR descricao LIKE ?", like, like)
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	produtos := []models.Produto{}
	if err := query().Order("categoria, nome").Offset(page.Offset()).Limit(page.Limit).Find(&produtos).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondPaginated(c, produtos, page.WithTotal(total), gin.H{
		"categoria": categoria,
		"ativo":     ativo,
		"search":    search,
	})
}

// GetByID -> GET /api/v1/produtos/:id. Inactive products are still returned.
func (pc *ProdutoController) GetByID(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		respondInvalidID(c)
		return
	}

	var produto models.Produto
	if err := pc.DB.WithContext(c.Request.Context()).First(&produto, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, utils.NewNotFound("Produto não encontrado"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Produto encontrado", produto)
}

// Create -> POST /api/v1/produtos
func (pc *ProdutoController) Create(c *gin.Context) {
	var input produtoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.NewBadRequest("INVALID_JSON", err.Error()))
		return
	}

	produto := models.Produto{
		Nome:      input.Nome,
		Categoria: input.Categoria,
		Preco:     utils.RoundCurrency(input.Preco),
		Descricao: input.Descricao,
		Ativo:     input.Ativo == nil || *input.Ativo,
		Imagem:    input.Imagem,
	}
	if err := pc.DB.WithContext(c.Request.Context()).Create(&produto).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	pc.changed(c, "produtos", produto.ID, models.OperationCreate, produto)
	utils.RespondJSON(c, http.StatusCreated, "Produto criado com sucesso", produto)
}

// Update -> PUT /api/v1/produtos/:id. Only fields present in the body change.
func (pc *ProdutoController) Update(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		respondInvalidID(c)
		return
	}

	updates := services.WritableColumns("produtos", middlewares.ValidatedData(c))
	if len(updates) == 0 {
		respondServiceError(c, services.ErrEmptyData)
		return
	}

	db := pc.DB.WithContext(c.Request.Context())
	var produto models.Produto
	if err := db.First(&produto, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, utils.NewNotFound("Produto não encontrado"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := db.Model(&produto).Updates(updates).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	if err := db.First(&produto, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	pc.changed(c, "produtos", produto.ID, models.OperationUpdate, updates)
	utils.RespondJSON(c, http.StatusOK, "Produto atualizado com sucesso", produto)
}

// Delete -> DELETE /api/v1/produtos/:id. The row stays with ativo=false.
func (pc *ProdutoController) Delete(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		respondInvalidID(c)
		return
	}

	result := pc.DB.WithContext(c.Request.Context()).Model(&models.Produto{}).Where("id = ?", id).Update("ativo", false)
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, utils.NewNotFound("Produto não encontrado"))
		return
	}

	pc.changed(c, "produtos", id, models.OperationUpdate, gin.H{"id": id, "ativo": false})
	utils.RespondJSON(c, http.StatusOK, "Produto removido com sucesso", gin.H{"id": id, "ativo": false})
}
