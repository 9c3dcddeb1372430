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

const (
	SaborDeactivated = "deactivated"
	SaborDeleted     = "deleted"
)

var errSaborNotFound = utils.NewNotFound("Sabor não encontrado")

type SaborController struct {
	DB *gorm.DB
	changeNotifier
}

func NewSaborController(db *gorm.DB, store cache.Store, sync *services.SyncRecorder) *SaborController {
	return &SaborController{DB: db, changeNotifier: changeNotifier{Cache: store, Sync: sync}}
}

type saborInput struct {
	Nome           string  `json:"nome"`
	PrecoAdicional float64 `json:"preco_adicional"`
	Categoria      string  `json:"categoria"`
	Descricao      string  `json:"descricao"`
	Ativo          *bool   `json:"ativo"`
}

// GetAll -> GET /api/v1/sabores
func (sc *SaborController) GetAll(c *gin.Context) {
	categoria := c.Query("categoria")
	search := c.Query("search")
	ativoScope, ativo := activeScope(c)

	q := sc.DB.WithContext(c.Request.Context()).Scopes(ativoScope)
	if categoria != "" {
		q = q.Where("categoria = ?", categoria)
	}
	if search != "" {
		q = q.Where("nome LIKE ?", "%"+search+"%")
	}

	sabores := []models.Sabor{}
	if err := q.Order("categoria, nome").Find(&sabores).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    sabores,
		"total":   len(sabores),
		"filters": gin.H{"categoria": categoria, "ativo": ativo, "search": search},
	})
}

// GetCategorias -> GET /api/v1/sabores/categorias, with active counts.
func (sc *SaborController) GetCategorias(c *gin.Context) {
	var rows []struct {
		Categoria string
		Total     int64
	}
	err := sc.DB.WithContext(c.Request.Context()).Model(&models.Sabor{}).
		Select("categoria, COUNT(*) AS total").
		Where("ativo = ?", true).
		Group("categoria").
		Scan(&rows).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Categoria] = r.Total
	}

	categorias := make([]gin.H, 0, len(models.CategoriasSabor))
	for _, cat := range models.CategoriasSabor {
		categorias = append(categorias, gin.H{"categoria": cat, "total": counts[cat]})
	}
	utils.RespondJSON(c, http.StatusOK, "Categorias de sabores", categorias)
}

// GetByID -> GET /api/v1/sabores/:id
func (sc *SaborController) GetByID(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		respondInvalidID(c)
		return
	}

	var sabor models.Sabor
	if err := sc.DB.WithContext(c.Request.Context()).First(&sabor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errSaborNotFound)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Sabor encontrado", sabor)
}

// Create -> POST /api/v1/sabores
func (sc *SaborController) Create(c *gin.Context) {
	var input saborInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.NewBadRequest("INVALID_JSON", err.Error()))
		return
	}

	sabor := models.Sabor{
		Nome:           input.Nome,
		PrecoAdicional: utils.RoundCurrency(input.PrecoAdicional),
		Categoria:      input.Categoria,
		Descricao:      input.Descricao,
		Ativo:          input.Ativo == nil || *input.Ativo,
	}
	if err := sc.DB.WithContext(c.Request.Context()).Create(&sabor).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	sc.changed(c, "sabores", sabor.ID, models.OperationCreate, sabor)
	utils.RespondJSON(c, http.StatusCreated, "Sabor criado com sucesso", sabor)
}

// Update -> PUT /api/v1/sabores/:id
func (sc *SaborController) Update(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		respondInvalidID(c)
		return
	}

	updates := services.WritableColumns("sabores", middlewares.ValidatedData(c))
	if len(updates) == 0 {
		respondServiceError(c, services.ErrEmptyData)
		return
	}

	db := sc.DB.WithContext(c.Request.Context())
	var sabor models.Sabor
	if err := db.First(&sabor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errSaborNotFound)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := db.Model(&sabor).Updates(updates).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	if err := db.First(&sabor, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	sc.changed(c, "sabores", sabor.ID, models.OperationUpdate, updates)
	utils.RespondJSON(c, http.StatusOK, "Sabor atualizado com sucesso", sabor)
}

// Delete -> DELETE /api/v1/sabores/:id. Flavors used by any order item are
// only deactivated so order history keeps its reference.
func (sc *SaborController) Delete(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		respondInvalidID(c)
		return
	}

	var action string
	err = sc.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var sabor models.Sabor
		if err := tx.First(&sabor, id).Error; err != nil {
			return err
		}

		var used int64
		if err := tx.Model(&models.ItemSabor{}).Where("sabor_id = ?", id).Count(&used).Error; err != nil {
			return err
		}

		if used > 0 {
			action = SaborDeactivated
			return tx.Model(&sabor).Update("ativo", false).Error
		}
		action = SaborDeleted
		return tx.Delete(&sabor).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errSaborNotFound)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if action == SaborDeleted {
		sc.changed(c, "sabores", id, models.OperationDelete, gin.H{"id": id})
		utils.RespondJSON(c, http.StatusOK, "Sabor excluído com sucesso", gin.H{"id": id, "action": action})
		return
	}
	sc.changed(c, "sabores", id, models.OperationUpdate, gin.H{"id": id, "ativo": false})
	utils.RespondJSON(c, http.StatusOK, "Sabor desativado pois está em uso em pedidos", gin.H{"id": id, "action": action})
}
