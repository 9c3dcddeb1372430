package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/pastelaria-api/cache"
	"github.com/yeremiapane/pastelaria-api/middlewares"
	"github.com/yeremiapane/pastelaria-api/models"
	"github.com/yeremiapane/pastelaria-api/services"
	"github.com/yeremiapane/pastelaria-api/utils"
	"gorm.io/gorm"
)

var errTamanhoNotFound = utils.NewNotFound("Tamanho não encontrado")

type TamanhoController struct {
	DB *gorm.DB
	changeNotifier
}

func NewTamanhoController(db *gorm.DB, store cache.Store, sync *services.SyncRecorder) *TamanhoController {
	return &TamanhoController{DB: db, changeNotifier: changeNotifier{Cache: store, Sync: sync}}
}

type tamanhoInput struct {
	Nome          string  `json:"nome"`
	Multiplicador float64 `json:"multiplicador"`
	Descricao     string  `json:"descricao"`
	Ordem         *int    `json:"ordem"`
	Ativo         *bool   `json:"ativo"`
}

type reorderInput struct {
	Tamanhos []struct {
		ID    uint `json:"id"`
		Ordem int  `json:"ordem"`
	} `json:"tamanhos"`
}

type calcularPrecoInput struct {
	PrecoBase float64 `json:"preco_base"`
	TamanhoID uint    `json:"tamanho_id"`
}

// GetAll -> GET /api/v1/tamanhos, in display order.
func (tc *TamanhoController) GetAll(c *gin.Context) {
	ativoScope, ativo := activeScope(c)

	tamanhos := []models.Tamanho{}
	err := tc.DB.WithContext(c.Request.Context()).Scopes(ativoScope).Order("ordem, id").Find(&tamanhos).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tamanhos,
		"total":   len(tamanhos),
		"filters": gin.H{"ativo": ativo},
	})
}

// GetByID -> GET /api/v1/tamanhos/:id
func (tc *TamanhoController) GetByID(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		respondInvalidID(c)
		return
	}

	var tamanho models.Tamanho
	if err := tc.DB.WithContext(c.Request.Context()).First(&tamanho, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errTamanhoNotFound)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Tamanho encontrado", tamanho)
}

// Create -> POST /api/v1/tamanhos. Without ordem the size goes last.
func (tc *TamanhoController) Create(c *gin.Context) {
	var input tamanhoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.NewBadRequest("INVALID_JSON", err.Error()))
		return
	}

	tamanho := models.Tamanho{
		Nome:          input.Nome,
		Multiplicador: input.Multiplicador,
		Descricao:     input.Descricao,
		Ativo:         input.Ativo == nil || *input.Ativo,
	}

	err := tc.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if input.Ordem != nil {
			tamanho.Ordem = *input.Ordem
		} else {
			if err := tx.Model(&models.Tamanho{}).Select("COALESCE(MAX(ordem), 0)").Scan(&tamanho.Ordem).Error; err != nil {
				return err
			}
			tamanho.Ordem++
		}
		return tx.Create(&tamanho).Error
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tc.changed(c, "tamanhos", tamanho.ID, models.OperationCreate, tamanho)
	utils.RespondJSON(c, http.StatusCreated, "Tamanho criado com sucesso", tamanho)
}

// Update -> PUT /api/v1/tamanhos/:id
func (tc *TamanhoController) Update(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		respondInvalidID(c)
		return
	}

	updates := services.WritableColumns("tamanhos", middlewares.ValidatedData(c))
	if len(updates) == 0 {
		respondServiceError(c, services.ErrEmptyData)
		return
	}

	db := tc.DB.WithContext(c.Request.Context())
	var tamanho models.Tamanho
	if err := db.First(&tamanho, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errTamanhoNotFound)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := db.Model(&tamanho).Updates(updates).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	if err := db.First(&tamanho, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	tc.changed(c, "tamanhos", tamanho.ID, models.OperationUpdate, updates)
	utils.RespondJSON(c, http.StatusOK, "Tamanho atualizado com sucesso", tamanho)
}

// Delete -> DELETE /api/v1/tamanhos/:id. Sizes are only deactivated.
func (tc *TamanhoController) Delete(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		respondInvalidID(c)
		return
	}

	result := tc.DB.WithContext(c.Request.Context()).Model(&models.Tamanho{}).Where("id = ?", id).Update("ativo", false)
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errTamanhoNotFound)
		return
	}

	tc.changed(c, "tamanhos", id, models.OperationUpdate, gin.H{"id": id, "ativo": false})
	utils.RespondJSON(c, http.StatusOK, "Tamanho desativado com sucesso", gin.H{"id": id, "ativo": false})
}

// Reorder -> POST /api/v1/tamanhos/reorder. All positions change or none do.
func (tc *TamanhoController) Reorder(c *gin.Context) {
	var input reorderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.NewBadRequest("INVALID_JSON", err.Error()))
		return
	}

	err := tc.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		for _, t := range input.Tamanhos {
			result := tx.Model(&models.Tamanho{}).Where("id = ?", t.ID).Update("ordem", t.Ordem)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("%w: tamanhos/%d", services.ErrRecordNotFound, t.ID)
			}
		}
		return nil
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	for _, t := range input.Tamanhos {
		tc.changed(c, "tamanhos", t.ID, models.OperationUpdate, gin.H{"id": t.ID, "ordem": t.Ordem})
	}
	utils.RespondJSON(c, http.StatusOK, "Ordem dos tamanhos atualizada", gin.H{"updated": len(input.Tamanhos)})
}

// CalcularPreco -> POST /api/v1/tamanhos/calcular-preco
func (tc *TamanhoController) CalcularPreco(c *gin.Context) {
	var input calcularPrecoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.NewBadRequest("INVALID_JSON", err.Error()))
		return
	}

	var tamanho models.Tamanho
	err := tc.DB.WithContext(c.Request.Context()).Where("id = ? AND ativo = ?", input.TamanhoID, true).First(&tamanho).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondServiceError(c, services.ErrSizeNotFound)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Preço calculado", services.PriceForSize(input.PrecoBase, tamanho))
}
