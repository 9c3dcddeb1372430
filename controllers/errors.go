package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/pastelaria-api/services"
	"github.com/yeremiapane/pastelaria-api/utils"
	"gorm.io/gorm"
)

// respondServiceError maps service sentinels onto API error codes. Anything
// unrecognised is a 500.
func respondServiceError(c *gin.Context, err error) {
	var apiErr *utils.APIError
	switch {
	case errors.As(err, &apiErr):
		utils.RespondError(c, apiErr.Status, apiErr)
	case errors.Is(err, services.ErrProductNotFound):
		utils.RespondError(c, http.StatusBadRequest, utils.NewBadRequest("PRODUCT_NOT_FOUND", err.Error()))
	case errors.Is(err, services.ErrSizeNotFound):
		utils.RespondError(c, http.StatusBadRequest, utils.NewBadRequest("SIZE_NOT_FOUND", err.Error()))
	case errors.Is(err, services.ErrFlavorNotFound):
		utils.RespondError(c, http.StatusBadRequest, utils.NewBadRequest("FLAVOR_NOT_FOUND", err.Error()))
	case errors.Is(err, services.ErrCannotCancel):
		utils.RespondError(c, http.StatusBadRequest, utils.NewBadRequest("CANNOT_CANCEL", err.Error()))
	case errors.Is(err, services.ErrInvalidStatus):
		utils.RespondError(c, http.StatusBadRequest, utils.NewBadRequest("INVALID_STATUS", err.Error()))
	case errors.Is(err, services.ErrUnknownTable):
		utils.RespondError(c, http.StatusBadRequest, utils.NewBadRequest("INVALID_TABLE", err.Error()))
	case errors.Is(err, services.ErrUnknownColumn):
		utils.RespondError(c, http.StatusBadRequest, utils.NewBadRequest("INVALID_COLUMN", err.Error()))
	case errors.Is(err, services.ErrInvalidResolution):
		utils.RespondError(c, http.StatusBadRequest, utils.NewBadRequest("INVALID_RESOLUTION", err.Error()))
	case errors.Is(err, services.ErrEmptyData):
		utils.RespondError(c, http.StatusBadRequest, utils.NewBadRequest("EMPTY_DATA", err.Error()))
	case errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrRecordNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		utils.RespondError(c, http.StatusNotFound, utils.NewNotFound(err.Error()))
	case errors.Is(err, gorm.ErrDuplicatedKey):
		utils.RespondError(c, http.StatusConflict, utils.NewConflict("DUPLICATE_NAME", "Já existe um registro com este nome"))
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

func respondInvalidID(c *gin.Context) {
	utils.RespondError(c, http.StatusBadRequest, utils.ErrInvalidID)
}
