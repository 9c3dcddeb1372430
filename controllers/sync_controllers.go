package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/pastelaria-api/cache"
	"github.com/yeremiapane/pastelaria-api/models"
	"github.com/yeremiapane/pastelaria-api/services"
	"github.com/yeremiapane/pastelaria-api/utils"
)

const defaultQueueLimit = 100

type SyncController struct {
	Service *services.SyncService
	changeNotifier
}

func NewSyncController(sync *services.SyncService, store cache.Store) *SyncController {
	return &SyncController{Service: sync, changeNotifier: changeNotifier{Cache: store, Sync: sync.Sync}}
}

type uploadInput struct {
	Operations []services.SyncOperation `json:"operations"`
}

type resolveInput struct {
	Table      string                 `json:"table"`
	ID         uint                   `json:"id"`
	Resolution string                 `json:"resolution"`
	Data       map[string]interface{} `json:"data"`
}

// Upload -> POST /api/v1/sync/upload
func (sc *SyncController) Upload(c *gin.Context) {
	var input uploadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.NewBadRequest("INVALID_JSON", err.Error()))
		return
	}

	result := sc.Service.Upload(c.Request.Context(), input.Operations)

	touched := map[string]bool{}
	for _, op := range input.Operations {
		touched[op.Table] = true
	}
	tables := make([]string, 0, len(touched))
	for _, t := range services.Tables() {
		if touched[t] {
			tables = append(tables, t)
		}
	}
	sc.invalidate(c, tables...)

	c.JSON(http.StatusOK, result)
}

// Download -> GET /api/v1/sync/download?last_sync=<RFC3339>&tables=a,b
func (sc *SyncController) Download(c *gin.Context) {
	var lastSync *time.Time
	if raw := c.Query("last_sync"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.NewBadRequest("INVALID_DATE", "last_sync deve estar no formato RFC3339"))
			return
		}
		lastSync = &t
	}

	var tables []string
	if raw := c.Query("tables"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tables = append(tables, t)
			}
		}
	}

	result, err := sc.Service.Download(c.Request.Context(), lastSync, tables)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Status -> GET /api/v1/sync/status
func (sc *SyncController) Status(c *gin.Context) {
	status, err := sc.Service.Status(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Status de sincronização", status)
}

// ResolveConflict -> POST /api/v1/sync/resolve-conflict
func (sc *SyncController) ResolveConflict(c *gin.Context) {
	var input resolveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.NewBadRequest("INVALID_JSON", err.Error()))
		return
	}
	if input.Table == "" || input.ID == 0 || input.Resolution == "" {
		utils.RespondError(c, http.StatusBadRequest, utils.NewBadRequest("MISSING_PARAMS", "Parâmetros table, id e resolution são obrigatórios"))
		return
	}

	row, err := sc.Service.Resolve(c.Request.Context(), input.Table, input.ID, input.Resolution, input.Data)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if input.Resolution != services.ResolutionServerWins {
		sc.invalidate(c, input.Table)
	}
	utils.RespondJSON(c, http.StatusOK, "Conflito resolvido", gin.H{
		"resolution": input.Resolution,
		"data":       row,
	})
}

// Queue -> GET /api/v1/sync/queue?since_id=&limit=
func (sc *SyncController) Queue(c *gin.Context) {
	sinceID, _ := strconv.ParseUint(c.Query("since_id"), 10, 64)
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 || limit > services.DownloadLimit {
		limit = defaultQueueLimit
	}

	entries, err := sc.Service.Sync.Since(c.Request.Context(), uint(sinceID), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if entries == nil {
		entries = []models.SyncQueue{}
	}

	var lastID uint
	if len(entries) > 0 {
		lastID = entries[len(entries)-1].ID
	}
	utils.RespondJSON(c, http.StatusOK, "Fila de sincronização", gin.H{
		"entries":  entries,
		"last_id":  lastID,
		"has_more": len(entries) == limit,
	})
}
