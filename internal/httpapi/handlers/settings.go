package handlers

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/chatmultimodel/backend/internal/apperr"
	"github.com/chatmultimodel/backend/internal/common"
)

func (h *Handler) GetSettings(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	row, err := h.SettingsSvc.GetOrCreate(c.Request.Context(), uid)
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, row)
}

type saveSettingsReq struct {
	DefaultModel   *string  `json:"default_model"`
	Temperature    *float64 `json:"temperature"`
	FavoriteModels []string `json:"favorite_models"`
}

// SaveSettings persists the supplied fields only. A chosen default model is
// validated against the current catalog before it is stored.
func (h *Handler) SaveSettings(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req saveSettingsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	if req.DefaultModel != nil && *req.DefaultModel != "" {
		known := h.modelCatalog(c)
		if !slices.Contains(known, *req.DefaultModel) {
			failFromErr(c, apperr.Validationf("unknown model %q", *req.DefaultModel))
			return
		}
	}

	row, err := h.SettingsSvc.Save(c.Request.Context(), uid, req.DefaultModel, req.Temperature, req.FavoriteModels)
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, row)
}
