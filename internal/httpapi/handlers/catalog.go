package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chatmultimodel/backend/internal/common"
)

// modelCatalog returns the available models, preferring the redis cache.
// The fetcher itself never fails; the fallback list is already folded in.
func (h *Handler) modelCatalog(c *gin.Context) []string {
	ctx := c.Request.Context()

	if h.Redis != nil {
		if models, ok := h.Redis.GetModelCatalog(ctx); ok {
			return models
		}
	}

	models := h.Fetcher.Fetch(ctx, h.Cfg.OllamaBaseURL, h.Cfg.ModelCatalogTimeout)

	if h.Redis != nil {
		if err := h.Redis.SetModelCatalog(ctx, models, h.Cfg.ModelCatalogCacheTTL); err != nil {
			h.Log.Warn("model catalog cache write failed", "err", err)
		}
	}
	return models
}

// ListModels populates the runtime's model selector at session start.
func (h *Handler) ListModels(c *gin.Context) {
	if _, ok := userIDFromContext(c); !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	common.OK(c, gin.H{"models": h.modelCatalog(c)})
}
