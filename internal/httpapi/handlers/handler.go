package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/chatmultimodel/backend/internal/apperr"
	"github.com/chatmultimodel/backend/internal/catalog"
	"github.com/chatmultimodel/backend/internal/common"
	"github.com/chatmultimodel/backend/internal/config"
	"github.com/chatmultimodel/backend/internal/conv"
	"github.com/chatmultimodel/backend/internal/httpapi/middleware"
	"github.com/chatmultimodel/backend/internal/logger"
	"github.com/chatmultimodel/backend/internal/settings"
	"github.com/chatmultimodel/backend/internal/store/redisstore"
)

type Handler struct {
	DB          *gorm.DB
	Cfg         config.Config
	Log         *logger.Logger
	Redis       *redisstore.Store
	ConvSvc     *conv.Service
	SettingsSvc *settings.Service
	Fetcher     *catalog.Fetcher
}

func NewHandler(db *gorm.DB, cfg config.Config, log *logger.Logger, rds *redisstore.Store) *Handler {
	repo := conv.NewRepo(db)
	return &Handler{
		DB:          db,
		Cfg:         cfg,
		Log:         log,
		Redis:       rds,
		ConvSvc:     conv.NewService(repo, log, cfg.ChatContextWindowSize),
		SettingsSvc: settings.NewService(db, log),
		Fetcher:     catalog.NewFetcher(log),
	}
}

func userIDFromContext(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}

// failFromErr maps the error taxonomy onto the response envelope. Store
// failures surface as a generic failure with no partial state.
func failFromErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		common.Fail(c, http.StatusNotFound, 40400, "not found")
	case errors.Is(err, apperr.ErrUnauthorized):
		common.Fail(c, http.StatusForbidden, 40300, "forbidden")
	case errors.Is(err, apperr.ErrConflict):
		common.Fail(c, http.StatusConflict, 40900, "session id already in use")
	case errors.Is(err, apperr.ErrValidation):
		common.Fail(c, http.StatusBadRequest, 10010, err.Error())
	default:
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
	}
}
