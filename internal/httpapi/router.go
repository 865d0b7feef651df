package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/chatmultimodel/backend/internal/common"
	"github.com/chatmultimodel/backend/internal/config"
	"github.com/chatmultimodel/backend/internal/httpapi/handlers"
	"github.com/chatmultimodel/backend/internal/httpapi/middleware"
	"github.com/chatmultimodel/backend/internal/logger"
	"github.com/chatmultimodel/backend/internal/store/redisstore"
)

func NewRouter(db *gorm.DB, cfg config.Config, log *logger.Logger, rds *redisstore.Store) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	h := handlers.NewHandler(db, cfg, log, rds)

	r.GET("/ping", func(c *gin.Context) { common.OK(c, gin.H{"pong": true}) })

	r.POST("/users", h.CreateUser)
	r.POST("/login", h.Login)

	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthRequired(cfg.JWTSecret))
	authGroup.GET("/me", h.Me)

	// Thread directory + resume protocol
	authGroup.POST("/conversations", h.CreateConversation)
	authGroup.GET("/conversations", h.ListConversations)
	authGroup.GET("/conversations/:session_id", h.GetConversation)
	authGroup.GET("/conversations/:session_id/resume", h.ResumeConversation)
	authGroup.PATCH("/conversations/:session_id", h.RenameConversation)
	authGroup.DELETE("/conversations/:session_id", h.DeleteConversation)

	// Message recorder
	authGroup.POST("/conversations/:session_id/messages", h.AppendMessage)

	// Settings + model catalog
	authGroup.GET("/settings", h.GetSettings)
	authGroup.PUT("/settings", h.SaveSettings)
	authGroup.GET("/models", h.ListModels)

	return r
}
