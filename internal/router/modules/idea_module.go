package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/faizi-7/graveyard-back/internal/container"
	"github.com/faizi-7/graveyard-back/internal/domain/entity"
	handlers "github.com/faizi-7/graveyard-back/internal/interface/http"
	"github.com/faizi-7/graveyard-back/internal/interface/middleware"
)

type IdeaModule struct {
	Handler  *handlers.IdeaHandler
	Sessions middleware.SessionResolver
}

func NewIdeaModule(h *handlers.IdeaHandler, sessions middleware.SessionResolver) *IdeaModule {
	return &IdeaModule{Handler: h, Sessions: sessions}
}

func (m *IdeaModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	searchLimiter := middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByIP(), nil)

	ideas := rg.Group("/ideas")
	ideas.GET("", m.Handler.List)
	ideas.GET("/search", searchLimiter, m.Handler.Search)
	ideas.GET("/:id", m.Handler.Get)

	auth := ideas.Group("")
	auth.Use(middleware.Auth(m.Sessions))
	auth.Use(middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("", middleware.RequireRole(entity.RoleContributor), m.Handler.Create)
		auth.PUT("/:id", m.Handler.Update)
		auth.PATCH("/:id", m.Handler.Update)
		auth.DELETE("/:id", m.Handler.Delete)
		auth.POST("/:id/vote", m.Handler.Vote)
		auth.POST("/:id/favorite", m.Handler.Favorite)
	}
}
