package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/faizi-7/graveyard-back/internal/container"
	handlers "github.com/faizi-7/graveyard-back/internal/interface/http"
	"github.com/faizi-7/graveyard-back/internal/interface/middleware"
)

type CommentModule struct {
	Handler  *handlers.CommentHandler
	Sessions middleware.SessionResolver
}

func NewCommentModule(h *handlers.CommentHandler, sessions middleware.SessionResolver) *CommentModule {
	return &CommentModule{Handler: h, Sessions: sessions}
}

func (m *CommentModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	rg.GET("/comments/:ideaId", m.Handler.List)
	rg.POST("/comments/:ideaId",
		middleware.Auth(m.Sessions),
		middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByUserID(), nil),
		m.Handler.Create,
	)
}
