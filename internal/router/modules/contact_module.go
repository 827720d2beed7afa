package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/faizi-7/graveyard-back/internal/container"
	handlers "github.com/faizi-7/graveyard-back/internal/interface/http"
	"github.com/faizi-7/graveyard-back/internal/interface/middleware"
)

// ContactModule exposes the public contact form. Messages are queued to the
// email worker, so it is limited per IP.
type ContactModule struct {
	Handler *handlers.AuthHandler
}

func NewContactModule(h *handlers.AuthHandler) *ContactModule {
	return &ContactModule{Handler: h}
}

func (m *ContactModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	rg.POST("/auth/contact", rl, m.Handler.Contact)
}
