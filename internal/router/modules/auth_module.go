package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/faizi-7/graveyard-back/internal/container"
	handlers "github.com/faizi-7/graveyard-back/internal/interface/http"
	"github.com/faizi-7/graveyard-back/internal/interface/middleware"
)

// AuthModule wires registration, login, verification and password reset.
// Public: register, login, verifymailtoken, startpassreset, verifypasstoken,
// resetpassword, user/:id. Protected: upgrade, verifymail, protected.
type AuthModule struct {
	Handler  *handlers.AuthHandler
	Sessions middleware.SessionResolver
}

func NewAuthModule(h *handlers.AuthHandler, sessions middleware.SessionResolver) *AuthModule {
	return &AuthModule{Handler: h, Sessions: sessions}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	registerLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIP(), nil)
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIP(), nil)
	verifyConfirmLimiter := middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetInitLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetConfirmLimiter := middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	a := rg.Group("/auth")
	a.POST("/register", registerLimiter, m.Handler.Register)
	a.POST("/login", loginLimiter, m.Handler.Login)
	a.GET("/verifymailtoken", verifyConfirmLimiter, m.Handler.ConfirmVerification)
	a.POST("/startpassreset", resetInitLimiter, m.Handler.StartReset)
	a.GET("/verifypasstoken", resetConfirmLimiter, m.Handler.CheckReset)
	a.POST("/resetpassword", resetConfirmLimiter, m.Handler.CompleteReset)
	a.GET("/user/:id", m.Handler.PublicProfile)

	auth := a.Group("/")
	auth.Use(middleware.Auth(m.Sessions))
	auth.Use(middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.PUT("/upgrade", m.Handler.Upgrade)
		auth.GET("/verifymail", middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByUserID(), nil), m.Handler.RequestVerification)
		auth.GET("/protected", m.Handler.Protected)
	}
}
