package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/faizi-7/graveyard-back/internal/container"
	"github.com/faizi-7/graveyard-back/internal/interface/middleware"
)

type MetricsModule struct {
	Metrics *middleware.Metrics
}

func NewMetricsModule(m *middleware.Metrics) *MetricsModule { return &MetricsModule{Metrics: m} }

func (m *MetricsModule) Register(rg *gin.RouterGroup) {
	// Public prometheus endpoint, rate-limited per IP except for in-cluster scrapers
	rl := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	rg.GET("/metrics", rl, gin.WrapH(m.Metrics.Handler()))
}
