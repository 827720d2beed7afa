package container

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/faizi-7/graveyard-back/config"
	"github.com/faizi-7/graveyard-back/internal/application"
	"github.com/faizi-7/graveyard-back/internal/interface/middleware"
	"github.com/faizi-7/graveyard-back/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router wires modules from these singletons. Optional backends stay nil
// when they are not configured.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	objectStore *helpers.GCSObjectStore

	tokens *helpers.TokenAuthority

	rabbitPub *helpers.RabbitPublisher
	esClient  *elasticsearch.Client
	notifier  application.Notifier
	metrics   *middleware.Metrics
)

func SetConfig(c *config.Config) { cfg = c }
func GetConfig() *config.Config  { return cfg }
func SetLogger(l *logrus.Logger) { logger = l }
func GetLogger() *logrus.Logger {
	if logger != nil {
		return logger
	}
	return helpers.NewDiscardLogger()
}

func SetPGPool(p *pgxpool.Pool)                { pgPool = p }
func GetPGPool() *pgxpool.Pool                 { return pgPool }
func SetRedis(r *redis.Client)                 { redisClient = r }
func GetRedis() *redis.Client                  { return redisClient }
func SetObjectStore(s *helpers.GCSObjectStore) { objectStore = s }
func GetObjectStore() *helpers.GCSObjectStore  { return objectStore }
func SetTokens(t *helpers.TokenAuthority)      { tokens = t }
func GetTokens() *helpers.TokenAuthority       { return tokens }

func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
func SetES(c *elasticsearch.Client)           { esClient = c }
func GetES() *elasticsearch.Client            { return esClient }
func SetNotifier(n application.Notifier)      { notifier = n }
func GetNotifier() application.Notifier       { return notifier }
func SetMetrics(m *middleware.Metrics)        { metrics = m }
func GetMetrics() *middleware.Metrics         { return metrics }
