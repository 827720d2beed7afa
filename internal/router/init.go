package router

import (
	"github.com/faizi-7/graveyard-back/internal/application"
	"github.com/faizi-7/graveyard-back/internal/container"
	repo "github.com/faizi-7/graveyard-back/internal/domain/repository"
	"github.com/faizi-7/graveyard-back/internal/infrastructure/cache"
	"github.com/faizi-7/graveyard-back/internal/infrastructure/memory"
	pginfra "github.com/faizi-7/graveyard-back/internal/infrastructure/postgres"
	"github.com/faizi-7/graveyard-back/internal/infrastructure/search"
	handlers "github.com/faizi-7/graveyard-back/internal/interface/http"
	"github.com/faizi-7/graveyard-back/internal/interface/middleware"
	"github.com/faizi-7/graveyard-back/internal/router/modules"
)

// Deps are the application services the modules are built from.
type Deps struct {
	Identity *application.IdentityService
	Account  *application.AccountService
	Ideas    *application.IdeaService
	Votes    *application.VoteService
	Comments *application.CommentService
	Metrics  *middleware.Metrics
}

type repositories struct {
	users    repo.UserRepository
	ideas    repo.IdeaRepository
	comments repo.CommentRepository
}

// buildRepositories uses postgres when a pool is configured and falls back
// to the in-memory store otherwise.
func buildRepositories() repositories {
	if pool := container.GetPGPool(); pool != nil {
		return repositories{
			users:    pginfra.NewUserRepository(pool),
			ideas:    pginfra.NewIdeaRepository(pool),
			comments: pginfra.NewCommentRepository(pool),
		}
	}
	container.GetLogger().Warn("no database configured, using in-memory storage")
	s := memory.NewStore()
	return repositories{users: s.Users(), ideas: s.Ideas(), comments: s.Comments()}
}

// BuildDeps wires services from the container singletons. Optional backends
// are passed as nil interfaces when absent.
func BuildDeps() Deps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	repos := buildRepositories()

	var store application.ObjectStore
	if s := container.GetObjectStore(); s != nil {
		store = s
	}
	var idCache application.IdentityCache
	if rdb := container.GetRedis(); rdb != nil {
		idCache = cache.NewIdentityCache(rdb, cfg.IdentityCacheTTL)
	}
	var indexer application.IdeaIndexer
	if es := container.GetES(); es != nil {
		indexer = search.NewIdeaIndex(es, cfg.ESIdeasIndex)
	}

	tokens := container.GetTokens()
	identity := application.NewIdentityService(repos.users, repos.ideas, tokens, store, idCache, logger, cfg.DefaultProfileURL)
	return Deps{
		Identity: identity,
		Account:  application.NewAccountService(identity, tokens, container.GetNotifier(), logger, cfg.VerifyEmailURL, cfg.ResetPasswordURL),
		Ideas:    application.NewIdeaService(repos.ideas, repos.users, indexer, store, logger),
		Votes:    application.NewVoteService(repos.ideas, repos.users, logger),
		Comments: application.NewCommentService(repos.comments, repos.ideas, logger),
		Metrics:  container.GetMetrics(),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	InitModulesWith(r, BuildDeps())
}

func InitModulesWith(r *Registry, d Deps) {
	logger := container.GetLogger()
	auth := handlers.NewAuthHandler(d.Identity, d.Account, logger)

	r.Add(modules.NewAuthModule(auth, d.Identity))
	r.Add(modules.NewContactModule(auth))
	r.Add(modules.NewIdeaModule(handlers.NewIdeaHandler(d.Ideas, d.Votes, logger), d.Identity))
	r.Add(modules.NewCommentModule(handlers.NewCommentHandler(d.Comments, logger), d.Identity))
	if d.Metrics != nil {
		r.Add(modules.NewMetricsModule(d.Metrics))
	}
}
