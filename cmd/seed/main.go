package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/faizi-7/graveyard-back/config"
	"github.com/faizi-7/graveyard-back/internal/application"
	"github.com/faizi-7/graveyard-back/internal/domain/errs"
	pginfra "github.com/faizi-7/graveyard-back/internal/infrastructure/postgres"
	"github.com/faizi-7/graveyard-back/pkg/helpers"
)

// seed creates a verified contributor with one sample idea. Running it again
// reuses the existing user and adds nothing.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), 2, 1, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	users := pginfra.NewUserRepository(pool)
	ideas := pginfra.NewIdeaRepository(pool)
	identity := application.NewIdentityService(users, ideas, nil, nil, nil, logger, cfg.DefaultProfileURL)
	ideaSvc := application.NewIdeaService(ideas, users, nil, nil, logger)

	email := "demo@ideas.local"
	password := "password123"

	u, err := identity.Register(ctx, application.RegisterInput{Username: "demoUser", Email: email, Password: password})
	switch {
	case errs.Is(err, errs.KindConflict):
		u, err = users.GetByEmail(ctx, email)
		if err != nil {
			log.Fatalf("failed to load existing user: %v", err)
		}
		fmt.Printf("user already seeded: id=%s email=%s\n", u.ID, u.Email)
		return
	case err != nil:
		log.Fatalf("failed to seed user: %v", err)
	}

	if _, err := identity.SetEmailVerified(ctx, email); err != nil {
		log.Fatalf("failed to verify user: %v", err)
	}
	if _, err := identity.UpgradeRole(ctx, u.ID, application.UpgradeInput{Fullname: "Demo Contributor", About: "Seeded account"}); err != nil {
		log.Fatalf("failed to upgrade user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", u.ID, email, password)

	v, err := ideaSvc.Create(ctx, u.ID, application.IdeaInput{
		Title:       "Community tool library",
		Description: "A shared shed where neighbours borrow tools instead of buying them.",
		Tags:        []string{"social", "environment"},
		IsOriginal:  true,
	})
	if err != nil {
		log.Fatalf("failed to seed idea: %v", err)
	}
	fmt.Printf("seeded idea: id=%s title=%q\n", v.ID, v.Title)
}
