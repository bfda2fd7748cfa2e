package main

import (
	"context"
	"errors"
	"log"
	"net/http"

	adapthttp "mealtrack/internal/adapter/http"
	"mealtrack/internal/adapter/memory"
	"mealtrack/internal/adapter/postgres"
	"mealtrack/internal/adapter/recognition"
	"mealtrack/internal/app"
	"mealtrack/internal/config"
	"mealtrack/internal/domain"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	catalog, err := domain.LoadBadgeCatalog(cfg.BadgeCatalog)
	if err != nil {
		log.Fatalf("badge catalog: %v", err)
	}

	// The guest cache is always in-memory. The remote store is Postgres
	// when configured; without DATABASE_URL everything runs in-memory,
	// which is enough for development.
	localStore := memory.New()

	var (
		remoteStore domain.MealRepository
		profiles    domain.ProfileRepository
		users       domain.UserRepository
		sessions    domain.SessionRepository
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db open: %v", err)
		}
		defer func() { _ = db.Close() }()
		remoteStore = db
		profiles = db
		users = db
		sessions = postgres.NewSessionRepo(db)
	} else {
		log.Print("DATABASE_URL not set; running fully in-memory")
		remoteStore = localStore
		profiles = localStore
		users = localStore
		sessions = localStore.NewSessionRepo()
	}

	mealSvc := app.NewMealService(localStore, remoteStore, cfg.Location)
	statsSvc := app.NewStatsService(mealSvc, remoteStore, profiles, catalog, cfg.Location)
	migSvc := app.NewMigrationService(localStore, remoteStore)
	authSvc := app.NewAuthService(users, sessions, profiles)
	recognizer := recognition.New(cfg.RecognitionURL)

	oc := adapthttp.OIDCConfig{}
	if cfg.OIDC.Enabled {
		provider, err := oidc.NewProvider(context.Background(), cfg.OIDC.IssuerURL)
		if err != nil {
			log.Fatalf("oidc provider: %v", err)
		}
		oc = adapthttp.OIDCConfig{
			Enabled:  true,
			Provider: provider,
			OAuth2Config: oauth2.Config{
				ClientID:     cfg.OIDC.ClientID,
				ClientSecret: cfg.OIDC.ClientSecret,
				RedirectURL:  cfg.OIDC.RedirectURL,
				Endpoint:     provider.Endpoint(),
				Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
			},
		}
	}

	h := adapthttp.New(mealSvc, statsSvc, migSvc, authSvc, recognizer, oc, cfg.WebDir).Handler()
	log.Printf("listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, h); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
