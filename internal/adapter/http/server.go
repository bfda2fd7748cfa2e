package adapthttp

import (
	"net/http"

	"mealtrack/internal/app"
	"mealtrack/internal/domain"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// OIDCConfig carries the optional SSO login configuration.
type OIDCConfig struct {
	Enabled      bool
	Provider     *oidc.Provider
	OAuth2Config oauth2.Config
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	meals       *app.MealService
	stats       *app.StatsService
	migration   *app.MigrationService
	auth        *app.AuthService
	recognition domain.FoodRecognitionService
	oidcConfig  OIDCConfig
	webDir      string
}

// New creates a Server wired to the given application services.
func New(meals *app.MealService, stats *app.StatsService, mig *app.MigrationService, auth *app.AuthService, rec domain.FoodRecognitionService, oc OIDCConfig, webDir string) *Server {
	return &Server{
		meals:       meals,
		stats:       stats,
		migration:   mig,
		auth:        auth,
		recognition: rec,
		oidcConfig:  oc,
		webDir:      webDir,
	}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	api.HandleFunc("/auth/signup", s.handleSignup)
	api.HandleFunc("/auth/login", s.handleLogin)
	api.HandleFunc("/auth/logout", s.handleLogout)
	api.HandleFunc("/auth/me", s.handleMe)
	api.HandleFunc("/auth/sso", s.handleSSOLogin)
	api.HandleFunc("/auth/sso/callback", s.handleSSOCallback)

	api.HandleFunc("/meals", s.handleMeals)
	api.HandleFunc("/meals/today", s.handleMealsToday)
	api.HandleFunc("/meals/delete", s.handleMealDelete)
	api.HandleFunc("/history/daily", s.handleHistoryDaily)

	api.HandleFunc("/dashboard/today", s.handleDashboardToday)
	api.HandleFunc("/dashboard/weekly", s.handleDashboardWeekly)

	api.HandleFunc("/achievements", s.handleAchievements)
	api.HandleFunc("/profile", s.handleProfile)
	api.HandleFunc("/profile/goals", s.handleGoals)
	api.HandleFunc("/migrate", s.handleMigrate)

	api.HandleFunc("/recognize", s.handleRecognize)
	api.HandleFunc("/food/search", s.handleFoodSearch)

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", s.withIdentity(api)))
	root.Handle("/", spaFromDisk(s.webDir))

	return s.loggingMiddleware(withNoCache(root))
}
