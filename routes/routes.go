package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/conference-portal/app"
	"github.com/upb/conference-portal/handlers"
	"github.com/upb/conference-portal/internal/observability"
	"github.com/upb/conference-portal/internal/rbac"
	"github.com/upb/conference-portal/middleware"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(observability.RequestLogger(deps.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(requestTimeout(deps)))

	// The web tier calls the API with the browser's cookie, so credentials are allowed
	// for the configured origins only.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	health := handlers.NewHealthHandler(deps.DB, deps.Audit, deps.Logger)
	conferences := handlers.NewConferenceHandler(deps.Conferences, deps.Logger)
	reviews := handlers.NewReviewHandler(deps.Reviews, deps.Logger)
	users := handlers.NewUserHandler(deps.Accounts, deps.Logger)
	authn := deps.AuthMiddleware

	// Health check endpoints
	r.Get("/healthz", health.HandleHealth)
	r.Get("/readyz", health.HandleReadiness)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", deps.AuthHandler.HandleRegister)
		r.Post("/login", deps.AuthHandler.HandleLogin)
		r.Post("/logout", deps.AuthHandler.HandleLogout)
		r.With(middleware.Gate(authn)...).Get("/me", deps.AuthHandler.HandleMe)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/conferences", func(r chi.Router) {
			r.With(middleware.Gate(authn)...).Get("/", conferences.HandleList)
			r.With(middleware.Gate(authn, rbac.RoleAdmin, rbac.RoleOrganizer)...).Post("/", conferences.HandleCreate)
			r.With(middleware.Gate(authn)...).Get("/{id}", conferences.HandleGet)
			r.With(middleware.Gate(authn, rbac.RoleAdmin, rbac.RoleOrganizer)...).Put("/{id}", conferences.HandleUpdate)
			r.With(middleware.Gate(authn, rbac.RoleAdmin)...).Delete("/{id}", conferences.HandleDelete)

			r.With(middleware.Gate(authn, rbac.RoleParticipant)...).Post("/{id}/registrations", conferences.HandleRegister)
			r.With(middleware.Gate(authn, rbac.RoleAdmin, rbac.RoleOrganizer)...).Get("/{id}/registrations", conferences.HandleListRegistrations)

			r.With(middleware.Gate(authn, rbac.RoleAuthor)...).Post("/{id}/submissions", reviews.HandleSubmit)
			r.With(middleware.Gate(authn, rbac.RoleAdmin, rbac.RoleOrganizer)...).Get("/{id}/submissions", reviews.HandleListByConference)
		})

		r.With(middleware.Gate(authn)...).Get("/registrations/mine", conferences.HandleMyRegistrations)

		r.With(middleware.Gate(authn, rbac.RoleAuthor)...).Get("/submissions/mine", reviews.HandleMySubmissions)
		r.With(middleware.Gate(authn, rbac.RoleAdmin, rbac.RoleOrganizer)...).Post("/submissions/{id}/evaluators", reviews.HandleAssignEvaluator)

		r.With(middleware.Gate(authn, rbac.RolePanelEvaluator)...).Get("/evaluations/mine", reviews.HandleMyEvaluations)
		r.With(middleware.Gate(authn, rbac.RolePanelEvaluator)...).Put("/evaluations/{id}", reviews.HandleUpdateEvaluation)

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.Gate(authn, rbac.RoleAdmin)...)
			r.Get("/", users.HandleList)
			r.Put("/{id}/roles", users.HandleSetRoles)
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}

const defaultRequestTimeout = 60 * time.Second

func requestTimeout(deps *app.Dependencies) time.Duration {
	if t := deps.Config.Server.RequestTimeout; t > 0 {
		return t
	}
	return defaultRequestTimeout
}
