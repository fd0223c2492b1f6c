package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/salesdesk/crm-backend/app"
	"github.com/salesdesk/crm-backend/models"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoints
	r.Get("/health", deps.HealthHandler.HandleHealth)
	r.Get("/ready", deps.HealthHandler.HandleReady)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/login", deps.AuthHandler.HandleLogin)

		// Client management
		r.Route("/clients", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Get("/", deps.ClientHandler.HandleListClients)
			r.Post("/", deps.ClientHandler.HandleCreateClient)
			r.Get("/search", deps.ClientHandler.HandleSearchClients)
			r.Get("/advanced-search", deps.ClientHandler.HandleAdvancedSearchClients)
			r.Get("/check-exists", deps.ClientHandler.HandleCheckClientExists)
			r.Get("/by-phone/{phone}", deps.ClientHandler.HandleGetClientByPhone)
			r.Get("/{id}", deps.ClientHandler.HandleGetClient)
			r.Patch("/{id}", deps.ClientHandler.HandleUpdateClient)
			r.Delete("/{id}", deps.ClientHandler.HandleDeleteClient)
		})

		// Sales lead management
		r.Route("/leads", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Get("/", deps.LeadHandler.HandleListLeads)
			r.Post("/", deps.LeadHandler.HandleCreateLead)
			r.Get("/stats", deps.LeadHandler.HandleLeadStats)
			r.Get("/stats/status", deps.LeadHandler.HandleLeadStatusStats)
			r.Get("/stats/channel", deps.LeadHandler.HandleLeadChannelStats)
			r.Get("/recent", deps.LeadHandler.HandleRecentLeads)
			r.Get("/{id}", deps.LeadHandler.HandleGetLead)
			r.Patch("/{id}", deps.LeadHandler.HandleUpdateLead)
			r.Put("/{id}/status", deps.LeadHandler.HandleChangeLeadStatus)
			r.Put("/{id}/assign", deps.LeadHandler.HandleAssignLead)
			r.Delete("/{id}", deps.LeadHandler.HandleDeleteLead)
		})

		// User management (admin only, except self lookup)
		r.Route("/users", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Get("/me", deps.UserHandler.HandleGetCurrentUser)

			r.Group(func(r chi.Router) {
				r.Use(deps.AuthMiddleware.RequireRole(string(models.RoleAdmin)))
				r.Get("/", deps.UserHandler.HandleListUsers)
				r.Post("/", deps.UserHandler.HandleCreateUser)
				r.Get("/{id}", deps.UserHandler.HandleGetUser)
				r.Patch("/{id}", deps.UserHandler.HandleUpdateUser)
				r.Post("/{id}/deactivate", deps.UserHandler.HandleDeactivateUser)
				r.Delete("/{id}", deps.UserHandler.HandleDeleteUser)
			})
		})

		// Audit trail (admin only)
		r.Route("/audit-logs", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Use(deps.AuthMiddleware.RequireRole(string(models.RoleAdmin)))
			r.Get("/", deps.AuditHandler.HandleListAuditLogs)
			r.Get("/{table}/{id}", deps.AuditHandler.HandleRecordHistory)
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
