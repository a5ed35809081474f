// Package api exposes the asset ledger over a JSON REST API.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/crisoull/bodega/internal/auth"
	"github.com/crisoull/bodega/internal/model"
	"github.com/crisoull/bodega/internal/store"
)

// Server bundles the dependencies shared by all handlers.
type Server struct {
	Store     *store.Store
	JWTSecret string
	Log       zerolog.Logger
	Lockout   *auth.Lockout
	Hooks     *auth.Hooks
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(s *Server) http.Handler {
	if s.Lockout == nil {
		s.Lockout = auth.NewLockout()
	}
	if s.Hooks == nil {
		s.Hooks = &auth.Hooks{}
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logging(s.Log))

	authMW := AuthMiddleware(s.JWTSecret)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireManager := RequireRole(model.RoleManager)

	r.Route("/api", func(r chi.Router) {
		// Public: login.
		r.Post("/auth/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(authMW)

			r.Post("/auth/logout", s.logout)
			r.Put("/auth/password", s.changePassword)

			// Users (admin only).
			r.Route("/users", func(r chi.Router) {
				r.Use(requireAdmin)
				r.Get("/", s.listUsers)
				r.Post("/", s.createUser)
				r.Get("/{id}", s.getUser)
				r.Put("/{id}", s.updateUser)
				r.Put("/{id}/password", s.resetUserPassword)
				r.Delete("/{id}", s.deleteUser)
			})

			// Tools: read (all roles), write (manager+).
			r.Route("/tools", func(r chi.Router) {
				r.Get("/", s.listTools)
				r.Get("/overdue", s.listOverdue)
				r.With(requireManager).Post("/", s.createTool)
				r.With(requireManager).Delete("/", s.deleteTools)
				r.Get("/{id}", s.getTool)
				r.With(requireManager).Put("/{id}", s.updateTool)
				r.With(requireManager).Put("/{id}/photo", s.uploadToolPhoto)
				r.Post("/{id}/loan", s.loanTool)
				r.Post("/{id}/return", s.returnTool)
			})
			r.Get("/history", s.listHistory)
			r.Post("/scan", s.handleScan)

			// Fuels: read (all roles), write (manager+).
			r.Route("/fuels", func(r chi.Router) {
				r.Get("/", s.listFuels)
				r.Get("/history", s.listFuelHistory)
				r.With(requireManager).Post("/", s.createFuel)
				r.With(requireManager).Delete("/", s.deleteFuels)
				r.Get("/{id}", s.getFuel)
				r.With(requireManager).Put("/{id}", s.updateFuel)
			})

			// Settings registry.
			r.Route("/settings", func(r chi.Router) {
				r.Get("/", s.getSettings)
				r.Get("/export", s.exportSettings)
				r.With(requireAdmin).Post("/import", s.importSettings)
				r.With(requireManager).Post("/categories", s.addToolCategory)
				r.With(requireManager).Delete("/categories/{name}", s.removeToolCategory)
				r.With(requireManager).Post("/fuel-types", s.addFuelType)
				r.With(requireManager).Delete("/fuel-types/{name}", s.removeFuelType)
			})

			// Bulk artifacts and maintenance.
			r.Get("/export", s.exportWorkbook)
			r.With(requireManager).Post("/import", s.importWorkbook)
			r.Get("/backup", s.backupWorkbook)
			r.With(requireAdmin).Post("/restore", s.restoreWorkbook)
			r.With(requireAdmin).Delete("/data", s.clearData)
			r.Get("/stats", s.getStats)
		})
	})

	return r
}
