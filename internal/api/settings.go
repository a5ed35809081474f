package api

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/crisoull/bodega/internal/bulk"
)

type registryValueRequest struct {
	Name string `json:"name"`
}

// getSettings handles GET /api/settings.
func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, s.Store.Settings())
}

// addToolCategory handles POST /api/settings/categories.
func (s *Server) addToolCategory(w http.ResponseWriter, r *http.Request) {
	var req registryValueRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.Store.AddToolCategory(r.Context(), req.Name); err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, s.Store.Settings())
}

// removeToolCategory handles DELETE /api/settings/categories/{name}.
func (s *Server) removeToolCategory(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid category name")
		return
	}
	if err := s.Store.RemoveToolCategory(r.Context(), name); err != nil {
		storeError(w, err)
		return
	}
	s.Log.Info().Str("category", name).Msg("tool category removed")
	jsonResponse(w, http.StatusOK, s.Store.Settings())
}

// addFuelType handles POST /api/settings/fuel-types.
func (s *Server) addFuelType(w http.ResponseWriter, r *http.Request) {
	var req registryValueRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.Store.AddFuelType(r.Context(), req.Name); err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, s.Store.Settings())
}

// removeFuelType handles DELETE /api/settings/fuel-types/{name}.
func (s *Server) removeFuelType(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid fuel type name")
		return
	}
	if err := s.Store.RemoveFuelType(r.Context(), name); err != nil {
		storeError(w, err)
		return
	}
	s.Log.Info().Str("fuel_type", name).Msg("fuel type removed")
	jsonResponse(w, http.StatusOK, s.Store.Settings())
}

// exportSettings handles GET /api/settings/export.
func (s *Server) exportSettings(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="configuracion.json"`)
	if err := bulk.ExportSettings(w, s.Store.Settings()); err != nil {
		s.Log.Error().Err(err).Msg("settings export failed")
	}
}

// importSettings handles POST /api/settings/import. The artifact
// replaces the registry wholesale; missing arrays fall back to seeds.
func (s *Server) importSettings(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	settings, err := bulk.ImportSettings(r.Body)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.Store.ReplaceSettings(r.Context(), settings); err != nil {
		storeError(w, err)
		return
	}

	claims := GetClaims(r.Context())
	s.Log.Info().Str("user", claims.Username).Msg("settings imported")
	jsonResponse(w, http.StatusOK, s.Store.Settings())
}
