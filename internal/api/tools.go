package api

import (
	"net/http"

	"github.com/crisoull/bodega/internal/imaging"
	"github.com/crisoull/bodega/internal/store"
)

func toolFilterFromQuery(r *http.Request) store.ToolFilter {
	q := r.URL.Query()
	return store.ToolFilter{
		Query:       q.Get("q"),
		Category:    q.Get("category"),
		Status:      q.Get("status"),
		Location:    q.Get("location"),
		OverdueOnly: q.Get("overdue") == "true",
	}
}

// listTools handles GET /api/tools. Filters arrive as query params and
// never touch the stored collection.
func (s *Server) listTools(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, s.Store.ListTools(toolFilterFromQuery(r)))
}

// createTool handles POST /api/tools.
func (s *Server) createTool(w http.ResponseWriter, r *http.Request) {
	var in store.ToolInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.Photo != "" {
		photo, err := imaging.ProcessDataURL(in.Photo)
		if err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		in.Photo = photo
	}

	tool, err := s.Store.CreateTool(r.Context(), in)
	if err != nil {
		storeError(w, err)
		return
	}

	s.Log.Info().Str("tool", tool.Name).Int64("id", tool.ID).Msg("tool created")
	jsonResponse(w, http.StatusCreated, tool)
}

// getTool handles GET /api/tools/{id}.
func (s *Server) getTool(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid tool id")
		return
	}
	tool, err := s.Store.GetTool(id)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, tool)
}

// updateTool handles PUT /api/tools/{id}.
func (s *Server) updateTool(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid tool id")
		return
	}

	var in store.ToolInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.Photo != "" {
		photo, err := imaging.ProcessDataURL(in.Photo)
		if err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		in.Photo = photo
	}

	tool, err := s.Store.UpdateTool(r.Context(), id, in)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, tool)
}

// uploadToolPhoto handles PUT /api/tools/{id}/photo. The body is the
// raw image; it is downscaled and stored as a JPEG data URL.
func (s *Server) uploadToolPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid tool id")
		return
	}

	result, err := imaging.Process(http.MaxBytesReader(w, r.Body, imaging.MaxEncodedLen))
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.Store.SetToolPhoto(r.Context(), id, imaging.EncodeDataURL(result)); err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "photo updated"})
}

type deleteRequest struct {
	IDs []int64 `json:"ids"`
}

// deleteTools handles DELETE /api/tools. Accepts a batch of ids and
// reports how many were removed.
func (s *Server) deleteTools(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.IDs) == 0 {
		jsonError(w, http.StatusBadRequest, "ids required")
		return
	}

	n, err := s.Store.DeleteTools(r.Context(), req.IDs)
	if err != nil {
		storeError(w, err)
		return
	}

	claims := GetClaims(r.Context())
	s.Log.Info().Str("user", claims.Username).Int("count", n).Msg("tools deleted")
	jsonResponse(w, http.StatusOK, map[string]int{"deleted": n})
}
