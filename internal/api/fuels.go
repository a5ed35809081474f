package api

import (
	"net/http"

	"github.com/crisoull/bodega/internal/imaging"
	"github.com/crisoull/bodega/internal/store"
)

func fuelFilterFromQuery(r *http.Request) store.FuelFilter {
	q := r.URL.Query()
	return store.FuelFilter{
		Query: q.Get("q"),
		Type:  q.Get("type"),
	}
}

// listFuels handles GET /api/fuels.
func (s *Server) listFuels(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, s.Store.ListFuels(fuelFilterFromQuery(r)))
}

// createFuel handles POST /api/fuels.
func (s *Server) createFuel(w http.ResponseWriter, r *http.Request) {
	var in store.FuelInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.Receipt != "" {
		receipt, err := imaging.ProcessDataURL(in.Receipt)
		if err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		in.Receipt = receipt
	}

	fuel, err := s.Store.CreateFuel(r.Context(), in)
	if err != nil {
		storeError(w, err)
		return
	}

	s.Log.Info().Str("responsible", fuel.Name).Int64("id", fuel.ID).Msg("fuel purchase created")
	jsonResponse(w, http.StatusCreated, fuel)
}

// getFuel handles GET /api/fuels/{id}.
func (s *Server) getFuel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid fuel id")
		return
	}
	fuel, err := s.Store.GetFuel(id)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, fuel)
}

// updateFuel handles PUT /api/fuels/{id}.
func (s *Server) updateFuel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid fuel id")
		return
	}

	var in store.FuelInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.Receipt != "" {
		receipt, err := imaging.ProcessDataURL(in.Receipt)
		if err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		in.Receipt = receipt
	}

	fuel, err := s.Store.UpdateFuel(r.Context(), id, in)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, fuel)
}

// deleteFuels handles DELETE /api/fuels.
func (s *Server) deleteFuels(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.IDs) == 0 {
		jsonError(w, http.StatusBadRequest, "ids required")
		return
	}

	n, err := s.Store.DeleteFuels(r.Context(), req.IDs)
	if err != nil {
		storeError(w, err)
		return
	}

	claims := GetClaims(r.Context())
	s.Log.Info().Str("user", claims.Username).Int("count", n).Msg("fuel purchases deleted")
	jsonResponse(w, http.StatusOK, map[string]int{"deleted": n})
}

// listFuelHistory handles GET /api/fuels/history.
func (s *Server) listFuelHistory(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, s.Store.FuelHistoryEntries())
}
