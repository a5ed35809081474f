package api

import (
	"net/http"

	"github.com/crisoull/bodega/internal/bulk"
	"github.com/crisoull/bodega/internal/model"
	"github.com/crisoull/bodega/internal/store"
)

const workbookMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// exportWorkbook handles GET /api/export. Query parameters narrow the
// tool and fuel sheets the same way the list endpoints do.
func (s *Server) exportWorkbook(w http.ResponseWriter, r *http.Request) {
	s.writeWorkbook(w,
		s.Store.ListTools(toolFilterFromQuery(r)),
		s.Store.ListFuels(fuelFilterFromQuery(r)),
	)
}

// backupWorkbook handles GET /api/backup. A backup always carries the
// complete collections, whatever the query says, because restore
// replaces the whole data set from it.
func (s *Server) backupWorkbook(w http.ResponseWriter, r *http.Request) {
	s.writeWorkbook(w,
		s.Store.ListTools(store.ToolFilter{}),
		s.Store.ListFuels(store.FuelFilter{}),
	)
}

func (s *Server) writeWorkbook(w http.ResponseWriter, tools []model.Tool, fuels []model.Fuel) {
	w.Header().Set("Content-Type", workbookMIME)
	w.Header().Set("Content-Disposition", `attachment; filename="bodega.xlsx"`)
	err := bulk.Export(w, tools, fuels, s.Store.History(), s.Store.FuelHistoryEntries())
	if err != nil {
		s.Log.Error().Err(err).Msg("workbook export failed")
	}
}

// importWorkbook handles POST /api/import. Rows merge into the current
// data: good rows land, bad rows come back as errors, blank rows are
// skipped and counted.
func (s *Server) importWorkbook(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	tools, fuels, skipped, err := bulk.Import(r.Body)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := s.Store.BulkImport(r.Context(), tools, fuels, skipped)
	if err != nil {
		storeError(w, err)
		return
	}

	claims := GetClaims(r.Context())
	s.Log.Info().
		Str("user", claims.Username).
		Int("tools", summary.ImportedTools).
		Int("fuels", summary.ImportedFuels).
		Int("skipped", summary.SkippedRows).
		Int("errors", len(summary.Errors)).
		Msg("workbook imported")
	jsonResponse(w, http.StatusOK, summary)
}

// restoreWorkbook handles POST /api/restore. Unlike import, restore
// replaces the whole data set, ids and history included.
func (s *Server) restoreWorkbook(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	tools, fuels, history, fuelHistory, err := bulk.Restore(r.Body)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.Store.ReplaceAll(r.Context(), tools, fuels, history, fuelHistory); err != nil {
		storeError(w, err)
		return
	}

	claims := GetClaims(r.Context())
	s.Log.Info().
		Str("user", claims.Username).
		Int("tools", len(tools)).
		Int("fuels", len(fuels)).
		Msg("backup restored")
	jsonResponse(w, http.StatusOK, map[string]int{
		"tools":        len(tools),
		"fuels":        len(fuels),
		"history":      len(history),
		"fuel_history": len(fuelHistory),
	})
}

// clearData handles DELETE /api/data.
func (s *Server) clearData(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.Clear(r.Context()); err != nil {
		storeError(w, err)
		return
	}

	claims := GetClaims(r.Context())
	s.Log.Warn().Str("user", claims.Username).Msg("all data cleared")
	jsonResponse(w, http.StatusOK, map[string]string{"message": "all data cleared"})
}

// getStats handles GET /api/stats.
func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, s.Store.GetStats())
}
