package api

import (
	"errors"
	"net/http"

	"github.com/crisoull/bodega/internal/model"
	"github.com/crisoull/bodega/internal/scan"
	"github.com/crisoull/bodega/internal/store"
)

// loanTool handles POST /api/tools/{id}/loan.
func (s *Server) loanTool(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid tool id")
		return
	}

	var in store.LoanInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := s.Store.Loan(r.Context(), id, in)
	if err != nil {
		storeError(w, err)
		return
	}

	s.Log.Info().Int64("tool_id", id).Str("responsible", entry.Responsible).Msg("tool loaned")
	jsonResponse(w, http.StatusCreated, entry)
}

// returnTool handles POST /api/tools/{id}/return.
func (s *Server) returnTool(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid tool id")
		return
	}

	var in store.ReturnInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := s.Store.Return(r.Context(), id, in)
	if err != nil {
		storeError(w, err)
		return
	}

	s.Log.Info().Int64("tool_id", id).Str("status", entry.Status).Msg("tool returned")
	jsonResponse(w, http.StatusCreated, entry)
}

// listHistory handles GET /api/history.
func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, s.Store.History())
}

// listOverdue handles GET /api/tools/overdue.
func (s *Server) listOverdue(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, s.Store.Overdue())
}

type scanRequest struct {
	Payload     string `json:"payload"`
	Responsible string `json:"responsible"`
}

type scanResponse struct {
	Tool   *model.Tool     `json:"tool"`
	Action string          `json:"action,omitempty"`
	Entry  *model.Movement `json:"entry,omitempty"`
}

// handleScan handles POST /api/scan. A scanned label resolves to a
// tool by name; a loaned tool is returned, anything else is loaned
// out. Without a responsible the endpoint only looks the tool up.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payload, ok := scan.Parse(req.Payload)
	if !ok {
		jsonError(w, http.StatusBadRequest, "unrecognized scan payload")
		return
	}

	name := payload.Name
	if name == "" {
		name = payload.SerialNumber
	}
	tool, err := s.Store.FindToolByName(name)
	if errors.Is(err, store.ErrNotFound) && payload.Name != "" {
		tool, err = s.Store.FindToolByName(payload.SerialNumber)
	}
	if errors.Is(err, store.ErrNotFound) {
		// Echo the parsed fields so the client can pre-fill a
		// registration form for the unknown tool.
		jsonResponse(w, http.StatusNotFound, map[string]any{
			"error":   "tool not registered",
			"payload": payload,
		})
		return
	}
	if err != nil {
		storeError(w, err)
		return
	}

	if req.Responsible == "" {
		jsonResponse(w, http.StatusOK, scanResponse{Tool: tool})
		return
	}

	var entry *model.Movement
	var action string
	if tool.Status == model.StatusLoaned {
		action = model.ActionReturn
		entry, err = s.Store.Return(r.Context(), tool.ID, store.ReturnInput{Responsible: req.Responsible})
	} else {
		action = model.ActionLoan
		entry, err = s.Store.Loan(r.Context(), tool.ID, store.LoanInput{Responsible: req.Responsible})
	}
	if err != nil {
		storeError(w, err)
		return
	}

	tool, _ = s.Store.GetTool(tool.ID)
	s.Log.Info().Str("action", action).Str("tool", tool.Name).Msg("scan processed")
	jsonResponse(w, http.StatusOK, scanResponse{Tool: tool, Action: action, Entry: entry})
}
