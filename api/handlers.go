/*
handlers.go - HTTP handlers for the hours engine

ENDPOINTS:
  POST /api/recompute                          Recompute a window
  GET  /api/employees/{id}/hours               Classified hours in a range
  GET  /api/employees/{id}/compliance          Compliance results in a range
  GET  /api/payroll/{id}/concepts              Evaluated concept rows
  GET  /api/inconsistencies                    Inconsistency flags
  POST /api/inconsistencies/{id}/resolve       Explicit flag resolution
  GET  /api/health

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: validation errors, malformed dates or windows
  - 404: unknown flag
  - 409: flag already resolved
  - 500: internal errors
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angeant/sicamar-hours/jornada"
	"github.com/angeant/sicamar-hours/payroll"
)

// Roster lists the employees known to the identity map; the recompute
// endpoint and the scheduler fall back to it when no explicit set is given.
type Roster interface {
	ListEmployees(ctx context.Context) ([]jornada.EmployeeID, error)
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Pipeline *jornada.Pipeline
	Results  jornada.ResultReader
	Roster   Roster
	Rules    payroll.Table
}

func NewHandler(pipeline *jornada.Pipeline, results jornada.ResultReader, roster Roster) *Handler {
	return &Handler{
		Pipeline: pipeline,
		Results:  results,
		Roster:   roster,
		Rules:    payroll.DefaultTable(),
	}
}

// =============================================================================
// RECOMPUTATION
// =============================================================================

func (h *Handler) Recompute(w http.ResponseWriter, r *http.Request) {
	var req RecomputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	from, to, ok := parseWindow(w, req.From, req.To)
	if !ok {
		return
	}

	employees := make([]jornada.EmployeeID, 0, len(req.EmployeeIDs))
	for _, id := range req.EmployeeIDs {
		employees = append(employees, jornada.EmployeeID(id))
	}
	if len(employees) == 0 {
		all, err := h.Roster.ListEmployees(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		employees = all
	}

	report, err := h.Pipeline.RecomputeWindow(r.Context(), employees, from, to)
	if err != nil {
		if errors.Is(err, jornada.ErrInvalidWindow) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toRunReportDTO(report))
}

// =============================================================================
// READ ENDPOINTS
// =============================================================================

func (h *Handler) GetHours(w http.ResponseWriter, r *http.Request) {
	emp := jornada.EmployeeID(chi.URLParam(r, "id"))
	from, to, ok := parseWindow(w, r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if !ok {
		return
	}

	records, err := h.Results.HoursInRange(r.Context(), emp, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]ClassifiedHoursDTO, 0, len(records))
	for _, rec := range records {
		out = append(out, toHoursDTO(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetCompliance(w http.ResponseWriter, r *http.Request) {
	emp := jornada.EmployeeID(chi.URLParam(r, "id"))
	from, to, ok := parseWindow(w, r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if !ok {
		return
	}

	results, err := h.Results.ComplianceInRange(r.Context(), emp, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]ComplianceDTO, 0, len(results))
	for _, res := range results {
		out = append(out, toComplianceDTO(res))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetConcepts(w http.ResponseWriter, r *http.Request) {
	emp := jornada.EmployeeID(chi.URLParam(r, "id"))
	from, to, ok := parseWindow(w, r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if !ok {
		return
	}

	records, err := h.Results.HoursInRange(r.Context(), emp, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]ConceptDTO, 0)
	for _, rec := range records {
		out = append(out, toConceptDTOs(rec.Date, h.Rules.Evaluate(rec.Hours))...)
	}
	writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// INCONSISTENCY FLAGS
// =============================================================================

func (h *Handler) ListFlags(w http.ResponseWriter, r *http.Request) {
	from, to, ok := parseWindow(w, r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if !ok {
		return
	}
	unresolvedOnly := r.URL.Query().Get("unresolved") == "true"

	flags, err := h.Results.Flags(r.Context(), from, to, unresolvedOnly)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]FlagDTO, 0, len(flags))
	for _, f := range flags {
		out = append(out, toFlagDTO(f))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) ResolveFlag(w http.ResponseWriter, r *http.Request) {
	flagID := chi.URLParam(r, "id")

	var req ResolveFlagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.ResolvedBy == "" {
		writeError(w, http.StatusBadRequest, "resolved_by is required")
		return
	}

	err := h.Results.ResolveFlag(r.Context(), flagID, req.ResolvedBy, req.Note)
	switch {
	case errors.Is(err, jornada.ErrFlagNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, jornada.ErrFlagAlreadyResolved):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "resolved"})
	}
}

// =============================================================================
// HEALTH
// =============================================================================

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func parseWindow(w http.ResponseWriter, fromStr, toStr string) (jornada.CivilDate, jornada.CivilDate, bool) {
	from, err := jornada.ParseCivilDate(fromStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid 'from' date: "+err.Error())
		return jornada.CivilDate{}, jornada.CivilDate{}, false
	}
	to, err := jornada.ParseCivilDate(toStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid 'to' date: "+err.Error())
		return jornada.CivilDate{}, jornada.CivilDate{}, false
	}
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "'to' is before 'from'")
		return jornada.CivilDate{}, jornada.CivilDate{}, false
	}
	return from, to, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
