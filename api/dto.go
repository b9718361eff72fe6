/*
dto.go - Data Transfer Objects for API requests and responses

DTOs decouple the internal domain model from the external API contract.
Validation happens in handlers; DTOs are pure data carriers.
*/
package api

import (
	"time"

	"github.com/angeant/sicamar-hours/jornada"
	"github.com/angeant/sicamar-hours/payroll"
)

// =============================================================================
// REQUESTS
// =============================================================================

// RecomputeRequest triggers a window recomputation. Empty employee_ids means
// the whole roster.
type RecomputeRequest struct {
	From        string   `json:"from"` // "2006-01-02"
	To          string   `json:"to"`
	EmployeeIDs []string `json:"employee_ids,omitempty"`
}

// ResolveFlagRequest records an explicit human resolution of a flag.
type ResolveFlagRequest struct {
	ResolvedBy string `json:"resolved_by"`
	Note       string `json:"note,omitempty"`
}

// =============================================================================
// RESPONSES
// =============================================================================

// RunReportDTO summarizes one recomputation run.
type RunReportDTO struct {
	RunID        string   `json:"run_id"`
	From         string   `json:"from"`
	To           string   `json:"to"`
	Employees    int      `json:"employees"`
	SessionsKept int      `json:"sessions_kept"`
	FlagsRaised  int      `json:"flags_raised"`
	Collisions   []string `json:"collisions,omitempty"`
	Notes        []string `json:"notes,omitempty"`
	Errors       []string `json:"errors,omitempty"`
	DurationMS   int64    `json:"duration_ms"`
}

func toRunReportDTO(r *jornada.RunReport) RunReportDTO {
	dto := RunReportDTO{
		RunID:        r.RunID,
		From:         r.From.String(),
		To:           r.To.String(),
		Employees:    r.Employees,
		SessionsKept: r.SessionsKept,
		FlagsRaised:  r.FlagsRaised,
		Notes:        r.Notes,
		Errors:       r.Errors,
		DurationMS:   r.Duration.Milliseconds(),
	}
	for _, c := range r.Collisions {
		dto.Collisions = append(dto.Collisions, c.String())
	}
	return dto
}

// ClassifiedHoursDTO is one day's classified output.
type ClassifiedHoursDTO struct {
	Date                 string  `json:"date"`
	Normal               float64 `json:"normal"`
	Extra50Diurnal       float64 `json:"extra50_diurnal"`
	Extra50Nocturnal     float64 `json:"extra50_nocturnal"`
	Extra100Diurnal      float64 `json:"extra100_diurnal"`
	Extra100Nocturnal    float64 `json:"extra100_nocturnal"`
	NormalDisplacedTo100 float64 `json:"normal_displaced_to_100"`
}

func toHoursDTO(rec jornada.HoursRecord) ClassifiedHoursDTO {
	h := rec.Hours
	return ClassifiedHoursDTO{
		Date:                 rec.Date.String(),
		Normal:               h.Normal.Float64(),
		Extra50Diurnal:       h.Extra50Diurnal.Float64(),
		Extra50Nocturnal:     h.Extra50Nocturnal.Float64(),
		Extra100Diurnal:      h.Extra100Diurnal.Float64(),
		Extra100Nocturnal:    h.Extra100Nocturnal.Float64(),
		NormalDisplacedTo100: h.NormalDisplacedTo100.Float64(),
	}
}

// ComplianceDTO is one day's compliance evaluation.
type ComplianceDTO struct {
	Date          string `json:"date"`
	Status        string `json:"status"`
	EntryOK       *bool  `json:"entry_ok,omitempty"`
	ExitOK        *bool  `json:"exit_ok,omitempty"`
	EntryDeltaMin *int   `json:"entry_delta_min,omitempty"`
	ExitDeltaMin  *int   `json:"exit_delta_min,omitempty"`
	AbsenceReason string `json:"absence_reason,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

func toComplianceDTO(r jornada.ComplianceResult) ComplianceDTO {
	return ComplianceDTO{
		Date:          r.Date.String(),
		Status:        string(r.Status),
		EntryOK:       r.EntryOK,
		ExitOK:        r.ExitOK,
		EntryDeltaMin: r.EntryDeltaMin,
		ExitDeltaMin:  r.ExitDeltaMin,
		AbsenceReason: r.AbsenceReason,
		Notes:         r.Notes,
	}
}

// FlagDTO is one inconsistency flag.
type FlagDTO struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Kind       string `json:"kind"`
	Detail     string `json:"detail"`
	RaisedAt   string `json:"raised_at"`
	Resolved   bool   `json:"resolved"`
	ResolvedBy string `json:"resolved_by,omitempty"`
	ResolvedAt string `json:"resolved_at,omitempty"`
}

func toFlagDTO(f jornada.InconsistencyFlag) FlagDTO {
	dto := FlagDTO{
		ID:         f.ID,
		EmployeeID: string(f.EmployeeID),
		Date:       f.Date.String(),
		Kind:       string(f.Kind),
		Detail:     f.Detail,
		RaisedAt:   f.RaisedAt.Format(time.RFC3339),
		Resolved:   f.Resolved,
		ResolvedBy: f.ResolvedBy,
	}
	if f.ResolvedAt != nil {
		dto.ResolvedAt = f.ResolvedAt.Format(time.RFC3339)
	}
	return dto
}

// ConceptDTO is one evaluated payroll concept row for one date.
type ConceptDTO struct {
	Date      string  `json:"date"`
	Concept   string  `json:"concept"`
	Hours     float64 `json:"hours"`
	Units     float64 `json:"units"`
	Nocturnal bool    `json:"nocturnal,omitempty"`
}

func toConceptDTOs(date jornada.CivilDate, amounts []payroll.ConceptAmount) []ConceptDTO {
	var out []ConceptDTO
	for _, a := range amounts {
		units, _ := a.Units.Float64()
		out = append(out, ConceptDTO{
			Date:      date.String(),
			Concept:   string(a.Concept),
			Hours:     a.Hours.Float64(),
			Units:     units,
			Nocturnal: a.Nocturnal,
		})
	}
	return out
}
