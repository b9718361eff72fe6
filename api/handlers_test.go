/*
handlers_test.go - HTTP-level tests for the API surface

Exercises the full router against the in-memory store: recomputation,
hours/compliance reads, payroll concepts and the flag lifecycle.
*/
package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angeant/sicamar-hours/api"
	"github.com/angeant/sicamar-hours/jornada"
	"github.com/angeant/sicamar-hours/jornada/store"
)

var artZone = time.FixedZone("ART", -3*60*60)

// monday is 2025-06-02.
var monday = jornada.NewCivilDate(2025, time.June, 2)

func newTestServer(t *testing.T) (*httptest.Server, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	cal := jornada.NewCalendarIn(artZone)
	pipeline := &jornada.Pipeline{
		Punches:    mem,
		Identities: mem,
		Plans:      mem,
		Holidays:   mem,
		Results:    mem,
		Cal:        cal,
		Jornada:    jornada.HoursOf(8),
		Now:        func() time.Time { return cal.At(jornada.NewCivilDate(2025, time.June, 30), 12, 0) },
	}
	h := api.NewHandler(pipeline, mem, mem)
	srv := httptest.NewServer(api.NewRouter(h))
	t.Cleanup(srv.Close)
	return srv, mem
}

func seedCleanDay(mem *store.Memory) {
	cal := jornada.NewCalendarIn(artZone)
	mem.MapIdentifier("fp-1", "emp-1")
	mem.AddPunch(jornada.RawPunch{IdentifierID: "fp-1", Type: jornada.PunchEntry, At: cal.At(monday, 8, 0)})
	mem.AddPunch(jornada.RawPunch{IdentifierID: "fp-1", Type: jornada.PunchExit, At: cal.At(monday, 17, 0)})
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// =============================================================================
// RECOMPUTE
// =============================================================================

func TestRecomputeEndpoint_ExplicitEmployees(t *testing.T) {
	srv, mem := newTestServer(t)
	seedCleanDay(mem)

	resp := postJSON(t, srv.URL+"/api/recompute", map[string]any{
		"from": monday.String(), "to": monday.String(),
		"employee_ids": []string{"emp-1"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var report struct {
		RunID        string `json:"run_id"`
		SessionsKept int    `json:"sessions_kept"`
	}
	decode(t, resp, &report)
	if report.RunID == "" || report.SessionsKept != 1 {
		t.Errorf("report = %+v", report)
	}
}

func TestRecomputeEndpoint_EmptyBodyUsesWholeRoster(t *testing.T) {
	srv, mem := newTestServer(t)
	seedCleanDay(mem)

	resp := postJSON(t, srv.URL+"/api/recompute", map[string]any{
		"from": monday.String(), "to": monday.String(),
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var report struct {
		Employees    int `json:"employees"`
		SessionsKept int `json:"sessions_kept"`
	}
	decode(t, resp, &report)
	if report.Employees != 1 || report.SessionsKept != 1 {
		t.Errorf("report = %+v", report)
	}
}

func TestRecomputeEndpoint_RejectsBadWindow(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/recompute", map[string]any{
		"from": "2025-06-05", "to": "2025-06-02",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

// =============================================================================
// READS
// =============================================================================

func recomputeDay(t *testing.T, srv *httptest.Server) {
	t.Helper()
	resp := postJSON(t, srv.URL+"/api/recompute", map[string]any{
		"from": monday.String(), "to": monday.String(),
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("recompute failed: %d", resp.StatusCode)
	}
}

func TestGetHoursEndpoint(t *testing.T) {
	srv, mem := newTestServer(t)
	seedCleanDay(mem)
	recomputeDay(t, srv)

	resp, err := http.Get(srv.URL + "/api/employees/emp-1/hours?from=" + monday.String() + "&to=" + monday.String())
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var out []struct {
		Date           string  `json:"date"`
		Normal         float64 `json:"normal"`
		Extra50Diurnal float64 `json:"extra50_diurnal"`
	}
	decode(t, resp, &out)
	if len(out) != 1 || out[0].Normal != 8 || out[0].Extra50Diurnal != 1 {
		t.Errorf("hours = %+v", out)
	}
}

func TestGetConceptsEndpoint(t *testing.T) {
	srv, mem := newTestServer(t)
	seedCleanDay(mem)
	recomputeDay(t, srv)

	resp, err := http.Get(srv.URL + "/api/payroll/emp-1/concepts?from=" + monday.String() + "&to=" + monday.String())
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var out []struct {
		Concept string  `json:"concept"`
		Units   float64 `json:"units"`
	}
	decode(t, resp, &out)
	// 8.0 normal at 1.0x and 1.0 extra50 at 1.5x.
	if len(out) != 2 || out[0].Concept != "HN" || out[0].Units != 8 || out[1].Concept != "HE50" || out[1].Units != 1.5 {
		t.Errorf("concepts = %+v", out)
	}
}

func TestGetHoursEndpoint_RejectsBadDates(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/employees/emp-1/hours?from=bogus&to=2025-06-02")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

// =============================================================================
// FLAG LIFECYCLE OVER HTTP
// =============================================================================

func TestFlagEndpoints_ListAndResolve(t *testing.T) {
	// GIVEN: an open entry producing a missing-exit flag
	srv, mem := newTestServer(t)
	cal := jornada.NewCalendarIn(artZone)
	mem.MapIdentifier("fp-1", "emp-1")
	mem.AddPunch(jornada.RawPunch{IdentifierID: "fp-1", Type: jornada.PunchEntry, At: cal.At(monday, 9, 0)})
	recomputeDay(t, srv)

	resp, err := http.Get(srv.URL + "/api/inconsistencies?from=" + monday.String() + "&to=" + monday.String() + "&unresolved=true")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	var flags []struct {
		ID   string `json:"id"`
		Kind string `json:"kind"`
	}
	decode(t, resp, &flags)
	if len(flags) != 1 || flags[0].Kind != string(jornada.FlagMissingExit) {
		t.Fatalf("flags = %+v", flags)
	}

	// WHEN: resolving it
	resolve := postJSON(t, srv.URL+"/api/inconsistencies/"+flags[0].ID+"/resolve", map[string]string{
		"resolved_by": "hr", "note": "forgot to punch out",
	})
	resolve.Body.Close()
	if resolve.StatusCode != http.StatusOK {
		t.Fatalf("resolve status = %d", resolve.StatusCode)
	}

	// THEN: resolving again conflicts, and an unknown id is 404
	again := postJSON(t, srv.URL+"/api/inconsistencies/"+flags[0].ID+"/resolve", map[string]string{"resolved_by": "hr"})
	again.Body.Close()
	if again.StatusCode != http.StatusConflict {
		t.Errorf("second resolve status = %d, want 409", again.StatusCode)
	}

	missing := postJSON(t, srv.URL+"/api/inconsistencies/nope/resolve", map[string]string{"resolved_by": "hr"})
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("unknown flag status = %d, want 404", missing.StatusCode)
	}
}

func TestResolveFlag_RequiresResolvedBy(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/inconsistencies/some-id/resolve", map[string]string{"note": "no actor"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}
