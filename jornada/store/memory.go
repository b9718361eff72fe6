// Package store provides in-memory implementations of the jornada
// repository interfaces, for tests and development.
package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/angeant/sicamar-hours/jornada"
)

// =============================================================================
// MEMORY - Implements every jornada repository interface
// =============================================================================

type derivedKey struct {
	Employee jornada.EmployeeID
	Date     jornada.CivilDate
}

type Memory struct {
	mu sync.RWMutex

	punches    []jornada.RawPunch // kept sorted by timestamp
	identities map[jornada.IdentifierID]jornada.EmployeeID
	plans      map[derivedKey]jornada.PlannedShift
	holidays   map[jornada.CivilDate]bool // value = workable

	sessions   map[derivedKey]jornada.WorkSession
	hours      map[derivedKey]jornada.ClassifiedHours
	compliance map[derivedKey]jornada.ComplianceResult
	flags      []jornada.InconsistencyFlag
}

func NewMemory() *Memory {
	return &Memory{
		identities: make(map[jornada.IdentifierID]jornada.EmployeeID),
		plans:      make(map[derivedKey]jornada.PlannedShift),
		holidays:   make(map[jornada.CivilDate]bool),
		sessions:   make(map[derivedKey]jornada.WorkSession),
		hours:      make(map[derivedKey]jornada.ClassifiedHours),
		compliance: make(map[derivedKey]jornada.ComplianceResult),
	}
}

// =============================================================================
// SEEDING HELPERS
// =============================================================================

func (m *Memory) AddPunch(p jornada.RawPunch) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := sort.Search(len(m.punches), func(i int) bool { return m.punches[i].At.After(p.At) })
	m.punches = append(m.punches, jornada.RawPunch{})
	copy(m.punches[i+1:], m.punches[i:])
	m.punches[i] = p
}

func (m *Memory) MapIdentifier(id jornada.IdentifierID, emp jornada.EmployeeID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identities[id] = emp
}

func (m *Memory) AddPlan(p jornada.PlannedShift) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans[derivedKey{p.EmployeeID, p.Date}] = p
}

// AddHoliday records a holiday; workable marks a dia no laborable that pays
// ordinary rules.
func (m *Memory) AddHoliday(d jornada.CivilDate, workable bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holidays[d] = workable
}

// =============================================================================
// PUNCH READER - Cursor pagination over the sorted punch list
// =============================================================================

func (m *Memory) ReadPunches(_ context.Context, ids []jornada.IdentifierID, from, to time.Time, cursor string, limit int) (jornada.PunchPage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil {
			return jornada.PunchPage{}, fmt.Errorf("bad cursor %q: %w", cursor, err)
		}
		offset = n
	}

	wanted := make(map[jornada.IdentifierID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	var page jornada.PunchPage
	seen := 0
	for i, p := range m.punches {
		if !wanted[p.IdentifierID] || p.At.Before(from) || !p.At.Before(to) {
			continue
		}
		seen++
		if seen <= offset {
			continue
		}
		page.Punches = append(page.Punches, p)
		if len(page.Punches) == limit {
			// More matches may follow this position.
			if m.hasMore(wanted, from, to, i+1) {
				page.NextCursor = strconv.Itoa(offset + limit)
			}
			break
		}
	}
	return page, nil
}

func (m *Memory) hasMore(wanted map[jornada.IdentifierID]bool, from, to time.Time, start int) bool {
	for _, p := range m.punches[start:] {
		if wanted[p.IdentifierID] && !p.At.Before(from) && p.At.Before(to) {
			return true
		}
	}
	return false
}

// =============================================================================
// IDENTITY MAP
// =============================================================================

func (m *Memory) IdentifiersFor(_ context.Context, employees []jornada.EmployeeID) (map[jornada.EmployeeID][]jornada.IdentifierID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[jornada.EmployeeID][]jornada.IdentifierID)
	for _, emp := range employees {
		out[emp] = nil
	}
	for id, emp := range m.identities {
		if _, ok := out[emp]; ok {
			out[emp] = append(out[emp], id)
		}
	}
	for emp := range out {
		ids := out[emp]
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
	return out, nil
}

func (m *Memory) EmployeeFor(_ context.Context, id jornada.IdentifierID) (jornada.EmployeeID, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	emp, ok := m.identities[id]
	return emp, ok, nil
}

// ListEmployees returns every employee with at least one mapped identifier.
func (m *Memory) ListEmployees(_ context.Context) ([]jornada.EmployeeID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[jornada.EmployeeID]bool)
	var out []jornada.EmployeeID
	for _, emp := range m.identities {
		if !seen[emp] {
			seen[emp] = true
			out = append(out, emp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// =============================================================================
// PLAN READER / HOLIDAY SET
// =============================================================================

func (m *Memory) PlansInRange(_ context.Context, employees []jornada.EmployeeID, from, to jornada.CivilDate) ([]jornada.PlannedShift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	wanted := make(map[jornada.EmployeeID]bool, len(employees))
	for _, e := range employees {
		wanted[e] = true
	}
	var out []jornada.PlannedShift
	for k, p := range m.plans {
		if wanted[k.Employee] && k.Date.AfterOrEqual(from) && k.Date.BeforeOrEqual(to) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EmployeeID != out[j].EmployeeID {
			return out[i].EmployeeID < out[j].EmployeeID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func (m *Memory) HolidayOn(_ context.Context, d jornada.CivilDate) (bool, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	workable, ok := m.holidays[d]
	return ok, workable, nil
}

// =============================================================================
// RESULT STORE - Idempotent upserts keyed by (employee, work date)
// =============================================================================

func (m *Memory) UpsertSession(_ context.Context, s jornada.WorkSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[derivedKey{s.EmployeeID, s.WorkDate}] = s
	return nil
}

func (m *Memory) UpsertHours(_ context.Context, emp jornada.EmployeeID, date jornada.CivilDate, h jornada.ClassifiedHours) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hours[derivedKey{emp, date}] = h
	return nil
}

func (m *Memory) UpsertCompliance(_ context.Context, r jornada.ComplianceResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.compliance[derivedKey{r.EmployeeID, r.Date}] = r
	return nil
}

func (m *Memory) DeleteDerived(_ context.Context, employees []jornada.EmployeeID, from, to jornada.CivilDate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	wanted := make(map[jornada.EmployeeID]bool, len(employees))
	for _, e := range employees {
		wanted[e] = true
	}
	inWindow := func(k derivedKey) bool {
		return wanted[k.Employee] && k.Date.AfterOrEqual(from) && k.Date.BeforeOrEqual(to)
	}
	for k := range m.sessions {
		if inWindow(k) {
			delete(m.sessions, k)
		}
	}
	for k := range m.hours {
		if inWindow(k) {
			delete(m.hours, k)
		}
	}
	for k := range m.compliance {
		if inWindow(k) {
			delete(m.compliance, k)
		}
	}
	// Flags are durable review signals; reruns never delete them.
	return nil
}

func (m *Memory) RaiseFlag(_ context.Context, f jornada.InconsistencyFlag) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.flags {
		if !existing.Resolved &&
			existing.EmployeeID == f.EmployeeID &&
			existing.Date == f.Date &&
			existing.Kind == f.Kind {
			return nil // identical unresolved condition already flagged
		}
	}
	m.flags = append(m.flags, f)
	return nil
}

// =============================================================================
// RESULT READER
// =============================================================================

func (m *Memory) HoursInRange(_ context.Context, emp jornada.EmployeeID, from, to jornada.CivilDate) ([]jornada.HoursRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []jornada.HoursRecord
	for k, h := range m.hours {
		if k.Employee == emp && k.Date.AfterOrEqual(from) && k.Date.BeforeOrEqual(to) {
			out = append(out, jornada.HoursRecord{EmployeeID: emp, Date: k.Date, Hours: h})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *Memory) ComplianceInRange(_ context.Context, emp jornada.EmployeeID, from, to jornada.CivilDate) ([]jornada.ComplianceResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []jornada.ComplianceResult
	for k, r := range m.compliance {
		if k.Employee == emp && k.Date.AfterOrEqual(from) && k.Date.BeforeOrEqual(to) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *Memory) Flags(_ context.Context, from, to jornada.CivilDate, unresolvedOnly bool) ([]jornada.InconsistencyFlag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []jornada.InconsistencyFlag
	for _, f := range m.flags {
		if f.Date.Before(from) || f.Date.After(to) {
			continue
		}
		if unresolvedOnly && f.Resolved {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) ResolveFlag(_ context.Context, flagID, resolvedBy, note string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.flags {
		if m.flags[i].ID != flagID {
			continue
		}
		if m.flags[i].Resolved {
			return jornada.ErrFlagAlreadyResolved
		}
		now := time.Now()
		m.flags[i].Resolved = true
		m.flags[i].ResolvedBy = resolvedBy
		m.flags[i].ResolvedAt = &now
		if note != "" {
			m.flags[i].Detail = m.flags[i].Detail + "; resolved: " + note
		}
		return nil
	}
	return jornada.ErrFlagNotFound
}

// Session returns the authoritative session for a key (test helper).
func (m *Memory) Session(emp jornada.EmployeeID, date jornada.CivilDate) (jornada.WorkSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[derivedKey{emp, date}]
	return s, ok
}
