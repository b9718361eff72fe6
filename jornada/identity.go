/*
identity.go - Biometric identifier to employee resolution

Many device-assigned identifiers may map to one employee (re-enrolled
fingerprints, multiple devices). The resolver merges the punch streams of
all identifiers belonging to one employee and re-sorts by timestamp so the
pairing state machine sees a single chronological stream.
*/
package jornada

import (
	"context"
	"sort"
)

// Resolver groups raw punches by employee using the external identity map.
type Resolver struct {
	Identities IdentityMap
}

// GroupByEmployee buckets a mixed punch stream per employee. Punches whose
// identifier resolves to no employee are returned as unknowns for the run
// report; they are never silently dropped.
func (r *Resolver) GroupByEmployee(ctx context.Context, punches []RawPunch) (map[EmployeeID][]RawPunch, []RawPunch, error) {
	byEmployee := make(map[EmployeeID][]RawPunch)
	var unknown []RawPunch

	for _, p := range punches {
		emp, ok, err := r.Identities.EmployeeFor(ctx, p.IdentifierID)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			unknown = append(unknown, p)
			continue
		}
		byEmployee[emp] = append(byEmployee[emp], p)
	}

	for emp := range byEmployee {
		SortPunches(byEmployee[emp])
	}
	return byEmployee, unknown, nil
}

// SortPunches orders punches chronologically; ties break by identifier then
// type so merged multi-identifier streams stay deterministic.
func SortPunches(punches []RawPunch) {
	sort.SliceStable(punches, func(i, j int) bool {
		a, b := punches[i], punches[j]
		if !a.At.Equal(b.At) {
			return a.At.Before(b.At)
		}
		if a.IdentifierID != b.IdentifierID {
			return a.IdentifierID < b.IdentifierID
		}
		return a.Type < b.Type
	})
}
