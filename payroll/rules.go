/*
Package payroll maps classified hours to payroll concepts through a
declarative rule table.

PURPOSE:
  The downstream payroll consumer historically branched per concept code
  inline. Here every concept is one row in a table - a formula descriptor
  of (source bucket, multiplier, fixed units) - and evaluation is a single
  loop. Adding a concept means adding a row, never touching control flow.

SCOPE:
  This package produces hour-times-multiplier "concept units", not money.
  Monetary valuation and the nocturnidad premium itself are applied by the
  payroll collaborator; rows sourced from nocturnal buckets are tagged so
  that collaborator can find them.
*/
package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/angeant/sicamar-hours/jornada"
)

// ConceptCode identifies one payroll concept.
type ConceptCode string

const (
	ConceptNormal          ConceptCode = "HN"   // horas normales
	ConceptExtra50Diurnal  ConceptCode = "HE50" // extra 50% diurnas
	ConceptExtra50Noct     ConceptCode = "HE50N"
	ConceptExtra100Diurnal ConceptCode = "HE100"
	ConceptExtra100Noct    ConceptCode = "HE100N"
)

// Base selects which classified bucket feeds a rule.
type Base string

const (
	BaseNormal            Base = "normal"
	BaseExtra50Diurnal    Base = "extra50_diurnal"
	BaseExtra50Nocturnal  Base = "extra50_nocturnal"
	BaseExtra100Diurnal   Base = "extra100_diurnal"
	BaseExtra100Nocturnal Base = "extra100_nocturnal"
)

// Rule is the formula descriptor for one concept code.
type Rule struct {
	Concept    ConceptCode
	Base       Base
	Multiplier decimal.Decimal
	FixedUnits decimal.Decimal // added unconditionally when the bucket is non-zero
	Nocturnal  bool            // tagged for the downstream nocturnidad premium
}

// Table is evaluated top to bottom; row order is the output order.
type Table []Rule

// ConceptAmount is one evaluated row: hours from the source bucket and the
// resulting concept units (hours x multiplier + fixed).
type ConceptAmount struct {
	Concept   ConceptCode
	Hours     jornada.Hours
	Units     decimal.Decimal
	Nocturnal bool
}

// Evaluate runs every rule against one day's classified hours. Rules whose
// source bucket is zero produce no row.
func (t Table) Evaluate(h jornada.ClassifiedHours) []ConceptAmount {
	var out []ConceptAmount
	for _, r := range t {
		hours := bucket(h, r.Base)
		if hours.IsZero() {
			continue
		}
		units := hours.Value.Mul(r.Multiplier).Add(r.FixedUnits)
		out = append(out, ConceptAmount{
			Concept:   r.Concept,
			Hours:     hours,
			Units:     units,
			Nocturnal: r.Nocturnal,
		})
	}
	return out
}

func bucket(h jornada.ClassifiedHours, b Base) jornada.Hours {
	switch b {
	case BaseNormal:
		return h.Normal
	case BaseExtra50Diurnal:
		return h.Extra50Diurnal
	case BaseExtra50Nocturnal:
		return h.Extra50Nocturnal
	case BaseExtra100Diurnal:
		return h.Extra100Diurnal
	case BaseExtra100Nocturnal:
		return h.Extra100Nocturnal
	default:
		return jornada.ZeroHours()
	}
}

// DefaultTable is the standard concept mapping: normal time at 1.0x, the 50%
// buckets at 1.5x, the 100% buckets at 2.0x.
func DefaultTable() Table {
	return Table{
		{Concept: ConceptNormal, Base: BaseNormal, Multiplier: decimal.NewFromFloat(1.0)},
		{Concept: ConceptExtra50Diurnal, Base: BaseExtra50Diurnal, Multiplier: decimal.NewFromFloat(1.5)},
		{Concept: ConceptExtra50Noct, Base: BaseExtra50Nocturnal, Multiplier: decimal.NewFromFloat(1.5), Nocturnal: true},
		{Concept: ConceptExtra100Diurnal, Base: BaseExtra100Diurnal, Multiplier: decimal.NewFromFloat(2.0)},
		{Concept: ConceptExtra100Noct, Base: BaseExtra100Nocturnal, Multiplier: decimal.NewFromFloat(2.0), Nocturnal: true},
	}
}
