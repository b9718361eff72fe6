package payroll_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angeant/sicamar-hours/jornada"
	"github.com/angeant/sicamar-hours/payroll"
)

func TestEvaluate_DefaultTable(t *testing.T) {
	// GIVEN: a day with hours in every bucket
	h := jornada.ClassifiedHours{
		Normal:            jornada.HoursOf(8),
		Extra50Diurnal:    jornada.HoursOf(1),
		Extra50Nocturnal:  jornada.HoursOf(0.5),
		Extra100Diurnal:   jornada.HoursOf(2),
		Extra100Nocturnal: jornada.HoursOf(1.5),
	}

	// WHEN: evaluated against the default table
	rows := payroll.DefaultTable().Evaluate(h)

	// THEN: one row per concept, units = hours x multiplier, in table order
	want := []struct {
		concept   payroll.ConceptCode
		units     string
		nocturnal bool
	}{
		{payroll.ConceptNormal, "8", false},
		{payroll.ConceptExtra50Diurnal, "1.5", false},
		{payroll.ConceptExtra50Noct, "0.75", true},
		{payroll.ConceptExtra100Diurnal, "4", false},
		{payroll.ConceptExtra100Noct, "3", true},
	}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i, w := range want {
		if rows[i].Concept != w.concept {
			t.Errorf("row %d concept = %s, want %s", i, rows[i].Concept, w.concept)
		}
		if !rows[i].Units.Equal(decimal.RequireFromString(w.units)) {
			t.Errorf("row %d units = %s, want %s", i, rows[i].Units, w.units)
		}
		if rows[i].Nocturnal != w.nocturnal {
			t.Errorf("row %d nocturnal = %v, want %v", i, rows[i].Nocturnal, w.nocturnal)
		}
	}
}

func TestEvaluate_ZeroBucketsProduceNoRows(t *testing.T) {
	h := jornada.ClassifiedHours{Normal: jornada.HoursOf(8)}

	rows := payroll.DefaultTable().Evaluate(h)

	if len(rows) != 1 || rows[0].Concept != payroll.ConceptNormal {
		t.Errorf("expected only the normal row, got %+v", rows)
	}
}

func TestEvaluate_FixedUnitsAddedWhenBucketNonZero(t *testing.T) {
	table := payroll.Table{
		{
			Concept:    "BONUS",
			Base:       payroll.BaseExtra100Diurnal,
			Multiplier: decimal.NewFromFloat(2),
			FixedUnits: decimal.NewFromFloat(1),
		},
	}

	rows := table.Evaluate(jornada.ClassifiedHours{Extra100Diurnal: jornada.HoursOf(3)})

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	// 3h x 2 + 1 fixed = 7
	if !rows[0].Units.Equal(decimal.NewFromInt(7)) {
		t.Errorf("units = %s, want 7", rows[0].Units)
	}

	// The fixed part must not apply when the bucket is empty.
	if rows := table.Evaluate(jornada.ClassifiedHours{}); len(rows) != 0 {
		t.Errorf("empty bucket must produce no row, got %+v", rows)
	}
}

func TestEvaluate_DisplacedMemoNotPaidDirectly(t *testing.T) {
	// NormalDisplacedTo100 is a memo; no default rule sources it.
	h := jornada.ClassifiedHours{
		Extra100Diurnal:      jornada.HoursOf(4),
		NormalDisplacedTo100: jornada.HoursOf(4),
	}

	rows := payroll.DefaultTable().Evaluate(h)

	if len(rows) != 1 || rows[0].Concept != payroll.ConceptExtra100Diurnal {
		t.Errorf("displaced memo must not generate its own row, got %+v", rows)
	}
}
