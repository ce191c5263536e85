package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LuanMAndrade/sistema-seja-sua/internal/domain"
	"github.com/LuanMAndrade/sistema-seja-sua/internal/replenishment"
)

func TestWritePlanCSV(t *testing.T) {
	plan := &replenishment.Plan{
		Pieces: []replenishment.PiecePlan{
			{
				PieceID:   1,
				PieceName: "Vestido Midi",
				Quantities: map[domain.Size]int{
					domain.SizeP: 11,
					domain.SizeM: 4,
				},
				Units: 15,
			},
		},
		Fabrics: []replenishment.FabricPurchase{
			{
				FabricID:    10,
				FabricName:  "Linho Bege",
				AreaNeeded:  decimal.NewFromInt(130),
				AreaPerRoll: decimal.NewFromInt(60),
				Rolls:       3,
				SurplusArea: decimal.NewFromInt(50),
				Cost:        decimal.NewFromInt(1500),
			},
		},
		FabricCost:     decimal.NewFromInt(1500),
		ProductionCost: decimal.NewFromInt(450),
		TotalCost:      decimal.NewFromInt(1950),
		TotalUnits:     15,
		WindowDays:     120,
		GeneratedAt:    time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	if err := WritePlanCSV(&buf, plan); err != nil {
		t.Fatalf("WritePlanCSV: %v", err)
	}
	out := buf.String()

	wantLines := []string{
		"piece_id,piece_name,P,M,G,GG,units",
		"1,Vestido Midi,11,4,0,0,15",
		"fabric_id,fabric_name,area_needed_m2,area_per_roll_m2,rolls,surplus_area_m2,cost",
		"10,Linho Bege,130.00,60.00,3,50.00,1500.00",
		"total_cost,1950.00",
		"window_days,120",
		"generated_at,2026-08-01 10:00:00",
	}
	for _, line := range wantLines {
		if !strings.Contains(out, line) {
			t.Errorf("output missing line %q\noutput:\n%s", line, out)
		}
	}
}

func TestWritePlanCSVEmptyPlan(t *testing.T) {
	plan := &replenishment.Plan{
		FabricCost:     decimal.Zero,
		ProductionCost: decimal.Zero,
		TotalCost:      decimal.Zero,
		WindowDays:     120,
		GeneratedAt:    time.Now(),
	}

	var buf bytes.Buffer
	if err := WritePlanCSV(&buf, plan); err != nil {
		t.Fatalf("WritePlanCSV on empty plan: %v", err)
	}
	if !strings.Contains(buf.String(), "total_units,0") {
		t.Errorf("empty plan output missing totals:\n%s", buf.String())
	}
}
