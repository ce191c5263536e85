package replenishment

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LuanMAndrade/sistema-seja-sua/internal/domain"
)

func testFabric(id int64, rollWeight, yield, price float64) domain.Fabric {
	return domain.Fabric{
		ID:             id,
		Name:           "fabric",
		RollWeightKg:   decimal.NewFromFloat(rollWeight),
		YieldAreaPerKg: decimal.NewFromFloat(yield),
		PricePerRoll:   decimal.NewFromFloat(price),
	}
}

func testCategory(id int64, cost float64) domain.Category {
	return domain.Category{
		ID:                     id,
		Name:                   "category",
		ProductionCostPerPiece: decimal.NewFromFloat(cost),
	}
}

func testPiece(id, fabricID, categoryID int64, status domain.LaunchStatus) domain.Piece {
	return domain.Piece{
		ID:           id,
		Name:         "piece",
		FabricID:     fabricID,
		CategoryID:   categoryID,
		LaunchStatus: status,
	}
}

func sale(pieceID, fabricID, categoryID int64, size domain.Size, qty int) domain.SalesMovement {
	return domain.SalesMovement{
		PieceID:    pieceID,
		FabricID:   fabricID,
		CategoryID: categoryID,
		Size:       size,
		Quantity:   qty,
		Date:       time.Now(),
	}
}

func planFor(t *testing.T, input PlanInput) *Plan {
	t.Helper()
	plan, err := Generate(input)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	return plan
}

func pieceQuantities(t *testing.T, plan *Plan, pieceID int64) map[domain.Size]int {
	t.Helper()
	for _, p := range plan.Pieces {
		if p.PieceID == pieceID {
			return p.Quantities
		}
	}
	return nil
}

func TestGenerateLaunchedReplenishesToMinimumPlusSales(t *testing.T) {
	p := testPiece(1, 10, 20, domain.LaunchStatusLaunched)
	p.CurrentStockP = 4
	p.FabricConsumptionP = decimal.NewFromFloat(1.2)

	plan := planFor(t, PlanInput{
		Pieces:       []domain.Piece{p},
		Fabrics:      map[int64]domain.Fabric{10: testFabric(10, 20, 3, 500)},
		Categories:   map[int64]domain.Category{20: testCategory(20, 30)},
		Sales:        []domain.SalesMovement{sale(1, 10, 20, domain.SizeP, 10)},
		MinimumStock: 5,
	})

	// Target: 5 minimum + 10 sold - 4 on hand = 11 units, before surplus.
	q := pieceQuantities(t, plan, 1)
	if q == nil {
		t.Fatal("piece 1 missing from plan")
	}
	if q[domain.SizeP] < 11 {
		t.Errorf("size P quantity = %d, want at least 11", q[domain.SizeP])
	}
}

func TestGenerateStockAboveTargetYieldsNothing(t *testing.T) {
	p := testPiece(1, 10, 20, domain.LaunchStatusLaunched)
	p.CurrentStockP = 50
	p.FabricConsumptionP = decimal.NewFromFloat(1.0)

	plan := planFor(t, PlanInput{
		Pieces:       []domain.Piece{p},
		Fabrics:      map[int64]domain.Fabric{10: testFabric(10, 20, 3, 500)},
		Categories:   map[int64]domain.Category{20: testCategory(20, 30)},
		Sales:        []domain.SalesMovement{sale(1, 10, 20, domain.SizeP, 10)},
		MinimumStock: 5,
	})

	if len(plan.Pieces) != 0 {
		t.Errorf("expected empty plan, got %d piece plans", len(plan.Pieces))
	}
	if plan.TotalUnits != 0 {
		t.Errorf("TotalUnits = %d, want 0", plan.TotalUnits)
	}
	if !plan.TotalCost.IsZero() {
		t.Errorf("TotalCost = %s, want 0", plan.TotalCost)
	}
}

func TestGenerateInLaunchUsesInitialQuantities(t *testing.T) {
	p := testPiece(1, 10, 20, domain.LaunchStatusInLaunch)
	p.InitialQuantityP = 10
	p.InitialQuantityM = 15
	p.InitialQuantityG = 15
	p.InitialQuantityGG = 5
	// Stock and sales must not affect an in-launch piece.
	p.CurrentStockP = 99
	p.FabricConsumptionP = decimal.NewFromFloat(1.0)
	p.FabricConsumptionM = decimal.NewFromFloat(1.0)
	p.FabricConsumptionG = decimal.NewFromFloat(1.0)
	p.FabricConsumptionGG = decimal.NewFromFloat(1.0)

	plan := planFor(t, PlanInput{
		Pieces:       []domain.Piece{p},
		Fabrics:      map[int64]domain.Fabric{10: testFabric(10, 20, 3, 500)},
		Categories:   map[int64]domain.Category{20: testCategory(20, 30)},
		Sales:        []domain.SalesMovement{sale(1, 10, 20, domain.SizeP, 40)},
		MinimumStock: 5,
	})

	q := pieceQuantities(t, plan, 1)
	want := map[domain.Size]int{domain.SizeP: 10, domain.SizeM: 15, domain.SizeG: 15, domain.SizeGG: 5}
	for size, n := range want {
		if q[size] != n {
			t.Errorf("size %s quantity = %d, want %d", size, q[size], n)
		}
	}
	if plan.TotalUnits != 45 {
		t.Errorf("TotalUnits = %d, want 45", plan.TotalUnits)
	}
}

func TestGenerateRollCeilingAndSurplus(t *testing.T) {
	// 130 m² needed against 60 m² rolls: 3 rolls, 50 m² surplus.
	p := testPiece(1, 10, 20, domain.LaunchStatusLaunched)
	p.FabricConsumptionP = decimal.NewFromFloat(1.0)

	plan := planFor(t, PlanInput{
		Pieces:       []domain.Piece{p},
		Fabrics:      map[int64]domain.Fabric{10: testFabric(10, 20, 3, 500)},
		Categories:   map[int64]domain.Category{20: testCategory(20, 30)},
		Sales:        []domain.SalesMovement{sale(1, 10, 20, domain.SizeP, 130)},
		MinimumStock: 0,
	})

	if len(plan.Fabrics) != 1 {
		t.Fatalf("expected 1 fabric purchase, got %d", len(plan.Fabrics))
	}
	f := plan.Fabrics[0]
	if f.Rolls != 3 {
		t.Errorf("Rolls = %d, want 3", f.Rolls)
	}
	if !f.SurplusArea.Equal(decimal.NewFromInt(50)) {
		t.Errorf("SurplusArea = %s, want 50", f.SurplusArea)
	}
	if !f.Cost.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("fabric cost = %s, want 1500", f.Cost)
	}

	// Sole launched piece takes the whole surplus: 50 m² / 1.0 m² = 50 units
	// on top of the 130 replenished.
	q := pieceQuantities(t, plan, 1)
	if q[domain.SizeP] != 180 {
		t.Errorf("size P quantity = %d, want 180", q[domain.SizeP])
	}
}

func TestGenerateNoHistoryNoSurplus(t *testing.T) {
	// Needed units come from the minimum floor alone; without window sales
	// the surplus has no distribution key and stays unallocated.
	p := testPiece(1, 10, 20, domain.LaunchStatusLaunched)
	p.FabricConsumptionP = decimal.NewFromFloat(1.0)

	plan := planFor(t, PlanInput{
		Pieces:       []domain.Piece{p},
		Fabrics:      map[int64]domain.Fabric{10: testFabric(10, 20, 3, 500)},
		Categories:   map[int64]domain.Category{20: testCategory(20, 30)},
		MinimumStock: 5,
	})

	q := pieceQuantities(t, plan, 1)
	// 5 for every size; only P consumes fabric.
	if q[domain.SizeP] != 5 {
		t.Errorf("size P quantity = %d, want 5 (no surplus units)", q[domain.SizeP])
	}
	if len(plan.Fabrics) != 1 || plan.Fabrics[0].Rolls != 1 {
		t.Fatalf("expected a single 1-roll purchase, got %+v", plan.Fabrics)
	}
}

func TestGenerateNoAreaNoPurchase(t *testing.T) {
	// Every piece is fully stocked against its window sales, so no fabric
	// area is needed and no rolls (and no surplus) ever materialize.
	a := testPiece(1, 10, 20, domain.LaunchStatusLaunched)
	a.FabricConsumptionP = decimal.NewFromFloat(1.0)
	a.CurrentStockP = 100
	b := testPiece(2, 10, 21, domain.LaunchStatusLaunched)
	b.FabricConsumptionM = decimal.NewFromFloat(2.0)
	b.CurrentStockM = 100

	plan := planFor(t, PlanInput{
		Pieces: []domain.Piece{a, b},
		Fabrics: map[int64]domain.Fabric{
			10: testFabric(10, 20, 3, 500),
		},
		Categories: map[int64]domain.Category{
			20: testCategory(20, 30),
			21: testCategory(21, 30),
		},
		Sales: []domain.SalesMovement{
			sale(1, 10, 20, domain.SizeP, 60),
			sale(2, 10, 21, domain.SizeM, 40),
		},
		MinimumStock: 0,
	})

	if len(plan.Fabrics) != 0 {
		t.Fatalf("expected no fabric purchases, got %+v", plan.Fabrics)
	}
	if len(plan.Pieces) != 0 {
		t.Fatalf("expected no piece plans, got %+v", plan.Pieces)
	}
}

func TestGenerateSurplusSharesAcrossCategories(t *testing.T) {
	// One understocked piece creates the purchase; surplus then flows to
	// both launched pieces by category and size mix.
	a := testPiece(1, 10, 20, domain.LaunchStatusLaunched)
	a.FabricConsumptionP = decimal.NewFromFloat(1.0)
	b := testPiece(2, 10, 21, domain.LaunchStatusLaunched)
	b.FabricConsumptionM = decimal.NewFromFloat(1.0)
	b.CurrentStockM = 100

	plan := planFor(t, PlanInput{
		Pieces: []domain.Piece{a, b},
		Fabrics: map[int64]domain.Fabric{
			10: testFabric(10, 20, 3, 500), // 60 m² per roll
		},
		Categories: map[int64]domain.Category{
			20: testCategory(20, 30),
			21: testCategory(21, 30),
		},
		Sales: []domain.SalesMovement{
			sale(1, 10, 20, domain.SizeP, 30),
			sale(2, 10, 21, domain.SizeM, 10),
		},
		MinimumStock: 0,
	})

	// Piece 1 needs 30 m² → 1 roll of 60 m² → 30 m² surplus.
	// Category shares on fabric 10: cat 20 = 30/40, cat 21 = 10/40.
	// Piece 1 extra: 30 * 0.75 * 1.0 / 1.0 = 22.5 → rounds to 23.
	// Piece 2 extra: 30 * 0.25 * 1.0 / 1.0 = 7.5 → rounds to 8.
	qa := pieceQuantities(t, plan, 1)
	if qa[domain.SizeP] != 53 {
		t.Errorf("piece 1 size P = %d, want 53 (30 needed + 23 surplus)", qa[domain.SizeP])
	}
	qb := pieceQuantities(t, plan, 2)
	if qb[domain.SizeM] != 8 {
		t.Errorf("piece 2 size M = %d, want 8 (surplus only)", qb[domain.SizeM])
	}
}

func TestGenerateInvalidFabricReference(t *testing.T) {
	p := testPiece(1, 99, 20, domain.LaunchStatusLaunched)

	_, err := Generate(PlanInput{
		Pieces:     []domain.Piece{p},
		Fabrics:    map[int64]domain.Fabric{},
		Categories: map[int64]domain.Category{20: testCategory(20, 30)},
	})

	var refErr *InvalidReferenceError
	if !errors.As(err, &refErr) {
		t.Fatalf("expected InvalidReferenceError, got %v", err)
	}
	if refErr.Field != "fabric" || refErr.RefID != 99 {
		t.Errorf("unexpected error detail: %+v", refErr)
	}
}

func TestGenerateFabricWithoutYieldFails(t *testing.T) {
	p := testPiece(1, 10, 20, domain.LaunchStatusLaunched)
	p.FabricConsumptionP = decimal.NewFromFloat(1.0)

	_, err := Generate(PlanInput{
		Pieces:       []domain.Piece{p},
		Fabrics:      map[int64]domain.Fabric{10: testFabric(10, 0, 0, 500)},
		Categories:   map[int64]domain.Category{20: testCategory(20, 30)},
		MinimumStock: 5,
	})
	if err == nil {
		t.Fatal("expected error for fabric with no usable area per roll")
	}
}

func TestGenerateCostRollup(t *testing.T) {
	p := testPiece(1, 10, 20, domain.LaunchStatusInLaunch)
	p.InitialQuantityP = 10
	p.FabricConsumptionP = decimal.NewFromFloat(2.0)

	plan := planFor(t, PlanInput{
		Pieces:       []domain.Piece{p},
		Fabrics:      map[int64]domain.Fabric{10: testFabric(10, 10, 1, 200)}, // 10 m² per roll
		Categories:   map[int64]domain.Category{20: testCategory(20, 25)},
		MinimumStock: 0,
	})

	// 20 m² needed → 2 rolls → 400 fabric. 10 units * 25 = 250 production.
	if !plan.FabricCost.Equal(decimal.NewFromInt(400)) {
		t.Errorf("FabricCost = %s, want 400", plan.FabricCost)
	}
	if !plan.ProductionCost.Equal(decimal.NewFromInt(250)) {
		t.Errorf("ProductionCost = %s, want 250", plan.ProductionCost)
	}
	if !plan.TotalCost.Equal(decimal.NewFromInt(650)) {
		t.Errorf("TotalCost = %s, want 650", plan.TotalCost)
	}
}
