// Package replenishment computes production targets and fabric purchase
// plans from a trailing sales window. The computation is pure: it takes an
// in-memory snapshot and returns a report, with no side effects.
package replenishment

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/LuanMAndrade/sistema-seja-sua/internal/domain"
)

// DefaultWindowDays is the trailing sales window used when none is configured.
const DefaultWindowDays = 120

// DefaultMinimumStock is the per-size safety floor for launched pieces.
const DefaultMinimumStock = 5

type rollPlan struct {
	areaNeeded  decimal.Decimal
	areaPerRoll decimal.Decimal
	rolls       int64
	surplus     decimal.Decimal
}

// Generate computes the full replenishment plan for the given snapshot.
//
// Launched pieces are replenished to minimum stock plus window sales, net of
// current stock; in-launch pieces are replenished to their launch quantities.
// Fabric is purchased in whole rolls; the surplus area from rounding up is
// redistributed as extra units across launched pieces of the same fabric,
// proportional to the historical category and size sales mix. Surplus unit
// counts are rounded half away from zero.
func Generate(input PlanInput) (*Plan, error) {
	if input.MinimumStock < 0 {
		return nil, fmt.Errorf("minimum stock must not be negative, got %d", input.MinimumStock)
	}
	minStock := input.MinimumStock

	for i := range input.Pieces {
		p := &input.Pieces[i]
		if _, ok := input.Fabrics[p.FabricID]; !ok {
			return nil, &InvalidReferenceError{PieceID: p.ID, Field: "fabric", RefID: p.FabricID}
		}
		if _, ok := input.Categories[p.CategoryID]; !ok {
			return nil, &InvalidReferenceError{PieceID: p.ID, Field: "category", RefID: p.CategoryID}
		}
	}

	breakdown := NewSalesBreakdown(input.Sales)

	// Step 2: per-piece target quantities, accumulating fabric area.
	needed := make(map[int64]map[domain.Size]int)
	fabricArea := make(map[int64]decimal.Decimal)
	for i := range input.Pieces {
		p := &input.Pieces[i]
		for _, size := range domain.Sizes {
			var n int
			if p.LaunchStatus == domain.LaunchStatusInLaunch {
				n = p.InitialQuantity(size)
			} else {
				target := minStock + breakdown.UnitsSold(p.ID, size)
				n = target - p.CurrentStock(size)
				if n < 0 {
					n = 0
				}
			}
			if n == 0 {
				continue
			}
			if needed[p.ID] == nil {
				needed[p.ID] = make(map[domain.Size]int)
			}
			needed[p.ID][size] = n
			area := p.FabricConsumption(size).Mul(decimal.NewFromInt(int64(n)))
			fabricArea[p.FabricID] = fabricArea[p.FabricID].Add(area)
		}
	}

	// Step 3: whole rolls per fabric, surplus from the ceiling.
	rolls := make(map[int64]rollPlan)
	for _, fabricID := range sortedKeys(fabricArea) {
		area := fabricArea[fabricID]
		if !area.IsPositive() {
			continue
		}
		fabric := input.Fabrics[fabricID]
		areaPerRoll := fabric.AreaPerRoll()
		if !areaPerRoll.IsPositive() {
			return nil, fmt.Errorf("fabric %d (%s) yields no usable area per roll", fabricID, fabric.Name)
		}
		count := area.Div(areaPerRoll).Ceil().IntPart()
		available := areaPerRoll.Mul(decimal.NewFromInt(count))
		rolls[fabricID] = rollPlan{
			areaNeeded:  area,
			areaPerRoll: areaPerRoll,
			rolls:       count,
			surplus:     available.Sub(area),
		}
	}

	// Step 4: redistribute surplus across launched pieces of the same
	// fabric using the historical sales mix.
	extra := make(map[int64]map[domain.Size]int)
	for _, fabricID := range sortedKeys(fabricArea) {
		plan, ok := rolls[fabricID]
		if !ok || !plan.surplus.IsPositive() {
			continue
		}
		for i := range input.Pieces {
			p := &input.Pieces[i]
			if p.FabricID != fabricID || p.LaunchStatus != domain.LaunchStatusLaunched {
				continue
			}
			catShare := breakdown.CategoryShare(fabricID, p.CategoryID)
			if !catShare.IsPositive() {
				continue
			}
			for _, size := range domain.Sizes {
				if !breakdown.HasSales(fabricID, p.CategoryID, size) {
					continue
				}
				consumption := p.FabricConsumption(size)
				if !consumption.IsPositive() {
					continue
				}
				sizeShare := breakdown.SizeShare(fabricID, p.CategoryID, size)
				units := plan.surplus.Mul(catShare).Mul(sizeShare).Div(consumption).Round(0).IntPart()
				if units <= 0 {
					continue
				}
				if extra[p.ID] == nil {
					extra[p.ID] = make(map[domain.Size]int)
				}
				extra[p.ID][size] += int(units)
			}
		}
	}

	// Merge needed + surplus and roll up costs.
	pieceIndex := make(map[int64]*domain.Piece, len(input.Pieces))
	for i := range input.Pieces {
		pieceIndex[input.Pieces[i].ID] = &input.Pieces[i]
	}

	plan := &Plan{
		Pieces:         make([]PiecePlan, 0, len(needed)),
		Fabrics:        make([]FabricPurchase, 0, len(rolls)),
		FabricCost:     decimal.Zero,
		ProductionCost: decimal.Zero,
	}

	planned := make(map[int64]struct{}, len(needed)+len(extra))
	for id := range needed {
		planned[id] = struct{}{}
	}
	for id := range extra {
		planned[id] = struct{}{}
	}

	pieceIDs := make([]int64, 0, len(planned))
	for id := range planned {
		pieceIDs = append(pieceIDs, id)
	}
	sort.Slice(pieceIDs, func(i, j int) bool { return pieceIDs[i] < pieceIDs[j] })

	for _, id := range pieceIDs {
		p := pieceIndex[id]
		quantities := make(map[domain.Size]int)
		units := 0
		for _, size := range domain.Sizes {
			q := needed[id][size] + extra[id][size]
			if q > 0 {
				quantities[size] = q
				units += q
			}
		}
		if units == 0 {
			continue
		}
		category := input.Categories[p.CategoryID]
		plan.ProductionCost = plan.ProductionCost.Add(
			category.ProductionCostPerPiece.Mul(decimal.NewFromInt(int64(units))))
		plan.TotalUnits += units
		plan.Pieces = append(plan.Pieces, PiecePlan{
			PieceID:    id,
			PieceName:  p.Name,
			Quantities: quantities,
			Units:      units,
		})
	}

	for _, fabricID := range sortedKeys(fabricArea) {
		rp, ok := rolls[fabricID]
		if !ok {
			continue
		}
		fabric := input.Fabrics[fabricID]
		cost := fabric.PricePerRoll.Mul(decimal.NewFromInt(rp.rolls))
		plan.FabricCost = plan.FabricCost.Add(cost)
		plan.Fabrics = append(plan.Fabrics, FabricPurchase{
			FabricID:    fabricID,
			FabricName:  fabric.Name,
			AreaNeeded:  rp.areaNeeded,
			AreaPerRoll: rp.areaPerRoll,
			Rolls:       int(rp.rolls),
			SurplusArea: rp.surplus,
			Cost:        cost,
		})
	}

	plan.TotalCost = plan.FabricCost.Add(plan.ProductionCost)
	return plan, nil
}

func sortedKeys(m map[int64]decimal.Decimal) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
