package replenishment

import (
	"github.com/shopspring/decimal"

	"github.com/LuanMAndrade/sistema-seja-sua/internal/domain"
)

// Keys are explicit tuples so every lookup goes through a presence check
// instead of defaulting on unknown keys.
type fabricCategoryKey struct {
	Fabric   int64
	Category int64
}

type fabricCategorySizeKey struct {
	Fabric   int64
	Category int64
	Size     domain.Size
}

type pieceSizeKey struct {
	Piece int64
	Size  domain.Size
}

// SalesBreakdown aggregates a sales window into the three-level
// fabric → category → size structure the planner distributes surplus with,
// plus per-piece per-size totals for the replenishment rule.
type SalesBreakdown struct {
	sizeTotals     map[fabricCategorySizeKey]int
	categoryTotals map[fabricCategoryKey]int
	fabricTotals   map[int64]int
	pieceTotals    map[pieceSizeKey]int
}

// NewSalesBreakdown aggregates the given outbound movements.
func NewSalesBreakdown(sales []domain.SalesMovement) *SalesBreakdown {
	b := &SalesBreakdown{
		sizeTotals:     make(map[fabricCategorySizeKey]int),
		categoryTotals: make(map[fabricCategoryKey]int),
		fabricTotals:   make(map[int64]int),
		pieceTotals:    make(map[pieceSizeKey]int),
	}
	for _, s := range sales {
		if s.Quantity <= 0 || !s.Size.Valid() {
			continue
		}
		b.sizeTotals[fabricCategorySizeKey{s.FabricID, s.CategoryID, s.Size}] += s.Quantity
		b.categoryTotals[fabricCategoryKey{s.FabricID, s.CategoryID}] += s.Quantity
		b.fabricTotals[s.FabricID] += s.Quantity
		b.pieceTotals[pieceSizeKey{s.PieceID, s.Size}] += s.Quantity
	}
	return b
}

// UnitsSold returns how many units of the given piece and size sold in the window.
func (b *SalesBreakdown) UnitsSold(pieceID int64, size domain.Size) int {
	return b.pieceTotals[pieceSizeKey{pieceID, size}]
}

// HasSales reports whether the fabric/category/size combination had any
// sales in the window. A combination without history gets no surplus
// allocation; its shares are a defined zero, not an error.
func (b *SalesBreakdown) HasSales(fabricID, categoryID int64, size domain.Size) bool {
	return b.sizeTotals[fabricCategorySizeKey{fabricID, categoryID, size}] > 0
}

// CategoryShare is categoryTotal / fabricTotal as a fraction in [0,1].
// A zero fabric total yields zero.
func (b *SalesBreakdown) CategoryShare(fabricID, categoryID int64) decimal.Decimal {
	fabricTotal := b.fabricTotals[fabricID]
	if fabricTotal == 0 {
		return decimal.Zero
	}
	catTotal := b.categoryTotals[fabricCategoryKey{fabricID, categoryID}]
	return decimal.NewFromInt(int64(catTotal)).Div(decimal.NewFromInt(int64(fabricTotal)))
}

// SizeShare is sizeTotal / categoryTotal as a fraction in [0,1].
// A zero category total yields zero.
func (b *SalesBreakdown) SizeShare(fabricID, categoryID int64, size domain.Size) decimal.Decimal {
	catTotal := b.categoryTotals[fabricCategoryKey{fabricID, categoryID}]
	if catTotal == 0 {
		return decimal.Zero
	}
	sizeTotal := b.sizeTotals[fabricCategorySizeKey{fabricID, categoryID, size}]
	return decimal.NewFromInt(int64(sizeTotal)).Div(decimal.NewFromInt(int64(catTotal)))
}
