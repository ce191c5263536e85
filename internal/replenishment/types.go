package replenishment

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LuanMAndrade/sistema-seja-sua/internal/domain"
)

// PlanInput is the in-memory snapshot the planner works from. All of it is
// read in one consistent view; Generate never goes back to storage.
type PlanInput struct {
	// Pieces flagged active for replenishment.
	Pieces []domain.Piece
	// Fabrics and Categories referenced by those pieces, keyed by ID.
	Fabrics    map[int64]domain.Fabric
	Categories map[int64]domain.Category
	// Sales holds every outbound movement inside the trailing window,
	// across the whole catalog (not only active pieces).
	Sales []domain.SalesMovement
	// MinimumStock is the per-size safety floor for launched pieces.
	MinimumStock int
}

// PiecePlan is the final production target for one piece: replenishment
// quantities plus any surplus allocation, only sizes with quantity > 0.
type PiecePlan struct {
	PieceID    int64                `json:"piece_id"`
	PieceName  string               `json:"piece_name"`
	Quantities map[domain.Size]int  `json:"quantities"`
	Units      int                  `json:"units"`
}

// FabricPurchase is the purchase line for one fabric.
type FabricPurchase struct {
	FabricID    int64           `json:"fabric_id"`
	FabricName  string          `json:"fabric_name"`
	AreaNeeded  decimal.Decimal `json:"area_needed"`
	AreaPerRoll decimal.Decimal `json:"area_per_roll"`
	Rolls       int             `json:"rolls"`
	SurplusArea decimal.Decimal `json:"surplus_area"`
	Cost        decimal.Decimal `json:"cost"`
}

// Plan is the full replenishment report. It is a pure computation result;
// whether and how to act on it is the caller's concern.
type Plan struct {
	Pieces  []PiecePlan      `json:"pieces"`
	Fabrics []FabricPurchase `json:"fabrics"`

	FabricCost     decimal.Decimal `json:"fabric_cost"`
	ProductionCost decimal.Decimal `json:"production_cost"`
	TotalCost      decimal.Decimal `json:"total_cost"`
	TotalUnits     int             `json:"total_units"`

	WindowDays  int       `json:"window_days"`
	GeneratedAt time.Time `json:"generated_at"`
}

// InvalidReferenceError reports an active piece pointing at a fabric or
// category that does not exist in the snapshot. Planning cannot continue
// for such input: skipping the piece would silently corrupt fabric totals.
type InvalidReferenceError struct {
	PieceID int64
	Field   string
	RefID   int64
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("piece %d references unknown %s %d", e.PieceID, e.Field, e.RefID)
}
