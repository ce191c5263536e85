// internal/domain/models.go
package domain

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// LaunchStatus governs which replenishment rule applies to a piece.
type LaunchStatus string

const (
	// LaunchStatusInLaunch marks a piece still in its launch window; it has
	// no sales history worth reasoning about, so replenishment targets the
	// original launch quantities.
	LaunchStatusInLaunch LaunchStatus = "in_launch"
	// LaunchStatusLaunched marks a piece replenished from its sales window.
	LaunchStatusLaunched LaunchStatus = "launched"
)

// CollectionStatus tracks a collection through the production pipeline.
type CollectionStatus string

const (
	CollectionAwaitingModeler    CollectionStatus = "awaiting_modeler"
	CollectionAwaitingPilot      CollectionStatus = "awaiting_pilot"
	CollectionAwaitingProduction CollectionStatus = "awaiting_production"
	CollectionReleased           CollectionStatus = "released"
)

// Collection groups pieces launched together.
type Collection struct {
	ID                 int64            `json:"id" db:"id"`
	Name               string           `json:"name" db:"name"`
	Status             CollectionStatus `json:"status" db:"status"`
	ExpectedLaunchDate sql.NullTime     `json:"expected_launch_date" db:"expected_launch_date"`
	ActualLaunchDate   sql.NullTime     `json:"actual_launch_date" db:"actual_launch_date"`
	CreatedAt          time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at" db:"updated_at"`
}

// LaunchDate returns the actual launch date when set, otherwise the expected one.
func (c *Collection) LaunchDate() (time.Time, bool) {
	if c.ActualLaunchDate.Valid {
		return c.ActualLaunchDate.Time, true
	}
	if c.ExpectedLaunchDate.Valid {
		return c.ExpectedLaunchDate.Time, true
	}
	return time.Time{}, false
}

// Fabric is a purchasable material. Fabric is bought in fixed-weight rolls;
// the yield rate converts roll weight into usable area.
type Fabric struct {
	ID             int64           `json:"id" db:"id"`
	Name           string          `json:"name" db:"name"`
	Color          string          `json:"color" db:"color"`
	SupplierID     int64           `json:"supplier_id" db:"supplier_id"`
	RollWeightKg   decimal.Decimal `json:"roll_weight_kg" db:"roll_weight_kg"`
	YieldAreaPerKg decimal.Decimal `json:"yield_area_per_kg" db:"yield_area_per_kg"`
	PricePerRoll   decimal.Decimal `json:"price_per_roll" db:"price_per_roll"`
}

// AreaPerRoll is the usable area (m²) obtained from one roll.
func (f *Fabric) AreaPerRoll() decimal.Decimal {
	return f.RollWeightKg.Mul(f.YieldAreaPerKg)
}

// Category is a piece category with its unit production cost.
type Category struct {
	ID                     int64           `json:"id" db:"id"`
	Name                   string          `json:"name" db:"name"`
	ProductionCostPerPiece decimal.Decimal `json:"production_cost_per_piece" db:"production_cost_per_piece"`
}

// Piece is a catalog item inside a collection. Stock fields are written only
// by the reconciliation engine; everything else belongs to catalog management.
type Piece struct {
	ID           int64        `json:"id" db:"id"`
	Name         string       `json:"name" db:"name"`
	CollectionID int64        `json:"collection_id" db:"collection_id"`
	CategoryID   int64        `json:"category_id" db:"category_id"`
	FabricID     int64        `json:"fabric_id" db:"fabric_id"`
	LaunchStatus LaunchStatus `json:"launch_status" db:"launch_status"`

	ActiveForReplenishment bool `json:"active_for_replenishment" db:"active_for_replenishment"`

	SalePrice decimal.Decimal `json:"sale_price" db:"sale_price"`
	TotalCost decimal.Decimal `json:"total_cost" db:"total_cost"`

	// Fabric consumption per produced unit, in m².
	FabricConsumptionP  decimal.Decimal `json:"fabric_consumption_p" db:"fabric_consumption_p"`
	FabricConsumptionM  decimal.Decimal `json:"fabric_consumption_m" db:"fabric_consumption_m"`
	FabricConsumptionG  decimal.Decimal `json:"fabric_consumption_g" db:"fabric_consumption_g"`
	FabricConsumptionGG decimal.Decimal `json:"fabric_consumption_gg" db:"fabric_consumption_gg"`

	InitialQuantityP  int `json:"initial_quantity_p" db:"initial_quantity_p"`
	InitialQuantityM  int `json:"initial_quantity_m" db:"initial_quantity_m"`
	InitialQuantityG  int `json:"initial_quantity_g" db:"initial_quantity_g"`
	InitialQuantityGG int `json:"initial_quantity_gg" db:"initial_quantity_gg"`

	CurrentStockP  int `json:"current_stock_p" db:"current_stock_p"`
	CurrentStockM  int `json:"current_stock_m" db:"current_stock_m"`
	CurrentStockG  int `json:"current_stock_g" db:"current_stock_g"`
	CurrentStockGG int `json:"current_stock_gg" db:"current_stock_gg"`

	// External ERP linkage: one parent product plus one variation per size.
	ErpParentRef      sql.NullString `json:"erp_parent_ref" db:"erp_parent_ref"`
	ErpVariationRefP  sql.NullString `json:"erp_variation_ref_p" db:"erp_variation_ref_p"`
	ErpVariationRefM  sql.NullString `json:"erp_variation_ref_m" db:"erp_variation_ref_m"`
	ErpVariationRefG  sql.NullString `json:"erp_variation_ref_g" db:"erp_variation_ref_g"`
	ErpVariationRefGG sql.NullString `json:"erp_variation_ref_gg" db:"erp_variation_ref_gg"`

	StockLastSynced sql.NullTime `json:"stock_last_synced" db:"stock_last_synced"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CurrentStock returns the current stock for the given size bucket.
func (p *Piece) CurrentStock(s Size) int {
	switch s {
	case SizeP:
		return p.CurrentStockP
	case SizeM:
		return p.CurrentStockM
	case SizeG:
		return p.CurrentStockG
	case SizeGG:
		return p.CurrentStockGG
	}
	return 0
}

// SetCurrentStock overwrites the current stock for the given size bucket.
func (p *Piece) SetCurrentStock(s Size, v int) {
	switch s {
	case SizeP:
		p.CurrentStockP = v
	case SizeM:
		p.CurrentStockM = v
	case SizeG:
		p.CurrentStockG = v
	case SizeGG:
		p.CurrentStockGG = v
	}
}

// CurrentStockLevels snapshots all four stock buckets at once.
func (p *Piece) CurrentStockLevels() SizeQuantities {
	return SizeQuantities{P: p.CurrentStockP, M: p.CurrentStockM, G: p.CurrentStockG, GG: p.CurrentStockGG}
}

// InitialQuantity returns the launch quantity for the given size bucket.
func (p *Piece) InitialQuantity(s Size) int {
	switch s {
	case SizeP:
		return p.InitialQuantityP
	case SizeM:
		return p.InitialQuantityM
	case SizeG:
		return p.InitialQuantityG
	case SizeGG:
		return p.InitialQuantityGG
	}
	return 0
}

// FabricConsumption returns the fabric area consumed by one unit of the given size.
func (p *Piece) FabricConsumption(s Size) decimal.Decimal {
	switch s {
	case SizeP:
		return p.FabricConsumptionP
	case SizeM:
		return p.FabricConsumptionM
	case SizeG:
		return p.FabricConsumptionG
	case SizeGG:
		return p.FabricConsumptionGG
	}
	return decimal.Zero
}

// VariationRef returns the external variation reference for the given size,
// when one is configured.
func (p *Piece) VariationRef(s Size) (string, bool) {
	var ref sql.NullString
	switch s {
	case SizeP:
		ref = p.ErpVariationRefP
	case SizeM:
		ref = p.ErpVariationRefM
	case SizeG:
		ref = p.ErpVariationRefG
	case SizeGG:
		ref = p.ErpVariationRefGG
	}
	if ref.Valid && ref.String != "" {
		return ref.String, true
	}
	return "", false
}

// Linked reports whether this piece is bound to an external ERP product.
func (p *Piece) Linked() bool {
	return p.ErpParentRef.Valid && p.ErpParentRef.String != ""
}

// HasVariationRefs reports whether at least one size has an external variation.
func (p *Piece) HasVariationRefs() bool {
	for _, s := range Sizes {
		if _, ok := p.VariationRef(s); ok {
			return true
		}
	}
	return false
}

// TotalCurrentStock sums current stock across all sizes.
func (p *Piece) TotalCurrentStock() int {
	return p.CurrentStockLevels().Total()
}

// Margin is the profit margin percentage: (sale - cost) / sale * 100.
func (p *Piece) Margin() decimal.Decimal {
	if p.SalePrice.IsPositive() {
		return p.SalePrice.Sub(p.TotalCost).Div(p.SalePrice).Mul(decimal.NewFromInt(100))
	}
	return decimal.Zero
}
