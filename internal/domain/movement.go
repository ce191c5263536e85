package domain

import "time"

// MovementKind classifies a stock delta recorded in the ledger.
type MovementKind string

const (
	// MovementInitial is the first stocking of a size (previous stock was zero).
	MovementInitial MovementKind = "initial"
	// MovementInbound is a restock: external stock grew.
	MovementInbound MovementKind = "inbound"
	// MovementOutbound is a sale or loss: external stock shrank.
	MovementOutbound MovementKind = "outbound"
)

// StockMovement is one append-only ledger entry. Records are created
// exclusively by the reconciliation engine and never updated; quantity is
// always the unsigned magnitude of the observed delta.
type StockMovement struct {
	ID             int64        `json:"id" db:"id"`
	PieceID        int64        `json:"piece_id" db:"piece_id"`
	Size           Size         `json:"size" db:"size"`
	Quantity       int          `json:"quantity" db:"quantity"`
	Kind           MovementKind `json:"kind" db:"kind"`
	ResultingStock int          `json:"resulting_stock" db:"resulting_stock"`
	RecordedAt     time.Time    `json:"recorded_at" db:"recorded_at"`
}

// SignedDelta is the delta this movement applied to stock: positive for
// initial/inbound, negative for outbound.
func (m StockMovement) SignedDelta() int {
	if m.Kind == MovementOutbound {
		return -m.Quantity
	}
	return m.Quantity
}

// SalesMovement is one outbound unit-sale row from the historical ledger,
// pre-joined with the piece's fabric and category so the planner can
// aggregate without extra lookups. Read-only to this system.
type SalesMovement struct {
	PieceID    int64     `json:"piece_id" db:"piece_id"`
	FabricID   int64     `json:"fabric_id" db:"fabric_id"`
	CategoryID int64     `json:"category_id" db:"category_id"`
	Size       Size      `json:"size" db:"size"`
	Quantity   int       `json:"quantity" db:"quantity"`
	Date       time.Time `json:"date" db:"date"`
}
