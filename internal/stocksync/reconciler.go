// Package stocksync reconciles local per-size stock with the external ERP
// feed and appends the observed deltas to the stock movement ledger.
package stocksync

import (
	"time"

	"github.com/LuanMAndrade/sistema-seja-sua/internal/domain"
)

// SizeChange is the old/new stock pair for one size bucket.
type SizeChange struct {
	Size     domain.Size `json:"size"`
	Previous int         `json:"previous"`
	Current  int         `json:"current"`
}

// Delta is current minus previous.
func (c SizeChange) Delta() int {
	return c.Current - c.Previous
}

// ReconcileResult is the outcome of comparing one piece's local stock with
// an external snapshot. Changes always covers all four sizes; Movements
// holds one ledger entry per size whose stock actually moved.
type ReconcileResult struct {
	Changes   []SizeChange
	Movements []domain.StockMovement
}

// Changed reports whether any size moved.
func (r ReconcileResult) Changed() bool {
	return len(r.Movements) > 0
}

// Reconcile compares previous against external stock per size and builds the
// ledger movements to append. It mutates nothing; persisting the new levels
// and the movements is the caller's job.
//
// Classification per size: previous 0 with external > 0 is an initial
// stocking, a positive delta is inbound, a negative delta is outbound, and a
// zero delta produces no movement at all. Each movement's resulting stock is
// the external value, so running twice with the same snapshot yields no
// movements the second time.
func Reconcile(pieceID int64, previous, external domain.SizeQuantities, now time.Time) ReconcileResult {
	result := ReconcileResult{
		Changes: make([]SizeChange, 0, len(domain.Sizes)),
	}

	for _, size := range domain.Sizes {
		prev := previous.Get(size)
		curr := external.Get(size)
		result.Changes = append(result.Changes, SizeChange{Size: size, Previous: prev, Current: curr})

		delta := curr - prev
		if delta == 0 {
			continue
		}

		var kind domain.MovementKind
		quantity := delta
		switch {
		case prev == 0 && curr > 0:
			kind = domain.MovementInitial
		case delta > 0:
			kind = domain.MovementInbound
		default:
			kind = domain.MovementOutbound
			quantity = -delta
		}

		result.Movements = append(result.Movements, domain.StockMovement{
			PieceID:        pieceID,
			Size:           size,
			Quantity:       quantity,
			Kind:           kind,
			ResultingStock: curr,
			RecordedAt:     now,
		})
	}

	return result
}
