// internal/repository/planner_repository.go
package repository

import (
	"context"
	"time"

	"github.com/LuanMAndrade/sistema-seja-sua/internal/replenishment"
)

// PlannerRepository loads the replenishment snapshot: active pieces, their
// fabrics and categories, and the outbound sales ledger since the cutoff —
// all from one consistent read view so stock sizes of the same piece can
// never be skewed against each other.
type PlannerRepository interface {
	PlanSnapshot(ctx context.Context, cutoff time.Time) (*replenishment.PlanInput, error)
}
