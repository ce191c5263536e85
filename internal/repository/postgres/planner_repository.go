// internal/repository/postgres/planner_repository.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/LuanMAndrade/sistema-seja-sua/internal/domain"
	"github.com/LuanMAndrade/sistema-seja-sua/internal/replenishment"
)

type plannerRepository struct {
	db *DB
}

func NewPlannerRepository(db *DB) *plannerRepository {
	return &plannerRepository{db: db}
}

// PlanSnapshot loads everything Generate needs in one repeatable-read view:
// active pieces, the fabrics and categories they reference, and the outbound
// ledger since the cutoff. Sales rows cover the whole catalog, not just
// active pieces, because size shares are computed per fabric+category.
func (r *plannerRepository) PlanSnapshot(ctx context.Context, cutoff time.Time) (*replenishment.PlanInput, error) {
	input := &replenishment.PlanInput{
		Fabrics:    make(map[int64]domain.Fabric),
		Categories: make(map[int64]domain.Category),
	}

	err := r.db.WithReadView(ctx, func(tx *sqlx.Tx) error {
		query := fmt.Sprintf(`SELECT %s FROM pieces WHERE active_for_replenishment ORDER BY id`, pieceColumns)
		if err := tx.SelectContext(ctx, &input.Pieces, query); err != nil {
			return fmt.Errorf("failed to load active pieces: %w", err)
		}

		fabricIDs, categoryIDs := referencedIDs(input.Pieces)

		if len(fabricIDs) > 0 {
			var fabrics []domain.Fabric
			query := `
				SELECT id, name, color, supplier_id, roll_weight_kg, yield_area_per_kg, price_per_roll
				FROM fabrics
				WHERE id = ANY($1)`
			if err := tx.SelectContext(ctx, &fabrics, query, pq.Array(fabricIDs)); err != nil {
				return fmt.Errorf("failed to load fabrics: %w", err)
			}
			for _, f := range fabrics {
				input.Fabrics[f.ID] = f
			}
		}

		if len(categoryIDs) > 0 {
			var categories []domain.Category
			query := `
				SELECT id, name, production_cost_per_piece
				FROM categories
				WHERE id = ANY($1)`
			if err := tx.SelectContext(ctx, &categories, query, pq.Array(categoryIDs)); err != nil {
				return fmt.Errorf("failed to load categories: %w", err)
			}
			for _, c := range categories {
				input.Categories[c.ID] = c
			}
		}

		salesQuery := `
			SELECT m.piece_id, p.fabric_id, p.category_id, m.size, m.quantity, m.recorded_at AS date
			FROM stock_movements m
			JOIN pieces p ON p.id = m.piece_id
			WHERE m.kind = $1 AND m.recorded_at >= $2`
		if err := tx.SelectContext(ctx, &input.Sales, salesQuery, domain.MovementOutbound, cutoff); err != nil {
			return fmt.Errorf("failed to load sales window: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return input, nil
}

func referencedIDs(pieces []domain.Piece) (fabricIDs, categoryIDs []int64) {
	fabricSeen := make(map[int64]bool)
	categorySeen := make(map[int64]bool)
	for _, p := range pieces {
		if !fabricSeen[p.FabricID] {
			fabricSeen[p.FabricID] = true
			fabricIDs = append(fabricIDs, p.FabricID)
		}
		if !categorySeen[p.CategoryID] {
			categorySeen[p.CategoryID] = true
			categoryIDs = append(categoryIDs, p.CategoryID)
		}
	}
	return fabricIDs, categoryIDs
}
