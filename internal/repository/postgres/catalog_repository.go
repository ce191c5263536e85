// internal/repository/postgres/catalog_repository.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/LuanMAndrade/sistema-seja-sua/internal/domain"
)

const pieceColumns = `
	id, name, collection_id, category_id, fabric_id, launch_status,
	active_for_replenishment, sale_price, total_cost,
	fabric_consumption_p, fabric_consumption_m, fabric_consumption_g, fabric_consumption_gg,
	initial_quantity_p, initial_quantity_m, initial_quantity_g, initial_quantity_gg,
	current_stock_p, current_stock_m, current_stock_g, current_stock_gg,
	erp_parent_ref, erp_variation_ref_p, erp_variation_ref_m, erp_variation_ref_g, erp_variation_ref_gg,
	stock_last_synced, created_at, updated_at`

// linkedFilter keeps piece listing for the sync engine restricted to pieces
// actually bound to an external product.
const linkedFilter = `erp_parent_ref IS NOT NULL AND erp_parent_ref <> ''`

type catalogRepository struct {
	db *DB
}

func NewCatalogRepository(db *DB) *catalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) Pieces(ctx context.Context) ([]domain.Piece, error) {
	query := fmt.Sprintf(`SELECT %s FROM pieces ORDER BY collection_id, name`, pieceColumns)

	var pieces []domain.Piece
	if err := r.db.SelectContext(ctx, &pieces, query); err != nil {
		return nil, fmt.Errorf("failed to list pieces: %w", err)
	}
	return pieces, nil
}

func (r *catalogRepository) PieceByID(ctx context.Context, id int64) (*domain.Piece, error) {
	query := fmt.Sprintf(`SELECT %s FROM pieces WHERE id = $1`, pieceColumns)

	var piece domain.Piece
	if err := r.db.GetContext(ctx, &piece, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("piece %d not found", id)
		}
		return nil, fmt.Errorf("failed to get piece %d: %w", id, err)
	}
	return &piece, nil
}

func (r *catalogRepository) LinkedPieces(ctx context.Context) ([]domain.Piece, error) {
	query := fmt.Sprintf(`SELECT %s FROM pieces WHERE %s ORDER BY id`, pieceColumns, linkedFilter)

	var pieces []domain.Piece
	if err := r.db.SelectContext(ctx, &pieces, query); err != nil {
		return nil, fmt.Errorf("failed to list linked pieces: %w", err)
	}
	return pieces, nil
}

func (r *catalogRepository) LinkedPiecesByCollection(ctx context.Context, collectionID int64) ([]domain.Piece, error) {
	query := fmt.Sprintf(`SELECT %s FROM pieces WHERE collection_id = $1 AND %s ORDER BY id`, pieceColumns, linkedFilter)

	var pieces []domain.Piece
	if err := r.db.SelectContext(ctx, &pieces, query, collectionID); err != nil {
		return nil, fmt.Errorf("failed to list linked pieces for collection %d: %w", collectionID, err)
	}
	return pieces, nil
}

func (r *catalogRepository) Collections(ctx context.Context) ([]domain.Collection, error) {
	query := `
		SELECT id, name, status, expected_launch_date, actual_launch_date, created_at, updated_at
		FROM collections
		ORDER BY created_at DESC`

	var collections []domain.Collection
	if err := r.db.SelectContext(ctx, &collections, query); err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return collections, nil
}

func (r *catalogRepository) RecentMovements(ctx context.Context, pieceID int64, limit int) ([]domain.StockMovement, error) {
	query := `
		SELECT id, piece_id, size, quantity, kind, resulting_stock, recorded_at
		FROM stock_movements
		WHERE piece_id = $1
		ORDER BY recorded_at DESC, id DESC
		LIMIT $2`

	var movements []domain.StockMovement
	if err := r.db.SelectContext(ctx, &movements, query, pieceID, limit); err != nil {
		return nil, fmt.Errorf("failed to list movements for piece %d: %w", pieceID, err)
	}
	return movements, nil
}

// ApplyStockSync persists one reconciled piece: the four stock columns and the
// sync timestamp are updated first, then the ledger rows are appended, all in
// the same transaction so the ledger can never disagree with the stock it
// explains.
func (r *catalogRepository) ApplyStockSync(ctx context.Context, pieceID int64, stocks domain.SizeQuantities, movements []domain.StockMovement, syncedAt time.Time) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE pieces
			SET current_stock_p = $1,
			    current_stock_m = $2,
			    current_stock_g = $3,
			    current_stock_gg = $4,
			    stock_last_synced = $5,
			    updated_at = NOW()
			WHERE id = $6`

		res, err := tx.ExecContext(ctx, query, stocks.P, stocks.M, stocks.G, stocks.GG, syncedAt, pieceID)
		if err != nil {
			return fmt.Errorf("failed to update stock for piece %d: %w", pieceID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("piece %d not found", pieceID)
		}

		if len(movements) == 0 {
			return nil
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO stock_movements (piece_id, size, quantity, kind, resulting_stock, recorded_at)
			VALUES ($1, $2, $3, $4, $5, $6)`)
		if err != nil {
			return fmt.Errorf("failed to prepare movement insert: %w", err)
		}
		defer stmt.Close()

		for _, m := range movements {
			_, err := stmt.ExecContext(ctx, m.PieceID, m.Size, m.Quantity, m.Kind, m.ResultingStock, m.RecordedAt)
			if err != nil {
				return fmt.Errorf("failed to insert movement for piece %d size %s: %w", m.PieceID, m.Size, err)
			}
		}
		return nil
	})
}
