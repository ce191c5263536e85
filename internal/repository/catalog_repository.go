// internal/repository/catalog_repository.go
package repository

import (
	"context"
	"time"

	"github.com/LuanMAndrade/sistema-seja-sua/internal/domain"
)

// CatalogRepository exposes catalog reads plus the single write the
// reconciliation engine is allowed: per-piece stock levels, sync timestamp
// and ledger appends, applied atomically.
type CatalogRepository interface {
	Pieces(ctx context.Context) ([]domain.Piece, error)
	PieceByID(ctx context.Context, id int64) (*domain.Piece, error)
	LinkedPieces(ctx context.Context) ([]domain.Piece, error)
	LinkedPiecesByCollection(ctx context.Context, collectionID int64) ([]domain.Piece, error)
	Collections(ctx context.Context) ([]domain.Collection, error)
	RecentMovements(ctx context.Context, pieceID int64, limit int) ([]domain.StockMovement, error)
	ApplyStockSync(ctx context.Context, pieceID int64, stocks domain.SizeQuantities, movements []domain.StockMovement, syncedAt time.Time) error
}
