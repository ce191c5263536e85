package service

import (
	"context"

	"github.com/LuanMAndrade/sistema-seja-sua/internal/domain"
	"github.com/LuanMAndrade/sistema-seja-sua/internal/repository"
)

const defaultMovementLimit = 50

// CatalogService exposes read access to collections, pieces and the
// movement ledger. All catalog writes happen in the back office itself;
// this API only mirrors them.
type CatalogService struct {
	repo repository.CatalogRepository
}

func NewCatalogService(repo repository.CatalogRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

func (s *CatalogService) Pieces(ctx context.Context) ([]domain.Piece, error) {
	return s.repo.Pieces(ctx)
}

func (s *CatalogService) PieceByID(ctx context.Context, id int64) (*domain.Piece, error) {
	return s.repo.PieceByID(ctx, id)
}

func (s *CatalogService) Collections(ctx context.Context) ([]domain.Collection, error) {
	return s.repo.Collections(ctx)
}

func (s *CatalogService) RecentMovements(ctx context.Context, pieceID int64, limit int) ([]domain.StockMovement, error) {
	if limit <= 0 {
		limit = defaultMovementLimit
	}
	return s.repo.RecentMovements(ctx, pieceID, limit)
}
