package stocksync

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/LuanMAndrade/sistema-seja-sua/internal/domain"
)

type fakeFeed struct {
	stocks map[string]int
	errs   map[string]error
}

func (f *fakeFeed) GetVariationStock(ctx context.Context, ref string) (int, error) {
	if err := f.errs[ref]; err != nil {
		return 0, err
	}
	return f.stocks[ref], nil
}

type appliedSync struct {
	pieceID   int64
	stocks    domain.SizeQuantities
	movements []domain.StockMovement
}

type fakeCatalog struct {
	mu       sync.Mutex
	pieces   []domain.Piece
	applied  []appliedSync
	applyErr error
}

func (c *fakeCatalog) LinkedPieces(ctx context.Context) ([]domain.Piece, error) {
	return c.pieces, nil
}

func (c *fakeCatalog) LinkedPiecesByCollection(ctx context.Context, collectionID int64) ([]domain.Piece, error) {
	var out []domain.Piece
	for _, p := range c.pieces {
		if p.CollectionID == collectionID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *fakeCatalog) PieceByID(ctx context.Context, id int64) (*domain.Piece, error) {
	for i := range c.pieces {
		if c.pieces[i].ID == id {
			p := c.pieces[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("piece %d not found", id)
}

func (c *fakeCatalog) ApplyStockSync(ctx context.Context, pieceID int64, stocks domain.SizeQuantities, movements []domain.StockMovement, syncedAt time.Time) error {
	if c.applyErr != nil {
		return c.applyErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applied = append(c.applied, appliedSync{pieceID: pieceID, stocks: stocks, movements: movements})
	return nil
}

func ref(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func linkedPiece(id int64) domain.Piece {
	return domain.Piece{
		ID:                id,
		Name:              fmt.Sprintf("piece-%d", id),
		ErpParentRef:      ref(fmt.Sprintf("parent-%d", id)),
		ErpVariationRefP:  ref(fmt.Sprintf("%d-p", id)),
		ErpVariationRefM:  ref(fmt.Sprintf("%d-m", id)),
		ErpVariationRefG:  ref(fmt.Sprintf("%d-g", id)),
		ErpVariationRefGG: ref(fmt.Sprintf("%d-gg", id)),
	}
}

func TestSyncPiecePersistsStockAndLedger(t *testing.T) {
	piece := linkedPiece(1)
	piece.CurrentStockP = 2

	feed := &fakeFeed{stocks: map[string]int{"1-p": 5, "1-m": 3}}
	catalog := &fakeCatalog{}
	engine := NewEngine(feed, catalog, Options{})

	res, err := engine.SyncPiece(context.Background(), &piece)
	if err != nil {
		t.Fatalf("SyncPiece: %v", err)
	}

	// P: 2 -> 5 inbound, M: 0 -> 3 initial, G/GG unchanged at 0.
	if res.MovementsRecorded != 2 {
		t.Errorf("MovementsRecorded = %d, want 2", res.MovementsRecorded)
	}
	if len(catalog.applied) != 1 {
		t.Fatalf("applied %d syncs, want 1", len(catalog.applied))
	}
	applied := catalog.applied[0]
	if applied.stocks != (domain.SizeQuantities{P: 5, M: 3}) {
		t.Errorf("persisted stocks = %+v", applied.stocks)
	}
	if piece.CurrentStockP != 5 || piece.CurrentStockM != 3 {
		t.Errorf("in-memory piece not updated: P=%d M=%d", piece.CurrentStockP, piece.CurrentStockM)
	}
	if !piece.StockLastSynced.Valid {
		t.Error("StockLastSynced not set")
	}
}

func TestSyncPieceFeedFailureWritesNothing(t *testing.T) {
	piece := linkedPiece(1)
	piece.CurrentStockP = 2

	// First size succeeds, a later one fails; nothing may be written.
	feed := &fakeFeed{
		stocks: map[string]int{"1-p": 9},
		errs:   map[string]error{"1-g": errors.New("erp down")},
	}
	catalog := &fakeCatalog{}
	engine := NewEngine(feed, catalog, Options{})

	if _, err := engine.SyncPiece(context.Background(), &piece); err == nil {
		t.Fatal("expected error from failing feed")
	}
	if len(catalog.applied) != 0 {
		t.Errorf("applied %d syncs after feed failure, want 0", len(catalog.applied))
	}
	if piece.CurrentStockP != 2 {
		t.Errorf("piece stock mutated to %d after feed failure", piece.CurrentStockP)
	}
	if piece.StockLastSynced.Valid {
		t.Error("StockLastSynced set after feed failure")
	}
}

func TestSyncPieceUnlinked(t *testing.T) {
	piece := domain.Piece{ID: 7, Name: "unlinked"}
	engine := NewEngine(&fakeFeed{}, &fakeCatalog{}, Options{})

	_, err := engine.SyncPiece(context.Background(), &piece)
	if !errors.Is(err, ErrNotLinked) {
		t.Fatalf("err = %v, want ErrNotLinked", err)
	}
}

func TestSyncPieceMissingVariationMeansZero(t *testing.T) {
	piece := domain.Piece{
		ID:               1,
		Name:             "partial",
		ErpParentRef:     ref("parent-1"),
		ErpVariationRefP: ref("1-p"),
	}
	piece.CurrentStockG = 4 // size with no variation ref

	feed := &fakeFeed{stocks: map[string]int{"1-p": 1}}
	catalog := &fakeCatalog{}
	engine := NewEngine(feed, catalog, Options{})

	if _, err := engine.SyncPiece(context.Background(), &piece); err != nil {
		t.Fatalf("SyncPiece: %v", err)
	}

	// External view of an unmapped size is zero, so local stock drops to 0
	// through an outbound movement.
	if piece.CurrentStockG != 0 {
		t.Errorf("size G stock = %d, want 0", piece.CurrentStockG)
	}
	var g *domain.StockMovement
	for i, m := range catalog.applied[0].movements {
		if m.Size == domain.SizeG {
			g = &catalog.applied[0].movements[i]
		}
	}
	if g == nil || g.Kind != domain.MovementOutbound || g.Quantity != 4 {
		t.Errorf("size G movement = %+v, want outbound qty 4", g)
	}
}

func TestSyncPieceDryRun(t *testing.T) {
	piece := linkedPiece(1)
	feed := &fakeFeed{stocks: map[string]int{"1-p": 5}}
	catalog := &fakeCatalog{}
	engine := NewEngine(feed, catalog, Options{DryRun: true})

	res, err := engine.SyncPiece(context.Background(), &piece)
	if err != nil {
		t.Fatalf("SyncPiece: %v", err)
	}
	if !res.DryRun {
		t.Error("result not marked dry-run")
	}
	if res.MovementsRecorded != 1 {
		t.Errorf("MovementsRecorded = %d, want 1", res.MovementsRecorded)
	}
	if len(catalog.applied) != 0 {
		t.Error("dry run persisted a sync")
	}
	if piece.CurrentStockP != 0 {
		t.Error("dry run mutated the piece")
	}
}

func TestSyncAllContinuesPastFailures(t *testing.T) {
	p1 := linkedPiece(1)
	p2 := linkedPiece(2)
	p3 := linkedPiece(3)

	feed := &fakeFeed{
		stocks: map[string]int{"1-p": 5, "3-m": 2},
		errs:   map[string]error{"2-p": errors.New("erp down")},
	}
	catalog := &fakeCatalog{pieces: []domain.Piece{p1, p2, p3}}
	engine := NewEngine(feed, catalog, Options{Workers: 2})

	result, err := engine.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("SyncAll: %v", err)
	}

	if result.Total != 3 {
		t.Errorf("Total = %d, want 3", result.Total)
	}
	if result.Success != 2 {
		t.Errorf("Success = %d, want 2", result.Success)
	}
	if result.Errors != 1 {
		t.Errorf("Errors = %d, want 1", result.Errors)
	}
	if result.Movements != 2 {
		t.Errorf("Movements = %d, want 2", result.Movements)
	}
	if result.RunID == "" {
		t.Error("batch has no run id")
	}
}

func TestSyncCollectionFiltersPieces(t *testing.T) {
	p1 := linkedPiece(1)
	p1.CollectionID = 100
	p2 := linkedPiece(2)
	p2.CollectionID = 200

	feed := &fakeFeed{stocks: map[string]int{"1-p": 5, "2-p": 5}}
	catalog := &fakeCatalog{pieces: []domain.Piece{p1, p2}}
	engine := NewEngine(feed, catalog, Options{})

	result, err := engine.SyncCollection(context.Background(), 100)
	if err != nil {
		t.Fatalf("SyncCollection: %v", err)
	}
	if result.Total != 1 || result.Success != 1 {
		t.Errorf("result = %+v, want total 1 success 1", result)
	}
	if len(catalog.applied) != 1 || catalog.applied[0].pieceID != 1 {
		t.Errorf("applied = %+v, want only piece 1", catalog.applied)
	}
}

func TestSyncAllCancelledContextCountsRemaining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	feed := &fakeFeed{stocks: map[string]int{}}
	catalog := &fakeCatalog{pieces: []domain.Piece{linkedPiece(1), linkedPiece(2)}}
	engine := NewEngine(feed, catalog, Options{})

	result, err := engine.SyncAll(ctx)
	if err != nil {
		t.Fatalf("SyncAll: %v", err)
	}
	if result.Success+result.Errors != result.Total {
		t.Errorf("success %d + errors %d != total %d", result.Success, result.Errors, result.Total)
	}
}
