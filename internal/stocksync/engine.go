package stocksync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/LuanMAndrade/sistema-seja-sua/internal/domain"
)

// ErrNotLinked marks a piece that has no external ERP linkage and therefore
// cannot be reconciled.
var ErrNotLinked = errors.New("piece is not linked to the external ERP")

// StockFeed is the narrow contract with the external stock source. Retries,
// backoff and auth are the implementation's concern; any returned error is
// treated as the feed being unavailable for that lookup.
type StockFeed interface {
	GetVariationStock(ctx context.Context, variationRef string) (int, error)
}

// CatalogStore is what the engine needs from persistence. ApplyStockSync
// must write the four stock fields, the sync timestamp and the ledger
// movements as one atomic unit.
type CatalogStore interface {
	LinkedPieces(ctx context.Context) ([]domain.Piece, error)
	LinkedPiecesByCollection(ctx context.Context, collectionID int64) ([]domain.Piece, error)
	PieceByID(ctx context.Context, id int64) (*domain.Piece, error)
	ApplyStockSync(ctx context.Context, pieceID int64, stocks domain.SizeQuantities, movements []domain.StockMovement, syncedAt time.Time) error
}

// Options configures an Engine.
type Options struct {
	// Workers bounds batch parallelism across pieces. Per-piece work is
	// always serialized; defaults to 1.
	Workers int
	// DryRun computes and reports deltas without persisting anything.
	DryRun bool
}

// Engine drives stock reconciliation: fetch external stock for every size of
// a piece, diff against local state, persist the new levels together with
// the ledger entries.
type Engine struct {
	feed    StockFeed
	catalog CatalogStore
	workers int
	dryRun  bool
}

// NewEngine creates a reconciliation engine.
func NewEngine(feed StockFeed, catalog CatalogStore, opts Options) *Engine {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &Engine{
		feed:    feed,
		catalog: catalog,
		workers: workers,
		dryRun:  opts.DryRun,
	}
}

// PieceSyncResult reports old/new stock per size for one reconciled piece.
type PieceSyncResult struct {
	PieceID           int64        `json:"piece_id"`
	PieceName         string       `json:"piece_name"`
	Changes           []SizeChange `json:"changes"`
	MovementsRecorded int          `json:"movements_recorded"`
	SyncedAt          time.Time    `json:"synced_at"`
	DryRun            bool         `json:"dry_run,omitempty"`
}

// BatchResult aggregates a batch run. One piece failing never aborts the
// batch; it only increments Errors.
type BatchResult struct {
	RunID     string        `json:"run_id"`
	Total     int           `json:"total"`
	Success   int           `json:"success"`
	Errors    int           `json:"errors"`
	Movements int           `json:"movements"`
	Duration  time.Duration `json:"duration"`
}

// SyncPiece reconciles a single piece. External stock for every size is
// fetched before anything is written, so a feed failure leaves both the
// stock fields and the ledger untouched.
func (e *Engine) SyncPiece(ctx context.Context, piece *domain.Piece) (*PieceSyncResult, error) {
	if !piece.Linked() {
		return nil, fmt.Errorf("piece %d: %w", piece.ID, ErrNotLinked)
	}
	if !piece.HasVariationRefs() {
		return nil, fmt.Errorf("piece %d has no size variation refs: %w", piece.ID, ErrNotLinked)
	}

	var external domain.SizeQuantities
	for _, size := range domain.Sizes {
		ref, ok := piece.VariationRef(size)
		if !ok {
			// No variation for this size: the external view is zero.
			continue
		}
		qty, err := e.feed.GetVariationStock(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("fetch stock for piece %d size %s: %w", piece.ID, size, err)
		}
		if qty < 0 {
			qty = 0
		}
		external.Set(size, qty)
	}

	now := time.Now().UTC()
	result := Reconcile(piece.ID, piece.CurrentStockLevels(), external, now)

	if !e.dryRun {
		if err := e.catalog.ApplyStockSync(ctx, piece.ID, external, result.Movements, now); err != nil {
			return nil, fmt.Errorf("persist stock sync for piece %d: %w", piece.ID, err)
		}
		for _, size := range domain.Sizes {
			piece.SetCurrentStock(size, external.Get(size))
		}
		piece.StockLastSynced.Time = now
		piece.StockLastSynced.Valid = true
	}

	log.Info().
		Int64("piece_id", piece.ID).
		Str("piece", piece.Name).
		Int("movements", len(result.Movements)).
		Int("total_stock", external.Total()).
		Bool("dry_run", e.dryRun).
		Msg("piece stock reconciled")

	return &PieceSyncResult{
		PieceID:           piece.ID,
		PieceName:         piece.Name,
		Changes:           result.Changes,
		MovementsRecorded: len(result.Movements),
		SyncedAt:          now,
		DryRun:            e.dryRun,
	}, nil
}

// SyncPieceByID loads one piece and reconciles it.
func (e *Engine) SyncPieceByID(ctx context.Context, pieceID int64) (*PieceSyncResult, error) {
	piece, err := e.catalog.PieceByID(ctx, pieceID)
	if err != nil {
		return nil, fmt.Errorf("load piece %d: %w", pieceID, err)
	}
	return e.SyncPiece(ctx, piece)
}

// SyncAll reconciles every piece linked to the external ERP.
func (e *Engine) SyncAll(ctx context.Context) (*BatchResult, error) {
	pieces, err := e.catalog.LinkedPieces(ctx)
	if err != nil {
		return nil, fmt.Errorf("load linked pieces: %w", err)
	}
	return e.syncBatch(ctx, pieces), nil
}

// SyncCollection reconciles the linked pieces of a single collection.
func (e *Engine) SyncCollection(ctx context.Context, collectionID int64) (*BatchResult, error) {
	pieces, err := e.catalog.LinkedPiecesByCollection(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("load linked pieces for collection %d: %w", collectionID, err)
	}
	return e.syncBatch(ctx, pieces), nil
}

// syncBatch runs pieces through a bounded worker pool. Pieces are
// independent, so cross-piece parallelism is safe; each piece's
// fetch-diff-persist sequence stays within one worker.
func (e *Engine) syncBatch(ctx context.Context, pieces []domain.Piece) *BatchResult {
	start := time.Now()
	result := &BatchResult{
		RunID: uuid.NewString(),
		Total: len(pieces),
	}

	log.Info().
		Str("run_id", result.RunID).
		Int("pieces", len(pieces)).
		Bool("dry_run", e.dryRun).
		Msg("starting stock sync batch")

	jobChan := make(chan *domain.Piece, len(pieces))
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for piece := range jobChan {
				res, err := e.SyncPiece(ctx, piece)
				mu.Lock()
				if err != nil {
					result.Errors++
					mu.Unlock()
					log.Error().
						Err(err).
						Str("run_id", result.RunID).
						Int64("piece_id", piece.ID).
						Msg("piece stock sync failed")
					continue
				}
				result.Success++
				result.Movements += res.MovementsRecorded
				mu.Unlock()
			}
		}()
	}

	for i := range pieces {
		select {
		case <-ctx.Done():
			close(jobChan)
			wg.Wait()
			result.Errors += len(pieces) - i
			result.Duration = time.Since(start)
			return result
		case jobChan <- &pieces[i]:
		}
	}
	close(jobChan)
	wg.Wait()

	result.Duration = time.Since(start)
	log.Info().
		Str("run_id", result.RunID).
		Int("success", result.Success).
		Int("errors", result.Errors).
		Int("movements", result.Movements).
		Dur("duration", result.Duration).
		Msg("stock sync batch completed")

	return result
}
