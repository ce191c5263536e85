// cmd/sync/main.go
//
// Stock reconciliation CLI: pulls per-size stock from the external ERP and
// reconciles it against the local catalog, appending ledger movements for
// every observed delta.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/LuanMAndrade/sistema-seja-sua/internal/config"
	"github.com/LuanMAndrade/sistema-seja-sua/internal/erp"
	"github.com/LuanMAndrade/sistema-seja-sua/internal/repository/postgres"
	"github.com/LuanMAndrade/sistema-seja-sua/internal/stocksync"
	"github.com/LuanMAndrade/sistema-seja-sua/pkg/logger"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newEngine(c *cli.Context) (*stocksync.Engine, *postgres.DB, error) {
	db, err := postgres.NewDBFromURL(c.String("db-url"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	cfg := config.Load()
	if token := c.String("erp-token"); token != "" {
		cfg.ERP.Token = token
	}

	engine := stocksync.NewEngine(erp.NewClient(cfg.ERP), postgres.NewCatalogRepository(db), stocksync.Options{
		Workers: c.Int("workers"),
		DryRun:  c.Bool("dry-run"),
	})
	return engine, db, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runAll(c *cli.Context) error {
	engine, db, err := newEngine(c)
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := engine.SyncAll(c.Context)
	if err != nil {
		return err
	}
	return printJSON(result)
}

// runDaily is the cron entrypoint: a full-catalog sync that fails the
// process when any piece errored, so the scheduler surfaces bad days.
func runDaily(c *cli.Context) error {
	engine, db, err := newEngine(c)
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := engine.SyncAll(c.Context)
	if err != nil {
		return err
	}
	if err := printJSON(result); err != nil {
		return err
	}
	if result.Errors > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d pieces failed to sync", result.Errors, result.Total), 1)
	}
	return nil
}

func runCollection(c *cli.Context) error {
	engine, db, err := newEngine(c)
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := engine.SyncCollection(c.Context, c.Int64("collection-id"))
	if err != nil {
		return err
	}
	return printJSON(result)
}

func runPiece(c *cli.Context) error {
	engine, db, err := newEngine(c)
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := engine.SyncPieceByID(c.Context, c.Int64("piece-id"))
	if err != nil {
		return err
	}
	return printJSON(result)
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		logger.SetLevel(level)
	}

	sharedFlags := []cli.Flag{
		newDBURLFlag(),
		&cli.StringFlag{
			Name:    "erp-token",
			Usage:   "Override the ERP API token",
			EnvVars: []string{"ERP_API_TOKEN"},
		},
		&cli.IntFlag{
			Name:    "workers",
			Usage:   "Number of concurrent sync workers",
			Value:   4,
			EnvVars: []string{"SYNC_WORKERS"},
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Reconcile and report without writing stock or ledger rows",
		},
	}

	app := &cli.App{
		Name:  "sync",
		Usage: "Reconcile local stock against the external ERP",
		Commands: []*cli.Command{
			{
				Name:   "all",
				Usage:  "Sync every linked piece in the catalog",
				Flags:  sharedFlags,
				Action: runAll,
			},
			{
				Name:   "daily",
				Usage:  "Scheduled full-catalog sync; exits non-zero if any piece failed",
				Flags:  sharedFlags,
				Action: runDaily,
			},
			{
				Name:  "collection",
				Usage: "Sync all linked pieces of one collection",
				Flags: append([]cli.Flag{
					&cli.Int64Flag{
						Name:     "collection-id",
						Usage:    "Collection to sync",
						Required: true,
					},
				}, sharedFlags...),
				Action: runCollection,
			},
			{
				Name:  "piece",
				Usage: "Sync a single piece",
				Flags: append([]cli.Flag{
					&cli.Int64Flag{
						Name:     "piece-id",
						Usage:    "Piece to sync",
						Required: true,
					},
				}, sharedFlags...),
				Action: runPiece,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
