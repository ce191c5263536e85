// cmd/seed/main.go
//
// Catalog seeder: loads collections, fabrics, categories and pieces from
// CSV exports into the database. Each file carries a header naming its
// columns; rows are upserted on name so reruns are safe.
package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

// nullIfEmpty returns NULL if the string is empty, otherwise returns the string
func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Seed the database with catalog data",
		Commands: []*cli.Command{
			{
				Name:  "catalog",
				Usage: "Seed collections, fabrics, categories and pieces",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "data-dir",
						Usage:   "Directory containing catalog CSV files",
						Value:   "./data/seeds/catalog",
						EnvVars: []string{"SEED_DATA_DIR"},
					},
				},
				Action: runSeeder,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runSeeder(c *cli.Context) error {
	dbURL := c.String("db-url")
	dataDir := c.String("data-dir")

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	log.Println("Starting catalog seeding...")

	if err := seedCatalog(ctx, tx, dataDir); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Println("Catalog seeding completed successfully!")
	return nil
}

func seedCatalog(ctx context.Context, tx *sql.Tx, dataDir string) error {
	// Referenced tables first so piece foreign keys resolve.
	if err := seedTable(ctx, tx, "collections",
		[]string{"name", "status", "expected_launch_date", "actual_launch_date"},
		filepath.Join(dataDir, "collections.csv")); err != nil {
		return fmt.Errorf("failed to seed collections: %w", err)
	}

	if err := seedTable(ctx, tx, "fabrics",
		[]string{"name", "color", "supplier_id", "roll_weight_kg", "yield_area_per_kg", "price_per_roll"},
		filepath.Join(dataDir, "fabrics.csv")); err != nil {
		return fmt.Errorf("failed to seed fabrics: %w", err)
	}

	if err := seedTable(ctx, tx, "categories",
		[]string{"name", "production_cost_per_piece"},
		filepath.Join(dataDir, "categories.csv")); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	if err := seedPieces(ctx, tx, filepath.Join(dataDir, "pieces.csv")); err != nil {
		return fmt.Errorf("failed to seed pieces: %w", err)
	}

	return nil
}

// seedTable upserts rows from a CSV whose header names a subset of columns.
// Rows conflict on name; later files win.
func seedTable(ctx context.Context, tx *sql.Tx, tableName string, columns []string, filePath string) error {
	log.Printf("Seeding %s from %s\n", tableName, filePath)

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	colIndex, err := mapColumns(header, columns)
	if err != nil {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	placeholders := make([]string, len(columns))
	updates := make([]string, 0, len(columns))
	for i, col := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		if col != "name" {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, created_at, updated_at)
		VALUES (%s, NOW(), NOW())
		ON CONFLICT (name) DO UPDATE SET %s, updated_at = NOW()`,
		tableName,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert for %s: %w", tableName, err)
	}
	defer stmt.Close()

	count := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read CSV record: %w", err)
		}

		args := make([]any, len(columns))
		for i, col := range columns {
			args[i] = nullIfEmpty(strings.TrimSpace(record[colIndex[col]]))
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", tableName, err)
		}
		count++
	}

	log.Printf("Seeded %d rows into %s\n", count, tableName)
	return nil
}

var pieceColumns = []string{
	"name", "collection_id", "category_id", "fabric_id", "launch_status",
	"active_for_replenishment", "sale_price", "total_cost",
	"fabric_consumption_p", "fabric_consumption_m", "fabric_consumption_g", "fabric_consumption_gg",
	"initial_quantity_p", "initial_quantity_m", "initial_quantity_g", "initial_quantity_gg",
	"current_stock_p", "current_stock_m", "current_stock_g", "current_stock_gg",
	"erp_parent_ref", "erp_variation_ref_p", "erp_variation_ref_m", "erp_variation_ref_g", "erp_variation_ref_gg",
}

func seedPieces(ctx context.Context, tx *sql.Tx, filePath string) error {
	return seedTable(ctx, tx, "pieces", pieceColumns, filePath)
}

// mapColumns resolves wanted column names against the CSV header.
func mapColumns(header, wanted []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(strings.ToLower(h))] = i
	}

	out := make(map[string]int, len(wanted))
	for _, col := range wanted {
		i, ok := index[col]
		if !ok {
			return nil, fmt.Errorf("missing column %q in CSV header", col)
		}
		out[col] = i
	}
	return out, nil
}
