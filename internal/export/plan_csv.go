// Package export renders replenishment plans for humans: CSV today,
// uploaded to object storage by the caller when configured.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/LuanMAndrade/sistema-seja-sua/internal/domain"
	"github.com/LuanMAndrade/sistema-seja-sua/internal/replenishment"
)

// WritePlanCSV streams the plan as CSV: one section per concern, blank line
// between sections. Sizes appear as fixed columns so the sheet lines up
// regardless of which sizes a piece actually needs.
func WritePlanCSV(w io.Writer, plan *replenishment.Plan) error {
	cw := csv.NewWriter(w)

	header := []string{"piece_id", "piece_name"}
	for _, s := range domain.Sizes {
		header = append(header, string(s))
	}
	header = append(header, "units")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write plan header: %w", err)
	}

	for _, p := range plan.Pieces {
		row := []string{strconv.FormatInt(p.PieceID, 10), p.PieceName}
		for _, s := range domain.Sizes {
			row = append(row, strconv.Itoa(p.Quantities[s]))
		}
		row = append(row, strconv.Itoa(p.Units))
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write plan row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}

	if err := cw.Write([]string{"fabric_id", "fabric_name", "area_needed_m2", "area_per_roll_m2", "rolls", "surplus_area_m2", "cost"}); err != nil {
		return fmt.Errorf("failed to write fabric header: %w", err)
	}
	for _, f := range plan.Fabrics {
		row := []string{
			strconv.FormatInt(f.FabricID, 10),
			f.FabricName,
			f.AreaNeeded.StringFixed(2),
			f.AreaPerRoll.StringFixed(2),
			strconv.Itoa(f.Rolls),
			f.SurplusArea.StringFixed(2),
			f.Cost.StringFixed(2),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write fabric row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}

	totals := [][]string{
		{"total_units", strconv.Itoa(plan.TotalUnits)},
		{"fabric_cost", plan.FabricCost.StringFixed(2)},
		{"production_cost", plan.ProductionCost.StringFixed(2)},
		{"total_cost", plan.TotalCost.StringFixed(2)},
		{"window_days", strconv.Itoa(plan.WindowDays)},
		{"generated_at", plan.GeneratedAt.Format("2006-01-02 15:04:05")},
	}
	for _, row := range totals {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write totals row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
