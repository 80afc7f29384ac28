package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/okian/rallyboard/internal/domain/types"
)

const (
	boardSheet   = "Leaderboard"
	defaultSheet = "Sheet1"
)

// Column headers shared by the spreadsheet and the dashboard.
var xlsxHeader = []interface{}{"Rank", "Tier", "Rally Creator", "Score", "Partner", "Highest Damage (with Person)"}

// XLSX writes a workbook with the full board on the first sheet and one
// sheet per non-empty tier.
func XLSX(w io.Writer, tiers []types.Tier) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(defaultSheet, boardSheet); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}

	var all []types.Entry
	for _, t := range tiers {
		all = append(all, t.Entries...)
	}
	if err := writeSheet(f, boardSheet, all, header); err != nil {
		return err
	}

	for _, t := range tiers {
		if len(t.Entries) == 0 {
			continue
		}
		if _, err := f.NewSheet(t.Name); err != nil {
			return fmt.Errorf("xlsx: add sheet %s: %w", t.Name, err)
		}
		if err := writeSheet(f, t.Name, t.Entries, header); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx: write: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, rows []types.Entry, headerStyle int) error {
	row := append([]interface{}(nil), xlsxHeader...)
	if err := f.SetSheetRow(sheet, "A1", &row); err != nil {
		return fmt.Errorf("xlsx: %s header: %w", sheet, err)
	}
	if err := f.SetCellStyle(sheet, "A1", "F1", headerStyle); err != nil {
		return fmt.Errorf("xlsx: %s header style: %w", sheet, err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsx: %w", err)
		}
		values := []interface{}{r.Rank, r.Tier, r.Name, r.Score, r.Partner, r.Display}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("xlsx: %s row %d: %w", sheet, i+1, err)
		}
	}

	if err := f.SetColWidth(sheet, "C", "C", 28); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	if err := f.SetColWidth(sheet, "E", "F", 32); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	return nil
}
