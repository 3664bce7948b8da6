// Package export renders event rankings as an XLSX workbook for the admin
// panel.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/HarshMohan14/zambara/internal/ranking"
)

const (
	sheetName   = "Rankings"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var header = []any{"Rank", "Player", "Player ID", "Time (s)", "Game", "Game ID", "Recorded At"}

// WriteRankings writes one header row and one row per ranking entry to w.
func WriteRankings(w io.Writer, r ranking.EventRankings) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	if r.Event != nil {
		if err := f.SetDocProps(&excelize.DocProperties{Title: r.Event.Name}); err != nil {
			return fmt.Errorf("setting document properties: %w", err)
		}
	}

	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	if err := f.SetRowStyle(sheetName, 1, 1, bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i, e := range r.Rankings {
		var t any = ""
		if e.Time != nil {
			t = *e.Time
		}
		row := []any{e.Rank, e.PlayerName, e.PlayerID, t, e.GameName, e.GameID, e.CreatedAt.UTC().Format("2006-01-02 15:04:05")}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(sheetName, "B", "B", 24); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetName, "E", "E", 24); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// Filename is the attachment name for an event's export.
func Filename(eventID string) string {
	return fmt.Sprintf("rankings-%s.xlsx", eventID)
}
