package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"glucovoice-go/internal/store"
)

// Export writes a user's prediction history and its summary to w as an
// .xlsx workbook (one row per session plus a summary block).
func Export(w io.Writer, userID string, entries []store.HistoryEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "History"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := []any{"Session ID", "Recorded At", "Estimate", "Risk Level", "Confidence"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, e := range entries {
		row := []any{
			e.SessionID,
			e.CreatedAt.Format("2006-01-02 15:04:05"),
			e.PrimaryEstimate,
			e.RiskLevel,
			e.ConfidenceScore,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	summary := Summarize(entries)
	advice := Advise(summary)
	base := len(entries) + 3
	lines := [][]any{
		{"User", userID},
		{"Total sessions", summary.TotalSessions},
		{"Mean confidence", summary.MeanConfidence},
		{"Insight", advice.Insight},
		{"Suggested action", advice.Action},
	}
	for i, line := range lines {
		cell := fmt.Sprintf("A%d", base+i)
		if err := f.SetSheetRow(sheet, cell, &line); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
