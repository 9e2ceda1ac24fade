package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/eduraapp/edura-backend/internal/db"
	"github.com/eduraapp/edura-backend/internal/models"
)

// WriteLeaderboard renders a period leaderboard as a single-sheet workbook.
func WriteLeaderboard(w io.Writer, entries []db.LeaderboardEntry) error {
	f := excelize.NewFile()
	sheet := "Leaderboard"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := []string{"Rank", "Student", "Points", "Experience"}
	for c, h := range header {
		cell := ColumnName(c+1) + "1"
		if err := f.SetCellStr(sheet, cell, h); err != nil {
			return fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	for r, e := range entries {
		row := []string{
			strconv.Itoa(e.Rank),
			e.Name,
			strconv.Itoa(e.Points),
			strconv.Itoa(e.Experience),
		}
		for c, val := range row {
			cell := fmt.Sprintf("%s%d", ColumnName(c+1), r+2)
			if err := f.SetCellStr(sheet, cell, val); err != nil {
				return fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	if err := ApplyDefaultExcelFormatting(f, sheet); err != nil {
		return err
	}
	return f.Write(w)
}

// WriteHistory renders one student's transaction history, rolled-back rows
// marked so reversals stay visible.
func WriteHistory(w io.Writer, studentName string, txs []models.PointsTransaction) error {
	f := excelize.NewFile()
	sheet := "History"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := []string{"Date", "Type", "Amount", "Reason", "Rolled back"}
	for c, h := range header {
		cell := ColumnName(c+1) + "1"
		if err := f.SetCellStr(sheet, cell, h); err != nil {
			return fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	for r, tx := range txs {
		reason := ""
		if tx.Reason != nil {
			reason = *tx.Reason
		}
		rolled := ""
		if tx.RolledBack {
			rolled = "yes"
		}
		amount := tx.Amount
		if tx.Type == models.Redeem {
			amount = -amount
		}
		row := []string{
			tx.CreatedAt.Format("02.01.2006 15:04"),
			string(tx.Type),
			strconv.Itoa(amount),
			reason,
			rolled,
		}
		for c, val := range row {
			cell := fmt.Sprintf("%s%d", ColumnName(c+1), r+2)
			if err := f.SetCellStr(sheet, cell, val); err != nil {
				return fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	if err := ApplyDefaultExcelFormatting(f, sheet); err != nil {
		return err
	}
	return f.Write(w)
}

func LeaderboardFilename(periodName string) string {
	return SanitizeFileName(fmt.Sprintf("leaderboard - %s.xlsx", periodName))
}

func HistoryFilename(studentName, periodName string) string {
	return SanitizeFileName(fmt.Sprintf("history - %s - %s.xlsx", studentName, periodName))
}
