package services

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"dossiers/internal/relance"
)

const (
	summarySheet = "Summary"
	foldersSheet = "Folders"
)

// WriteSummaryReport saves a batch summary as an xlsx workbook at path
func WriteSummaryReport(summary *relance.BatchSummary, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(foldersSheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Ran at", summary.RanAt.Format("2006-01-02 15:04:05 MST")},
		{"Cooldown (days)", summary.CooldownDays},
		{"Dry run", summary.DryRun},
		{"Folders", len(summary.Results)},
		{},
		{"Outcome", "Count"},
	}
	for _, o := range relance.Outcomes() {
		rows = append(rows, []interface{}{string(o), summary.Count(o)})
	}
	if err := writeRows(f, summarySheet, rows); err != nil {
		return err
	}

	rows = [][]interface{}{{"Folder", "Recipient", "Outcome", "Record", "Error"}}
	for _, r := range summary.Results {
		var record interface{}
		if r.RecordID != 0 {
			record = r.RecordID
		}
		rows = append(rows, []interface{}{r.FolderID, r.Recipient, string(r.Outcome), record, r.Error})
	}
	if err := writeRows(f, foldersSheet, rows); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report %s: %w", path, err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
