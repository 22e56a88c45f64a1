// Package report renders validation reports as XLSX workbooks and terminal text.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/label-verifier/internal/entity"
)

const (
	SheetSummary       = "Summary"
	SheetDiscrepancies = "Discrepancies"
	SheetImages        = "Images"
	SheetSubmissions   = "Submissions"
)

// SummaryRow is one submission of a batch run.
type SummaryRow struct {
	Submission   string
	BeverageType string
	Status       string
	Errors       int
	Infos        int
	Images       int
	Warnings     int
	Elapsed      time.Duration
	// Err is set when the submission was rejected before validation.
	Err string
}

// WriteXLSX returns a workbook (as bytes) with a summary sheet, one row per
// discrepancy and one row per image.
func WriteXLSX(rep entity.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, err
	}
	summary := [][]any{
		{"Run ID", rep.RunID},
		{"Beverage Type", string(rep.BeverageType)},
		{"Status", string(rep.Status)},
		{"Rules Evaluated", rep.RulesEvaluated},
		{"Errors", rep.ErrorCount()},
		{"Info", rep.InfoCount()},
		{"Images", len(rep.Images)},
		{"Elapsed (ms)", rep.Elapsed.Milliseconds()},
	}
	if err := writeRows(f, SheetSummary, nil, summary); err != nil {
		return nil, err
	}
	_ = f.SetColWidth(SheetSummary, "A", "A", 18)
	_ = f.SetColWidth(SheetSummary, "B", "B", 40)

	rows := make([][]any, 0, len(rep.Discrepancies))
	for _, d := range rep.Discrepancies {
		rows = append(rows, []any{d.RuleID.String(), d.Field, string(d.Severity), d.Message, d.Evidence})
	}
	if err := writeSheet(f, SheetDiscrepancies, []string{"Rule", "Field", "Severity", "Message", "OCR Found"}, rows); err != nil {
		return nil, err
	}
	_ = f.SetColWidth(SheetDiscrepancies, "A", "A", 26) // rule
	_ = f.SetColWidth(SheetDiscrepancies, "B", "B", 24) // field
	_ = f.SetColWidth(SheetDiscrepancies, "C", "C", 10) // severity
	_ = f.SetColWidth(SheetDiscrepancies, "D", "E", 60) // message, evidence

	rows = rows[:0]
	for _, img := range rep.Images {
		rows = append(rows, []any{img.ID, img.Lines, strings.Join(img.Warnings, "; "), img.Excerpt})
	}
	if err := writeSheet(f, SheetImages, []string{"Image", "Lines", "Warnings", "Excerpt"}, rows); err != nil {
		return nil, err
	}
	_ = f.SetColWidth(SheetImages, "A", "A", 28)
	_ = f.SetColWidth(SheetImages, "C", "C", 40)
	_ = f.SetColWidth(SheetImages, "D", "D", 80)

	return toBytes(f)
}

// WriteSummaryXLSX returns a single-sheet workbook with one row per submission.
func WriteSummaryXLSX(rows []SummaryRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSubmissions); err != nil {
		return nil, err
	}
	data := make([][]any, 0, len(rows))
	for _, r := range rows {
		data = append(data, []any{
			r.Submission, r.BeverageType, r.Status, r.Errors, r.Infos, r.Images, r.Warnings,
			r.Elapsed.Milliseconds(), r.Err,
		})
	}
	headers := []string{"Submission", "Beverage Type", "Status", "Errors", "Info", "Images", "Warnings", "Elapsed (ms)", "Error"}
	if err := writeSheet(f, SheetSubmissions, headers, data); err != nil {
		return nil, err
	}
	_ = f.SetColWidth(SheetSubmissions, "A", "A", 32)
	_ = f.SetColWidth(SheetSubmissions, "B", "C", 16)
	_ = f.SetColWidth(SheetSubmissions, "I", "I", 60)

	return toBytes(f)
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]any) error {
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
	}
	return writeRows(f, sheet, headers, rows)
}

func writeRows(f *excelize.File, sheet string, headers []string, rows [][]any) error {
	row := 1
	if len(headers) > 0 {
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			if err := f.SetCellValue(sheet, cell, h); err != nil {
				return err
			}
		}
		row++
	}
	for _, values := range rows {
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
		row++
	}
	return nil
}

func toBytes(f *excelize.File) ([]byte, error) {
	if index, _ := f.GetSheetIndex(f.GetSheetName(0)); index >= 0 {
		f.SetActiveSheet(index)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
