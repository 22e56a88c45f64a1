package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/label-verifier/constants"
	"github.com/joseph-ayodele/label-verifier/internal/entity"
	"github.com/joseph-ayodele/label-verifier/internal/validators"
)

func sampleReport() entity.Report {
	return entity.Report{
		RunID:        "run-1",
		BeverageType: constants.Spirits,
		Status:       constants.StatusNonCompliant,
		Discrepancies: []entity.Discrepancy{
			{
				RuleID:   constants.RuleAlcPercentMatchExact,
				Field:    constants.FieldAlcoholContent,
				Severity: constants.SeverityError,
				Message:  "Alcohol content mismatch: label shows 45% but form declares 40%.",
				Evidence: "45% alc by vol",
			},
			{
				RuleID:   constants.RuleNetContentsPresent,
				Field:    constants.FieldNetContents,
				Severity: constants.SeverityInfo,
				Message:  "Net contents statement not detected on label.",
			},
		},
		Images: []entity.ImageResult{
			{ID: "front.png", Excerpt: "OLD CROW\n45% ALC BY VOL", Lines: 2},
			{ID: "back.png", Warnings: []string{"ocr timed out after 30s"}},
		},
		RulesEvaluated: 8,
		Elapsed:        1500 * time.Millisecond,
	}
}

func TestWriteXLSX(t *testing.T) {
	data, err := WriteXLSX(sampleReport())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetDiscrepancies, SheetImages}, f.GetSheetList())

	status, err := f.GetCellValue(SheetSummary, "B3")
	require.NoError(t, err)
	assert.Equal(t, "NON_COMPLIANT", status)

	rows, err := f.GetRows(SheetDiscrepancies)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Rule", "Field", "Severity", "Message", "OCR Found"}, rows[0])
	assert.Equal(t, "ALC_PERCENT_MATCH_EXACT", rows[1][0])
	assert.Equal(t, "error", rows[1][2])
	assert.Equal(t, "45% alc by vol", rows[1][4])
	assert.Equal(t, "info", rows[2][2])

	images, err := f.GetRows(SheetImages)
	require.NoError(t, err)
	require.Len(t, images, 3)
	assert.Equal(t, "back.png", images[2][0])
	assert.Equal(t, "ocr timed out after 30s", images[2][2])
}

func TestWriteSummaryXLSX(t *testing.T) {
	data, err := WriteSummaryXLSX([]SummaryRow{
		{Submission: "old-crow", BeverageType: "SPIRITS", Status: "COMPLIANT", Images: 2, Elapsed: time.Second},
		{Submission: "broken", Err: "INVALID_INPUT: form_data is required"},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetSubmissions)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "old-crow", rows[1][0])
	assert.Equal(t, "1000", rows[1][7])
	assert.Equal(t, "INVALID_INPUT: form_data is required", rows[2][8])
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sampleReport(), TextOptions{Verbose: true}))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "NON_COMPLIANT  SPIRITS  (8 rules, 1 error, 1 info, run run-1)"))
	assert.Contains(t, out, "ALC_PERCENT_MATCH_EXACT")
	assert.Contains(t, out, "45% alc by vol")
	assert.Contains(t, out, "warning: back.png: ocr timed out after 30s")
	assert.Contains(t, out, "front.png (2 lines): OLD CROW | 45% ALC BY VOL")
	assert.NotContains(t, out, "\x1b[", "no escape codes without color")
}

func TestWriteTextCompliantHasNoTable(t *testing.T) {
	rep := entity.Report{RunID: "r", BeverageType: constants.Wine, Status: constants.StatusCompliant, RulesEvaluated: 8}
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, rep, TextOptions{}))
	assert.Equal(t, "COMPLIANT  WINE  (8 rules, 0 error, 0 info, run r)\n", buf.String())
}

func TestWriteRules(t *testing.T) {
	var buf bytes.Buffer
	WriteRules(&buf, validators.All(), TextOptions{})
	out := buf.String()

	for _, bt := range constants.BeverageTypeStrings() {
		assert.Contains(t, out, bt)
	}
	assert.Equal(t, 3, strings.Count(out, "GOV_WARNING_EXACT"))
	assert.Equal(t, 4, strings.Count(out, "| info"), "malt and wine each have two info rules")
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, []SummaryRow{
		{Submission: "old-crow", BeverageType: "SPIRITS", Status: "COMPLIANT", Images: 2, Elapsed: 1500 * time.Millisecond},
		{Submission: "vino", BeverageType: "WINE", Status: "NON_COMPLIANT", Errors: 2, Infos: 1, Images: 1},
		{Submission: "broken", Err: "INVALID_INPUT: form_data is required"},
	}, TextOptions{}))
	out := buf.String()

	assert.Contains(t, out, "old-crow")
	assert.Contains(t, out, "1.5s")
	assert.Contains(t, out, "FAILED: INVALID_INPUT: form_data is required")
	assert.True(t, strings.HasSuffix(out, "3 submissions: 1 compliant, 1 non-compliant, 1 failed\n"))
}
