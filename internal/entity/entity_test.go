package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/label-verifier/constants"
	"github.com/joseph-ayodele/label-verifier/internal/common"
)

func TestParseFormData(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantABV *float64
	}{
		{
			name:    "numeric abv",
			raw:     `{"brand_name":"Old Crow","class_type_designation":"Bourbon Whiskey","alcohol_content":40,"net_contents":"750ML","name_address":"Old Crow Distillery Co, Frankfort KY"}`,
			wantABV: ptr(40),
		},
		{
			name:    "string abv with percent",
			raw:     `{"brand_name":"Old Tom Distillery","class_type_designation":"Kentucky Straight Bourbon Whiskey","alcohol_content":"45.5 %","net_contents":"750 mL","name_address":"Old Tom Distilling Co, Bardstown KY 40004"}`,
			wantABV: ptr(45.5),
		},
		{
			name: "abv omitted",
			raw:  `{"brand_name":"Stone's Throw","class_type_designation":"Pale Ale","net_contents":"12 FL OZ","name_address":"Stone Brewing, Escondido CA"}`,
		},
		{
			name: "abv blank string",
			raw:  `{"brand_name":"Vino","class_type_designation":"Red Wine","alcohol_content":"","net_contents":"750 mL","name_address":"Vino Cellars, Napa CA"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form, err := ParseFormData([]byte(tt.raw))
			require.NoError(t, err)
			assert.NotEmpty(t, form.BrandName)
			if tt.wantABV == nil {
				assert.Nil(t, form.AlcoholContent)
				return
			}
			require.NotNil(t, form.AlcoholContent)
			assert.InDelta(t, *tt.wantABV, *form.AlcoholContent, 1e-9)
		})
	}
}

func TestParseFormDataRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty body", raw: ``},
		{name: "not json", raw: `{brand_name:`},
		{name: "missing brand", raw: `{"class_type_designation":"Gin","net_contents":"750 mL","name_address":"Acme, Austin TX"}`},
		{name: "blank brand", raw: `{"brand_name":"   ","class_type_designation":"Gin","net_contents":"750 mL","name_address":"Acme, Austin TX"}`},
		{name: "abv out of range", raw: `{"brand_name":"Acme","class_type_designation":"Gin","alcohol_content":140,"net_contents":"750 mL","name_address":"Acme, Austin TX"}`},
		{name: "abv not numeric", raw: `{"brand_name":"Acme","class_type_designation":"Gin","alcohol_content":"forty","net_contents":"750 mL","name_address":"Acme, Austin TX"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFormData([]byte(tt.raw))
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidInput)
			assert.Equal(t, common.CodeInvalidInput, common.ErrorCode(err))
		})
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, constants.StatusCompliant, StatusFor(nil))
	assert.Equal(t, constants.StatusCompliant, StatusFor([]Discrepancy{
		{RuleID: constants.RuleAlcPercentPresent, Severity: constants.SeverityInfo},
	}))
	assert.Equal(t, constants.StatusNonCompliant, StatusFor([]Discrepancy{
		{RuleID: constants.RuleAlcPercentPresent, Severity: constants.SeverityInfo},
		{RuleID: constants.RuleGovWarningExact, Severity: constants.SeverityError},
	}))
}

func TestReportCounts(t *testing.T) {
	rep := Report{
		Discrepancies: []Discrepancy{
			{RuleID: constants.RuleAlcPercentPresent, Severity: constants.SeverityInfo},
			{RuleID: constants.RuleGovWarningExact, Severity: constants.SeverityError},
			{RuleID: constants.RuleBrandNameContains, Severity: constants.SeverityError},
		},
		Images: []ImageResult{{ID: "back.png", Warnings: []string{"ocr timed out"}}},
	}
	assert.Equal(t, 2, rep.ErrorCount())
	assert.Equal(t, 1, rep.InfoCount())
	assert.Equal(t, []string{"back.png: ocr timed out"}, rep.Warnings())
}

func ptr(f float64) *float64 { return &f }
