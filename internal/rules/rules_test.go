package rules

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/label-verifier/constants"
	"github.com/joseph-ayodele/label-verifier/internal/common"
	"github.com/joseph-ayodele/label-verifier/internal/entity"
	"github.com/joseph-ayodele/label-verifier/internal/extract"
)

const oldCrowCorpus = "OLD CROW\n" +
	"KENTUCKY STRAIGHT BOURBON WHISKEY\n" +
	"40% ALC BY VOL\n" +
	"750 ML\n" +
	"BOTTLED BY OLD CROW DISTILLERY CO, FRANKFORT, KY\n" +
	extract.CanonicalWarning

func abv(v float64) *float64 { return &v }

func oldCrowForm() entity.FormData {
	return entity.FormData{
		BrandName:            "Old Crow",
		ClassTypeDesignation: "Kentucky Straight Bourbon Whiskey",
		AlcoholContent:       abv(40),
		NetContents:          "750ML",
		NameAddress:          "Old Crow Distillery Co, Frankfort KY",
	}
}

func evaluate(t *testing.T, id constants.RuleID, form entity.FormData, corpus string) Result {
	t.Helper()
	reg, err := Default()
	require.NoError(t, err)
	res, err := reg.Evaluate(id, NewContext(constants.Spirits, form, corpus, nil))
	require.NoError(t, err)
	assert.Equal(t, id, res.RuleID)
	return res
}

func TestDefaultRegistryPassesOnCompliantLabel(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)
	assert.Equal(t, constants.AllRuleIDs(), reg.IDs())

	ctx := NewContext(constants.Spirits, oldCrowForm(), oldCrowCorpus, nil)
	for _, id := range constants.AllRuleIDs() {
		res, err := reg.Evaluate(id, ctx)
		require.NoError(t, err)
		assert.True(t, res.Passed, "%s: %s", id, res.Message)
		assert.NotEmpty(t, res.Field)
	}
}

func TestRegisterRejectsDuplicatesAndInvalidIDs(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(constants.RuleOCREmptyText, ocrEmptyText))

	err := reg.Register(constants.RuleOCREmptyText, ocrEmptyText)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrConfig)

	assert.ErrorIs(t, reg.Register(0, ocrEmptyText), common.ErrConfig)
	assert.ErrorIs(t, reg.Register(constants.RuleBrandNameContains, nil), common.ErrConfig)

	_, err = reg.Evaluate(constants.RuleGovWarningExact, NewContext(constants.Malt, oldCrowForm(), "", nil))
	assert.ErrorIs(t, err, common.ErrConfig)
}

func TestOCREmptyText(t *testing.T) {
	assert.False(t, evaluate(t, constants.RuleOCREmptyText, oldCrowForm(), "").Passed)
	assert.False(t, evaluate(t, constants.RuleOCREmptyText, oldCrowForm(), " \n ... \n").Passed)
	assert.True(t, evaluate(t, constants.RuleOCREmptyText, oldCrowForm(), "OLD CROW").Passed)
}

func TestBrandNameContains(t *testing.T) {
	form := oldCrowForm()
	res := evaluate(t, constants.RuleBrandNameContains, form, "0LD CROW\nBOURBON")
	assert.False(t, res.Passed, "short tokens need an exact match")
	assert.Equal(t, "Brand name not found or does not match.", res.Message)
	assert.Equal(t, "0LD CROW", res.Evidence)

	form.BrandName = "Stone's Throw"
	res = evaluate(t, constants.RuleBrandNameContains, form, "STONES THROW\nPALE ALE")
	assert.True(t, res.Passed)
	assert.Equal(t, "STONES THROW", res.Evidence)
}

func TestDesignationContainsIsFuzzy(t *testing.T) {
	res := evaluate(t, constants.RuleDesignationContains, oldCrowForm(),
		"KENTUCKY STRAIGHT BOURBON WHISKY")
	assert.True(t, res.Passed)

	res = evaluate(t, constants.RuleDesignationContains, oldCrowForm(), "KENTUCKY BOURBON WHISKEY")
	assert.False(t, res.Passed)
	assert.Equal(t, constants.FieldClassType, res.Field)
}

func TestAlcPercentPresent(t *testing.T) {
	res := evaluate(t, constants.RuleAlcPercentPresent, oldCrowForm(), "OLD CROW")
	assert.False(t, res.Passed)
	assert.Equal(t, "Alcohol content (ABV) not detected on label.", res.Message)

	res = evaluate(t, constants.RuleAlcPercentPresent, oldCrowForm(), "45% ALC/VOL")
	assert.True(t, res.Passed, "presence ignores the declared value")
	assert.Equal(t, "45%", res.Evidence)
}

func TestAlcPercentMatchTolerance(t *testing.T) {
	tests := []struct {
		label string
		pass  bool
	}{
		{label: "40% ALC BY VOL", pass: true},
		{label: "40.05% ALC BY VOL", pass: true},
		{label: "39.95% ALC BY VOL", pass: true},
		{label: "40.1% ALC BY VOL", pass: false},
		{label: "45% ALC BY VOL", pass: false},
		{label: "OLD CROW", pass: false},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			res := evaluate(t, constants.RuleAlcPercentMatchExact, oldCrowForm(), tt.label)
			assert.Equal(t, tt.pass, res.Passed, res.Message)
		})
	}

	res := evaluate(t, constants.RuleAlcPercentMatchExact, oldCrowForm(), "45% ALC BY VOL")
	assert.Equal(t, "Alcohol content mismatch: label shows 45% but form declares 40%.", res.Message)
}

func TestAlcPercentMatchWithoutDeclaredValue(t *testing.T) {
	form := oldCrowForm()
	form.AlcoholContent = nil
	assert.True(t, evaluate(t, constants.RuleAlcPercentMatchExact, form, "OLD CROW").Passed)
}

func TestNetContentsPresent(t *testing.T) {
	form := oldCrowForm()

	assert.True(t, evaluate(t, constants.RuleNetContentsPresent, form, "0.75 L").Passed, "unit normalization")
	assert.True(t, evaluate(t, constants.RuleNetContentsPresent, form, "1 L\n750ml").Passed, "any candidate")

	res := evaluate(t, constants.RuleNetContentsPresent, form, "OLD CROW")
	assert.False(t, res.Passed)
	assert.Equal(t, "Net contents statement not detected on label.", res.Message)

	res = evaluate(t, constants.RuleNetContentsPresent, form, "1 L")
	assert.False(t, res.Passed)
	assert.Contains(t, res.Message, "Net contents mismatch")

	form.NetContents = "one bottle"
	res = evaluate(t, constants.RuleNetContentsPresent, form, "750 ML")
	assert.False(t, res.Passed)
	assert.Contains(t, res.Message, "not a recognizable volume")
}

func TestNetContentsPresentFractionalVolumes(t *testing.T) {
	form := oldCrowForm()

	form.NetContents = "12.5 FL OZ"
	assert.True(t, evaluate(t, constants.RuleNetContentsPresent, form, "NET CONTENTS 12 1/2 FL OZ").Passed)

	form.NetContents = "12 gal"
	res := evaluate(t, constants.RuleNetContentsPresent, form, "1/2 GAL")
	assert.False(t, res.Passed)
	assert.Contains(t, res.Message, "Net contents mismatch")

	form.NetContents = "1.75 L"
	assert.True(t, evaluate(t, constants.RuleNetContentsPresent, form, "1,75 L").Passed)
}

func TestNameAddressContains(t *testing.T) {
	form := oldCrowForm()
	form.NameAddress = "Old Tom Distilling Co, 1 Main St, Bardstown KY"

	res := evaluate(t, constants.RuleNameAddressContains, form, "Old Tom Distiling Company\nMain Street Bardstown")
	assert.True(t, res.Passed, "short tokens ignored, fuzzy long tokens: %s", res.Message)

	res = evaluate(t, constants.RuleNameAddressContains, form, "Old Tom Distilling\n1 Main St, Louisville")
	assert.False(t, res.Passed)
	assert.Equal(t, "Producer/bottler name and address not found (matched 4/5 tokens; missing: bardstown).", res.Message)
	assert.Equal(t, "Matched: old, tom, distilling, main (4/5 tokens)", res.Evidence)
}

func TestNameAddressWithOnlyShortTokens(t *testing.T) {
	form := oldCrowForm()
	form.NameAddress = "Co, KY"
	assert.True(t, evaluate(t, constants.RuleNameAddressContains, form, "something").Passed)
	assert.False(t, evaluate(t, constants.RuleNameAddressContains, form, "").Passed)
}

func TestGovWarningExact(t *testing.T) {
	assert.True(t, evaluate(t, constants.RuleGovWarningExact, oldCrowForm(), extract.CanonicalWarning).Passed)

	res := evaluate(t, constants.RuleGovWarningExact, oldCrowForm(), "WARNING: (1) surgeon general")
	assert.False(t, res.Passed)
	assert.Equal(t, `Government warning header "GOVERNMENT WARNING" not found in required uppercase.`, res.Message)
	assert.Equal(t, constants.FieldGovernmentWarning, res.Field)

	res = evaluate(t, constants.RuleGovWarningExact, oldCrowForm(),
		"GOVERNMENT WARNING: (1) According to the Surgeon General, women should not drink during pregnancy")
	assert.False(t, res.Passed)
	assert.Equal(t, "Government warning text incomplete; missing: birth defects, impairs, machinery, health.", res.Message)
}

func TestContextRunsEachExtractorOnce(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)
	ctx := NewContext(constants.Spirits, oldCrowForm(), oldCrowCorpus, nil)

	var wg sync.WaitGroup
	for _, id := range constants.AllRuleIDs() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = reg.Evaluate(id, ctx)
		}()
	}
	wg.Wait()
	assert.Equal(t, 3, ctx.ExtractorRuns())
}
