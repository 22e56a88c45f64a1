package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/label-verifier/constants"
	"github.com/joseph-ayodele/label-verifier/internal/common"
	"github.com/joseph-ayodele/label-verifier/internal/rules"
)

func TestLookupSeverities(t *testing.T) {
	tests := []struct {
		bt   constants.BeverageType
		want constants.Severity
	}{
		{bt: constants.Malt, want: constants.SeverityInfo},
		{bt: constants.Wine, want: constants.SeverityInfo},
		{bt: constants.Spirits, want: constants.SeverityError},
	}
	for _, tt := range tests {
		t.Run(string(tt.bt), func(t *testing.T) {
			v, err := Lookup(tt.bt)
			require.NoError(t, err)
			assert.Equal(t, tt.bt, v.Type)
			assert.Len(t, v.RuleIDs, 8)
			assert.Equal(t, tt.want, v.Severity(constants.RuleAlcPercentPresent))
			assert.Equal(t, tt.want, v.Severity(constants.RuleAlcPercentMatchExact))
			assert.Equal(t, constants.SeverityError, v.Severity(constants.RuleGovWarningExact))
			assert.Equal(t, constants.SeverityError, v.Severity(constants.RuleOCREmptyText))
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("CIDER")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUnknownBeverageType)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	assert.Equal(t, common.CodeUnknownBeverageType, common.ErrorCode(err))
}

func TestAllFollowsBeverageOrder(t *testing.T) {
	var got []constants.BeverageType
	for _, v := range All() {
		got = append(got, v.Type)
	}
	assert.Equal(t, constants.BeverageTypes(), got)
}

func TestCheckDefaultRegistry(t *testing.T) {
	reg, err := rules.Default()
	require.NoError(t, err)
	assert.NoError(t, Check(reg))
}

func TestCheckCatchesMisconfiguration(t *testing.T) {
	empty := rules.NewRegistry()
	err := Check(empty)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrConfig)
	assert.Contains(t, err.Error(), "unregistered rule OCR_EMPTY_TEXT")

	full, err := rules.Default()
	require.NoError(t, err)

	dup := Validator{
		Type:    constants.Malt,
		RuleIDs: []constants.RuleID{constants.RuleOCREmptyText, constants.RuleOCREmptyText},
	}
	assert.ErrorIs(t, checkOne(dup, full), common.ErrConfig)

	stray := Validator{
		Type:        constants.Wine,
		RuleIDs:     []constants.RuleID{constants.RuleOCREmptyText},
		InfoRuleIDs: []constants.RuleID{constants.RuleAlcPercentPresent},
	}
	err = checkOne(stray, full)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marks rule ALC_PERCENT_PRESENT as info")
}
