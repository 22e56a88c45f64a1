// Package validators declares, per beverage type, which rules run and which
// of them are informational.
package validators

import (
	"fmt"

	"github.com/joseph-ayodele/label-verifier/constants"
	"github.com/joseph-ayodele/label-verifier/internal/common"
	"github.com/joseph-ayodele/label-verifier/internal/rules"
)

// Validator is the rule profile of one beverage type. Rules listed in
// InfoRuleIDs still run and still produce discrepancies, but with info severity.
type Validator struct {
	Type        constants.BeverageType
	RuleIDs     []constants.RuleID
	InfoRuleIDs []constants.RuleID
}

// Severity returns the severity a failure of id carries for this beverage type.
func (v Validator) Severity(id constants.RuleID) constants.Severity {
	for _, info := range v.InfoRuleIDs {
		if info == id {
			return constants.SeverityInfo
		}
	}
	return constants.SeverityError
}

var allRules = []constants.RuleID{
	constants.RuleOCREmptyText,
	constants.RuleBrandNameContains,
	constants.RuleDesignationContains,
	constants.RuleAlcPercentPresent,
	constants.RuleAlcPercentMatchExact,
	constants.RuleNetContentsPresent,
	constants.RuleNameAddressContains,
	constants.RuleGovWarningExact,
}

// ABV disclosure is optional on malt beverages and most wines.
var optionalABV = []constants.RuleID{
	constants.RuleAlcPercentPresent,
	constants.RuleAlcPercentMatchExact,
}

var table = map[constants.BeverageType]Validator{
	constants.Malt:    {Type: constants.Malt, RuleIDs: allRules, InfoRuleIDs: optionalABV},
	constants.Spirits: {Type: constants.Spirits, RuleIDs: allRules},
	constants.Wine:    {Type: constants.Wine, RuleIDs: allRules, InfoRuleIDs: optionalABV},
}

// Lookup returns the validator for bt.
func Lookup(bt constants.BeverageType) (Validator, error) {
	v, ok := table[bt]
	if !ok {
		return Validator{}, common.NewAppError(common.CodeUnknownBeverageType,
			fmt.Sprintf("unknown beverage type %q (expected one of %v)", string(bt), constants.BeverageTypeStrings()),
			common.ErrUnknownBeverageType)
	}
	return v, nil
}

// All returns every validator in beverage type order.
func All() []Validator {
	out := make([]Validator, 0, len(table))
	for _, bt := range constants.BeverageTypes() {
		out = append(out, table[bt])
	}
	return out
}

// Check verifies that every rule referenced by a validator is registered in reg,
// that no rule is listed twice, and that info rules are a subset of the rule list.
// It is meant to run once at startup.
func Check(reg *rules.Registry) error {
	for _, bt := range constants.BeverageTypes() {
		v, ok := table[bt]
		if !ok {
			return common.ConfigError("no validator for beverage type %s", bt)
		}
		if err := checkOne(v, reg); err != nil {
			return err
		}
	}
	return nil
}

func checkOne(v Validator, reg *rules.Registry) error {
	listed := make(map[constants.RuleID]bool, len(v.RuleIDs))
	for _, id := range v.RuleIDs {
		if listed[id] {
			return common.ConfigError("%s validator lists rule %s twice", v.Type, id)
		}
		if _, ok := reg.Lookup(id); !ok {
			return common.ConfigError("%s validator references unregistered rule %s", v.Type, id)
		}
		listed[id] = true
	}
	for _, id := range v.InfoRuleIDs {
		if !listed[id] {
			return common.ConfigError("%s validator marks rule %s as info but does not run it", v.Type, id)
		}
	}
	return nil
}
