package constants

import "fmt"

// RuleID is the closed set of compliance rules. The zero value is invalid.
type RuleID uint8

const (
	RuleOCREmptyText RuleID = iota + 1
	RuleBrandNameContains
	RuleDesignationContains
	RuleAlcPercentPresent
	RuleAlcPercentMatchExact
	RuleNetContentsPresent
	RuleNameAddressContains
	RuleGovWarningExact

	ruleSentinel
)

var ruleNames = [...]string{
	RuleOCREmptyText:         "OCR_EMPTY_TEXT",
	RuleBrandNameContains:    "BRAND_NAME_CONTAINS",
	RuleDesignationContains:  "DESIGNATION_CONTAINS",
	RuleAlcPercentPresent:    "ALC_PERCENT_PRESENT",
	RuleAlcPercentMatchExact: "ALC_PERCENT_MATCH_EXACT",
	RuleNetContentsPresent:   "NET_CONTENTS_PRESENT",
	RuleNameAddressContains:  "NAME_ADDRESS_CONTAINS",
	RuleGovWarningExact:      "GOV_WARNING_EXACT",
}

// AllRuleIDs returns every rule identifier in declaration order.
func AllRuleIDs() []RuleID {
	ids := make([]RuleID, 0, int(ruleSentinel)-1)
	for id := RuleOCREmptyText; id < ruleSentinel; id++ {
		ids = append(ids, id)
	}
	return ids
}

func (id RuleID) Valid() bool {
	return id >= RuleOCREmptyText && id < ruleSentinel
}

func (id RuleID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("RuleID(%d)", uint8(id))
	}
	return ruleNames[id]
}

func (id RuleID) MarshalText() ([]byte, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("invalid rule id %d", uint8(id))
	}
	return []byte(ruleNames[id]), nil
}

func (id *RuleID) UnmarshalText(b []byte) error {
	parsed, ok := ParseRuleID(string(b))
	if !ok {
		return fmt.Errorf("unknown rule id %q", string(b))
	}
	*id = parsed
	return nil
}

// ParseRuleID maps a rule name such as "GOV_WARNING_EXACT" back to its RuleID.
func ParseRuleID(s string) (RuleID, bool) {
	for id := RuleOCREmptyText; id < ruleSentinel; id++ {
		if ruleNames[id] == s {
			return id, true
		}
	}
	return 0, false
}
