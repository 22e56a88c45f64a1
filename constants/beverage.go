package constants

import (
	"strings"
)

// BeverageType selects the validator and rule set for a submission.
type BeverageType string

const (
	Malt    BeverageType = "MALT"
	Spirits BeverageType = "SPIRITS"
	Wine    BeverageType = "WINE"
)

var allBeverageTypes = []BeverageType{
	Malt,
	Spirits,
	Wine,
}

// BeverageTypes returns every supported beverage type in display order.
func BeverageTypes() []BeverageType {
	out := make([]BeverageType, len(allBeverageTypes))
	copy(out, allBeverageTypes)
	return out
}

func BeverageTypeStrings() []string {
	result := make([]string, len(allBeverageTypes))
	for i, bt := range allBeverageTypes {
		result[i] = string(bt)
	}
	return result
}

// ParseBeverageType canonicalizes user input ("spirits", " Wine ", "beer").
func ParseBeverageType(input string) (BeverageType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}

	synonyms := map[string]BeverageType{
		"beer":              Malt,
		"malt beverage":     Malt,
		"malt_beverage":     Malt,
		"distilled spirits": Spirits,
		"distilled_spirits": Spirits,
		"spirit":            Spirits,
		"liquor":            Spirits,
		"wines":             Wine,
	}
	if bt, ok := synonyms[normalized]; ok {
		return bt, true
	}

	for _, bt := range allBeverageTypes {
		if normalized == strings.ToLower(string(bt)) {
			return bt, true
		}
	}
	return BeverageType(strings.ToUpper(normalized)), false
}
