package extract

import (
	"regexp"

	"github.com/joseph-ayodele/label-verifier/internal/textnorm"
)

// WarningHeader must appear in capitals on the label.
const WarningHeader = "GOVERNMENT WARNING"

// CanonicalWarning is the statutory health warning text.
const CanonicalWarning = "GOVERNMENT WARNING: (1) According to the Surgeon General, women should not drink " +
	"alcoholic beverages during pregnancy because of the risk of birth defects. (2) Consumption of " +
	"alcoholic beverages impairs your ability to drive a car or operate machinery, and may cause health problems."

// WarningKeywords must all be present, in loose form, for the warning to count.
var WarningKeywords = []string{
	"surgeon",
	"general",
	"pregnancy",
	"birth defects",
	"impairs",
	"machinery",
	"health",
}

// OCR regularly drops the space inside the header.
var reWarningHeader = regexp.MustCompile(`GOVERNMENT ?WARNING`)

// ExtractGovWarning reports the warning as found only when the header and
// every keyword are present.
func ExtractGovWarning(corpus string) Value {
	warning := textnorm.Warning(corpus)
	loose := textnorm.Loose(corpus)

	var v Value
	if loc := reWarningHeader.FindStringIndex(warning); loc != nil {
		v.HeaderFound = true
		v.Match = textnorm.Truncate(warning[loc[0]:], len([]rune(CanonicalWarning)))
	}
	for _, kw := range WarningKeywords {
		if !textnorm.ContainsPhrase(loose, kw) {
			v.Missing = append(v.Missing, kw)
		}
	}
	v.Found = v.HeaderFound && len(v.Missing) == 0
	return v
}
