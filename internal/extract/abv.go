package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/label-verifier/internal/textnorm"
)

// A comma in the number is a decimal separator ("12,5% vol").
const abvNumber = `(\d{1,2}(?:[.,]\d{1,2})?)`

// abvPatterns run over strict text, most specific first.
var abvPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b` + abvNumber + `\s*%\s*(?:(?:alc(?:ohol)?\.?\s*)?(?:by\s*)?vol(?:ume)?|abv)`),
	regexp.MustCompile(`\balc(?:ohol)?\.?\s*(?:by\s*vol(?:ume)?\.?\s*)?` + abvNumber + `\s*%`),
	regexp.MustCompile(`\b` + abvNumber + `\s*%\s*alc`),
	regexp.MustCompile(`\b` + abvNumber + `\s*percent\b`),
	regexp.MustCompile(`\b` + abvNumber + `\s*%`),
}

var reProof = regexp.MustCompile(`\b(\d{2,3}(?:[.,]\d)?)\s*proof\b`)

// ExtractABV finds the alcohol-by-volume percentage. Patterns with an explicit
// alcohol context win over a bare percentage; a proof statement is the fallback.
func ExtractABV(corpus string) Value {
	text := textnorm.Strict(corpus)
	for _, re := range abvPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if v, err := parseDecimal(m[1]); err == nil {
			return Value{Found: true, Match: m[0], Number: v}
		}
	}
	if m := reProof.FindStringSubmatch(text); m != nil {
		if proof, err := parseDecimal(m[1]); err == nil && proof <= 200 {
			return Value{Found: true, Match: m[0], Number: proof / 2}
		}
	}
	return Value{}
}

func parseDecimal(s string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
}
