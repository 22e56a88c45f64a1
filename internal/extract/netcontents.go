package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/label-verifier/internal/textnorm"
)

// Unit is a canonical volume unit.
type Unit string

const (
	Milliliter Unit = "ml"
	Centiliter Unit = "cl"
	Liter      Unit = "l"
	FluidOunce Unit = "fl oz"
	Pint       Unit = "pt"
	Gallon     Unit = "gal"
)

var mlPerUnit = map[Unit]float64{
	Milliliter: 1,
	Centiliter: 10,
	Liter:      1000,
	FluidOunce: 29.5735295625,
	Pint:       473.176473,
	Gallon:     3785.411784,
}

// VolumeTolerance is the relative difference under which two volumes are equal,
// wide enough that "12 FL OZ" equals "355 mL".
const VolumeTolerance = 0.005

// Volume is one net contents statement.
type Volume struct {
	Quantity    float64
	Unit        Unit
	Milliliters float64
	Match       string
}

func (v Volume) String() string {
	return strconv.FormatFloat(v.Quantity, 'f', -1, 64) + " " + string(v.Unit)
}

// Equal compares two volumes after conversion to millilitres.
func (v Volume) Equal(o Volume) bool {
	if v.Milliliters <= 0 || o.Milliliters <= 0 {
		return false
	}
	diff := math.Abs(v.Milliliters - o.Milliliters)
	return diff <= VolumeTolerance*math.Max(v.Milliliters, o.Milliliters)
}

// The quantity is a mixed number ("12 1/2"), a fraction or a decimal with '.'
// or ','. The unit alternation is ordered so multi-letter units win over their
// prefixes. "mi" and "m1" are common OCR misreads of "ml".
var reVolume = regexp.MustCompile(`\b(\d+\s+\d+/\d+|\d+/\d+|\d+(?:[.,]\d+)?)\s*(fl\.?\s*oz|fluid\s*ounces?|ounces?|oz|millilit(?:er|re)s?|ml|mi|m1|centilit(?:er|re)s?|cl|lit(?:er|re)s?|ltrs?|l|gallons?|gal|pints?|pts?)\b`)

// ExtractNetContents finds every volume statement in the corpus. Value.Number
// and Value.Match describe the first one.
func ExtractNetContents(corpus string) Value {
	vols := findVolumes(textnorm.Strict(corpus))
	if len(vols) == 0 {
		return Value{}
	}
	return Value{
		Found:   true,
		Match:   vols[0].Match,
		Number:  vols[0].Milliliters,
		Volumes: vols,
	}
}

// ParseVolume reads a declared net contents value such as "750ML" or "0.75 L".
func ParseVolume(s string) (Volume, bool) {
	vols := findVolumes(textnorm.Strict(s))
	if len(vols) == 0 {
		return Volume{}, false
	}
	return vols[0], true
}

func findVolumes(text string) []Volume {
	var out []Volume
	for _, m := range reVolume.FindAllStringSubmatch(text, -1) {
		qty, ok := parseQuantity(m[1])
		if !ok || qty <= 0 {
			continue
		}
		unit, ok := canonicalUnit(m[2])
		if !ok {
			continue
		}
		out = append(out, Volume{
			Quantity:    qty,
			Unit:        unit,
			Milliliters: qty * mlPerUnit[unit],
			Match:       m[0],
		})
	}
	return out
}

// parseQuantity reads "750", "1.75", "1,75", "1,750", "1/2" and "12 1/2".
// A comma followed by exactly three digits groups thousands; any other comma
// is a decimal separator.
func parseQuantity(raw string) (float64, bool) {
	whole := 0.0
	if i := strings.IndexByte(raw, ' '); i >= 0 {
		w, err := strconv.ParseFloat(raw[:i], 64)
		if err != nil {
			return 0, false
		}
		whole = w
		raw = strings.TrimSpace(raw[i:])
	}
	if num, den, ok := strings.Cut(raw, "/"); ok {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 != nil || err2 != nil || d == 0 {
			return 0, false
		}
		return whole + n/d, true
	}
	if intPart, frac, ok := strings.Cut(raw, ","); ok {
		if len(frac) == 3 {
			raw = intPart + frac
		} else {
			raw = intPart + "." + frac
		}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return whole + v, true
}

func canonicalUnit(raw string) (Unit, bool) {
	u := strings.NewReplacer(".", "", " ", "").Replace(raw)
	switch {
	case strings.HasPrefix(u, "fl"), strings.HasPrefix(u, "fluid"), strings.HasPrefix(u, "oz"), strings.HasPrefix(u, "ounce"):
		return FluidOunce, true
	case u == "ml", u == "mi", u == "m1", strings.HasPrefix(u, "millilit"):
		return Milliliter, true
	case u == "cl", strings.HasPrefix(u, "centilit"):
		return Centiliter, true
	case u == "l", strings.HasPrefix(u, "lit"), strings.HasPrefix(u, "ltr"):
		return Liter, true
	case strings.HasPrefix(u, "gal"):
		return Gallon, true
	case strings.HasPrefix(u, "pint"), strings.HasPrefix(u, "pt"):
		return Pint, true
	}
	return "", false
}
