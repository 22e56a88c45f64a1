package rules

import (
	"fmt"
	"math"
	"strings"

	"github.com/joseph-ayodele/label-verifier/constants"
	"github.com/joseph-ayodele/label-verifier/internal/entity"
	"github.com/joseph-ayodele/label-verifier/internal/extract"
	"github.com/joseph-ayodele/label-verifier/internal/textnorm"
)

// ABVTolerance is the absolute difference, in percentage points, accepted
// between the declared and the printed ABV.
const ABVTolerance = 0.05

// floating point slack so 40.05 vs 40.0 is inside the tolerance
const abvEpsilon = 1e-9

const evidenceLen = 120

func pass(field, evidence string) Result {
	return Result{Passed: true, Field: field, Evidence: textnorm.Truncate(evidence, evidenceLen)}
}

func fail(field, evidence, format string, args ...any) Result {
	return Result{
		Field:    field,
		Message:  fmt.Sprintf(format, args...),
		Evidence: textnorm.Truncate(evidence, evidenceLen),
	}
}

func ocrEmptyText(ctx *Context) Result {
	if ctx.Loose == "" {
		return fail(constants.FieldOCR, "", "OCR produced no usable text from the submitted images.")
	}
	return pass(constants.FieldOCR, fmt.Sprintf("%d lines recognized", len(ctx.Lines)))
}

func brandNameContains(ctx *Context) Result {
	return containsRule(ctx, constants.FieldBrandName, ctx.Form.BrandName, "Brand name not found or does not match.")
}

func designationContains(ctx *Context) Result {
	return containsRule(ctx, constants.FieldClassType, ctx.Form.ClassTypeDesignation, "Class/type designation not found or does not match.")
}

func containsRule(ctx *Context, field, declared, message string) Result {
	snippet := ctx.bestLine(declared)
	if textnorm.Contains(ctx.Tokens, declared) {
		return pass(field, snippet)
	}
	if snippet == "" {
		snippet = "Not detected"
	}
	return fail(field, snippet, "%s", message)
}

func alcPercentPresent(ctx *Context) Result {
	v := ctx.Extracted(extract.ABV)
	if !v.Found {
		return fail(constants.FieldAlcoholContent, "Not detected", "Alcohol content (ABV) not detected on label.")
	}
	return pass(constants.FieldAlcoholContent, entity.FormatPercent(v.Number)+"%")
}

func alcPercentMatchExact(ctx *Context) Result {
	declared := ctx.Form.AlcoholContent
	if declared == nil {
		return pass(constants.FieldAlcoholContent, "no alcohol content declared")
	}
	v := ctx.Extracted(extract.ABV)
	if !v.Found {
		return fail(constants.FieldAlcoholContent, "Not detected",
			"Alcohol content not detected on label; form declares %s%%.", entity.FormatPercent(*declared))
	}
	if math.Abs(v.Number-*declared) > ABVTolerance+abvEpsilon {
		return fail(constants.FieldAlcoholContent, v.Match,
			"Alcohol content mismatch: label shows %s%% but form declares %s%%.",
			entity.FormatPercent(v.Number), entity.FormatPercent(*declared))
	}
	return pass(constants.FieldAlcoholContent, v.Match)
}

func netContentsPresent(ctx *Context) Result {
	v := ctx.Extracted(extract.NetContents)
	if !v.Found {
		return fail(constants.FieldNetContents, "Not detected", "Net contents statement not detected on label.")
	}

	found := make([]string, 0, len(v.Volumes))
	for _, vol := range v.Volumes {
		found = append(found, vol.Match)
	}
	shown := strings.Join(found, ", ")

	declared, ok := extract.ParseVolume(ctx.Form.NetContents)
	if !ok {
		return fail(constants.FieldNetContents, shown,
			"Declared net contents %q is not a recognizable volume.", ctx.Form.NetContents)
	}
	for _, vol := range v.Volumes {
		if vol.Equal(declared) {
			return pass(constants.FieldNetContents, vol.Match)
		}
	}
	return fail(constants.FieldNetContents, shown,
		"Net contents mismatch: label shows %q but form declares %q.", shown, ctx.Form.NetContents)
}

// minAddressToken excludes abbreviations such as "St" or "Rd" from the tokens
// the label must carry.
const minAddressToken = 3

func nameAddressContains(ctx *Context) Result {
	matched, missing := textnorm.MatchedTokens(ctx.Tokens, ctx.Form.NameAddress, minAddressToken)
	total := len(matched) + len(missing)
	if total == 0 {
		if ctx.Loose == "" {
			return fail(constants.FieldNameAddress, "Not detected",
				"Producer/bottler name and address not found (matched 0/0 tokens).")
		}
		return pass(constants.FieldNameAddress, "no significant tokens declared")
	}

	evidence := fmt.Sprintf("Matched: %s (%d/%d tokens)", joinOr(matched, "none"), len(matched), total)
	if len(missing) > 0 {
		return fail(constants.FieldNameAddress, evidence,
			"Producer/bottler name and address not found (matched %d/%d tokens; missing: %s).",
			len(matched), total, strings.Join(missing, ", "))
	}
	return pass(constants.FieldNameAddress, evidence)
}

func govWarningExact(ctx *Context) Result {
	v := ctx.Extracted(extract.GovWarning)
	if !v.HeaderFound {
		return fail(constants.FieldGovernmentWarning, "Header: not found",
			"Government warning header %q not found in required uppercase.", extract.WarningHeader)
	}
	if len(v.Missing) > 0 {
		return fail(constants.FieldGovernmentWarning, v.Match,
			"Government warning text incomplete; missing: %s.", strings.Join(v.Missing, ", "))
	}
	return pass(constants.FieldGovernmentWarning, v.Match)
}

func joinOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, ", ")
}
