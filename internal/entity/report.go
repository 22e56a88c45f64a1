package entity

import (
	"time"

	"github.com/joseph-ayodele/label-verifier/constants"
)

// Discrepancy is a failed rule with the severity assigned by the beverage validator.
type Discrepancy struct {
	RuleID   constants.RuleID   `json:"rule_id"`
	Field    string             `json:"field"`
	Severity constants.Severity `json:"severity"`
	Message  string             `json:"message"`
	Evidence string             `json:"evidence,omitempty"`
}

// Report is the complete outcome of one validation run.
type Report struct {
	RunID          string                     `json:"run_id"`
	BeverageType   constants.BeverageType     `json:"beverage_type"`
	Status         constants.ComplianceStatus `json:"status"`
	Discrepancies  []Discrepancy              `json:"discrepancies"`
	Images         []ImageResult              `json:"images"`
	Evidence       map[string]string          `json:"ocr_evidence,omitempty"`
	RulesEvaluated int                        `json:"rules_evaluated"`
	Elapsed        time.Duration              `json:"-"`
}

// StatusFor derives the compliance status: any error-severity discrepancy fails the label.
func StatusFor(ds []Discrepancy) constants.ComplianceStatus {
	for _, d := range ds {
		if d.Severity == constants.SeverityError {
			return constants.StatusNonCompliant
		}
	}
	return constants.StatusCompliant
}

func (r Report) ErrorCount() int {
	return r.count(constants.SeverityError)
}

func (r Report) InfoCount() int {
	return r.count(constants.SeverityInfo)
}

func (r Report) count(s constants.Severity) int {
	n := 0
	for _, d := range r.Discrepancies {
		if d.Severity == s {
			n++
		}
	}
	return n
}

// Warnings flattens per-image OCR warnings, prefixed with the image id.
func (r Report) Warnings() []string {
	var out []string
	for _, img := range r.Images {
		for _, w := range img.Warnings {
			out = append(out, img.ID+": "+w)
		}
	}
	return out
}
