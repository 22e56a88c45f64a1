package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/joseph-ayodele/label-verifier/constants"
	"github.com/joseph-ayodele/label-verifier/internal/entity"
	"github.com/joseph-ayodele/label-verifier/internal/textnorm"
	"github.com/joseph-ayodele/label-verifier/internal/validators"
)

// TextOptions controls terminal rendering.
type TextOptions struct {
	Color bool
	// Verbose adds per-image excerpts and the evidence column.
	Verbose bool
}

type palette struct {
	good, bad, info, warn, bold *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		good: color.New(color.FgGreen, color.Bold),
		bad:  color.New(color.FgRed, color.Bold),
		info: color.New(color.FgCyan),
		warn: color.New(color.FgYellow),
		bold: color.New(color.FgWhite, color.Bold),
	}
	for _, c := range []*color.Color{p.good, p.bad, p.info, p.warn, p.bold} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// WriteText renders rep for a terminal: a status line, the discrepancy table
// and any OCR warnings.
func WriteText(w io.Writer, rep entity.Report, opts TextOptions) error {
	p := newPalette(opts.Color)

	status := p.good.Sprint(rep.Status)
	if rep.Status == constants.StatusNonCompliant {
		status = p.bad.Sprint(rep.Status)
	}
	if _, err := fmt.Fprintf(w, "%s  %s  (%d rules, %d error, %d info, run %s)\n",
		status, p.bold.Sprint(rep.BeverageType), rep.RulesEvaluated, rep.ErrorCount(), rep.InfoCount(), rep.RunID); err != nil {
		return err
	}

	if len(rep.Discrepancies) > 0 {
		table := tablewriter.NewWriter(w)
		headers := []string{"Rule", "Field", "Severity", "Message"}
		if opts.Verbose {
			headers = append(headers, "OCR Found")
		}
		table.SetHeader(headers)
		table.SetAutoWrapText(true)
		table.SetColWidth(60)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		for _, d := range rep.Discrepancies {
			sev := p.info.Sprint(d.Severity)
			if d.Severity == constants.SeverityError {
				sev = p.bad.Sprint(d.Severity)
			}
			row := []string{d.RuleID.String(), d.Field, sev, d.Message}
			if opts.Verbose {
				row = append(row, d.Evidence)
			}
			table.Append(row)
		}
		table.Render()
	}

	for _, warning := range rep.Warnings() {
		if _, err := fmt.Fprintln(w, p.warn.Sprint("warning: ")+warning); err != nil {
			return err
		}
	}

	if opts.Verbose {
		for _, img := range rep.Images {
			excerpt := strings.ReplaceAll(textnorm.Truncate(img.Excerpt, 200), "\n", " | ")
			if _, err := fmt.Fprintf(w, "%s (%d lines): %s\n", p.bold.Sprint(img.ID), img.Lines, excerpt); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteRules prints each validator's rule list with the severity a failure carries.
func WriteRules(w io.Writer, vs []validators.Validator, opts TextOptions) {
	p := newPalette(opts.Color)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Beverage", "#", "Rule", "Severity"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, v := range vs {
		for i, id := range v.RuleIDs {
			bev := ""
			if i == 0 {
				bev = string(v.Type)
			}
			sev := p.bad.Sprint(v.Severity(id))
			if v.Severity(id) == constants.SeverityInfo {
				sev = p.info.Sprint(v.Severity(id))
			}
			table.Append([]string{bev, strconv.Itoa(i + 1), id.String(), sev})
		}
	}
	table.Render()
}

// WriteSummary prints one row per batch submission followed by a totals line.
func WriteSummary(w io.Writer, rows []SummaryRow, opts TextOptions) error {
	p := newPalette(opts.Color)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Submission", "Type", "Status", "Errors", "Info", "Images", "Elapsed"})
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	var compliant, nonCompliant, failed int
	for _, r := range rows {
		status := r.Status
		switch {
		case r.Err != "":
			failed++
			status = p.warn.Sprint("FAILED: " + textnorm.Truncate(r.Err, 60))
		case r.Status == string(constants.StatusNonCompliant):
			nonCompliant++
			status = p.bad.Sprint(r.Status)
		default:
			compliant++
			status = p.good.Sprint(r.Status)
		}
		table.Append([]string{
			r.Submission,
			r.BeverageType,
			status,
			strconv.Itoa(r.Errors),
			strconv.Itoa(r.Infos),
			strconv.Itoa(r.Images),
			r.Elapsed.Round(time.Millisecond).String(),
		})
	}
	table.Render()

	_, err := fmt.Fprintf(w, "%d submissions: %s compliant, %s non-compliant, %s failed\n",
		len(rows), p.good.Sprint(compliant), p.bad.Sprint(nonCompliant), p.warn.Sprint(failed))
	return err
}
