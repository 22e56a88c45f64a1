package ocr

import (
	"regexp"
	"strings"
)

var (
	reCRLF     = regexp.MustCompile(`\r\n?`)
	reTabs     = regexp.MustCompile(`\t+`)
	reMulti    = regexp.MustCompile(` {2,}`)
	reBoxNoise = regexp.MustCompile(`^[\s_\-=|~.]*$`)
)

// SplitLines turns raw engine output into trimmed, non-empty text lines,
// dropping rule/box artifacts such as "-----" or "|||".
func SplitLines(raw string) []string {
	raw = reCRLF.ReplaceAllString(raw, "\n")
	raw = strings.ReplaceAll(raw, "\f", "\n")
	var lines []string
	for _, ln := range strings.Split(raw, "\n") {
		ln = reTabs.ReplaceAllString(ln, " ")
		ln = strings.TrimSpace(reMulti.ReplaceAllString(ln, " "))
		if ln == "" || reBoxNoise.MatchString(ln) {
			continue
		}
		lines = append(lines, ln)
	}
	return lines
}
