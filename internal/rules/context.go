package rules

import (
	"strings"

	"github.com/joseph-ayodele/label-verifier/constants"
	"github.com/joseph-ayodele/label-verifier/internal/entity"
	"github.com/joseph-ayodele/label-verifier/internal/extract"
	"github.com/joseph-ayodele/label-verifier/internal/textnorm"
)

// Context is the state every rule reads during one validation run. It is built
// once by NewContext and must not be modified afterwards; the only lazily
// filled part is the extractor cache, which is safe for concurrent use.
type Context struct {
	Form         entity.FormData
	BeverageType constants.BeverageType

	// Corpus is the submission-level OCR text; the other fields are its
	// normalized variants.
	Corpus  string
	Lines   []string
	Loose   string
	Strict  string
	Warning string
	Tokens  []string

	Images []entity.ImageResult

	extracted *extract.Cache
}

func NewContext(bt constants.BeverageType, form entity.FormData, corpus string, images []entity.ImageResult) *Context {
	var lines []string
	if corpus != "" {
		lines = strings.Split(corpus, "\n")
	}
	return &Context{
		Form:         form,
		BeverageType: bt,
		Corpus:       corpus,
		Lines:        lines,
		Loose:        textnorm.Loose(corpus),
		Strict:       textnorm.Strict(corpus),
		Warning:      textnorm.Warning(corpus),
		Tokens:       textnorm.Tokens(corpus),
		Images:       images,
		extracted:    extract.NewCache(corpus),
	}
}

// Extracted returns the value of extractor id, running it on first use.
func (c *Context) Extracted(id extract.ID) extract.Value {
	return c.extracted.Get(id)
}

// ExtractorRuns reports how many extractors have run so far.
func (c *Context) ExtractorRuns() int {
	return c.extracted.Computed()
}

// bestLine returns the corpus line sharing the most fuzzy tokens with phrase,
// or "" when no line shares any.
func (c *Context) bestLine(phrase string) string {
	needle := textnorm.Tokens(phrase)
	best, bestHits := "", 0
	for _, ln := range c.Lines {
		hits := 0
		for _, tok := range textnorm.Tokens(ln) {
			for _, n := range needle {
				if textnorm.TokenMatch(n, tok) {
					hits++
					break
				}
			}
		}
		if hits > bestHits {
			best, bestHits = ln, hits
		}
	}
	return best
}
