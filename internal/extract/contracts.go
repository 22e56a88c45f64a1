// Package extract pulls structured candidates out of aggregated label text.
// Extractors never look at the declared form values.
package extract

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// ID identifies one extractor.
type ID uint8

const (
	ABV ID = iota
	NetContents
	GovWarning

	numExtractors
)

func (id ID) String() string {
	switch id {
	case ABV:
		return "ABV_EXTRACTOR"
	case NetContents:
		return "NET_CONTENTS_EXTRACTOR"
	case GovWarning:
		return "GOV_WARNING_EXTRACTOR"
	default:
		return fmt.Sprintf("Extractor(%d)", uint8(id))
	}
}

// Value is the outcome of one extractor over one corpus.
type Value struct {
	Found bool
	// Match is the substring the value was read from.
	Match string
	// Number is the parsed ABV percent, or the first volume in millilitres.
	Number float64
	// Volumes holds every net contents statement found, in text order.
	Volumes []Volume
	// HeaderFound and Missing describe a government warning check.
	HeaderFound bool
	Missing     []string
}

// Func is a pure text-to-value transform.
type Func func(corpus string) Value

var registry = [numExtractors]Func{
	ABV:         ExtractABV,
	NetContents: ExtractNetContents,
	GovWarning:  ExtractGovWarning,
}

// Run executes extractor id against corpus without caching.
func Run(id ID, corpus string) Value {
	if id >= numExtractors {
		return Value{}
	}
	return registry[id](corpus)
}

// Cache memoizes extractor results for a single submission corpus. Each
// extractor runs at most once, on first access. Safe for concurrent use.
type Cache struct {
	corpus   string
	once     [numExtractors]sync.Once
	values   [numExtractors]Value
	computed atomic.Int32
}

func NewCache(corpus string) *Cache {
	return &Cache{corpus: corpus}
}

func (c *Cache) Get(id ID) Value {
	if id >= numExtractors {
		return Value{}
	}
	c.once[id].Do(func() {
		c.values[id] = registry[id](c.corpus)
		c.computed.Add(1)
	})
	return c.values[id]
}

// Computed reports how many extractors have run so far.
func (c *Cache) Computed() int {
	return int(c.computed.Load())
}
