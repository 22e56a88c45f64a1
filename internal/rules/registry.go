// Package rules holds the compliance rule bodies and the registry that maps
// each RuleID to its evaluation function.
package rules

import (
	"sort"

	"github.com/joseph-ayodele/label-verifier/constants"
	"github.com/joseph-ayodele/label-verifier/internal/common"
)

// Result is the outcome of one rule invocation.
type Result struct {
	RuleID   constants.RuleID
	Passed   bool
	Field    string
	Message  string
	Evidence string
}

// Func evaluates a rule. It must not modify ctx.
type Func func(ctx *Context) Result

// Registry maps rule ids to rule functions. It is filled at startup and only
// read afterwards, so concurrent Evaluate calls need no locking.
type Registry struct {
	funcs map[constants.RuleID]Func
}

func NewRegistry() *Registry {
	return &Registry{funcs: make(map[constants.RuleID]Func)}
}

// Register adds fn under id. Registering an invalid or already registered id
// is a configuration error.
func (r *Registry) Register(id constants.RuleID, fn Func) error {
	if !id.Valid() {
		return common.ConfigError("cannot register invalid rule id %d", uint8(id))
	}
	if fn == nil {
		return common.ConfigError("rule %s registered without a function", id)
	}
	if _, dup := r.funcs[id]; dup {
		return common.ConfigError("rule %s registered twice", id)
	}
	r.funcs[id] = fn
	return nil
}

func (r *Registry) Lookup(id constants.RuleID) (Func, bool) {
	fn, ok := r.funcs[id]
	return fn, ok
}

// IDs returns the registered rule ids in declaration order.
func (r *Registry) IDs() []constants.RuleID {
	ids := make([]constants.RuleID, 0, len(r.funcs))
	for id := range r.funcs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Evaluate runs rule id against ctx. The returned Result always carries id.
func (r *Registry) Evaluate(id constants.RuleID, ctx *Context) (Result, error) {
	fn, ok := r.funcs[id]
	if !ok {
		return Result{}, common.ConfigError("rule %s is not registered", id)
	}
	res := fn(ctx)
	res.RuleID = id
	return res, nil
}

var builtins = map[constants.RuleID]Func{
	constants.RuleOCREmptyText:         ocrEmptyText,
	constants.RuleBrandNameContains:    brandNameContains,
	constants.RuleDesignationContains:  designationContains,
	constants.RuleAlcPercentPresent:    alcPercentPresent,
	constants.RuleAlcPercentMatchExact: alcPercentMatchExact,
	constants.RuleNetContentsPresent:   netContentsPresent,
	constants.RuleNameAddressContains:  nameAddressContains,
	constants.RuleGovWarningExact:      govWarningExact,
}

// Default returns a registry holding every built-in rule.
func Default() (*Registry, error) {
	r := NewRegistry()
	for _, id := range constants.AllRuleIDs() {
		fn, ok := builtins[id]
		if !ok {
			return nil, common.ConfigError("rule %s has no implementation", id)
		}
		if err := r.Register(id, fn); err != nil {
			return nil, err
		}
	}
	return r, nil
}
