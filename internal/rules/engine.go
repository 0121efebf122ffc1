package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Line categories, mirroring the persisted payslip line categories.
const (
	CategoryBasic     = "basic"
	CategoryAllowance = "allowance"
	CategoryDeduction = "deduction"
	CategoryGross     = "gross"
	CategoryNet       = "net"
)

// Rule is one monetary rule before compilation. Condition may be empty,
// which means the rule always fires.
type Rule struct {
	Code      string
	Name      string
	Category  string
	Sequence  int
	Condition string
	Amount    string
}

type compiledRule struct {
	Rule
	condition *Expr // nil when Condition is empty
	amount    *Expr
}

// RuleSet is a validated, sequence-ordered set of compiled rules.
// Compilation rejects syntax errors and forward prior references, so a
// structure that loads can never fail on reference resolution mid-payslip.
type RuleSet struct {
	rules []compiledRule
}

// Compile parses every rule, sorts by ascending sequence (stable on ties)
// and validates that each prior.CODE reference points at a rule with a
// strictly lower sequence.
func Compile(ruleList []Rule) (*RuleSet, error) {
	compiled := make([]compiledRule, 0, len(ruleList))
	for _, r := range ruleList {
		cr := compiledRule{Rule: r}

		if cond := strings.TrimSpace(r.Condition); cond != "" {
			expr, err := Parse(cond)
			if err != nil {
				return nil, &RuleError{Code: r.Code, Err: err}
			}
			cr.condition = expr
		}

		amount, err := Parse(r.Amount)
		if err != nil {
			return nil, &RuleError{Code: r.Code, Err: err}
		}
		cr.amount = amount

		compiled = append(compiled, cr)
	}

	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].Sequence < compiled[j].Sequence
	})

	// prior.CODE must reference a strictly earlier rule.
	sequences := map[string]int{}
	for _, cr := range compiled {
		for _, ref := range cr.priorRefs() {
			seq, defined := sequences[ref]
			if !defined {
				return nil, &RuleError{
					Code: cr.Code,
					Err:  fmt.Errorf("%w: prior.%s", ErrUnresolvedReference, ref),
				}
			}
			if seq >= cr.Sequence {
				return nil, &RuleError{
					Code: cr.Code,
					Err:  fmt.Errorf("%w: prior.%s no precede a la regla (secuencia %d >= %d)", ErrUnresolvedReference, ref, seq, cr.Sequence),
				}
			}
		}
		sequences[cr.Code] = cr.Sequence
	}

	return &RuleSet{rules: compiled}, nil
}

func (cr *compiledRule) priorRefs() []string {
	var refs []string
	exprs := []*Expr{cr.amount}
	if cr.condition != nil {
		exprs = append(exprs, cr.condition)
	}
	for _, expr := range exprs {
		for _, name := range expr.Refs() {
			if code, ok := strings.CutPrefix(name, "prior."); ok {
				refs = append(refs, code)
			}
		}
	}
	return refs
}

// Len returns the number of rules in the set.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

// Line is one evaluated rule output, signed, in the ledger currency.
type Line struct {
	Code     string
	Name     string
	Category string
	Sequence int
	Amount   decimal.Decimal
}

// Result is the outcome of evaluating a rule set over a context.
type Result struct {
	Lines      []Line
	Gross      decimal.Decimal // Σ basic + allowance
	Deductions decimal.Decimal // Σ deduction (negative)
	Net        decimal.Decimal // Gross + Deductions
}

// Evaluate runs the rules in sequence order against the environment.
// Each fired rule registers prior.CODE for later rules, and the running
// category totals are visible as categories.basic, categories.allowance,
// categories.deduction, categories.gross and categories.net. Any rule
// failure aborts the whole evaluation; no partial result is returned.
func (rs *RuleSet) Evaluate(env Env) (*Result, error) {
	prior := Vars{}
	totals := map[string]decimal.Decimal{
		CategoryBasic:     decimal.Zero,
		CategoryAllowance: decimal.Zero,
		CategoryDeduction: decimal.Zero,
	}

	scope := &evalEnv{base: env, prior: prior, totals: totals}

	result := &Result{}
	for i := range rs.rules {
		cr := &rs.rules[i]

		if cr.condition != nil {
			fired, err := cr.condition.Eval(scope)
			if err != nil {
				return nil, &RuleError{Code: cr.Code, Err: err}
			}
			if fired.IsZero() {
				// A skipped rule emits no line but contributes zero to
				// later prior references.
				prior[cr.Code] = decimal.Zero
				continue
			}
		}

		amount, err := cr.amount.Eval(scope)
		if err != nil {
			return nil, &RuleError{Code: cr.Code, Err: err}
		}

		result.Lines = append(result.Lines, Line{
			Code:     cr.Code,
			Name:     cr.Name,
			Category: cr.Category,
			Sequence: cr.Sequence,
			Amount:   amount,
		})
		prior[cr.Code] = amount

		if _, tracked := totals[cr.Category]; tracked {
			totals[cr.Category] = totals[cr.Category].Add(amount)
		}
	}

	result.Gross = totals[CategoryBasic].Add(totals[CategoryAllowance])
	result.Deductions = totals[CategoryDeduction]
	result.Net = result.Gross.Add(result.Deductions)
	return result, nil
}

// evalEnv layers prior amounts and category totals over the payslip
// context environment.
type evalEnv struct {
	base   Env
	prior  Vars
	totals map[string]decimal.Decimal
}

func (e *evalEnv) Resolve(name string) (decimal.Decimal, bool) {
	if code, ok := strings.CutPrefix(name, "prior."); ok {
		value, found := e.prior[code]
		return value, found
	}
	if cat, ok := strings.CutPrefix(name, "categories."); ok {
		switch cat {
		case CategoryGross:
			return e.totals[CategoryBasic].Add(e.totals[CategoryAllowance]), true
		case CategoryNet:
			gross := e.totals[CategoryBasic].Add(e.totals[CategoryAllowance])
			return gross.Add(e.totals[CategoryDeduction]), true
		default:
			value, found := e.totals[cat]
			return value, found
		}
	}
	return e.base.Resolve(name)
}
