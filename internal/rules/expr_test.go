package rules

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eval(t *testing.T, formula string, env Vars) decimal.Decimal {
	t.Helper()
	expr, err := Parse(formula)
	require.NoError(t, err)
	value, err := expr.Eval(env)
	require.NoError(t, err)
	return value
}

func TestParseArithmetic(t *testing.T) {
	env := Vars{
		"contract.monthly_wage": decimal.NewFromInt(1000),
		"payslip.period_days":   decimal.NewFromInt(15),
	}

	assert.True(t, eval(t, "2 + 3 * 4", nil).Equal(decimal.NewFromInt(14)))
	assert.True(t, eval(t, "(2 + 3) * 4", nil).Equal(decimal.NewFromInt(20)))
	assert.True(t, eval(t, "-5 + 2", nil).Equal(decimal.NewFromInt(-3)))
	assert.True(t, eval(t, "contract.monthly_wage / 30 * payslip.period_days", env).
		Equal(decimal.NewFromInt(500)))
}

func TestParseDecimalPrecision(t *testing.T) {
	// 0.1 + 0.2 must be exactly 0.3, not a float approximation
	assert.True(t, eval(t, "0.1 + 0.2", nil).Equal(decimal.NewFromFloat(0.3)))
}

func TestParseComparisonsAndBooleans(t *testing.T) {
	one := decimal.NewFromInt(1)

	assert.True(t, eval(t, "3 > 2", nil).Equal(one))
	assert.True(t, eval(t, "2 >= 2", nil).Equal(one))
	assert.True(t, eval(t, "2 == 2 && 1 < 2", nil).Equal(one))
	assert.True(t, eval(t, "0 || 5", nil).Equal(one))
	assert.True(t, eval(t, "!0", nil).Equal(one))
	assert.True(t, eval(t, "3 < 2", nil).IsZero())
	assert.True(t, eval(t, "1 && 0", nil).IsZero())
}

func TestParseTernary(t *testing.T) {
	env := Vars{"timeline.vacation_days_due": decimal.NewFromInt(10)}

	assert.True(t, eval(t, "timeline.vacation_days_due > 0 ? 100 : 0", env).
		Equal(decimal.NewFromInt(100)))
	env["timeline.vacation_days_due"] = decimal.Zero
	assert.True(t, eval(t, "timeline.vacation_days_due > 0 ? 100 : 0", env).IsZero())
}

func TestParseFunctions(t *testing.T) {
	assert.True(t, eval(t, "max(3, 7, 5)", nil).Equal(decimal.NewFromInt(7)))
	assert.True(t, eval(t, "min(15 + 3, 30)", nil).Equal(decimal.NewFromInt(18)))
	assert.True(t, eval(t, "abs(-4.5)", nil).Equal(decimal.NewFromFloat(4.5)))
	assert.True(t, eval(t, "floor(2.9)", nil).Equal(decimal.NewFromInt(2)))
	assert.True(t, eval(t, "ceil(2.1)", nil).Equal(decimal.NewFromInt(3)))
	assert.True(t, eval(t, "round(2.345)", nil).Equal(decimal.NewFromFloat(2.35)))
	assert.True(t, eval(t, "round(2.34567, 4)", nil).Equal(decimal.NewFromFloat(2.3457)))
}

func TestParseSyntaxErrors(t *testing.T) {
	for _, formula := range []string{"", "1 +", "(1 + 2", "1 ? 2", "foo(", "2 ** 3", "1 2"} {
		_, err := Parse(formula)
		assert.Error(t, err, "formula %q", formula)
		assert.ErrorIs(t, err, ErrSyntax, "formula %q", formula)
	}
}

func TestEvalUnknownIdentifier(t *testing.T) {
	expr, err := Parse("contract.monthly_wage * 2")
	require.NoError(t, err)

	_, err = expr.Eval(Vars{})
	assert.ErrorIs(t, err, ErrUnknownIdentifier)
}

func TestEvalDivisionByZero(t *testing.T) {
	expr, err := Parse("100 / (1 - 1)")
	require.NoError(t, err)

	_, err = expr.Eval(Vars{})
	assert.True(t, errors.Is(err, ErrDivisionByZero))
}

func TestShortCircuitSkipsErrors(t *testing.T) {
	// The right side divides by zero but must not be evaluated
	expr, err := Parse("0 && 1 / 0")
	require.NoError(t, err)
	value, err := expr.Eval(Vars{})
	require.NoError(t, err)
	assert.True(t, value.IsZero())

	expr, err = Parse("1 || 1 / 0")
	require.NoError(t, err)
	value, err = expr.Eval(Vars{})
	require.NoError(t, err)
	assert.True(t, value.Equal(decimal.NewFromInt(1)))
}

func TestRefs(t *testing.T) {
	expr, err := Parse("prior.LIQUID_ANTIG + categories.gross * contract.daily_salary")
	require.NoError(t, err)

	assert.ElementsMatch(t,
		[]string{"prior.LIQUID_ANTIG", "categories.gross", "contract.daily_salary"},
		expr.Refs())
}
