package rules

import (
	"errors"
	"fmt"
)

// Sentinel errors for rule compilation and evaluation
var (
	// ErrUnresolvedReference is returned when a formula references a prior
	// rule that does not exist in the structure or evaluates later.
	ErrUnresolvedReference = errors.New("referencia a regla no resuelta")

	// ErrDivisionByZero is returned when a formula divides by zero.
	ErrDivisionByZero = errors.New("división entre cero")

	// ErrUnknownIdentifier is returned when a formula names a context field
	// the payslip context does not provide.
	ErrUnknownIdentifier = errors.New("identificador desconocido en la fórmula")

	// ErrSyntax is returned when a formula cannot be parsed.
	ErrSyntax = errors.New("error de sintaxis en la fórmula")
)

// RuleError wraps a compilation or evaluation failure with the offending
// rule's code. The whole payslip computation aborts on the first RuleError;
// no partial lines are persisted.
type RuleError struct {
	Code string
	Err  error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("regla %s: %v", e.Code, e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

// SyntaxError carries the position of a parse failure inside a formula.
type SyntaxError struct {
	Formula string
	Pos     int
	Msg     string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("posición %d: %s", e.Pos, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}
