package fixedpoint

import "errors"

// Error definitions shared by every formula package. Callers match them with errors.Is;
// the presentation layer decides how to render each one.
var (
	ErrParse            = errors.New("malformed numeric input")
	ErrDecimalsMismatch = errors.New("decimals mismatch")
	ErrDivisionByZero   = errors.New("division by zero")
	ErrOverflow         = errors.New("value exceeds 256 bits")
	ErrInvalidPercent   = errors.New("percent is out of range")
	ErrNegativeAmount   = errors.New("amount is negative")
)
