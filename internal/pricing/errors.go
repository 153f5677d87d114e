package pricing

import "errors"

var (
	ErrNoSupply                = errors.New("no outstanding supply to cash out against")
	ErrInvalidRedemptionAmount = errors.New("cash out amount exceeds outstanding supply")
)
