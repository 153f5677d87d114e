package web

import (
	"errors"
	"net/http"

	"github.com/rev-net/revdash/internal/chain"
	"github.com/rev-net/revdash/internal/create"
	"github.com/rev-net/revdash/internal/fixedpoint"
	"github.com/rev-net/revdash/internal/pricing"
	"github.com/rev-net/revdash/internal/scheduler"
)

var (
	errNoActiveStage = errors.New("network has no active stage")
	errUnpriceable   = errors.New("stage schedule cannot be priced")
	errBadRequest    = errors.New("bad request")
)

var clientErrors = []error{
	errBadRequest,
	fixedpoint.ErrParse,
	fixedpoint.ErrDecimalsMismatch,
	fixedpoint.ErrDivisionByZero,
	fixedpoint.ErrOverflow,
	fixedpoint.ErrInvalidPercent,
	fixedpoint.ErrNegativeAmount,
	pricing.ErrNoSupply,
	pricing.ErrInvalidRedemptionAmount,
	create.ErrValidation,
	create.ErrStep,
}

// statusFor maps domain errors onto HTTP status codes. Anything unrecognised is a 500.
func statusFor(err error) int {
	if errors.Is(err, scheduler.ErrUnknownNetwork) {
		return http.StatusNotFound
	}
	// checked before the client errors: a schedule that cannot be priced wraps ErrOverflow
	if errors.Is(err, errNoActiveStage) || errors.Is(err, errUnpriceable) {
		return http.StatusConflict
	}
	if errors.Is(err, chain.ErrSubmissionDisabled) {
		return http.StatusNotImplemented
	}
	for _, target := range clientErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}
