package pricing

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/rev-net/revdash/internal/fixedpoint"
)

// PaymentQuote splits the tokens minted by a payment between the payer and the boost
// recipient. TotalMinted == PayerTokens + ReservedTokens always holds.
type PaymentQuote struct {
	TotalMinted    fixedpoint.Amount `json:"total_minted"`
	PayerTokens    fixedpoint.Amount `json:"payer_tokens"`
	ReservedTokens fixedpoint.Amount `json:"reserved_tokens"`
}

// QuotePayment converts a payment into minted tokens at the given weight. The result carries
// the weight's decimals. Reserved tokens are truncated first and the payer receives the rest.
func QuotePayment(payment, weight fixedpoint.Amount, reserved fixedpoint.Percent) (PaymentQuote, error) {
	if err := reserved.Validate(); err != nil {
		return PaymentQuote{}, err
	}
	if payment.IsNegative() || weight.IsNegative() {
		return PaymentQuote{}, fmt.Errorf("%w: payment %s at weight %s", fixedpoint.ErrNegativeAmount, payment, weight)
	}

	total, err := weight.MulDiv(payment.Raw(), sdkmath.NewIntFromBigInt(pow10(payment.Decimals())))
	if err != nil {
		return PaymentQuote{}, err
	}
	reservedTokens, err := total.MulDiv(reserved.ValueInt(), reserved.ScaleInt())
	if err != nil {
		return PaymentQuote{}, err
	}
	payerTokens, err := total.Sub(reservedTokens)
	if err != nil {
		return PaymentQuote{}, err
	}
	return PaymentQuote{TotalMinted: total, PayerTokens: payerTokens, ReservedTokens: reservedTokens}, nil
}

// QuoteTokens answers the inverse question for the pay form: how much must be paid, at
// paymentDecimals, for the payer to receive payerTokens.
func QuoteTokens(payerTokens fixedpoint.Amount, paymentDecimals int, weight fixedpoint.Amount, reserved fixedpoint.Percent) (fixedpoint.Amount, error) {
	if err := reserved.Validate(); err != nil {
		return fixedpoint.Amount{}, err
	}
	if payerTokens.IsNegative() {
		return fixedpoint.Amount{}, fmt.Errorf("%w: %s tokens", fixedpoint.ErrNegativeAmount, payerTokens)
	}
	effective, err := weight.MulDiv(reserved.Complement().ValueInt(), reserved.ScaleInt())
	if err != nil {
		return fixedpoint.Amount{}, err
	}
	if effective.Sign() <= 0 {
		return fixedpoint.Amount{}, fmt.Errorf("%w: payer weight is zero", fixedpoint.ErrDivisionByZero)
	}
	tokens, err := payerTokens.Rescale(weight.Decimals())
	if err != nil {
		return fixedpoint.Amount{}, err
	}
	return tokens.Quo(effective, paymentDecimals)
}

// TokenPrice is the cost of one whole token to the payer at the given weight.
func TokenPrice(paymentDecimals int, weight fixedpoint.Amount, reserved fixedpoint.Percent) (fixedpoint.Amount, error) {
	one := fixedpoint.NewAmount(sdkmath.NewIntFromBigInt(pow10(weight.Decimals())), weight.Decimals())
	return QuoteTokens(one, paymentDecimals, weight, reserved)
}
